// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli parses skribe's command line and implements the non-TUI
// commands: one-shot asks, the line-mode REPL, and management of history,
// aliases, the journal, and configuration.
package cli

import (
	"fmt"
	"os"
	"strings"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command is the top-level CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdAsk
	CmdChat
	CmdHistory
	CmdAlias
	CmdJournal
	CmdConfig
	CmdVersion
	CmdHelp
)

// Args holds the parsed command line.
type Args struct {
	// Global flags
	Quiet bool
	Plain bool // suppress markdown rendering even on a TTY
	Model string
	NoLog bool // skip journal append

	// Query is the joined positional text after the command.
	Query string

	// Subcommand is the first positional after the command, for commands
	// with their own verbs (history list, alias set, ...).
	Subcommand string

	// Rest are the positionals after the subcommand.
	Rest []string
}

const usageText = `skribe - streaming markdown chat for the terminal

Usage:
  skribe                       Start the chat TUI (default)
  skribe ask "question"        Ask once and print the reply
  skribe chat                  Interactive line-mode chat
  skribe history [subcommand]  Saved sessions (list, show, search, delete, clear, export)
  skribe alias [subcommand]    Prompt aliases (list, set, show, rm)
  skribe journal [subcommand]  Daily journal (show, days)
  skribe config [subcommand]   Configuration (show, get, set, path, encrypt-key)
  skribe version               Print version
  skribe help                  Show this help

Flags:
  -m, --model NAME   Override the configured model
  -p, --plain        Plain output, no markdown rendering
  -q, --quiet        Minimal output
      --no-log       Do not append the exchange to the journal

Examples:
  skribe ask "Explain io.Reader in two sentences"
  cat main.go | skribe ask "Review this code"
  skribe ask @explain main.go          (expand the "explain" alias)
  skribe history search "toml"
  skribe alias set explain "Explain this code:\n{}"
  skribe config set ui.theme dark
`

// Parse reads os.Args into a command and its arguments.
func Parse() (Command, Args) {
	return parse(os.Args[1:])
}

func parse(raw []string) (Command, Args) {
	var args Args
	var positional []string

	i := 0
	for i < len(raw) {
		arg := raw[i]
		switch {
		case arg == "-q" || arg == "--quiet":
			args.Quiet = true
		case arg == "-p" || arg == "--plain":
			args.Plain = true
		case arg == "--no-log":
			args.NoLog = true
		case arg == "-m" || arg == "--model":
			if i+1 < len(raw) {
				args.Model = raw[i+1]
				i++
			}
		case strings.HasPrefix(arg, "--model="):
			args.Model = strings.TrimPrefix(arg, "--model=")
		case arg == "-h" || arg == "--help":
			return CmdHelp, args
		default:
			positional = append(positional, arg)
		}
		i++
	}

	if len(positional) == 0 {
		return CmdTUI, args
	}

	cmd := CmdHelp
	switch positional[0] {
	case "ask":
		cmd = CmdAsk
	case "chat":
		cmd = CmdChat
	case "history", "sessions":
		cmd = CmdHistory
	case "alias", "aliases":
		cmd = CmdAlias
	case "journal":
		cmd = CmdJournal
	case "config":
		cmd = CmdConfig
	case "version", "-v", "--version":
		cmd = CmdVersion
	case "help":
		cmd = CmdHelp
	default:
		fmt.Fprintf(os.Stderr, "skribe: unknown command %q\n\n", positional[0])
		return CmdHelp, args
	}

	rest := positional[1:]
	args.Query = strings.Join(rest, " ")
	if len(rest) > 0 {
		args.Subcommand = rest[0]
		args.Rest = rest[1:]
	}
	return cmd, args
}

// PrintUsage writes the usage text to stdout.
func PrintUsage() {
	fmt.Print(usageText)
}

// PrintVersion writes version information to stdout.
func PrintVersion() {
	fmt.Printf("skribe %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
}
