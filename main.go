// skribe - streaming markdown chat for the terminal.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/halvard/skribe/internal/cli"
	"github.com/halvard/skribe/internal/config"
	"github.com/halvard/skribe/internal/provider"
	"github.com/halvard/skribe/internal/storage"
	"github.com/halvard/skribe/internal/stream"
	"github.com/halvard/skribe/internal/ui/chat"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()

	var err error
	switch cmd {
	case cli.CmdTUI:
		err = runTUI(args)
	case cli.CmdAsk:
		err = cli.HandleAsk(args)
	case cli.CmdChat:
		err = cli.HandleChat(args)
	case cli.CmdHistory:
		err = cli.HandleHistory(args)
	case cli.CmdAlias:
		err = cli.HandleAlias(args)
	case cli.CmdJournal:
		err = cli.HandleJournal(args)
	case cli.CmdConfig:
		err = cli.HandleConfig(args)
	case cli.CmdVersion:
		cli.PrintVersion()
	case cli.CmdHelp:
		cli.PrintUsage()
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// runTUI starts the full-screen chat interface.
func runTUI(args cli.Args) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	modelName := resolveModel(cfg, args)
	client := newCompleter(cfg, modelName)
	mode := streamMode(cfg)

	var store chat.Store
	if cfg.History.Enabled {
		path, err := cfg.HistoryPath()
		if err == nil {
			history, err := storage.Open(path)
			if err == nil {
				history.MaxSessions = cfg.History.MaxSessions
				defer history.Close()
				store = history
			} else {
				fmt.Fprintf(os.Stderr, "warning: history disabled: %v\n", err)
			}
		}
	}

	m := chat.New(chat.Options{
		Completer:     client,
		Mode:          mode,
		Store:         store,
		ModelName:     modelName,
		Theme:         cfg.UI.Theme,
		SyntaxStyle:   cfg.UI.SyntaxStyle,
		ThrottleBytes: cfg.UI.ThrottleBytes,
		ThrottleDelay: time.Duration(cfg.UI.ThrottleMs) * time.Millisecond,
	})

	program := tea.NewProgram(m, tea.WithAltScreen())

	// Hot-reload: config edits land in the running session as a reload
	// message. The TUI keeps working on the old config if watching fails.
	if path, err := config.ConfigPath(); err == nil {
		watcher, err := config.Watch(path, func(next *config.Config) {
			name := resolveModel(next, args)
			program.Send(chat.ConfigReloadedMsg{
				Completer:     newCompleter(next, name),
				Mode:          streamMode(next),
				ModelName:     name,
				ThrottleBytes: next.UI.ThrottleBytes,
				ThrottleDelay: time.Duration(next.UI.ThrottleMs) * time.Millisecond,
			})
		})
		if err == nil {
			defer watcher.Close()
		}
	}

	_, err = program.Run()
	return err
}

// resolveModel picks the model name, letting the -m flag win over config.
func resolveModel(cfg *config.Config, args cli.Args) string {
	if args.Model != "" {
		return args.Model
	}
	return cfg.Provider.Model
}

// newCompleter builds a completion client from the given config.
func newCompleter(cfg *config.Config, modelName string) *provider.Client {
	return provider.NewClient(provider.Config{
		BaseURL:     cfg.Provider.BaseURL,
		APIKey:      cfg.Provider.APIKey,
		Model:       modelName,
		Temperature: cfg.Provider.Temperature,
		MaxTokens:   cfg.Provider.MaxTokens,
	})
}

func streamMode(cfg *config.Config) stream.Mode {
	if !cfg.Provider.Stream {
		return stream.ModeWhole
	}
	return stream.ModeStreaming
}
