// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"time"

	"github.com/halvard/skribe/internal/config"
	"github.com/halvard/skribe/internal/journal"
)

// HandleJournal implements the "journal" command.
//
// Subcommands:
//
//	show [DATE]   Print one day's journal (default: today, DATE as YYYY-MM-DD)
//	days          List days with entries
func HandleJournal(args Args) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	dir, err := cfg.JournalDir()
	if err != nil {
		return err
	}
	j := journal.New(dir)

	switch args.Subcommand {
	case "", "show":
		day := time.Now()
		if len(args.Rest) > 0 {
			day, err = time.Parse("2006-01-02", args.Rest[0])
			if err != nil {
				return fmt.Errorf("invalid date %q, want YYYY-MM-DD", args.Rest[0])
			}
		}
		content, err := j.Read(day)
		if err != nil {
			return err
		}
		if content == "" {
			fmt.Println(infoStyle.Render("No journal entries for " + day.Format("2006-01-02") + "."))
			return nil
		}
		if IsStdoutTTY() && !args.Plain {
			fmt.Print(renderMarkdown(newMarkdownRenderer(TerminalWidth()), content))
		} else {
			fmt.Print(content)
		}
		return nil

	case "days":
		days, err := j.Days()
		if err != nil {
			return err
		}
		if len(days) == 0 {
			fmt.Println(infoStyle.Render("The journal is empty."))
			return nil
		}
		for _, day := range days {
			fmt.Println(day.Format("2006-01-02"))
		}
		return nil

	default:
		return fmt.Errorf("unknown journal subcommand %q", args.Subcommand)
	}
}
