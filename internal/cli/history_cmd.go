// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/halvard/skribe/internal/config"
	"github.com/halvard/skribe/internal/storage"
)

// HandleHistory implements the "history" command.
//
// Subcommands:
//
//	list             List saved sessions (default)
//	show ID          Print one session
//	search QUERY     Find sessions by title or content
//	delete ID        Remove one session
//	clear            Remove all sessions
//	export ID        Print one session as Markdown
func HandleHistory(args Args) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	path, err := cfg.HistoryPath()
	if err != nil {
		return err
	}
	history, err := storage.Open(path)
	if err != nil {
		return err
	}
	defer history.Close()

	ctx := context.Background()

	switch args.Subcommand {
	case "", "list", "ls":
		return printSessionList(ctx, history)

	case "show":
		id, err := resolveSessionID(ctx, history, args.Rest)
		if err != nil {
			return err
		}
		s, err := history.GetSession(ctx, id)
		if err != nil {
			return err
		}
		for _, msg := range s.History() {
			fmt.Printf("%s %s\n\n%s\n\n",
				promptStyle.Render(msg.Role.DisplayName()+":"),
				infoStyle.Render(msg.Timestamp.Format("2006-01-02 15:04")),
				msg.Content)
		}
		return nil

	case "search":
		query := strings.Join(args.Rest, " ")
		if query == "" {
			return fmt.Errorf("usage: skribe history search QUERY")
		}
		metas, err := history.SearchSessions(ctx, query)
		if err != nil {
			return err
		}
		printSessionTable(metas)
		return nil

	case "delete", "rm":
		id, err := resolveSessionID(ctx, history, args.Rest)
		if err != nil {
			return err
		}
		if err := history.DeleteSession(ctx, id); err != nil {
			return err
		}
		fmt.Println(commandStyle.Render("Deleted " + id))
		return nil

	case "clear":
		if err := history.Clear(ctx); err != nil {
			return err
		}
		fmt.Println(commandStyle.Render("History cleared."))
		return nil

	case "export":
		id, err := resolveSessionID(ctx, history, args.Rest)
		if err != nil {
			return err
		}
		s, err := history.GetSession(ctx, id)
		if err != nil {
			return err
		}
		fmt.Print(exportMarkdown(s))
		return nil

	default:
		return fmt.Errorf("unknown history subcommand %q", args.Subcommand)
	}
}

func printSessionList(ctx context.Context, history *storage.History) error {
	metas, err := history.ListSessions(ctx)
	if err != nil {
		return err
	}
	printSessionTable(metas)
	return nil
}

func printSessionTable(metas []storage.SessionMeta) {
	if len(metas) == 0 {
		fmt.Println(infoStyle.Render("No sessions found."))
		return
	}
	fmt.Printf("%-10s  %-16s  %4s  %s\n", "ID", "UPDATED", "MSGS", "TITLE")
	for _, meta := range metas {
		fmt.Printf("%-10s  %-16s  %4d  %s\n",
			shortID(meta.ID),
			meta.UpdatedAt.Format("2006-01-02 15:04"),
			meta.MessageCount,
			meta.Title)
	}
}

// resolveSessionID accepts full UUIDs or unambiguous short prefixes.
func resolveSessionID(ctx context.Context, history *storage.History, rest []string) (string, error) {
	if len(rest) == 0 {
		return "", fmt.Errorf("session ID required")
	}
	want := rest[0]

	metas, err := history.ListSessions(ctx)
	if err != nil {
		return "", err
	}

	var match string
	for _, meta := range metas {
		if meta.ID == want {
			return want, nil
		}
		if strings.HasPrefix(meta.ID, want) {
			if match != "" {
				return "", fmt.Errorf("session ID %q is ambiguous", want)
			}
			match = meta.ID
		}
	}
	if match == "" {
		return "", storage.ErrSessionNotFound
	}
	return match, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
