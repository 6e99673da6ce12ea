// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"strings"

	"github.com/halvard/skribe/internal/alias"
	"github.com/halvard/skribe/internal/config"
)

// HandleAlias implements the "alias" command.
//
// Subcommands:
//
//	list               List aliases (default)
//	set NAME TEMPLATE  Create or replace an alias ({} marks the argument)
//	show NAME          Print one alias template
//	rm NAME            Delete an alias
func HandleAlias(args Args) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	path, err := cfg.AliasPath()
	if err != nil {
		return err
	}
	store := alias.NewStore(path)

	switch args.Subcommand {
	case "", "list", "ls":
		aliases, err := store.List()
		if err != nil {
			return err
		}
		if len(aliases) == 0 {
			fmt.Println(infoStyle.Render("No aliases defined. Try: skribe alias set explain \"Explain this code:\\n{}\""))
			return nil
		}
		for _, a := range aliases {
			fmt.Printf("%s  %s\n", commandStyle.Render("@"+a.Name), firstLine(a.Template))
		}
		return nil

	case "set":
		if len(args.Rest) < 2 {
			return fmt.Errorf("usage: skribe alias set NAME TEMPLATE")
		}
		name := args.Rest[0]
		template := strings.ReplaceAll(strings.Join(args.Rest[1:], " "), `\n`, "\n")
		if err := store.Set(name, template); err != nil {
			return err
		}
		fmt.Println(commandStyle.Render("Saved @" + name))
		return nil

	case "show":
		if len(args.Rest) < 1 {
			return fmt.Errorf("usage: skribe alias show NAME")
		}
		a, err := store.Get(args.Rest[0])
		if err != nil {
			return err
		}
		fmt.Println(a.Template)
		return nil

	case "rm", "delete":
		if len(args.Rest) < 1 {
			return fmt.Errorf("usage: skribe alias rm NAME")
		}
		if err := store.Delete(args.Rest[0]); err != nil {
			return err
		}
		fmt.Println(commandStyle.Render("Removed @" + args.Rest[0]))
		return nil

	default:
		return fmt.Errorf("unknown alias subcommand %q", args.Subcommand)
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " ..."
	}
	return s
}
