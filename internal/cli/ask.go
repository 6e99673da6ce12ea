// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/halvard/skribe/internal/alias"
	"github.com/halvard/skribe/internal/config"
	"github.com/halvard/skribe/internal/journal"
	"github.com/halvard/skribe/internal/provider"
)

// HandleAsk sends a single question and prints the reply.
//
// The question comes from the positional arguments, with piped stdin
// appended when present. A leading @name expands a prompt alias. On a TTY
// the reply is collected and rendered as markdown; when piped, tokens
// stream through verbatim.
func HandleAsk(args Args) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	question := strings.TrimSpace(args.Query)

	// Piped input becomes part of the question.
	if !IsStdinTTY() {
		data, err := io.ReadAll(os.Stdin)
		if err == nil && len(data) > 0 {
			piped := strings.TrimSpace(string(data))
			if question == "" {
				question = piped
			} else {
				question = question + "\n\n" + piped
			}
		}
	}

	if question == "" {
		return fmt.Errorf("no question provided; usage: skribe ask \"your question\"")
	}

	// @name expands a prompt alias: skribe ask @explain "func main() {}"
	if strings.HasPrefix(question, "@") {
		path, err := cfg.AliasPath()
		if err != nil {
			return err
		}
		expanded, err := alias.NewStore(path).Expand(strings.TrimPrefix(question, "@"))
		if err != nil {
			return err
		}
		question = expanded
	}

	model := cfg.Provider.Model
	if args.Model != "" {
		model = args.Model
	}

	client := provider.NewClient(provider.Config{
		BaseURL:     cfg.Provider.BaseURL,
		APIKey:      cfg.Provider.APIKey,
		Model:       model,
		Temperature: cfg.Provider.Temperature,
		MaxTokens:   cfg.Provider.MaxTokens,
	})

	messages := []provider.ChatMessage{provider.NewUserMessage(question)}

	useMarkdown := IsStdoutTTY() && !args.Plain
	ctx := context.Background()

	var reply string
	if cfg.Provider.Stream && !useMarkdown {
		// Stream tokens straight through for pipes.
		var sb strings.Builder
		err = client.ChatStream(ctx, messages, func(chunk provider.StreamChunk) {
			token := chunk.GetContent()
			sb.WriteString(token)
			fmt.Print(token)
		})
		if err != nil {
			return err
		}
		fmt.Println()
		reply = sb.String()
	} else if cfg.Provider.Stream {
		// Collect the stream, then render once for proper formatting.
		var sb strings.Builder
		err = client.ChatStream(ctx, messages, func(chunk provider.StreamChunk) {
			sb.WriteString(chunk.GetContent())
		})
		if err != nil {
			return err
		}
		reply = sb.String()
		fmt.Print(renderMarkdown(newMarkdownRenderer(TerminalWidth()), reply))
	} else {
		reply, err = client.Complete(ctx, messages)
		if err != nil {
			return err
		}
		if useMarkdown {
			fmt.Print(renderMarkdown(newMarkdownRenderer(TerminalWidth()), reply))
		} else {
			fmt.Println(reply)
		}
	}

	if !args.NoLog {
		logExchange(cfg, args.Quiet, question, reply)
	}
	return nil
}

// logExchange appends a prompt/reply pair to the daily journal. A failed
// write warns on stderr instead of aborting the conversation.
func logExchange(cfg *config.Config, quiet bool, prompt, reply string) {
	dir, err := cfg.JournalDir()
	if err != nil {
		return
	}
	if err := journal.New(dir).AppendExchange(prompt, reply); err != nil && !quiet {
		fmt.Fprintf(os.Stderr, "%s journal: %v\n", warningStyle.Render("[!]"), err)
	}
}
