// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/halvard/skribe/internal/alias"
	"github.com/halvard/skribe/internal/config"
	"github.com/halvard/skribe/internal/model"
	"github.com/halvard/skribe/internal/provider"
	"github.com/halvard/skribe/internal/storage"
)

// =============================================================================
// INPUT HISTORY
// =============================================================================

// lineReader wraps liner with a persistent history file, giving the REPL
// arrow-key history and line editing.
type lineReader struct {
	line        *liner.State
	historyFile string
}

func newLineReader() *lineReader {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	dir, err := config.ConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	r := &lineReader{
		line:        line,
		historyFile: filepath.Join(dir, "chat_history"),
	}
	if f, err := os.Open(r.historyFile); err == nil {
		r.line.ReadHistory(f)
		f.Close()
	}
	return r
}

func (r *lineReader) read(prompt string) (string, error) {
	input, err := r.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		r.line.AppendHistory(input)
	}
	return input, nil
}

func (r *lineReader) close() {
	if err := config.EnsureConfigDir(); err == nil {
		if f, err := os.OpenFile(r.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600); err == nil {
			r.line.WriteHistory(f)
			f.Close()
		}
	}
	r.line.Close()
}

// =============================================================================
// REPL
// =============================================================================

const replHelp = `Commands:
  /new          Start a fresh session
  /save         Save the session to history now
  /model NAME   Switch model for this session
  /help         Show this help
  /quit         Save and exit (also Ctrl-D)

@name expands a prompt alias, e.g. "@explain func main() {}".`

// HandleChat runs the interactive line-mode chat loop.
func HandleChat(args Args) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	modelName := cfg.Provider.Model
	if args.Model != "" {
		modelName = args.Model
	}

	client := provider.NewClient(provider.Config{
		BaseURL:     cfg.Provider.BaseURL,
		APIKey:      cfg.Provider.APIKey,
		Model:       modelName,
		Temperature: cfg.Provider.Temperature,
		MaxTokens:   cfg.Provider.MaxTokens,
	})

	var history *storage.History
	if cfg.History.Enabled {
		if path, err := cfg.HistoryPath(); err == nil {
			if h, err := storage.Open(path); err == nil {
				h.MaxSessions = cfg.History.MaxSessions
				history = h
				defer h.Close()
			} else if !args.Quiet {
				fmt.Fprintf(os.Stderr, "%s history disabled: %v\n", warningStyle.Render("[!]"), err)
			}
		}
	}

	var aliases *alias.Store
	if path, err := cfg.AliasPath(); err == nil {
		aliases = alias.NewStore(path)
	}

	reader := newLineReader()
	defer reader.close()

	session := model.NewSession(modelName)
	ctx := context.Background()

	if !args.Quiet {
		fmt.Println(welcomeStyle.Render("skribe chat") + infoStyle.Render("  ("+modelName+")"))
		fmt.Println(infoStyle.Render("Type /help for commands, /quit to exit."))
		fmt.Println()
	}

	saveSession := func() {
		if history == nil || session.IsEmpty() {
			return
		}
		if err := history.SaveSession(ctx, session); err != nil && !args.Quiet {
			fmt.Fprintf(os.Stderr, "%s save failed: %v\n", warningStyle.Render("[!]"), err)
		}
	}

	for {
		input, err := reader.read(promptStyle.Render("> "))
		if errors.Is(err, liner.ErrPromptAborted) {
			continue
		}
		if err != nil { // io.EOF on Ctrl-D
			break
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		// Slash commands.
		if strings.HasPrefix(input, "/") {
			cmd, arg, _ := strings.Cut(input[1:], " ")
			switch cmd {
			case "quit", "exit", "q":
				saveSession()
				return nil
			case "new":
				saveSession()
				session = model.NewSession(modelName)
				fmt.Println(commandStyle.Render("Started a new session."))
			case "save":
				saveSession()
				fmt.Println(commandStyle.Render("Session saved."))
			case "model":
				if arg == "" {
					fmt.Println(infoStyle.Render("Current model: " + modelName))
					break
				}
				modelName = strings.TrimSpace(arg)
				client = provider.NewClient(provider.Config{
					BaseURL:     cfg.Provider.BaseURL,
					APIKey:      cfg.Provider.APIKey,
					Model:       modelName,
					Temperature: cfg.Provider.Temperature,
					MaxTokens:   cfg.Provider.MaxTokens,
				})
				session.Model = modelName
				fmt.Println(commandStyle.Render("Switched to " + modelName))
			case "help":
				fmt.Println(replHelp)
			default:
				fmt.Println(warningStyle.Render("Unknown command: /" + cmd))
			}
			continue
		}

		// Alias expansion.
		if strings.HasPrefix(input, "@") && aliases != nil {
			expanded, err := aliases.Expand(strings.TrimPrefix(input, "@"))
			if err != nil {
				fmt.Println(warningStyle.Render(err.Error()))
				continue
			}
			input = expanded
		}

		session.AppendUser(input)

		fmt.Println()
		reply, err := streamReply(ctx, client, session.History())
		fmt.Println()
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s %v\n", errorStyle.Render("[error]"), err)
			// Drop the failed turn so retries resend a clean history.
			session.Messages = session.Messages[:session.Len()-1]
			continue
		}

		session.AppendAssistant(reply)
		saveSession()

		if !args.NoLog {
			logExchange(cfg, args.Quiet, input, reply)
		}
		fmt.Println()
	}

	saveSession()
	return nil
}

// streamReply sends the history and prints tokens as they arrive,
// returning the complete reply.
func streamReply(ctx context.Context, client *provider.Client, history []model.Message) (string, error) {
	messages := make([]provider.ChatMessage, 0, len(history))
	for _, msg := range history {
		messages = append(messages, provider.ChatMessage{
			Role:    msg.Role.String(),
			Content: msg.Content,
		})
	}

	var sb strings.Builder
	err := client.ChatStream(ctx, messages, func(chunk provider.StreamChunk) {
		token := chunk.GetContent()
		sb.WriteString(token)
		fmt.Print(token)
	})
	if err != nil {
		return "", err
	}
	return sb.String(), nil
}
