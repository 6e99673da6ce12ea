// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/halvard/skribe/internal/model"
	"github.com/halvard/skribe/internal/render"
	"github.com/halvard/skribe/internal/stream"
	"github.com/halvard/skribe/internal/ui/components"
	"github.com/halvard/skribe/internal/ui/styles"
)

// =============================================================================
// VIEW MODES
// =============================================================================

// Mode is the closed set of chat view modes. Every dispatch on it is an
// exhaustive switch.
type Mode int

const (
	// ModeChat is the normal typing view.
	ModeChat Mode = iota
	// ModeBrowse moves a selection cursor through past messages.
	ModeBrowse
	// ModeHelp shows the key binding reference.
	ModeHelp
)

// =============================================================================
// COLLABORATORS
// =============================================================================

// Store persists finished sessions. Saving happens after a reply lands,
// off the render path.
type Store interface {
	SaveSession(ctx context.Context, session *model.Session) error
}

// Options configures a chat model.
type Options struct {
	Completer stream.Completer
	Mode      stream.Mode
	Store     Store // nil disables persistence

	ModelName    string
	SystemPrompt string

	// Theme forces the palette to "dark" or "light"; empty or "auto"
	// autodetects. SyntaxStyle names the chroma style for code blocks.
	Theme       string
	SyntaxStyle string

	// Redraw throttle; zero values take the defaults.
	ThrottleBytes int
	ThrottleDelay time.Duration
}

// =============================================================================
// MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat view. All of its state is
// owned by the update loop; only the stream controller's shared buffer is
// touched by another goroutine.
type Model struct {
	keys  KeyMap
	theme *styles.Theme

	session    *model.Session
	controller *stream.Controller
	throttle   *stream.Throttle
	cache      *FrameCache
	store      Store

	input    textinput.Model
	spin     spinner.Model
	viewport viewport.Model
	toasts   *components.ToastManager

	mode      Mode
	scroll    ScrollPosition
	selection int

	width  int
	height int
	ready  bool

	// Per-request timing for the message metadata.
	sendStarted time.Time
	firstChunk  time.Time

	quitting bool
}

// New creates a chat model wired to the given completion client.
func New(opts Options) Model {
	theme := styles.NewThemeVariant(opts.Theme)

	input := textinput.New()
	input.Placeholder = "Type a message..."
	input.Prompt = "> "
	input.PromptStyle = theme.InputPrompt
	input.PlaceholderStyle = theme.InputPlaceholder
	input.CharLimit = 8192
	input.Focus()

	spin := spinner.New()
	spin.Spinner = spinner.MiniDot
	spin.Style = theme.Spinner

	session := model.NewSession(opts.ModelName)
	if opts.SystemPrompt != "" {
		session.Append(model.NewSystemMessage(opts.SystemPrompt))
	}

	mdTheme := render.DefaultTheme()
	if opts.SyntaxStyle != "" {
		mdTheme.ChromaStyle = opts.SyntaxStyle
	}
	markdown := render.New(mdTheme)

	return Model{
		keys:       DefaultKeyMap(),
		theme:      theme,
		session:    session,
		controller: stream.NewController(opts.Completer, opts.Mode),
		throttle:   stream.NewThrottle(opts.ThrottleBytes, opts.ThrottleDelay),
		cache:      NewFrameCache(newBubbleRenderer(theme, markdown)),
		store:      opts.Store,
		input:      input,
		spin:       spin,
		toasts:     components.NewToastManager(),
		mode:       ModeChat,
		scroll:     ScrollBottom(),
		selection:  -1,
	}
}

// Init starts the input cursor blink.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Session exposes the conversation, mainly for the final transcript dump
// on exit.
func (m Model) Session() *model.Session {
	return m.session
}

// Streaming reports whether a reply is in flight.
func (m Model) Streaming() bool {
	return m.controller.Active()
}

// contentWidth is the width available to the transcript.
func (m Model) contentWidth() int {
	w := m.width - 2
	if w < 20 {
		w = 20
	}
	return w
}

// saveSessionCmd persists the session in the background. The command runs
// in a bubbletea goroutine, so it gets a deep copy: the live session stays
// owned by the update loop.
func (m Model) saveSessionCmd() tea.Cmd {
	if m.store == nil {
		return nil
	}
	session := m.session.Clone()
	store := m.store
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.SaveSession(ctx, session); err != nil {
			return SessionSaveFailedMsg{Err: err}
		}
		return SessionSavedMsg{}
	}
}
