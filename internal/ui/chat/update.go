// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/halvard/skribe/internal/model"
	"github.com/halvard/skribe/internal/provider"
	"github.com/halvard/skribe/internal/stream"
	"github.com/halvard/skribe/internal/ui/components"
)

// =============================================================================
// UPDATE LOOP
// =============================================================================

// Update is the single-threaded event loop: every stream event, key press,
// and timer lands here, one message at a time.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case StreamTickMsg:
		return m.handleStreamTick(msg.Time)

	case spinner.TickMsg:
		if !m.controller.Active() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case components.ToastTickMsg:
		m.toasts.Tick()
		if m.toasts.HasToasts() {
			return m, components.ToastTickCmd()
		}
		return m, nil

	case SessionSavedMsg:
		return m, nil

	case SessionSaveFailedMsg:
		m.toasts.AddError("Could not save history: " + msg.Err.Error())
		return m, nil

	case ConfigReloadedMsg:
		return m.handleConfigReload(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleResize re-fits the layout. Width changes invalidate every cached
// bubble implicitly: the per-entry width fingerprint no longer matches.
func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.theme.SetSize(msg.Width, msg.Height)

	viewportHeight := msg.Height - chromeHeight
	if viewportHeight < 3 {
		viewportHeight = 3
	}
	if !m.ready {
		m.viewport = viewport.New(msg.Width, viewportHeight)
		m.ready = true
	} else {
		m.viewport.Width = msg.Width
		m.viewport.Height = viewportHeight
	}
	m.input.Width = msg.Width - 6

	m.refreshViewport()
	return m, nil
}

// handleConfigReload swaps the collaborators a config change affects. A
// reply in flight finishes with the client and settings it started with;
// only subsequent requests see the new ones.
func (m Model) handleConfigReload(msg ConfigReloadedMsg) (tea.Model, tea.Cmd) {
	if msg.Completer != nil {
		m.controller.SetClient(msg.Completer)
	}
	m.controller.SetMode(msg.Mode)
	m.throttle = stream.NewThrottle(msg.ThrottleBytes, msg.ThrottleDelay)
	if msg.ModelName != "" {
		m.session.Model = msg.ModelName
	}
	m.toasts.AddStatus("Configuration reloaded")
	return m, components.ToastTickCmd()
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		m.quitting = true
		return m, tea.Quit
	}

	switch m.mode {
	case ModeHelp:
		return m.handleHelpKey(msg)
	case ModeBrowse:
		return m.handleBrowseKey(msg)
	default:
		return m.handleChatKey(msg)
	}
}

func (m Model) handleHelpKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Help) || key.Matches(msg, m.keys.Dismiss) {
		m.mode = ModeChat
	}
	return m, nil
}

func (m Model) handleBrowseKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Dismiss), key.Matches(msg, m.keys.Browse):
		m.mode = ModeChat
		m.selection = -1
		m.scroll = ScrollBottom()

	case key.Matches(msg, m.keys.Up):
		if m.selection > 0 {
			m.selection--
		}

	case key.Matches(msg, m.keys.Down):
		if m.selection < m.session.Len()-1 {
			m.selection++
		}

	case key.Matches(msg, m.keys.Top):
		m.selection = 0

	case key.Matches(msg, m.keys.Bottom):
		m.selection = m.session.Len() - 1
	}

	m.refreshViewport()
	m.scrollSelectionIntoView()
	return m, nil
}

func (m Model) handleChatKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Help):
		m.mode = ModeHelp
		return m, nil

	case key.Matches(msg, m.keys.Browse):
		if m.session.IsEmpty() {
			return m, nil
		}
		m.mode = ModeBrowse
		m.selection = m.session.Len() - 1
		m.refreshViewport()
		return m, nil

	case key.Matches(msg, m.keys.Dismiss):
		if m.toasts.HasToasts() {
			m.toasts.Clear()
		}
		return m, nil

	case key.Matches(msg, m.keys.PageUp):
		m.viewport.HalfViewUp()
		m.scroll = ScrollAt(m.viewport.YOffset)
		return m, nil

	case key.Matches(msg, m.keys.PageDown):
		m.viewport.HalfViewDown()
		if m.viewport.AtBottom() {
			m.scroll = ScrollBottom()
		} else {
			m.scroll = ScrollAt(m.viewport.YOffset)
		}
		return m, nil

	case key.Matches(msg, m.keys.Top):
		m.scroll = ScrollTop()
		m.viewport.GotoTop()
		return m, nil

	case key.Matches(msg, m.keys.Bottom):
		m.scroll = ScrollBottom()
		m.viewport.GotoBottom()
		return m, nil

	case key.Matches(msg, m.keys.Submit):
		return m.submit()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// =============================================================================
// SUBMISSION
// =============================================================================

// submit sends the typed prompt. One request at a time: while a reply is
// in flight the attempt surfaces as a toast instead of queueing.
func (m Model) submit() (tea.Model, tea.Cmd) {
	content := strings.TrimSpace(m.input.Value())
	if content == "" {
		return m, nil
	}
	if m.controller.Active() {
		m.toasts.AddError("A reply is already in progress")
		return m, components.ToastTickCmd()
	}

	m.session.AppendUser(content)
	m.input.Reset()

	if err := m.controller.Begin(providerHistory(m.session)); err != nil {
		if errors.Is(err, stream.ErrStreamActive) {
			m.toasts.AddError("A reply is already in progress")
		} else {
			m.toasts.AddError(err.Error())
		}
		m.refreshViewport()
		return m, components.ToastTickCmd()
	}

	now := time.Now()
	m.sendStarted = now
	m.firstChunk = time.Time{}
	m.throttle.Reset(now)
	m.cache.StartStream()
	m.scroll = ScrollBottom()
	m.refreshViewport()

	return m, tea.Batch(streamTickCmd(), m.spin.Tick)
}

// providerHistory converts the session to the wire message format.
func providerHistory(s *model.Session) []provider.ChatMessage {
	out := make([]provider.ChatMessage, 0, s.Len())
	for _, msg := range s.History() {
		out = append(out, provider.ChatMessage{Role: msg.Role.String(), Content: msg.Content})
	}
	return out
}

// =============================================================================
// STREAM POLLING
// =============================================================================

// handleStreamTick drains pending stream events, applies the redraw
// throttle, and re-arms the tick while the request is still in flight.
func (m Model) handleStreamTick(now time.Time) (tea.Model, tea.Cmd) {
	events := m.controller.Poll()

	var (
		transitioned bool
		cmds         []tea.Cmd
	)

	for _, ev := range events {
		switch ev.Kind {
		case stream.EventChunk:
			if m.firstChunk.IsZero() {
				m.firstChunk = now
				transitioned = true
			}

		case stream.EventDone:
			m.finishReply()
			transitioned = true
			if cmd := m.saveSessionCmd(); cmd != nil {
				cmds = append(cmds, cmd)
			}

		case stream.EventError:
			m.cache.EndStream()
			m.toasts.AddError(ev.Err.Error())
			transitioned = true
			cmds = append(cmds, components.ToastTickCmd())
		}
	}

	needsRedraw := transitioned
	if !needsRedraw && m.controller.Active() {
		needsRedraw = m.throttle.ShouldDraw(m.controller.Len(), now)
	}
	if needsRedraw {
		m.refreshViewport()
		m.throttle.MarkDrawn(m.controller.Len(), now)
	}

	if m.controller.Active() {
		cmds = append(cmds, streamTickCmd())
	}
	if len(cmds) == 0 {
		return m, nil
	}
	return m, tea.Batch(cmds...)
}

// finishReply turns the completed stream into a permanent message.
func (m *Model) finishReply() {
	content := m.controller.Snapshot()
	m.cache.EndStream()

	msg := model.NewAssistantMessage(content)
	if !m.firstChunk.IsZero() {
		msg.TTFT = m.firstChunk.Sub(m.sendStarted)
	}
	if !m.sendStarted.IsZero() {
		msg.TotalDuration = time.Since(m.sendStarted)
	}
	m.session.Append(msg)
}

// =============================================================================
// VIEWPORT REFRESH
// =============================================================================

// chromeHeight is the vertical space used by header, input, and status bar.
const chromeHeight = 6

// refreshViewport rebuilds the transcript content from the frame cache and
// applies the scroll anchor.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}

	frame := m.cache.Frame(
		m.session.History(),
		m.controller.Active(),
		m.controller.Len(),
		m.controller.Snapshot,
		m.contentWidth(),
		m.selection,
	)
	m.viewport.SetContent(strings.Join(frame, "\n"))

	m.viewport.SetYOffset(m.scroll.Apply(len(frame), m.viewport.Height))
}

// scrollSelectionIntoView keeps the browse cursor visible.
func (m *Model) scrollSelectionIntoView() {
	if m.selection < 0 || !m.ready {
		return
	}
	// Approximate: jump the viewport proportionally to the selection's
	// position in the transcript.
	total := m.session.Len()
	if total == 0 {
		return
	}
	lineCount := m.viewport.TotalLineCount()
	target := lineCount * m.selection / total
	m.scroll = ScrollAt(target)
	m.viewport.SetYOffset(m.scroll.Apply(lineCount, m.viewport.Height))
}
