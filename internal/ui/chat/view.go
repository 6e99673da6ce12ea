// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/halvard/skribe/internal/ui/components"
)

// =============================================================================
// VIEW
// =============================================================================

// View assembles the full frame: header, transcript, streaming indicator,
// input, status bar, and any toast overlay.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Starting..."
	}

	var mode string
	switch m.mode {
	case ModeBrowse:
		mode = "browse"
	case ModeHelp:
		return m.renderHelp()
	default:
		mode = "chat"
	}

	sections := []string{
		m.renderHeader(mode),
		m.viewport.View(),
	}
	if m.toasts.HasToasts() {
		sections = append(sections, components.RenderToastStack(m.toasts.Toasts(), m.width, 0))
	}
	sections = append(sections,
		m.renderStreamStatus(),
		m.renderInput(),
		m.renderStatusBar(),
	)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderHeader(mode string) string {
	title := m.theme.HeaderTitle.Render("skribe")
	session := m.session.Title
	if session == "" {
		session = "new conversation"
	}
	right := m.theme.ShortcutDesc.Render(session + "  [" + mode + "]")

	gap := m.width - lipgloss.Width(title) - lipgloss.Width(right) - 4
	if gap < 1 {
		gap = 1
	}
	return m.theme.Header.Width(m.width).Render(title + strings.Repeat(" ", gap) + right)
}

// renderStreamStatus shows the spinner and elapsed time while a reply is
// in flight, or nothing when idle.
func (m Model) renderStreamStatus() string {
	if !m.controller.Active() {
		return ""
	}

	label := "Sending..."
	if !m.firstChunk.IsZero() {
		label = "Streaming..."
	}
	elapsed := m.controller.Elapsed().Round(100 * time.Millisecond)

	return " " + m.spin.View() + " " +
		m.theme.ThinkingText.Render(label) + " " +
		m.theme.ThinkingTime.Render(elapsed.String())
}

func (m Model) renderInput() string {
	return m.theme.InputContainer.Width(m.width - 2).Render(m.input.View())
}

func (m Model) renderStatusBar() string {
	var parts []string
	for _, b := range m.keys.ShortHelp() {
		h := b.Help()
		parts = append(parts,
			m.theme.ShortcutKey.Render(h.Key)+" "+m.theme.ShortcutDesc.Render(h.Desc))
	}
	left := strings.Join(parts, "  ")

	state := "idle"
	if m.controller.Active() {
		state = "streaming"
	}
	right := m.theme.StatusState.Render(state) + " " +
		m.theme.ShortcutDesc.Render(fmt.Sprintf("%d msgs", m.session.Len()))

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	return m.theme.StatusBar.Width(m.width).Render(left + strings.Repeat(" ", gap) + right)
}

// renderHelp is the full-screen key reference shown in ModeHelp.
func (m Model) renderHelp() string {
	var b strings.Builder
	b.WriteString(m.theme.HeaderTitle.Render("Keyboard shortcuts"))
	b.WriteString("\n\n")

	for _, row := range m.keys.FullHelp() {
		for _, binding := range row {
			h := binding.Help()
			b.WriteString(fmt.Sprintf("  %s  %s\n",
				m.theme.ShortcutKey.Render(fmt.Sprintf("%-12s", h.Key)),
				m.theme.ShortcutDesc.Render(h.Desc)))
		}
		b.WriteString("\n")
	}
	b.WriteString(m.theme.ShortcutDesc.Render("  Press Esc to return"))

	box := m.theme.InfoBox.Render(b.String())
	if m.width > 0 && m.height > 0 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
	}
	return box
}
