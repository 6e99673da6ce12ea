// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/halvard/skribe/internal/model"
	"github.com/halvard/skribe/internal/render"
	"github.com/halvard/skribe/internal/ui/styles"
)

// =============================================================================
// MESSAGE BUBBLES
// =============================================================================

// bubbleOverhead is the horizontal space a bubble's border, padding, and
// margin consume around its content.
const bubbleOverhead = 10

// bubbleInnerWidth returns the content width available inside a bubble.
func bubbleInnerWidth(width int) int {
	w := width - bubbleOverhead
	if w < 10 {
		w = 10
	}
	return w
}

// bubbleRenderer lays out one message as a bordered bubble. User messages
// sit right-aligned in blue; assistant replies left-aligned in violet with
// full Markdown rendering; system notes centered in amber.
type bubbleRenderer struct {
	theme    *styles.Theme
	markdown *render.Renderer
}

func newBubbleRenderer(theme *styles.Theme, markdown *render.Renderer) *bubbleRenderer {
	return &bubbleRenderer{theme: theme, markdown: markdown}
}

// renderMessage renders one historical message at the given total width.
func (b *bubbleRenderer) renderMessage(msg model.Message, width int, selected bool) []string {
	inner := bubbleInnerWidth(width)

	var style lipgloss.Style
	var content string
	var align lipgloss.Position

	switch msg.Role {
	case model.RoleUser:
		// User text is shown verbatim, wrapped but never parsed.
		style = b.theme.UserBubble
		content = strings.Join(wrapPlain(msg.Content, inner), "\n")
		align = lipgloss.Right

	case model.RoleSystem:
		style = b.theme.SystemBubble
		content = strings.Join(wrapPlain(msg.Content, inner), "\n")
		align = lipgloss.Center

	default:
		style = b.theme.AssistantBubble
		content = strings.Join(b.markdown.Render(msg.Content, inner), "\n")
		align = lipgloss.Left
	}

	if selected {
		style = b.theme.SelectedBubble
	}

	bubble := style.MaxWidth(width).Render(content)
	placed := lipgloss.PlaceHorizontal(width, align, bubble)
	return strings.Split(placed, "\n")
}

// renderStreamingBubble wraps the in-progress reply's rendered lines in an
// assistant bubble. Called every redraw while streaming, so it does layout
// only; the Markdown work behind the lines is already cached.
func (b *bubbleRenderer) renderStreamingBubble(lines []string, width int) []string {
	bubble := b.theme.AssistantBubble.MaxWidth(width).Render(strings.Join(lines, "\n"))
	placed := lipgloss.PlaceHorizontal(width, lipgloss.Left, bubble)
	return strings.Split(placed, "\n")
}

// wrapPlain wraps text with no Markdown interpretation.
func wrapPlain(text string, width int) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if line == "" {
			out = append(out, "")
			continue
		}
		wrapped := lipgloss.NewStyle().Width(width).Render(line)
		out = append(out, strings.Split(wrapped, "\n")...)
	}
	return out
}
