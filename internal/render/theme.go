// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/halvard/skribe/internal/ui/styles"
)

// Theme bundles the lipgloss styles the renderer applies to Markdown
// elements. It is plain data: two renders with the same theme value are
// guaranteed to produce the same bytes.
type Theme struct {
	Text        lipgloss.Style
	Bold        lipgloss.Style
	Italic      lipgloss.Style
	InlineCode  lipgloss.Style
	Heading     lipgloss.Style
	Bullet      lipgloss.Style
	Quote       lipgloss.Style
	Placeholder lipgloss.Style

	CodeBlock   lipgloss.Style
	CodeBadge   lipgloss.Style
	CodeLineNum lipgloss.Style

	// ChromaStyle names the chroma syntax-highlighting style for fenced
	// code blocks.
	ChromaStyle string

	// LineNumbers enables a gutter in fenced code blocks. Off for chat
	// bubbles where width is scarce.
	LineNumbers bool
}

// DefaultTheme returns the standard chat theme built on the shared palette.
func DefaultTheme() Theme {
	return Theme{
		Text:        lipgloss.NewStyle().Foreground(styles.TextPrimary),
		Bold:        lipgloss.NewStyle().Foreground(styles.TextPrimary).Bold(true),
		Italic:      lipgloss.NewStyle().Foreground(styles.TextPrimary).Italic(true),
		InlineCode:  lipgloss.NewStyle().Background(styles.SurfaceDim).Foreground(styles.Cyan).Padding(0, 1),
		Heading:     lipgloss.NewStyle().Foreground(styles.Purple).Bold(true),
		Bullet:      lipgloss.NewStyle().Foreground(styles.Cyan),
		Quote:       lipgloss.NewStyle().Foreground(styles.TextSecondary).Italic(true),
		Placeholder: lipgloss.NewStyle().Foreground(styles.TextMuted).Italic(true),

		CodeBlock: lipgloss.NewStyle().
			Background(styles.SurfaceDim).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(styles.Overlay).
			Padding(0, 1),
		CodeBadge: lipgloss.NewStyle().
			Foreground(styles.TextMuted).
			Background(styles.OverlayDim).
			Padding(0, 1).
			Bold(true),
		CodeLineNum: lipgloss.NewStyle().
			Foreground(styles.TextMuted).
			Width(4).
			Align(lipgloss.Right).
			MarginRight(1),

		ChromaStyle: "monokai",
	}
}
