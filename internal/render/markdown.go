// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import "strings"

// placeholderText stands in for a reply that has no bytes yet.
const placeholderText = "..."

// Renderer converts Markdown text into styled lines. It holds only the
// theme; Render has no other state, so output depends on nothing but its
// arguments.
type Renderer struct {
	theme Theme
}

// New returns a renderer for the given theme.
func New(theme Theme) *Renderer {
	return &Renderer{theme: theme}
}

// Theme returns the renderer's theme.
func (r *Renderer) Theme() Theme {
	return r.theme
}

// Render converts Markdown text into lines no wider than width.
//
// Empty text renders as a single placeholder line. Malformed input never
// fails: anything the line classifier does not recognize is wrapped as
// plain text, and a panic anywhere in the pipeline degrades the whole
// text to raw line wrapping.
//
// Rendering a frozen prefix (ending on a FindStableBoundary offset) and
// its tail separately yields exactly the lines of rendering the whole
// text at once, which is what the chat cache relies on.
func (r *Renderer) Render(text string, width int) (lines []string) {
	if width < minContentWidth {
		width = minContentWidth
	}
	if text == "" {
		return []string{r.theme.Placeholder.Render(placeholderText)}
	}

	defer func() {
		if recover() != nil {
			lines = wrapRaw(text, width)
		}
	}()

	var (
		inFence  bool
		language string
		code     []string
	)

	for _, line := range splitLines(text) {
		if strings.HasPrefix(line, "```") {
			if inFence {
				lines = append(lines, r.renderCodeBlock(language, code, width)...)
				inFence, language, code = false, "", nil
			} else {
				inFence = true
				language = strings.TrimSpace(strings.TrimPrefix(line, "```"))
			}
			continue
		}
		if inFence {
			code = append(code, line)
			continue
		}
		lines = append(lines, r.renderLine(line, width)...)
	}

	// Open fence at end of text: show what has arrived so far.
	if inFence {
		lines = append(lines, r.renderCodeBlock(language, code, width)...)
	}

	return lines
}

// renderLine classifies one source line and renders it wrapped to width.
func (r *Renderer) renderLine(line string, width int) []string {
	if strings.TrimSpace(line) == "" {
		return []string{""}
	}

	switch {
	case strings.HasPrefix(line, "#"):
		level := 0
		for level < len(line) && line[level] == '#' {
			level++
		}
		if level <= 6 && level < len(line) && line[level] == ' ' {
			return wrapLine(r.theme.Heading.Render(strings.TrimSpace(line[level:])), width)
		}

	case strings.HasPrefix(line, "- ") || strings.HasPrefix(line, "* "):
		bullet := r.theme.Bullet.Render("•") + " "
		return wrapLine(bullet+r.renderInline(line[2:]), width)

	case strings.HasPrefix(line, "> "):
		mark := r.theme.Quote.Render("┃") + " "
		return wrapLine(mark+r.theme.Quote.Render(line[2:]), width)
	}

	return wrapLine(r.renderInline(line), width)
}
