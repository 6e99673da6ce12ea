// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/ansi"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/reflow/wrap"
)

// minContentWidth is the floor below which wrapping degenerates; narrower
// requests are clamped rather than rejected.
const minContentWidth = 4

// wrapLine word-wraps one styled line to the given display width. Words
// longer than the width are hard-broken so no output line ever overflows.
// Both passes are ANSI-aware, so inline styling survives the wrap.
func wrapLine(s string, width int) []string {
	if width < minContentWidth {
		width = minContentWidth
	}
	if s == "" {
		return []string{""}
	}
	wrapped := wrap.String(wordwrap.String(s, width), width)
	return strings.Split(wrapped, "\n")
}

// wrapRaw wraps text line by line with no Markdown interpretation at all.
// This is the fallback when structured rendering cannot proceed.
func wrapRaw(text string, width int) []string {
	var out []string
	for _, line := range splitLines(text) {
		out = append(out, wrapLine(line, width)...)
	}
	return out
}

// splitLines splits on newlines without manufacturing a phantom empty line
// from a trailing newline. A frozen prefix always ends in "\n\n", so this
// keeps prefix-render plus tail-render identical to a whole-text render.
func splitLines(s string) []string {
	lines := strings.Split(s, "\n")
	if len(lines) > 1 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// VisibleWidth returns the display cell width of s, ignoring ANSI escape
// sequences.
func VisibleWidth(s string) int {
	return ansi.PrintableRuneWidth(s)
}

// Truncate shortens plain (unstyled) text to the given display width,
// appending tail when anything was cut.
func Truncate(s string, width int, tail string) string {
	if runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, tail)
}
