// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"regexp"
	"strings"
	"testing"
)

var ansiSeq = regexp.MustCompile("\x1b\\[[0-9;]*m")

func stripANSI(s string) string {
	return ansiSeq.ReplaceAllString(s, "")
}

func joinPlain(lines []string) string {
	return stripANSI(strings.Join(lines, "\n"))
}

func TestRenderDeterministic(t *testing.T) {
	r := New(DefaultTheme())
	text := "# Title\n\nSome **bold** and `code`.\n\n```go\nfmt.Println(1)\n```\n\n- item one\n- item two"

	first := r.Render(text, 60)
	second := r.Render(text, 60)

	if len(first) != len(second) {
		t.Fatalf("line counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("line %d differs:\n%q\n%q", i, first[i], second[i])
		}
	}
}

func TestRenderEmptyShowsPlaceholder(t *testing.T) {
	r := New(DefaultTheme())

	lines := r.Render("", 40)
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1 placeholder line", len(lines))
	}
	if !strings.Contains(stripANSI(lines[0]), placeholderText) {
		t.Errorf("placeholder line = %q", lines[0])
	}
}

func TestRenderPlainTextPassesThrough(t *testing.T) {
	r := New(DefaultTheme())

	lines := r.Render("just ordinary text", 40)
	if got := joinPlain(lines); !strings.Contains(got, "just ordinary text") {
		t.Errorf("plain text lost: %q", got)
	}
}

func TestRenderRespectsWidth(t *testing.T) {
	r := New(DefaultTheme())
	text := "a reasonably long paragraph of prose that will certainly need to wrap " +
		"at narrow widths without ever producing an overlong line"

	for _, width := range []int{20, 40, 79} {
		for i, line := range r.Render(text, width) {
			if w := VisibleWidth(line); w > width {
				t.Errorf("width %d: line %d is %d cells: %q", width, i, w, line)
			}
		}
	}
}

func TestRenderCodeBlock(t *testing.T) {
	r := New(DefaultTheme())
	text := "intro\n\n```rust\nfn f(){}\n```"

	plain := joinPlain(r.Render(text, 60))
	if !strings.Contains(plain, "fn f(){}") {
		t.Errorf("code body missing from output:\n%s", plain)
	}
	if !strings.Contains(plain, "rust") {
		t.Errorf("language badge missing from output:\n%s", plain)
	}
	if strings.Contains(plain, "```") {
		t.Errorf("fence markers leaked into output:\n%s", plain)
	}
}

func TestRenderUnclosedFenceStillShowsCode(t *testing.T) {
	r := New(DefaultTheme())

	plain := joinPlain(r.Render("```python\nprint(42)", 60))
	if !strings.Contains(plain, "print(42)") {
		t.Errorf("unclosed fence body missing:\n%s", plain)
	}
}

func TestRenderInlineMarkers(t *testing.T) {
	r := New(DefaultTheme())

	plain := joinPlain(r.Render("some **bold** and *soft* and `raw` text", 80))
	for _, marker := range []string{"**", "*", "`"} {
		if strings.Contains(plain, marker) {
			t.Errorf("marker %q leaked into output: %q", marker, plain)
		}
	}
	for _, word := range []string{"bold", "soft", "raw"} {
		if !strings.Contains(plain, word) {
			t.Errorf("word %q missing from output: %q", word, plain)
		}
	}
}

func TestRenderUnclosedInlineMarkerIsLiteral(t *testing.T) {
	r := New(DefaultTheme())

	plain := joinPlain(r.Render("an unmatched `backtick here", 80))
	if !strings.Contains(plain, "`backtick") {
		t.Errorf("unmatched backtick not kept literal: %q", plain)
	}
}

func TestRenderHeadingAndList(t *testing.T) {
	r := New(DefaultTheme())

	plain := joinPlain(r.Render("## Section\n\n- first\n- second", 60))
	if !strings.Contains(plain, "Section") || strings.Contains(plain, "##") {
		t.Errorf("heading mis-rendered: %q", plain)
	}
	if !strings.Contains(plain, "• first") || !strings.Contains(plain, "• second") {
		t.Errorf("list items mis-rendered: %q", plain)
	}
}

// Rendering the frozen prefix and the volatile tail separately must be
// indistinguishable from rendering the whole text in one call.
func TestRenderSplitAtStableBoundaryMatchesWhole(t *testing.T) {
	texts := []string{
		"Hello **world**\n\n```rust\nfn f(){}\n```",
		"p1\n\np2\n\np3 with `code`",
		"# Head\n\n- a\n- b\n\ntail paragraph",
		"before\n\n```go\nx := 1\n\n\ny := 2\n```\n\nafter",
	}

	r := New(DefaultTheme())
	for _, text := range texts {
		b := FindStableBoundary(text)
		if b == 0 || b >= len(text) {
			t.Fatalf("test text %q needs an interior boundary, got %d", text, b)
		}

		whole := r.Render(text, 50)
		split := append(r.Render(text[:b], 50), r.Render(text[b:], 50)...)

		if len(whole) != len(split) {
			t.Fatalf("text %q: %d lines whole vs %d split", text, len(whole), len(split))
		}
		for i := range whole {
			if whole[i] != split[i] {
				t.Errorf("text %q line %d:\nwhole %q\nsplit %q", text, i, whole[i], split[i])
			}
		}
	}
}
