// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import "testing"

func TestWrapLineBreaksAtWords(t *testing.T) {
	lines := wrapLine("alpha beta gamma delta", 11)
	if len(lines) < 2 {
		t.Fatalf("expected wrapping, got %v", lines)
	}
	for i, line := range lines {
		if w := VisibleWidth(line); w > 11 {
			t.Errorf("line %d is %d cells: %q", i, w, line)
		}
	}
}

func TestWrapLineHardBreaksLongWords(t *testing.T) {
	lines := wrapLine("supercalifragilisticexpialidocious", 10)
	for i, line := range lines {
		if w := VisibleWidth(line); w > 10 {
			t.Errorf("line %d is %d cells: %q", i, w, line)
		}
	}
}

func TestWrapLineEmpty(t *testing.T) {
	lines := wrapLine("", 20)
	if len(lines) != 1 || lines[0] != "" {
		t.Errorf("wrapLine(\"\") = %v, want one empty line", lines)
	}
}

func TestWrapLineWideRunes(t *testing.T) {
	lines := wrapLine("日本語のテキストを折り返す", 8)
	for i, line := range lines {
		if w := VisibleWidth(line); w > 8 {
			t.Errorf("line %d is %d cells: %q", i, w, line)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("short", 10, "…"); got != "short" {
		t.Errorf("Truncate(short) = %q", got)
	}
	got := Truncate("a much longer string", 10, "…")
	if w := VisibleWidth(got); w > 10 {
		t.Errorf("truncated to %d cells: %q", w, got)
	}
	if got == "a much longer string" {
		t.Error("string was not truncated")
	}
}
