// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"strings"
	"testing"
)

func TestFindStableBoundary(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"empty", "", 0},
		{"no paragraph break", "hello world", 0},
		{"single newline only", "hello\nworld", 0},
		{"one break", "hello\n\nworld", 7},
		{"break at end", "hello\n\n", 7},
		{"last of several breaks", "a\n\nb\n\nc", len("a\n\nb\n\n")},
		{"break inside open fence ignored", "```go\nx := 1\n\ny := 2", 0},
		{"break after closed fence", "```go\nx := 1\n```\n\ndone", len("```go\nx := 1\n```\n\n")},
		{"break before fence still counts", "intro\n\n```go\nx := 1", 7},
		{"fence with language tag", "```rust\nfn f(){}\n\nmore", 0},
		{"triple newline", "a\n\n\nb", 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FindStableBoundary(tt.text); got != tt.want {
				t.Errorf("FindStableBoundary(%q) = %d, want %d", tt.text, got, tt.want)
			}
		})
	}
}

func TestFindStableBoundaryWithinBounds(t *testing.T) {
	samples := []string{
		"",
		"plain",
		"a\n\nb\n\nc\n\n",
		"```\ncode\n\n\n```",
		"p1\n\n```rust\nfn f(){}\n```\n\np2",
	}
	for _, text := range samples {
		b := FindStableBoundary(text)
		if b < 0 || b > len(text) {
			t.Errorf("boundary %d out of range for %q", b, text)
		}
		// The frozen prefix must contain a balanced number of fence lines.
		open := 0
		for _, line := range strings.Split(text[:b], "\n") {
			if strings.HasPrefix(line, "```") {
				open = 1 - open
			}
		}
		if open != 0 {
			t.Errorf("boundary %d of %q splits an open fence", b, text)
		}
	}
}

// Simulates a stream: with every appended delta the boundary may stay put
// or move forward, never backward.
func TestFindStableBoundaryMonotonic(t *testing.T) {
	deltas := []string{
		"Hello", " **world**",
		"\n\n", "```rust\n", "fn f(){}\n",
		"\n\n", // inside the fence, must not advance the boundary
		"```", "\n\n", "after",
	}

	var text string
	prev := 0
	for _, d := range deltas {
		text += d
		b := FindStableBoundary(text)
		if b < prev {
			t.Fatalf("boundary moved backward: %d -> %d after appending %q", prev, b, d)
		}
		prev = b
	}

	want := len("Hello **world**\n\n```rust\nfn f(){}\n\n\n```\n\n")
	if prev != want {
		t.Errorf("final boundary = %d, want %d", prev, want)
	}
}
