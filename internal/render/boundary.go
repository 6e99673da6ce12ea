// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import "strings"

// FindStableBoundary returns the largest byte offset into text that is safe
// to freeze: the offset just past the last "\n\n" that falls outside an open
// code fence, or 0 if there is none.
//
// A blank line inside an open fence is not a paragraph break. The fence may
// still be extended by a later delta, so nothing inside it can be frozen
// until the closing fence arrives.
//
// The scan is prefix-determined, so for a growing text the returned offset
// never decreases.
func FindStableBoundary(text string) int {
	best := 0
	inFence := false
	lineStart := 0

	for i := 0; i < len(text); i++ {
		if i == lineStart && strings.HasPrefix(text[i:], "```") {
			inFence = !inFence
		}
		if text[i] == '\n' {
			lineStart = i + 1
			if !inFence && i+1 < len(text) && text[i+1] == '\n' {
				best = i + 2
			}
		}
	}

	return best
}
