// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

// ScrollPosition says where the chat viewport should be anchored. It is a
// closed union of three cases, so "auto-follow the bottom" is its own case
// rather than a sentinel offset that could collide with a real position.
type ScrollPosition struct {
	kind   scrollKind
	offset int
}

type scrollKind int

const (
	scrollBottom scrollKind = iota
	scrollTop
	scrollOffset
)

// ScrollBottom anchors to the newest line and follows new content.
func ScrollBottom() ScrollPosition {
	return ScrollPosition{kind: scrollBottom}
}

// ScrollTop anchors to the first line.
func ScrollTop() ScrollPosition {
	return ScrollPosition{kind: scrollTop}
}

// ScrollAt anchors to a fixed line offset.
func ScrollAt(offset int) ScrollPosition {
	if offset < 0 {
		offset = 0
	}
	return ScrollPosition{kind: scrollOffset, offset: offset}
}

// AtBottom reports whether the position auto-follows new content.
func (p ScrollPosition) AtBottom() bool {
	return p.kind == scrollBottom
}

// AtTop reports whether the position is pinned to the start.
func (p ScrollPosition) AtTop() bool {
	return p.kind == scrollTop
}

// Offset returns the fixed line offset and whether one is set.
func (p ScrollPosition) Offset() (int, bool) {
	if p.kind != scrollOffset {
		return 0, false
	}
	return p.offset, true
}

// Apply resolves the position to a concrete line offset for a viewport of
// the given content and visible height.
func (p ScrollPosition) Apply(totalLines, visible int) int {
	maxOffset := totalLines - visible
	if maxOffset < 0 {
		maxOffset = 0
	}
	switch p.kind {
	case scrollTop:
		return 0
	case scrollOffset:
		if p.offset > maxOffset {
			return maxOffset
		}
		return p.offset
	default:
		return maxOffset
	}
}
