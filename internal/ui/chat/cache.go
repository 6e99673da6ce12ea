// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
//
// This file implements the frame cache: one rendered entry per historical
// message plus a stable-tail cache for the reply currently streaming. The
// goal is that a frame where nothing changed costs nothing, and a frame
// where one thing changed re-renders only that thing.
package chat

import (
	"github.com/halvard/skribe/internal/model"
	"github.com/halvard/skribe/internal/render"
)

// =============================================================================
// CACHE ENTRIES
// =============================================================================

// frameKey is the fast-path fingerprint. If none of these fields changed
// since the previous frame, the previous frame is still valid as a whole.
// The last message's ID guards against history pruning, which shifts
// messages without changing the count.
type frameKey struct {
	msgCount  int
	lastID    string
	lastLen   int
	streamLen int
	width     int
	selection int
}

// messageEntry caches one historical message's rendered bubble. Entries
// live in an index-keyed map but history is not append-only (pruning
// shifts indexes), so the message ID is part of the fingerprint.
type messageEntry struct {
	id         string
	contentLen int
	width      int
	selected   bool
	lines      []string
}

func (e *messageEntry) valid(id string, contentLen, width int, selected bool) bool {
	return e.id == id && e.contentLen == contentLen && e.width == width && e.selected == selected
}

// stableTail caches the frozen prefix of the streaming reply. offset only
// ever grows within one stream; the lines past it are re-rendered fresh
// every frame.
type stableTail struct {
	offset int
	width  int
	lines  []string
}

// =============================================================================
// FRAME CACHE
// =============================================================================

// FrameCache assembles the chat transcript's lines for one frame.
type FrameCache struct {
	bubbles *bubbleRenderer

	entries map[int]*messageEntry
	tail    *stableTail

	lastKey   frameKey
	lastFrame []string
	hasFrame  bool

	// Counters for the debug overlay and tests.
	FastPathHits   int
	MessageRenders int
	TailRenders    int
}

// NewFrameCache creates an empty cache over the given bubble renderer.
func NewFrameCache(bubbles *bubbleRenderer) *FrameCache {
	return &FrameCache{
		bubbles: bubbles,
		entries: make(map[int]*messageEntry),
	}
}

// StartStream resets the stable-tail state for a new reply.
func (c *FrameCache) StartStream() {
	c.tail = &stableTail{}
	c.hasFrame = false
}

// EndStream discards the stable-tail state. The finished reply is appended
// to the session by the caller and gets a fresh message entry on the next
// frame.
func (c *FrameCache) EndStream() {
	c.tail = nil
	c.hasFrame = false
}

// Frame returns the transcript lines for the current state.
//
// messages are the historical messages; streamLen and snapshot describe
// the in-flight reply (snapshot is only called off the fast path);
// selection is the browse cursor index, or -1 for none.
func (c *FrameCache) Frame(messages []model.Message, streaming bool, streamLen int, snapshot func() string, width, selection int) []string {
	key := frameKey{
		msgCount:  len(messages),
		lastID:    lastMessageID(messages),
		lastLen:   lastMessageLen(messages),
		streamLen: streamLen,
		width:     width,
		selection: selection,
	}
	if c.hasFrame && key == c.lastKey {
		c.FastPathHits++
		return c.lastFrame
	}

	var frame []string
	for i, msg := range messages {
		selected := i == selection
		entry, ok := c.entries[i]
		if !ok || !entry.valid(msg.ID, len(msg.Content), width, selected) {
			entry = &messageEntry{
				id:         msg.ID,
				contentLen: len(msg.Content),
				width:      width,
				selected:   selected,
				lines:      c.bubbles.renderMessage(msg, width, selected),
			}
			c.entries[i] = entry
			c.MessageRenders++
		}
		frame = append(frame, entry.lines...)
		frame = append(frame, "")
	}

	if streaming {
		frame = append(frame, c.streamingLines(snapshot(), width)...)
		frame = append(frame, "")
	}

	c.lastKey = key
	c.lastFrame = frame
	c.hasFrame = true
	return frame
}

// streamingLines renders the in-flight reply: cached frozen prefix plus a
// freshly rendered tail, wrapped in an assistant bubble.
func (c *FrameCache) streamingLines(text string, width int) []string {
	if c.tail == nil {
		c.tail = &stableTail{}
	}
	inner := bubbleInnerWidth(width)

	// A resize re-renders the frozen prefix at the new width but keeps the
	// offset, so the no-backtracking invariant survives resizes.
	if c.tail.width != width {
		c.tail.width = width
		if c.tail.offset > 0 {
			c.tail.lines = c.bubbles.markdown.Render(text[:c.tail.offset], inner)
			c.TailRenders++
		} else {
			c.tail.lines = nil
		}
	}

	if boundary := render.FindStableBoundary(text); boundary > c.tail.offset {
		c.tail.lines = append(c.tail.lines, c.bubbles.markdown.Render(text[c.tail.offset:boundary], inner)...)
		c.tail.offset = boundary
		c.TailRenders++
	}

	lines := make([]string, 0, len(c.tail.lines)+4)
	lines = append(lines, c.tail.lines...)

	if tailText := text[c.tail.offset:]; tailText != "" || len(lines) == 0 {
		// Empty text renders the placeholder; an empty tail after a frozen
		// prefix renders nothing extra.
		lines = append(lines, c.bubbles.markdown.Render(tailText, inner)...)
		c.TailRenders++
	}

	return c.bubbles.renderStreamingBubble(lines, width)
}

// StableOffset reports how much of the streaming reply is frozen.
func (c *FrameCache) StableOffset() int {
	if c.tail == nil {
		return 0
	}
	return c.tail.offset
}

func lastMessageLen(messages []model.Message) int {
	if len(messages) == 0 {
		return 0
	}
	return len(messages[len(messages)-1].Content)
}

func lastMessageID(messages []model.Message) string {
	if len(messages) == 0 {
		return ""
	}
	return messages[len(messages)-1].ID
}
