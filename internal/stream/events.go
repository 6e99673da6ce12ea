// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package stream

// =============================================================================
// STREAM EVENTS
// =============================================================================

// EventKind discriminates the events emitted by a stream worker.
type EventKind int

const (
	// EventChunk signals that new content is available in the buffer.
	// It carries no payload: content is always re-read from the buffer,
	// never passed through the channel.
	EventChunk EventKind = iota

	// EventDone signals that the stream completed without a transport error.
	EventDone

	// EventError signals that the stream failed. No further events follow.
	EventError
)

// String returns a human-readable name for the event kind.
func (k EventKind) String() string {
	switch k {
	case EventChunk:
		return "chunk"
	case EventDone:
		return "done"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// Event is one notification from the stream worker to the UI loop.
type Event struct {
	Kind EventKind
	Err  error // Set only for EventError
}

// Terminal reports whether the event ends the stream.
func (e Event) Terminal() bool {
	return e.Kind == EventDone || e.Kind == EventError
}
