// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package stream

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/halvard/skribe/internal/provider"
)

// eventChannelCap bounds the event channel. Chunk events are advisory and
// dropped when the channel is full; terminal events always get through
// because the UI drains the channel every tick.
const eventChannelCap = 256

// =============================================================================
// COMPLETER INTERFACE
// =============================================================================

// Completer is the transport-level collaborator that produces a reply,
// either incrementally or whole. *provider.Client satisfies it.
type Completer interface {
	ChatStream(ctx context.Context, messages []provider.ChatMessage, callback provider.StreamCallback) error
	Complete(ctx context.Context, messages []provider.ChatMessage) (string, error)
}

// Mode selects how the worker obtains the reply.
type Mode int

const (
	// ModeStreaming delivers the reply as incremental deltas.
	ModeStreaming Mode = iota

	// ModeWhole performs a single blocking call and appends the entire
	// reply as one delta. The rest of the pipeline is unaware of the
	// difference.
	ModeWhole
)

// =============================================================================
// STREAM HANDLE
// =============================================================================

// Stream is the handle to one in-flight completion request. The worker
// goroutine owns the sending side of the event channel and closes it after
// the terminal event.
type Stream struct {
	id        string
	buf       *Buffer
	events    chan Event
	startedAt time.Time
}

// ID returns the stream's unique identifier.
func (s *Stream) ID() string {
	return s.id
}

// Buffer returns the shared buffer the worker appends to.
func (s *Stream) Buffer() *Buffer {
	return s.buf
}

// Events returns the receive side of the event channel.
func (s *Stream) Events() <-chan Event {
	return s.events
}

// StartedAt returns the time the stream was started.
func (s *Stream) StartedAt() time.Time {
	return s.startedAt
}

// =============================================================================
// WORKER
// =============================================================================

// Start spawns one worker goroutine that performs the completion request
// and returns the stream handle. For every received delta the worker
// (1) appends it to the shared buffer and (2) emits a payload-free Chunk
// event. Exactly one terminal event is emitted per stream: Done on success,
// Error on any transport or protocol failure. A worker panic is recovered
// and surfaced as the terminal Error; it never reaches the UI loop.
func Start(client Completer, mode Mode, history []provider.ChatMessage) *Stream {
	s := &Stream{
		id:        uuid.NewString(),
		buf:       NewBuffer(),
		events:    make(chan Event, eventChannelCap),
		startedAt: time.Now(),
	}

	go s.run(client, mode, history)

	return s
}

// run is the worker body. It owns the event channel: terminal event first,
// then close, in all paths including panic.
func (s *Stream) run(client Completer, mode Mode, history []provider.ChatMessage) {
	terminalSent := false

	defer func() {
		if r := recover(); r != nil && !terminalSent {
			s.events <- Event{Kind: EventError, Err: fmt.Errorf("stream worker panic: %v", r)}
		}
		close(s.events)
	}()

	// No cancellation at this layer: a hung request is resolved only by the
	// transport's own timeout, surfaced here as an error.
	ctx := context.Background()

	if mode == ModeWhole {
		reply, err := client.Complete(ctx, history)
		if err != nil {
			s.events <- Event{Kind: EventError, Err: err}
			terminalSent = true
			return
		}
		s.buf.Append(reply)
		s.notifyChunk()
		s.events <- Event{Kind: EventDone}
		terminalSent = true
		return
	}

	err := client.ChatStream(ctx, history, func(chunk provider.StreamChunk) {
		if delta := chunk.GetContent(); delta != "" {
			s.buf.Append(delta)
			s.notifyChunk()
		}
	})
	if err != nil {
		s.events <- Event{Kind: EventError, Err: err}
	} else {
		s.events <- Event{Kind: EventDone}
	}
	terminalSent = true
}

// notifyChunk emits an advisory wake-up without blocking. If the channel is
// full the notification is coalesced into whichever event the UI drains
// next; the reader re-snapshots the whole buffer either way.
func (s *Stream) notifyChunk() {
	select {
	case s.events <- Event{Kind: EventChunk}:
	default:
	}
}
