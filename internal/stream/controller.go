// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package stream

import (
	"errors"
	"time"

	"github.com/halvard/skribe/internal/provider"
)

// ErrStreamActive is returned by Begin when a request is already in flight.
// One stream at a time; the UI rejects the send instead of queuing it.
var ErrStreamActive = errors.New("stream: request already in flight")

// =============================================================================
// STATE
// =============================================================================

// State tracks where the controller is in its request lifecycle.
type State int

const (
	// StateIdle means no request is in flight.
	StateIdle State = iota

	// StateSending means the worker was started but no delta has arrived.
	StateSending

	// StateStreaming means at least one delta has been received.
	StateStreaming
)

// String returns the state name for logs and the status bar.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSending:
		return "sending"
	case StateStreaming:
		return "streaming"
	default:
		return "unknown"
	}
}

// =============================================================================
// CONTROLLER
// =============================================================================

// Controller drives one stream at a time and exposes a poll-based view of
// its progress to the UI event loop. It is not goroutine-safe: all methods
// are called from the UI goroutine; only the shared buffer crosses the
// worker boundary.
type Controller struct {
	client Completer
	mode   Mode

	state  State
	stream *Stream

	// finished is the completed stream's buffer, retained after the
	// terminal event so the final text can still be snapshotted.
	finished *Buffer
}

// NewController returns a controller in the idle state.
func NewController(client Completer, mode Mode) *Controller {
	return &Controller{client: client, mode: mode}
}

// SetClient swaps the completion client for subsequent requests. A stream
// already in flight keeps the client it started with.
func (c *Controller) SetClient(client Completer) {
	c.client = client
}

// SetMode swaps the transport mode for subsequent requests.
func (c *Controller) SetMode(mode Mode) {
	c.mode = mode
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	return c.state
}

// Active reports whether a request is in flight.
func (c *Controller) Active() bool {
	return c.state != StateIdle
}

// Begin starts a new request for the given history. It fails with
// ErrStreamActive if a request is already in flight.
func (c *Controller) Begin(history []provider.ChatMessage) error {
	if c.state != StateIdle {
		return ErrStreamActive
	}
	c.stream = Start(c.client, c.mode, history)
	c.finished = nil
	c.state = StateSending
	return nil
}

// Poll drains all pending events without blocking and advances the state
// machine. The returned slice preserves arrival order; a terminal event is
// always last. If the worker's channel closed without a terminal event
// (which only a controller bug could cause) an Error event is synthesized
// so the UI never hangs in a non-idle state.
func (c *Controller) Poll() []Event {
	if c.stream == nil {
		return nil
	}

	var out []Event
	for {
		select {
		case ev, ok := <-c.stream.events:
			if !ok {
				if c.state != StateIdle {
					ev = Event{Kind: EventError, Err: errors.New("stream: worker exited without terminal event")}
					out = append(out, ev)
					c.finish()
				}
				return out
			}
			out = append(out, ev)
			switch ev.Kind {
			case EventChunk:
				if c.state == StateSending {
					c.state = StateStreaming
				}
			case EventDone, EventError:
				c.finish()
				return out
			}
		default:
			return out
		}
	}
}

// finish retains the buffer for the final snapshot and returns to idle.
func (c *Controller) finish() {
	c.finished = c.stream.buf
	c.stream = nil
	c.state = StateIdle
}

// Snapshot returns the current accumulated text: the live buffer while a
// request is in flight, or the last completed reply when idle.
func (c *Controller) Snapshot() string {
	if c.stream != nil {
		return c.stream.buf.Snapshot()
	}
	if c.finished != nil {
		return c.finished.Snapshot()
	}
	return ""
}

// Len returns the byte length of the accumulated text without copying it.
func (c *Controller) Len() int {
	if c.stream != nil {
		return c.stream.buf.Len()
	}
	if c.finished != nil {
		return c.finished.Len()
	}
	return 0
}

// Elapsed returns how long the current request has been running, or zero
// when idle.
func (c *Controller) Elapsed() time.Duration {
	if c.stream == nil {
		return 0
	}
	return time.Since(c.stream.startedAt)
}

// =============================================================================
// REDRAW THROTTLE
// =============================================================================

// Throttle defaults. A redraw is due when enough new bytes accumulated or
// enough time passed since the last draw, whichever comes first. The byte
// threshold keeps fast streams from redrawing per token; the deadline keeps
// slow streams feeling live.
const (
	DefaultThrottleBytes = 15
	DefaultThrottleDelay = 100 * time.Millisecond
)

// Throttle decides when the accumulated stream warrants a redraw. All
// counters live here rather than in package state so each stream gets a
// fresh throttle.
type Throttle struct {
	minBytes int
	maxDelay time.Duration

	lastLen  int
	lastDraw time.Time
}

// NewThrottle returns a throttle with the given thresholds. Non-positive
// values fall back to the defaults.
func NewThrottle(minBytes int, maxDelay time.Duration) *Throttle {
	if minBytes <= 0 {
		minBytes = DefaultThrottleBytes
	}
	if maxDelay <= 0 {
		maxDelay = DefaultThrottleDelay
	}
	return &Throttle{minBytes: minBytes, maxDelay: maxDelay}
}

// ShouldDraw reports whether a redraw is due given the current buffer
// length and time.
func (t *Throttle) ShouldDraw(bufLen int, now time.Time) bool {
	if bufLen == t.lastLen {
		return false
	}
	if bufLen-t.lastLen >= t.minBytes {
		return true
	}
	return now.Sub(t.lastDraw) >= t.maxDelay
}

// MarkDrawn records that a redraw happened at the given buffer length.
func (t *Throttle) MarkDrawn(bufLen int, now time.Time) {
	t.lastLen = bufLen
	t.lastDraw = now
}

// Reset clears the counters for a new stream.
func (t *Throttle) Reset(now time.Time) {
	t.lastLen = 0
	t.lastDraw = now
}
