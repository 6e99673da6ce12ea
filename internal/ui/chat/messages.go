// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
//
// This file defines the Bubble Tea messages that drive the chat update
// loop. Stream progress is not pushed through messages: ticks wake the
// loop, which polls the stream controller and re-reads the shared buffer.
package chat

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/halvard/skribe/internal/stream"
)

// =============================================================================
// TICK MESSAGES
// =============================================================================

// streamTickInterval is the polling cadence while a reply is in flight.
const streamTickInterval = 33 * time.Millisecond

// StreamTickMsg wakes the update loop to poll the stream controller.
type StreamTickMsg struct {
	Time time.Time
}

// streamTickCmd schedules the next poll at the streaming cadence. It is
// only re-armed while a request is in flight; when idle the loop sleeps
// on input events alone.
func streamTickCmd() tea.Cmd {
	return tea.Tick(streamTickInterval, func(t time.Time) tea.Msg {
		return StreamTickMsg{Time: t}
	})
}

// =============================================================================
// PERSISTENCE MESSAGES
// =============================================================================

// SessionSavedMsg reports that the session reached the history store.
type SessionSavedMsg struct{}

// SessionSaveFailedMsg reports a persistence failure. The chat keeps
// working; the failure only surfaces as a toast.
type SessionSaveFailedMsg struct {
	Err error
}

// =============================================================================
// CONFIG RELOAD
// =============================================================================

// ConfigReloadedMsg applies a hot-reloaded configuration. It is sent into
// the program from outside by the config file watcher; a nil Completer
// leaves the current client in place.
type ConfigReloadedMsg struct {
	Completer     stream.Completer
	Mode          stream.Mode
	ModelName     string
	ThrottleBytes int
	ThrottleDelay time.Duration
}
