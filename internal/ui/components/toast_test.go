// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"
	"time"
)

func TestToastManagerAddAndRemove(t *testing.T) {
	m := NewToastManager()

	id1 := m.AddError("first")
	id2 := m.AddStatus("second")
	if id1 == id2 {
		t.Fatalf("duplicate toast IDs: %d", id1)
	}
	if !m.HasToasts() {
		t.Fatal("manager reports no toasts")
	}

	toasts := m.Toasts()
	if len(toasts) != 2 {
		t.Fatalf("got %d toasts, want 2", len(toasts))
	}
	// Newest first.
	if toasts[0].Message != "second" {
		t.Errorf("toasts[0] = %q, want newest first", toasts[0].Message)
	}

	m.Remove(id1)
	if got := m.Toasts(); len(got) != 1 || got[0].ID != id2 {
		t.Errorf("after remove: %+v", got)
	}
}

func TestToastManagerCapsVisibleToasts(t *testing.T) {
	m := NewToastManager()
	for i := 0; i < maxVisibleToasts+3; i++ {
		m.AddStatus("note")
	}
	if got := len(m.Toasts()); got != maxVisibleToasts {
		t.Errorf("visible toasts = %d, want %d", got, maxVisibleToasts)
	}
}

func TestToastTickDropsExpired(t *testing.T) {
	m := NewToastManager()
	m.AddError("stays")

	// Backdate one toast past its dismiss time.
	expired := Toast{
		ID:        99,
		Message:   "gone",
		Kind:      ToastStatus,
		CreatedAt: time.Now().Add(-time.Minute),
		Duration:  StatusToastDuration,
	}
	m.toasts = append(m.toasts, expired)

	remaining := m.Tick()
	if len(remaining) != 1 || remaining[0].Message != "stays" {
		t.Errorf("after tick: %+v", remaining)
	}
}

func TestErrorToastsLingerLonger(t *testing.T) {
	m := NewToastManager()
	m.AddError("e")
	m.AddStatus("s")

	toasts := m.Toasts()
	var errDur, statusDur time.Duration
	for _, toast := range toasts {
		switch toast.Kind {
		case ToastError:
			errDur = toast.Duration
		case ToastStatus:
			statusDur = toast.Duration
		}
	}
	if errDur <= statusDur {
		t.Errorf("error duration %v not longer than status %v", errDur, statusDur)
	}
}

func TestRenderToastShowsIndicatorAndMessage(t *testing.T) {
	toast := Toast{
		ID:        1,
		Message:   "connection reset",
		Kind:      ToastError,
		CreatedAt: time.Now(),
		Duration:  ErrorToastDuration,
	}

	out := RenderToast(toast, 80)
	if !strings.Contains(out, "[X]") {
		t.Errorf("error indicator missing:\n%s", out)
	}
	if !strings.Contains(out, "connection reset") {
		t.Errorf("message missing:\n%s", out)
	}
}

func TestRenderToastStackEmpty(t *testing.T) {
	if got := RenderToastStack(nil, 80, 24); got != "" {
		t.Errorf("empty stack rendered %q", got)
	}
}
