// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package stream

import (
	"strings"
	"sync"
)

// =============================================================================
// SHARED STREAM BUFFER
// =============================================================================

// Buffer is an append-only text accumulator shared between the stream worker
// and the UI loop.
//
// Thread-safety: Append is called only by the worker goroutine, Snapshot and
// Len only by the UI loop; all three take the mutex. Each delta is appended
// under the lock as one whole write, so every Snapshot returns a
// prefix-consistent, valid-UTF8 string - a reader can never observe half of
// a multi-byte delta. Lock hold time is a single append or clone, bounded
// and short; the UI loop never blocks on network I/O through this lock.
type Buffer struct {
	mu   sync.Mutex
	data strings.Builder
}

// NewBuffer creates an empty stream buffer.
func NewBuffer() *Buffer {
	return &Buffer{}
}

// Append appends one whole delta to the buffer.
func (b *Buffer) Append(delta string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data.WriteString(delta)
}

// Snapshot returns a copy of the accumulated text. Not every intermediate
// state is observed by readers; only the current tail matters.
func (b *Buffer) Snapshot() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.data.String()
}

// Len returns the current length of the accumulated text in bytes.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.data.Len()
}
