// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package stream coordinates one in-flight completion request between a
// background worker goroutine and the single-threaded UI loop.
//
// The worker appends every received text delta to a shared Buffer and emits
// payload-free Chunk events as wake-up signals; the UI re-reads the buffer
// on its own schedule. Losing or coalescing Chunk notifications is harmless
// by construction, because a reader always snapshots the buffer from its
// current tail. Each stream ends with exactly one terminal event, Done or
// Error, never both and never twice.
//
// At most one stream is active at a time; Controller.Begin enforces this
// and returns ErrStreamActive if violated.
package stream
