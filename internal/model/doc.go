// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chat sessions and messages.
//
// A Session is an append-only, chronologically ordered list of finished
// Messages. The assistant reply currently being streamed is deliberately not
// part of the session; it is accumulated in the stream buffer and appended
// as a single Message when the stream completes.
package model
