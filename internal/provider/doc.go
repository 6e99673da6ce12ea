// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package provider implements the chat-completion client for skribe.
//
// The client speaks the OpenAI-compatible chat completions protocol, which
// most hosted providers and local inference servers accept. Two delivery
// modes are supported:
//
//   - ChatStream: SSE streaming; the callback receives one text delta per
//     server event until the stream finishes or fails.
//   - Complete: a single blocking request returning the whole reply.
//
// The package deliberately contains no retry or backoff logic: a transport
// failure mid-stream is surfaced once, as a *StreamError carrying any
// partial content, and the caller decides what to tell the user.
package provider
