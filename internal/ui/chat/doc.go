// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package chat implements the interactive chat view.

The view is a standard Bubble Tea model. While a reply streams, a 33ms
tick wakes the update loop, which polls the stream controller for
events, re-reads the shared buffer, and decides via a byte/time
throttle whether the transcript is worth redrawing.

Rendering is cached at two levels (cache.go): finished messages keep
their rendered bubble until width or selection changes, and the
streaming reply is split at a stable paragraph boundary so only its
volatile tail is re-parsed per frame.
*/
package chat
