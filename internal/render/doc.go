// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package render turns Markdown reply text into styled terminal lines.
//
// Render is a pure function of (text, width, theme): identical inputs
// always produce identical lines, which is what lets the chat view cache
// rendered bubbles and compare cached output against a fresh render
// byte for byte.
//
// For a reply that is still streaming, FindStableBoundary splits the text
// into a frozen prefix and a volatile tail. The prefix ends on a paragraph
// break outside any open code fence, so it can be rendered once and never
// re-parsed; only the tail is re-rendered each frame.
package render
