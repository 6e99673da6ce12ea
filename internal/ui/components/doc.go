// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides reusable UI pieces for the skribe TUI,
// built on Bubble Tea and Lip Gloss.
//
// ToastManager (toast.go) owns transient notifications: status lines,
// errors, and warnings that expire on their own. Toasts render as a
// bottom-right stack over the chat view.
package components
