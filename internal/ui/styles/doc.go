// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the skribe TUI.

colors.go defines the palette. All colors are Lip Gloss AdaptiveColor
pairs so light and dark terminals both get readable contrast, and
every status color is paired with an ASCII shape indicator for
colorblind users.

theme.go assembles the palette into the concrete styles the chat view
uses: header, status bar, message bubbles, input area, streaming
indicator, and notifications. A Theme is built once at startup after
detecting the terminal's color profile.
*/
package styles
