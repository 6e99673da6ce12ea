// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import "strings"

// renderInline applies `code`, **bold**, and *italic* spans within one line.
// An unclosed marker is kept as literal text, mirroring how people actually
// type half-finished Markdown mid-stream.
func (r *Renderer) renderInline(s string) string {
	var out strings.Builder

	i := 0
	for i < len(s) {
		switch {
		case s[i] == '`':
			end := strings.IndexByte(s[i+1:], '`')
			if end < 0 {
				out.WriteByte('`')
				i++
				continue
			}
			out.WriteString(r.theme.InlineCode.Render(s[i+1 : i+1+end]))
			i += end + 2

		case strings.HasPrefix(s[i:], "**"):
			end := strings.Index(s[i+2:], "**")
			if end < 0 {
				out.WriteString("**")
				i += 2
				continue
			}
			out.WriteString(r.theme.Bold.Render(s[i+2 : i+2+end]))
			i += end + 4

		case s[i] == '*':
			end := strings.IndexByte(s[i+1:], '*')
			if end < 0 {
				out.WriteByte('*')
				i++
				continue
			}
			out.WriteString(r.theme.Italic.Render(s[i+1 : i+1+end]))
			i += end + 2

		default:
			out.WriteByte(s[i])
			i++
		}
	}

	return out.String()
}
