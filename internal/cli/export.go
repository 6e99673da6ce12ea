// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"strings"
	"time"

	"github.com/halvard/skribe/internal/model"
)

// exportMarkdown renders a session as a standalone Markdown document.
func exportMarkdown(s *model.Session) string {
	var sb strings.Builder

	title := s.Title
	if title == "" {
		title = "Session " + shortID(s.ID)
	}
	sb.WriteString("# " + title + "\n\n")
	sb.WriteString("Model: " + s.Model + "  \n")
	sb.WriteString("Created: " + s.CreatedAt.Format(time.RFC3339) + "\n\n---\n\n")

	for _, msg := range s.History() {
		sb.WriteString("**" + msg.Role.DisplayName() + "** (" + msg.Timestamp.Format("15:04") + "):\n\n")
		sb.WriteString(msg.Content)
		sb.WriteString("\n\n---\n\n")
	}
	return sb.String()
}
