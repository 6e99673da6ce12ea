// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package journal appends chat exchanges to daily Markdown files, one file
// per calendar day, named YYYY-MM-DD.md.
package journal

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/halvard/skribe/internal/model"
)

// Journal writes to a directory of daily Markdown files.
type Journal struct {
	dir string

	// now is swappable for tests.
	now func() time.Time
}

// New creates a journal rooted at dir.
func New(dir string) *Journal {
	return &Journal{dir: dir, now: time.Now}
}

// fileFor returns the path of the day file for t.
func (j *Journal) fileFor(t time.Time) string {
	return filepath.Join(j.dir, t.Format("2006-01-02")+".md")
}

// AppendExchange records one prompt/reply pair in today's file.
func (j *Journal) AppendExchange(prompt, reply string) error {
	now := j.now()
	path := j.fileFor(now)

	if err := os.MkdirAll(j.dir, 0o700); err != nil {
		return fmt.Errorf("journal: create dir: %w", err)
	}

	var sb strings.Builder
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		sb.WriteString("# Journal " + now.Format("2006-01-02") + "\n")
	}
	sb.WriteString("\n## " + now.Format("15:04") + "\n\n")
	sb.WriteString("**Prompt:** " + strings.TrimSpace(prompt) + "\n\n")
	sb.WriteString(strings.TrimSpace(reply) + "\n")

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("journal: open %s: %w", path, err)
	}
	defer f.Close()

	if _, err := f.WriteString(sb.String()); err != nil {
		return fmt.Errorf("journal: write %s: %w", path, err)
	}
	return nil
}

// AppendSession records every user/assistant pair of a session in today's
// file. System messages are skipped.
func (j *Journal) AppendSession(s *model.Session) error {
	var prompt string
	for _, msg := range s.History() {
		switch msg.Role {
		case model.RoleUser:
			prompt = msg.Content
		case model.RoleAssistant:
			if err := j.AppendExchange(prompt, msg.Content); err != nil {
				return err
			}
			prompt = ""
		}
	}
	return nil
}

// Read returns the contents of the day file for the given date, or an
// empty string when no entries exist for that day.
func (j *Journal) Read(day time.Time) (string, error) {
	data, err := os.ReadFile(j.fileFor(day))
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("journal: read: %w", err)
	}
	return string(data), nil
}

// Days lists the dates that have journal entries, oldest first.
func (j *Journal) Days() ([]time.Time, error) {
	entries, err := os.ReadDir(j.dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("journal: list: %w", err)
	}

	var days []time.Time
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		day, err := time.Parse("2006-01-02", strings.TrimSuffix(e.Name(), ".md"))
		if err != nil {
			continue
		}
		days = append(days, day)
	}
	sort.Slice(days, func(i, k int) bool { return days[i].Before(days[k]) })
	return days, nil
}
