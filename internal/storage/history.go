// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists chat sessions in a local SQLite database.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/halvard/skribe/internal/model"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	ErrSessionNotFound = errors.New("session not found")
)

// =============================================================================
// HISTORY STORE
// =============================================================================

// History stores chat sessions in SQLite. All methods are safe for use
// from multiple goroutines; SQLite serializes writers internally.
type History struct {
	db *sql.DB

	// MaxSessions prunes the oldest sessions beyond this count (0 = keep all).
	MaxSessions int
}

// Open opens (or creates) the history database at path.
func Open(path string) (*History, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("storage: create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage: open database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("storage: set pragma: %w", err)
		}
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: initialize schema: %w", err)
	}

	return &History{db: db}, nil
}

// Close closes the database.
func (h *History) Close() error {
	return h.db.Close()
}

// =============================================================================
// SAVE
// =============================================================================

// SaveSession upserts a session and its full message list. Messages are
// replaced wholesale; sessions are small enough that diffing is not worth it.
func (h *History) SaveSession(ctx context.Context, s *model.Session) error {
	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage: begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO sessions (id, title, model, system_prompt, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			model = excluded.model,
			system_prompt = excluded.system_prompt,
			updated_at = excluded.updated_at`,
		s.ID, s.Title, s.Model, s.SystemPrompt,
		s.CreatedAt.UnixNano(), s.UpdatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("storage: upsert session: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM messages WHERE session_id = ?`, s.ID); err != nil {
		return fmt.Errorf("storage: clear messages: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO messages (id, session_id, seq, role, content, created_at, ttft_ns, duration_ns)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("storage: prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, msg := range s.Messages {
		_, err := stmt.ExecContext(ctx,
			msg.ID, s.ID, i, msg.Role.String(), msg.Content,
			msg.Timestamp.UnixNano(), int64(msg.TTFT), int64(msg.TotalDuration))
		if err != nil {
			return fmt.Errorf("storage: insert message %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage: commit: %w", err)
	}

	if h.MaxSessions > 0 {
		h.pruneOldest(ctx)
	}
	return nil
}

// pruneOldest deletes the least recently updated sessions beyond the cap.
// Failures are intentionally ignored; pruning retries on the next save.
func (h *History) pruneOldest(ctx context.Context) {
	h.db.ExecContext(ctx, `
		DELETE FROM sessions WHERE id IN (
			SELECT id FROM sessions
			ORDER BY updated_at DESC
			LIMIT -1 OFFSET ?
		)`, h.MaxSessions)
}

// =============================================================================
// LOAD
// =============================================================================

// GetSession loads a full session by ID.
func (h *History) GetSession(ctx context.Context, id string) (*model.Session, error) {
	s := &model.Session{}
	var created, updated int64

	err := h.db.QueryRowContext(ctx, `
		SELECT id, title, model, system_prompt, created_at, updated_at
		FROM sessions WHERE id = ?`, id).
		Scan(&s.ID, &s.Title, &s.Model, &s.SystemPrompt, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("storage: load session: %w", err)
	}
	s.CreatedAt = time.Unix(0, created)
	s.UpdatedAt = time.Unix(0, updated)

	rows, err := h.db.QueryContext(ctx, `
		SELECT id, role, content, created_at, ttft_ns, duration_ns
		FROM messages WHERE session_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, fmt.Errorf("storage: load messages: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var msg model.Message
		var role string
		var ts, ttft, dur int64
		if err := rows.Scan(&msg.ID, &role, &msg.Content, &ts, &ttft, &dur); err != nil {
			return nil, fmt.Errorf("storage: scan message: %w", err)
		}
		msg.Role = model.Role(role)
		msg.Timestamp = time.Unix(0, ts)
		msg.TTFT = time.Duration(ttft)
		msg.TotalDuration = time.Duration(dur)
		s.Messages = append(s.Messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: iterate messages: %w", err)
	}
	return s, nil
}

// =============================================================================
// LIST
// =============================================================================

// SessionMeta summarizes a stored session for list views.
type SessionMeta struct {
	ID           string
	Title        string
	Model        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	MessageCount int
}

// ListSessions returns session metadata, most recently updated first.
func (h *History) ListSessions(ctx context.Context) ([]SessionMeta, error) {
	rows, err := h.db.QueryContext(ctx, `
		SELECT s.id, s.title, s.model, s.created_at, s.updated_at, COUNT(m.id)
		FROM sessions s
		LEFT JOIN messages m ON m.session_id = s.id
		GROUP BY s.id
		ORDER BY s.updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("storage: list sessions: %w", err)
	}
	defer rows.Close()

	var metas []SessionMeta
	for rows.Next() {
		var meta SessionMeta
		var created, updated int64
		if err := rows.Scan(&meta.ID, &meta.Title, &meta.Model, &created, &updated, &meta.MessageCount); err != nil {
			return nil, fmt.Errorf("storage: scan session: %w", err)
		}
		meta.CreatedAt = time.Unix(0, created)
		meta.UpdatedAt = time.Unix(0, updated)
		metas = append(metas, meta)
	}
	return metas, rows.Err()
}

// SearchSessions returns sessions whose title or message content contains
// the query, case-insensitively, most recently updated first.
func (h *History) SearchSessions(ctx context.Context, query string) ([]SessionMeta, error) {
	if strings.TrimSpace(query) == "" {
		return h.ListSessions(ctx)
	}
	pattern := "%" + strings.ToLower(query) + "%"

	rows, err := h.db.QueryContext(ctx, `
		SELECT s.id, s.title, s.model, s.created_at, s.updated_at, COUNT(m.id)
		FROM sessions s
		LEFT JOIN messages m ON m.session_id = s.id
		WHERE s.id IN (
			SELECT session_id FROM messages WHERE LOWER(content) LIKE ?
			UNION
			SELECT id FROM sessions WHERE LOWER(title) LIKE ?
		)
		GROUP BY s.id
		ORDER BY s.updated_at DESC`, pattern, pattern)
	if err != nil {
		return nil, fmt.Errorf("storage: search sessions: %w", err)
	}
	defer rows.Close()

	var metas []SessionMeta
	for rows.Next() {
		var meta SessionMeta
		var created, updated int64
		if err := rows.Scan(&meta.ID, &meta.Title, &meta.Model, &created, &updated, &meta.MessageCount); err != nil {
			return nil, fmt.Errorf("storage: scan session: %w", err)
		}
		meta.CreatedAt = time.Unix(0, created)
		meta.UpdatedAt = time.Unix(0, updated)
		metas = append(metas, meta)
	}
	return metas, rows.Err()
}

// =============================================================================
// DELETE
// =============================================================================

// DeleteSession removes a session and its messages.
func (h *History) DeleteSession(ctx context.Context, id string) error {
	res, err := h.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("storage: delete session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("storage: delete session: %w", err)
	}
	if n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// Clear removes all stored sessions.
func (h *History) Clear(ctx context.Context) error {
	if _, err := h.db.ExecContext(ctx, `DELETE FROM sessions`); err != nil {
		return fmt.Errorf("storage: clear: %w", err)
	}
	return nil
}
