// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halvard/skribe/internal/model"
)

func openTestHistory(t *testing.T) *History {
	t.Helper()
	h, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { h.Close() })
	return h
}

func sampleSession(title string) *model.Session {
	s := model.NewSession("test-model")
	s.AppendUser("How do I " + title + "?")
	msg := model.NewAssistantMessage("Like this.")
	msg.TTFT = 120 * time.Millisecond
	msg.TotalDuration = 900 * time.Millisecond
	s.Append(msg)
	return s
}

func TestSaveAndGetSession(t *testing.T) {
	h := openTestHistory(t)
	ctx := context.Background()

	s := sampleSession("sort a slice")
	require.NoError(t, h.SaveSession(ctx, s))

	got, err := h.GetSession(ctx, s.ID)
	require.NoError(t, err)

	assert.Equal(t, s.ID, got.ID)
	assert.Equal(t, s.Title, got.Title)
	assert.Equal(t, "test-model", got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, model.RoleUser, got.Messages[0].Role)
	assert.Equal(t, s.Messages[0].Content, got.Messages[0].Content)
	assert.Equal(t, 120*time.Millisecond, got.Messages[1].TTFT)
	assert.Equal(t, 900*time.Millisecond, got.Messages[1].TotalDuration)
}

func TestSaveIsIdempotentPerSession(t *testing.T) {
	h := openTestHistory(t)
	ctx := context.Background()

	s := sampleSession("write a file")
	require.NoError(t, h.SaveSession(ctx, s))

	s.AppendUser("And read one?")
	s.AppendAssistant("os.ReadFile.")
	require.NoError(t, h.SaveSession(ctx, s))

	got, err := h.GetSession(ctx, s.ID)
	require.NoError(t, err)
	assert.Len(t, got.Messages, 4)

	metas, err := h.ListSessions(ctx)
	require.NoError(t, err)
	assert.Len(t, metas, 1, "resaving must not duplicate the session")
}

func TestGetMissingSession(t *testing.T) {
	h := openTestHistory(t)
	_, err := h.GetSession(context.Background(), "nope")
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestListSessionsOrderedByRecency(t *testing.T) {
	h := openTestHistory(t)
	ctx := context.Background()

	old := sampleSession("first")
	old.UpdatedAt = time.Now().Add(-time.Hour)
	require.NoError(t, h.SaveSession(ctx, old))

	recent := sampleSession("second")
	require.NoError(t, h.SaveSession(ctx, recent))

	metas, err := h.ListSessions(ctx)
	require.NoError(t, err)
	require.Len(t, metas, 2)
	assert.Equal(t, recent.ID, metas[0].ID)
	assert.Equal(t, old.ID, metas[1].ID)
	assert.Equal(t, 2, metas[0].MessageCount)
}

func TestSearchSessions(t *testing.T) {
	h := openTestHistory(t)
	ctx := context.Background()

	a := sampleSession("parse TOML")
	b := sampleSession("draw a mandelbrot")
	require.NoError(t, h.SaveSession(ctx, a))
	require.NoError(t, h.SaveSession(ctx, b))

	hits, err := h.SearchSessions(ctx, "toml")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, a.ID, hits[0].ID)

	all, err := h.SearchSessions(ctx, "  ")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestDeleteSession(t *testing.T) {
	h := openTestHistory(t)
	ctx := context.Background()

	s := sampleSession("delete me")
	require.NoError(t, h.SaveSession(ctx, s))
	require.NoError(t, h.DeleteSession(ctx, s.ID))

	_, err := h.GetSession(ctx, s.ID)
	require.ErrorIs(t, err, ErrSessionNotFound)
	require.ErrorIs(t, h.DeleteSession(ctx, s.ID), ErrSessionNotFound)
}

func TestMaxSessionsPrunesOldest(t *testing.T) {
	h := openTestHistory(t)
	h.MaxSessions = 2
	ctx := context.Background()

	var ids []string
	base := time.Now().Add(-time.Hour)
	for i := 0; i < 4; i++ {
		s := sampleSession("topic")
		s.UpdatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, h.SaveSession(ctx, s))
		ids = append(ids, s.ID)
	}

	metas, err := h.ListSessions(ctx)
	require.NoError(t, err)
	require.Len(t, metas, 2)
	assert.Equal(t, ids[3], metas[0].ID)
	assert.Equal(t, ids[2], metas[1].ID)
}

func TestClear(t *testing.T) {
	h := openTestHistory(t)
	ctx := context.Background()

	require.NoError(t, h.SaveSession(ctx, sampleSession("one")))
	require.NoError(t, h.SaveSession(ctx, sampleSession("two")))
	require.NoError(t, h.Clear(ctx))

	metas, err := h.ListSessions(ctx)
	require.NoError(t, err)
	assert.Empty(t, metas)
}
