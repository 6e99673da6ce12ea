// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halvard/skribe/internal/config"
)

// captureStderr runs fn with os.Stderr redirected and returns what it wrote.
func captureStderr(t *testing.T, fn func()) string {
	t.Helper()
	r, w, err := os.Pipe()
	require.NoError(t, err)

	orig := os.Stderr
	os.Stderr = w
	defer func() { os.Stderr = orig }()

	fn()
	require.NoError(t, w.Close())

	out, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(out)
}

func TestLogExchangeAppendsToJournal(t *testing.T) {
	cfg := config.Default()
	cfg.Journal.Dir = filepath.Join(t.TempDir(), "journal")

	out := captureStderr(t, func() {
		logExchange(cfg, false, "what is Go?", "A language.")
	})
	assert.Empty(t, out)

	entries, err := os.ReadDir(cfg.Journal.Dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	data, err := os.ReadFile(filepath.Join(cfg.Journal.Dir, entries[0].Name()))
	require.NoError(t, err)
	assert.Contains(t, string(data), "what is Go?")
	assert.Contains(t, string(data), "A language.")
}

func TestLogExchangeWarnsOnFailure(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	cfg := config.Default()
	// The journal dir's parent is a regular file, so the write must fail.
	cfg.Journal.Dir = filepath.Join(blocker, "journal")

	out := captureStderr(t, func() {
		logExchange(cfg, false, "q", "a")
	})
	assert.True(t, strings.Contains(out, "journal:"), "stderr = %q", out)
}

func TestLogExchangeQuietSuppressesWarning(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	cfg := config.Default()
	cfg.Journal.Dir = filepath.Join(blocker, "journal")

	out := captureStderr(t, func() {
		logExchange(cfg, true, "q", "a")
	})
	assert.Empty(t, out)
}
