// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, Save(Default(), path))

	changed := make(chan *Config, 4)
	w, err := Watch(path, func(cfg *Config) {
		changed <- cfg
	})
	require.NoError(t, err)
	defer w.Close()

	cfg := Default()
	cfg.Provider.Model = "new-model"
	require.NoError(t, Save(cfg, path))

	select {
	case got := <-changed:
		assert.Equal(t, "new-model", got.Provider.Model)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not report the change")
	}
}

func TestWatcherSkipsInvalidFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, Save(Default(), path))

	changed := make(chan *Config, 4)
	w, err := Watch(path, func(cfg *Config) {
		changed <- cfg
	})
	require.NoError(t, err)
	defer w.Close()

	// Invalid TOML must not produce a callback.
	require.NoError(t, os.WriteFile(path, []byte("provider = not toml"), 0o600))

	select {
	case <-changed:
		t.Fatal("watcher reported an invalid config")
	case <-time.After(700 * time.Millisecond):
	}

	// A valid write afterwards still comes through.
	cfg := Default()
	cfg.UI.Theme = "light"
	require.NoError(t, Save(cfg, path))

	select {
	case got := <-changed:
		assert.Equal(t, "light", got.UI.Theme)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not recover after invalid write")
	}
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, Save(Default(), path))

	changed := make(chan *Config, 4)
	w, err := Watch(path, func(cfg *Config) {
		changed <- cfg
	})
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0o600))

	select {
	case <-changed:
		t.Fatal("watcher reported a change for an unrelated file")
	case <-time.After(700 * time.Millisecond):
	}
}
