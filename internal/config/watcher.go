// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// =============================================================================
// CONFIG WATCHER
// =============================================================================

// debounceWindow absorbs the write bursts editors produce on save.
const debounceWindow = 250 * time.Millisecond

// Watcher reloads the config when the file changes on disk.
type Watcher struct {
	watcher *fsnotify.Watcher
	path    string
	done    chan struct{}
}

// Watch observes path and invokes onChange with each successfully reloaded
// config. Invalid intermediate states are skipped silently; the previous
// config stays in effect. Watching the parent directory survives the
// rename-over-save dance most editors do.
func Watch(path string, onChange func(*Config)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("config: create watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("config: watch %s: %w", filepath.Dir(path), err)
	}

	w := &Watcher{
		watcher: fw,
		path:    path,
		done:    make(chan struct{}),
	}
	go w.run(onChange)
	return w, nil
}

func (w *Watcher) run(onChange func(*Config)) {
	var timer *time.Timer
	fire := make(chan struct{}, 1)

	for {
		select {
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != filepath.Clean(w.path) {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounceWindow, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})

		case <-fire:
			cfg, err := LoadFromPath(w.path)
			if err != nil {
				continue
			}
			onChange(cfg)

		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}

		case <-w.done:
			return
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.done)
	return w.watcher.Close()
}
