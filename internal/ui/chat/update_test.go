// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/halvard/skribe/internal/model"
	"github.com/halvard/skribe/internal/provider"
	"github.com/halvard/skribe/internal/stream"
)

// scriptedCompleter replays deltas, or fails before delivering delta failAt.
type scriptedCompleter struct {
	deltas []string
	failAt int // -1 disables
	err    error
}

func (s *scriptedCompleter) ChatStream(_ context.Context, _ []provider.ChatMessage, cb provider.StreamCallback) error {
	for i, d := range s.deltas {
		if s.failAt >= 0 && i == s.failAt {
			return s.err
		}
		cb(provider.StreamChunk{
			Choices: []provider.StreamChoice{{Delta: provider.StreamDelta{Content: d}}},
		})
	}
	return nil
}

func (s *scriptedCompleter) Complete(_ context.Context, _ []provider.ChatMessage) (string, error) {
	return strings.Join(s.deltas, ""), nil
}

var testANSI = regexp.MustCompile("\x1b\\[[0-9;]*m")

func plain(s string) string {
	return testANSI.ReplaceAllString(s, "")
}

func newTestModel(t *testing.T, c stream.Completer) Model {
	t.Helper()
	m := New(Options{Completer: c, Mode: stream.ModeStreaming, ModelName: "test-model"})
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return updated.(Model)
}

// send types content and presses enter.
func send(t *testing.T, m Model, content string) Model {
	t.Helper()
	m.input.SetValue(content)
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return updated.(Model)
}

// pump ticks the model until the stream settles back to idle.
func pump(t *testing.T, m Model) Model {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for m.Streaming() {
		if time.Now().After(deadline) {
			t.Fatal("stream never settled")
		}
		updated, _ := m.Update(StreamTickMsg{Time: time.Now()})
		m = updated.(Model)
		time.Sleep(time.Millisecond)
	}
	return m
}

func TestChatRoundTrip(t *testing.T) {
	completer := &scriptedCompleter{
		deltas: []string{"Hello", " **world**", "\n\n```rust\nfn f(){}\n```"},
		failAt: -1,
	}
	m := newTestModel(t, completer)

	m = send(t, m, "greet me")
	if !m.Streaming() {
		t.Fatal("submit did not start a stream")
	}
	m = pump(t, m)

	msgs := m.session.History()
	if len(msgs) != 2 {
		t.Fatalf("session has %d messages, want user + assistant", len(msgs))
	}
	if msgs[0].Role != model.RoleUser || msgs[0].Content != "greet me" {
		t.Errorf("first message = %+v", msgs[0])
	}
	want := "Hello **world**\n\n```rust\nfn f(){}\n```"
	if msgs[1].Role != model.RoleAssistant || msgs[1].Content != want {
		t.Errorf("assistant message = %q, want %q", msgs[1].Content, want)
	}

	frame := plain(strings.Join(m.cache.Frame(
		m.session.History(), false, 0, func() string { return "" }, 78, -1), "\n"))
	for _, fragment := range []string{"Hello", "world", "fn f(){}", "rust"} {
		if !strings.Contains(frame, fragment) {
			t.Errorf("final frame missing %q:\n%s", fragment, frame)
		}
	}
	if strings.Contains(frame, "**") {
		t.Error("bold markers leaked into the final frame")
	}
}

func TestChatErrorBeforeFirstChunk(t *testing.T) {
	completer := &scriptedCompleter{
		deltas: []string{"never"},
		failAt: 0,
		err:    errors.New("boom"),
	}
	m := newTestModel(t, completer)

	m = send(t, m, "hi")
	m = pump(t, m)

	// The failed request leaves no assistant message behind.
	msgs := m.session.History()
	if len(msgs) != 1 || msgs[0].Role != model.RoleUser {
		t.Fatalf("session after error = %+v", msgs)
	}
	if m.Streaming() {
		t.Error("model still streaming after terminal error")
	}
	if !m.toasts.HasToasts() {
		t.Error("transport error produced no toast")
	}
}

func TestChatRejectsSecondSendWhileStreaming(t *testing.T) {
	release := make(chan struct{})
	blocking := &gateCompleter{release: release}
	m := newTestModel(t, blocking)

	m = send(t, m, "first")
	if !m.Streaming() {
		t.Fatal("first send did not start streaming")
	}

	m = send(t, m, "second")
	// Second prompt must not enter the session while a reply is in flight.
	if got := m.session.Len(); got != 1 {
		t.Errorf("session has %d messages, want 1", got)
	}
	if !m.toasts.HasToasts() {
		t.Error("concurrent send produced no toast")
	}

	close(release)
	m = pump(t, m)
	if got := m.session.Len(); got != 2 {
		t.Errorf("after settle session has %d messages, want 2", got)
	}
}

type gateCompleter struct {
	release chan struct{}
}

func (g *gateCompleter) ChatStream(_ context.Context, _ []provider.ChatMessage, cb provider.StreamCallback) error {
	<-g.release
	cb(provider.StreamChunk{
		Choices: []provider.StreamChoice{{Delta: provider.StreamDelta{Content: "ok"}}},
	})
	return nil
}

func (g *gateCompleter) Complete(_ context.Context, _ []provider.ChatMessage) (string, error) {
	<-g.release
	return "ok", nil
}

func TestWholeReplyMode(t *testing.T) {
	completer := &scriptedCompleter{deltas: []string{"the whole reply"}, failAt: -1}
	m := New(Options{Completer: completer, Mode: stream.ModeWhole, ModelName: "test"})
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m = updated.(Model)

	m = send(t, m, "hi")
	m = pump(t, m)

	if got := m.session.Last().Content; got != "the whole reply" {
		t.Errorf("assistant content = %q", got)
	}
}

func TestBrowseModeSelection(t *testing.T) {
	m := newTestModel(t, &scriptedCompleter{failAt: -1})
	m.session.AppendUser("one")
	m.session.AppendAssistant("two")
	m.session.AppendUser("three")

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlB})
	m = updated.(Model)
	if m.mode != ModeBrowse {
		t.Fatalf("mode = %v, want browse", m.mode)
	}
	if m.selection != 2 {
		t.Errorf("initial selection = %d, want last message", m.selection)
	}

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	m = updated.(Model)
	if m.selection != 1 {
		t.Errorf("selection after up = %d, want 1", m.selection)
	}

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = updated.(Model)
	if m.mode != ModeChat || m.selection != -1 {
		t.Errorf("after esc: mode=%v selection=%d", m.mode, m.selection)
	}
}

// =============================================================================
// PERSISTENCE
// =============================================================================

// captureStore records what SaveSession was handed.
type captureStore struct {
	saved *model.Session
}

func (c *captureStore) SaveSession(_ context.Context, s *model.Session) error {
	c.saved = s
	return nil
}

// The save command runs in a bubbletea goroutine while the update loop
// keeps mutating the session, so it must persist a snapshot, never the
// live session.
func TestSaveSessionCmdSnapshotsSession(t *testing.T) {
	store := &captureStore{}
	m := New(Options{
		Completer: &scriptedCompleter{failAt: -1},
		Mode:      stream.ModeStreaming,
		ModelName: "test-model",
		Store:     store,
	})
	m.session.AppendUser("hello")
	m.session.AppendAssistant("hi there")

	cmd := m.saveSessionCmd()
	if cmd == nil {
		t.Fatal("no save command with a store configured")
	}

	// Mutations after the command is built must not reach the store.
	m.session.AppendUser("typed while saving")

	if msg := cmd(); msg != (SessionSavedMsg{}) {
		t.Fatalf("save command returned %T", msg)
	}
	if store.saved == m.session {
		t.Fatal("store was handed the live session")
	}
	if store.saved.Len() != 2 {
		t.Errorf("snapshot has %d messages, want 2", store.saved.Len())
	}
	if store.saved.ID != m.session.ID {
		t.Error("snapshot lost the session ID")
	}
}

// =============================================================================
// CONFIG RELOAD
// =============================================================================

func TestConfigReloadSwapsCompleterAndModel(t *testing.T) {
	stale := &scriptedCompleter{deltas: []string{"stale reply"}, failAt: -1}
	fresh := &scriptedCompleter{deltas: []string{"fresh reply"}, failAt: -1}
	m := newTestModel(t, stale)

	updated, _ := m.Update(ConfigReloadedMsg{
		Completer:     fresh,
		Mode:          stream.ModeStreaming,
		ModelName:     "new-model",
		ThrottleBytes: 1,
		ThrottleDelay: time.Millisecond,
	})
	m = updated.(Model)

	if m.session.Model != "new-model" {
		t.Errorf("session model = %q after reload", m.session.Model)
	}
	if !m.toasts.HasToasts() {
		t.Error("reload did not surface a toast")
	}

	m = send(t, m, "hi")
	m = pump(t, m)

	if got := m.session.Last().Content; got != "fresh reply" {
		t.Errorf("reply after reload = %q, want the new client's reply", got)
	}
}

// A reload mid-stream must not disturb the reply in flight.
func TestConfigReloadDuringStreamKeepsReply(t *testing.T) {
	first := &scriptedCompleter{deltas: []string{"before ", "reload"}, failAt: -1}
	m := newTestModel(t, first)
	m = send(t, m, "go")

	updated, _ := m.Update(ConfigReloadedMsg{
		Completer: &scriptedCompleter{deltas: []string{"other"}, failAt: -1},
		Mode:      stream.ModeStreaming,
	})
	m = pump(t, updated.(Model))

	if got := m.session.Last().Content; got != "before reload" {
		t.Errorf("in-flight reply = %q after reload", got)
	}
}

// =============================================================================
// OPTIONS
// =============================================================================

func TestOptionsThreadThemeAndSyntaxStyle(t *testing.T) {
	m := New(Options{
		Completer:   &scriptedCompleter{failAt: -1},
		Mode:        stream.ModeStreaming,
		Theme:       "light",
		SyntaxStyle: "dracula",
	})

	if m.theme.IsDark {
		t.Error(`theme "light" did not reach the style palette`)
	}
	if got := m.cache.bubbles.markdown.Theme().ChromaStyle; got != "dracula" {
		t.Errorf("chroma style = %q, want the configured style", got)
	}
}
