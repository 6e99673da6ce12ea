// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chat sessions and messages.
package model

import (
	"strings"
	"testing"
)

func TestNewSession(t *testing.T) {
	s := NewSession("test-model")

	if s.ID == "" {
		t.Error("Expected generated session ID")
	}
	if s.Model != "test-model" {
		t.Errorf("Expected model 'test-model', got '%s'", s.Model)
	}
	if !s.IsEmpty() {
		t.Error("New session should be empty")
	}
}

func TestSessionAppendOrder(t *testing.T) {
	s := NewSession("m")

	s.AppendUser("first")
	s.AppendAssistant("second")
	s.AppendUser("third")

	if s.Len() != 3 {
		t.Fatalf("Expected 3 messages, got %d", s.Len())
	}

	history := s.History()
	want := []string{"first", "second", "third"}
	for i, content := range want {
		if history[i].Content != content {
			t.Errorf("Message %d: expected '%s', got '%s'", i, content, history[i].Content)
		}
	}
}

func TestSessionTitleFromFirstUserMessage(t *testing.T) {
	s := NewSession("m")
	s.Append(NewSystemMessage("be terse"))
	s.AppendUser("hello there")

	if s.Title != "hello there" {
		t.Errorf("Expected title from first user message, got '%s'", s.Title)
	}

	// Title is sticky once set
	s.AppendUser("something else")
	if s.Title != "hello there" {
		t.Errorf("Title should not change, got '%s'", s.Title)
	}
}

func TestSessionPruneKeepsSystemPrompt(t *testing.T) {
	s := NewSession("m")
	s.Append(NewSystemMessage("sys"))
	for i := 0; i < MaxMessages+10; i++ {
		s.AppendUser("msg")
	}

	if s.Len() != MaxMessages {
		t.Errorf("Expected %d messages after prune, got %d", MaxMessages, s.Len())
	}
	if s.Messages[0].Role != RoleSystem {
		t.Error("Prune should preserve leading system message")
	}
}

func TestMessagePreview(t *testing.T) {
	tests := []struct {
		name    string
		content string
		max     int
		want    string
	}{
		{"short", "hello", 10, "hello"},
		{"truncated", "hello world", 5, "hello..."},
		{"first line only", "line one\nline two", 20, "line one"},
		{"empty", "", 10, ""},
		{"unicode", strings.Repeat("é", 10), 4, "éééé..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewUserMessage(tt.content).Preview(tt.max)
			if got != tt.want {
				t.Errorf("Preview(%q, %d) = %q, want %q", tt.content, tt.max, got, tt.want)
			}
		})
	}
}

func TestRoleValid(t *testing.T) {
	for _, r := range []Role{RoleSystem, RoleUser, RoleAssistant} {
		if !r.Valid() {
			t.Errorf("Role %q should be valid", r)
		}
	}
	if Role("tool").Valid() {
		t.Error("Unknown role should not be valid")
	}
}

func TestSessionCloneIsIndependent(t *testing.T) {
	s := NewSession("m")
	s.AppendUser("original")
	s.AppendAssistant("reply")

	clone := s.Clone()
	if clone == s {
		t.Fatal("Clone returned the same session")
	}

	s.AppendUser("after clone")
	s.Messages[0].Content = "mutated"

	if clone.Len() != 2 {
		t.Errorf("Clone grew with the original: %d messages", clone.Len())
	}
	if clone.Messages[0].Content != "original" {
		t.Errorf("Clone saw a mutation: %q", clone.Messages[0].Content)
	}
	if clone.ID != s.ID || clone.Model != s.Model {
		t.Error("Clone lost session metadata")
	}
}
