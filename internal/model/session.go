// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chat sessions and messages.
package model

import (
	"time"

	"github.com/google/uuid"
)

// MaxMessages is the maximum number of messages to keep in session history.
// When exceeded, old messages are pruned to prevent unbounded memory growth.
const MaxMessages = 1000

// =============================================================================
// SESSION TYPE
// =============================================================================

// Session holds an ordered chat history, insertion order chronological.
// It is owned by the UI loop and never touched by the stream worker.
type Session struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Model     string    `json:"model"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Messages []Message `json:"messages"`

	// System prompt prepended to every completion request (optional).
	SystemPrompt string `json:"system_prompt,omitempty"`
}

// NewSession creates a new empty session with a generated ID.
func NewSession(modelName string) *Session {
	return &Session{
		ID:        uuid.NewString(),
		Model:     modelName,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
		Messages:  make([]Message, 0),
	}
}

// =============================================================================
// MESSAGE MANAGEMENT
// =============================================================================

// Append adds a finished message to the session.
func (s *Session) Append(msg Message) {
	s.Messages = append(s.Messages, msg)
	s.UpdatedAt = time.Now()
	s.updateTitle()
	s.prune()
}

// AppendUser creates and appends a user message.
func (s *Session) AppendUser(content string) Message {
	msg := NewUserMessage(content)
	s.Append(msg)
	return msg
}

// AppendAssistant creates and appends a finished assistant message.
func (s *Session) AppendAssistant(content string) Message {
	msg := NewAssistantMessage(content)
	s.Append(msg)
	return msg
}

// Len returns the number of messages in the session.
func (s *Session) Len() int {
	return len(s.Messages)
}

// IsEmpty reports whether the session has no messages.
func (s *Session) IsEmpty() bool {
	return len(s.Messages) == 0
}

// Last returns the most recent message, or a zero Message if empty.
func (s *Session) Last() Message {
	if len(s.Messages) == 0 {
		return Message{}
	}
	return s.Messages[len(s.Messages)-1]
}

// History returns the messages in chronological order. The returned slice
// is the session's own backing slice; callers must not mutate it.
func (s *Session) History() []Message {
	return s.Messages
}

// Clone returns a deep copy of the session. Background persistence gets a
// clone, never the live session: the UI loop keeps mutating the original
// while the save runs.
func (s *Session) Clone() *Session {
	out := *s
	out.Messages = make([]Message, len(s.Messages))
	copy(out.Messages, s.Messages)
	return &out
}

// updateTitle derives the session title from the first user message.
func (s *Session) updateTitle() {
	if s.Title != "" {
		return
	}
	for _, msg := range s.Messages {
		if msg.Role == RoleUser {
			s.Title = msg.Preview(48)
			return
		}
	}
}

// prune drops the oldest messages once the cap is exceeded, preserving a
// leading system message if present.
func (s *Session) prune() {
	if len(s.Messages) <= MaxMessages {
		return
	}
	excess := len(s.Messages) - MaxMessages
	if s.Messages[0].Role == RoleSystem {
		head := s.Messages[0]
		s.Messages = append([]Message{head}, s.Messages[1+excess:]...)
		return
	}
	s.Messages = s.Messages[excess:]
}
