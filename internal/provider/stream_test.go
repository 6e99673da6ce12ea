// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// sseChunk formats a text delta as an SSE data event.
func sseChunk(content string) string {
	return fmt.Sprintf("data: {\"id\":\"c1\",\"choices\":[{\"delta\":{\"content\":%q}}]}\n\n", content)
}

func TestChatStreamDeliversDeltasInOrder(t *testing.T) {
	deltas := []string{"Hello", " ", "world"}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		for _, d := range deltas {
			io.WriteString(w, sseChunk(d))
		}
		io.WriteString(w, "data: [DONE]\n\n")
	}))
	defer server.Close()

	client := testClient(server.URL)

	var got []string
	err := client.ChatStream(context.Background(), []ChatMessage{NewUserMessage("hi")}, func(chunk StreamChunk) {
		if c := chunk.GetContent(); c != "" {
			got = append(got, c)
		}
	})
	if err != nil {
		t.Fatalf("ChatStream returned error: %v", err)
	}

	if strings.Join(got, "") != "Hello world" {
		t.Errorf("Expected deltas to join to 'Hello world', got %q", strings.Join(got, ""))
	}
	if len(got) != len(deltas) {
		t.Errorf("Expected %d deltas, got %d", len(deltas), len(got))
	}
}

func TestChatStreamStopsOnFinishReason(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		io.WriteString(w, sseChunk("partial"))
		io.WriteString(w, "data: {\"id\":\"c1\",\"choices\":[{\"delta\":{},\"finish_reason\":\"stop\"}]}\n\n")
		// Anything after finish_reason must be ignored
		io.WriteString(w, sseChunk("ignored"))
	}))
	defer server.Close()

	client := testClient(server.URL)

	var got strings.Builder
	err := client.ChatStream(context.Background(), []ChatMessage{NewUserMessage("hi")}, func(chunk StreamChunk) {
		got.WriteString(chunk.GetContent())
	})
	if err != nil {
		t.Fatalf("ChatStream returned error: %v", err)
	}
	if got.String() != "partial" {
		t.Errorf("Expected 'partial', got %q", got.String())
	}
}

func TestChatStreamSkipsMalformedChunks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		io.WriteString(w, sseChunk("good"))
		io.WriteString(w, "data: {not json at all\n\n")
		io.WriteString(w, sseChunk(" chunk"))
		io.WriteString(w, "data: [DONE]\n\n")
	}))
	defer server.Close()

	client := testClient(server.URL)

	var got strings.Builder
	err := client.ChatStream(context.Background(), []ChatMessage{NewUserMessage("hi")}, func(chunk StreamChunk) {
		got.WriteString(chunk.GetContent())
	})
	if err != nil {
		t.Fatalf("ChatStream returned error: %v", err)
	}
	if got.String() != "good chunk" {
		t.Errorf("Expected 'good chunk', got %q", got.String())
	}
}

func TestChatStreamErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"bad key"}}`))
	}))
	defer server.Close()

	client := testClient(server.URL)

	err := client.ChatStream(context.Background(), []ChatMessage{NewUserMessage("hi")}, func(StreamChunk) {})
	if !errors.Is(err, ErrAuthFailed) {
		t.Errorf("Expected ErrAuthFailed, got %v", err)
	}
}

func TestSSEReader(t *testing.T) {
	input := "event: message\ndata: one\n\ndata: two\ndata: three\n\n"
	reader := NewSSEReader(strings.NewReader(input))

	eventType, data, err := reader.ReadEvent()
	if err != nil {
		t.Fatalf("ReadEvent error: %v", err)
	}
	if eventType != "message" {
		t.Errorf("Expected event type 'message', got %q", eventType)
	}
	if string(data) != "one" {
		t.Errorf("Expected data 'one', got %q", data)
	}

	_, data, err = reader.ReadEvent()
	if err != nil {
		t.Fatalf("ReadEvent error: %v", err)
	}
	if string(data) != "two\nthree" {
		t.Errorf("Expected multi-line data 'two\\nthree', got %q", data)
	}

	_, _, err = reader.ReadEvent()
	if err != io.EOF {
		t.Errorf("Expected io.EOF at end of stream, got %v", err)
	}
}
