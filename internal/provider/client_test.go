// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package provider

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func testClient(url string) *Client {
	return NewClient(Config{
		BaseURL: url,
		APIKey:  "sk-test-abcdefghijklmnopqrstuvwxyz",
		Model:   "test-model",
	})
}

func TestCompleteReturnsContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("Expected path /chat/completions, got %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); !strings.HasPrefix(auth, "Bearer ") {
			t.Errorf("Expected bearer auth header, got %q", auth)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "test-id",
			"model": "test-model",
			"choices": [{
				"message": {"role": "assistant", "content": "full reply"},
				"finish_reason": "stop"
			}],
			"usage": {"prompt_tokens": 10, "completion_tokens": 20, "total_tokens": 30}
		}`))
	}))
	defer server.Close()

	client := testClient(server.URL)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	reply, err := client.Complete(ctx, []ChatMessage{NewUserMessage("hello")})
	if err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	if reply != "full reply" {
		t.Errorf("Expected 'full reply', got %q", reply)
	}
}

func TestCompleteNotConfigured(t *testing.T) {
	client := NewClient(Config{})

	_, err := client.Complete(context.Background(), nil)
	if !errors.Is(err, ErrNotConfigured) {
		t.Errorf("Expected ErrNotConfigured, got %v", err)
	}
}

func TestErrorResponseMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"auth failed", http.StatusUnauthorized, `{"error":{"code":"invalid_key","message":"bad key"}}`, ErrAuthFailed},
		{"rate limited", http.StatusTooManyRequests, `{"error":{"message":"slow down"}}`, ErrRateLimited},
		{"model not found", http.StatusNotFound, `{"error":{"message":"no such model"}}`, ErrModelNotFound},
		{"insufficient credits", http.StatusPaymentRequired, `{"error":{"message":"empty wallet"}}`, ErrInsufficientCredits},
		{"auth failed unparseable body", http.StatusUnauthorized, `nonsense`, ErrAuthFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := testClient(server.URL)
			_, err := client.Complete(context.Background(), []ChatMessage{NewUserMessage("hi")})
			if !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestErrorResponseStructured(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":{"code":"server_error","message":"upstream exploded"}}`))
	}))
	defer server.Close()

	client := testClient(server.URL)
	_, err := client.Complete(context.Background(), []ChatMessage{NewUserMessage("hi")})

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected *APIError, got %v", err)
	}
	if apiErr.Status != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", apiErr.Status)
	}
	if apiErr.Code != "server_error" {
		t.Errorf("Expected code 'server_error', got %q", apiErr.Code)
	}
}
