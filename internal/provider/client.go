// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package provider

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Configuration constants for the completions API.
const (
	// DefaultTimeout is the timeout for non-streaming requests.
	DefaultTimeout = 60 * time.Second

	// MaxResponseSize is the maximum allowed response body size.
	// SECURITY: Response size limit prevents memory exhaustion.
	MaxResponseSize = 10 * 1024 * 1024 // 10MB

	// requestsPerSecond caps the outbound request rate. One in-flight stream
	// at a time is the norm; the limiter only guards against pathological
	// REPL loops hammering the endpoint.
	requestsPerSecond = 2
)

var (
	// PERFORMANCE: Connection pooling reduces TCP handshake overhead.
	// Shared HTTP client for blocking (non-streaming) requests.
	sharedHTTPClient = &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
		Timeout: DefaultTimeout,
	}

	// sharedStreamingClient is used for streaming requests. No client
	// timeout: a stream lives as long as the server keeps sending, and the
	// caller's context governs its lifetime.
	sharedStreamingClient = &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
	}
)

// =============================================================================
// CLIENT
// =============================================================================

// Config holds the provider connection settings.
type Config struct {
	// BaseURL is the API base, e.g. "https://api.openai.com/v1" or a local
	// inference server.
	BaseURL string

	// APIKey authenticates requests. Optional for local servers.
	APIKey string

	// Model is the model identifier sent with every request.
	Model string

	// Temperature and MaxTokens are passed through when non-zero.
	Temperature float64
	MaxTokens   int
}

// Client communicates with an OpenAI-compatible chat completions endpoint.
type Client struct {
	cfg     Config
	limiter *rate.Limiter
}

// NewClient creates a client for the given provider configuration.
// Requests will fail with ErrNotConfigured until BaseURL and Model are set.
func NewClient(cfg Config) *Client {
	return &Client{
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond),
	}
}

// Model returns the configured model identifier.
func (c *Client) Model() string {
	return c.cfg.Model
}

// IsConfigured reports whether the client has enough configuration to
// attempt a request.
func (c *Client) IsConfigured() bool {
	return c.cfg.BaseURL != "" && c.cfg.Model != ""
}

// setHeaders sets the common request headers.
func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}
}

// =============================================================================
// BLOCKING COMPLETION
// =============================================================================

// Complete performs a blocking chat completion and returns the whole reply.
func (c *Client) Complete(ctx context.Context, messages []ChatMessage) (string, error) {
	if !c.IsConfigured() {
		return "", ErrNotConfigured
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	reqBody := ChatRequest{
		Model:       c.cfg.Model,
		Messages:    messages,
		Stream:      false,
		Temperature: c.cfg.Temperature,
		MaxTokens:   c.cfg.MaxTokens,
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.BaseURL+"/chat/completions", bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := sharedHTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", handleErrorResponse(resp.StatusCode, body)
	}

	var chatResp ChatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	return chatResp.GetContent(), nil
}

// =============================================================================
// ERROR MAPPING
// =============================================================================

// handleErrorResponse converts HTTP error responses to appropriate Go errors.
func handleErrorResponse(statusCode int, body []byte) error {
	var apiErr apiErrorResponse
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
		structured := &APIError{
			Code:    apiErr.Error.Code,
			Message: apiErr.Error.Message,
			Status:  statusCode,
		}

		switch statusCode {
		case http.StatusUnauthorized:
			return fmt.Errorf("%w: %s", ErrAuthFailed, structured.Message)
		case http.StatusPaymentRequired:
			return fmt.Errorf("%w: %s", ErrInsufficientCredits, structured.Message)
		case http.StatusNotFound:
			return fmt.Errorf("%w: %s", ErrModelNotFound, structured.Message)
		case http.StatusTooManyRequests:
			return fmt.Errorf("%w: %s", ErrRateLimited, structured.Message)
		default:
			return structured
		}
	}

	// Fallback for unparseable error bodies
	switch statusCode {
	case http.StatusUnauthorized:
		return ErrAuthFailed
	case http.StatusPaymentRequired:
		return ErrInsufficientCredits
	case http.StatusNotFound:
		return ErrModelNotFound
	case http.StatusTooManyRequests:
		return ErrRateLimited
	default:
		return &APIError{
			Message: string(body),
			Status:  statusCode,
		}
	}
}
