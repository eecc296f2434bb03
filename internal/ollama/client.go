// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Defaults applied by New for empty arguments.
const (
	DefaultBaseURL = "http://127.0.0.1:11434"
	DefaultModel   = "llama3.1:8b"
	DefaultTimeout = 60 * time.Second
)

// =============================================================================
// ERRORS
// =============================================================================

// Error is a failed call to the Ollama server. Status is the HTTP status, or
// zero when the server was never reached.
type Error struct {
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// IsModelNotFound reports whether err is a 404 from the chat endpoint.
func IsModelNotFound(err error) bool {
	var oe *Error
	return errors.As(err, &oe) && oe.Status == http.StatusNotFound
}

// =============================================================================
// CLIENT
// =============================================================================

// Client talks to one Ollama server using one model. It is safe for
// concurrent use.
type Client struct {
	baseURL string
	model   string
	http    *http.Client
}

// New creates a client. Empty arguments take the package defaults.
func New(baseURL, model string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		http:    &http.Client{Timeout: timeout},
	}
}

// BaseURL returns the server address.
func (c *Client) BaseURL() string { return c.baseURL }

// Model returns the model used for every request.
func (c *Client) Model() string { return c.model }

// Chat sends turns to /api/chat and waits for the complete reply.
func (c *Client) Chat(ctx context.Context, turns []Turn, sampling *Sampling) (*Reply, error) {
	body, err := json.Marshal(chatBody{Model: c.model, Messages: turns, Options: sampling})
	if err != nil {
		return nil, &Error{Message: "failed to encode request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, &Error{Message: "failed to create request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, &Error{Message: "request timed out", Err: err}
		}
		return nil, &Error{Message: "Ollama is not reachable at " + c.baseURL, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, &Error{Status: resp.StatusCode, Message: "model " + c.model + " not found"}
	case resp.StatusCode != http.StatusOK:
		var eb errorBody
		if json.NewDecoder(resp.Body).Decode(&eb) == nil && eb.Error != "" {
			return nil, &Error{Status: resp.StatusCode, Message: eb.Error}
		}
		return nil, &Error{Status: resp.StatusCode, Message: "chat request failed: " + resp.Status}
	}

	var reply Reply
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return nil, &Error{Status: resp.StatusCode, Message: "failed to decode response", Err: err}
	}
	return &reply, nil
}
