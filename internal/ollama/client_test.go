// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pkg/errors"
)

func TestNew_Defaults(t *testing.T) {
	c := New("", "", 0)
	if c.BaseURL() != DefaultBaseURL {
		t.Errorf("BaseURL = %q", c.BaseURL())
	}
	if c.Model() != DefaultModel {
		t.Errorf("Model = %q", c.Model())
	}
	if c.http.Timeout != DefaultTimeout {
		t.Errorf("Timeout = %v", c.http.Timeout)
	}

	if got := New("http://host:1/", "m", 0).BaseURL(); got != "http://host:1" {
		t.Errorf("trailing slash kept: %q", got)
	}
}

func TestChat_Success(t *testing.T) {
	var got chatBody
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(Reply{
			Model:   got.Model,
			Message: Turn{Role: RoleAssistant, Content: "pong"},
			Done:    true,
		})
	}))
	defer srv.Close()

	c := New(srv.URL, "m1", 0)
	reply, err := c.Chat(context.Background(), []Turn{
		{Role: RoleSystem, Content: "sys"},
		{Role: RoleUser, Content: "ping"},
	}, &Sampling{Temperature: 0.7, TopK: 40, NumPredict: 10})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}

	if reply.Message.Content != "pong" {
		t.Errorf("content = %q, want pong", reply.Message.Content)
	}
	if got.Model != "m1" {
		t.Errorf("model = %q, want m1", got.Model)
	}
	if got.Stream {
		t.Error("expected non-streaming request")
	}
	if got.Options == nil || got.Options.TopK != 40 || got.Options.NumPredict != 10 {
		t.Errorf("options not forwarded: %+v", got.Options)
	}
	if len(got.Messages) != 2 || got.Messages[0].Role != RoleSystem {
		t.Errorf("messages = %+v", got.Messages)
	}
}

func TestChat_ModelNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := New(srv.URL, "x", 0).Chat(context.Background(), nil, nil)
	if !IsModelNotFound(err) {
		t.Errorf("err = %v, want model not found", err)
	}
	if !strings.Contains(err.Error(), "model x not found") {
		t.Errorf("err = %q", err)
	}
}

func TestChat_ServerErrorMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(errorBody{Error: "out of memory"})
	}))
	defer srv.Close()

	_, err := New(srv.URL, "x", 0).Chat(context.Background(), nil, nil)
	if err == nil || err.Error() != "out of memory" {
		t.Errorf("err = %v, want out of memory", err)
	}
	if IsModelNotFound(err) {
		t.Error("500 reported as model not found")
	}
}

func TestChat_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := New(url, "x", 0).Chat(context.Background(), nil, nil)
	var oe *Error
	if err == nil || !errors.As(err, &oe) || oe.Status != 0 {
		t.Fatalf("err = %v, want unreachable", err)
	}
	if !strings.Contains(oe.Message, "not reachable") {
		t.Errorf("message = %q", oe.Message)
	}
}
