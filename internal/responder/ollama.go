// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package responder

import (
	"context"

	"github.com/pkg/errors"

	"github.com/ATreeShine/GEMINI-AGENT/internal/chat"
	"github.com/ATreeShine/GEMINI-AGENT/internal/ollama"
)

// Ollama answers through a local Ollama server.
type Ollama struct {
	client *ollama.Client
}

// NewOllama creates an Ollama responder over client.
func NewOllama(client *ollama.Client) *Ollama {
	return &Ollama{client: client}
}

// Provider returns "ollama".
func (o *Ollama) Provider() string { return ProviderOllama }

// Configured is always true; Ollama needs no credentials.
func (o *Ollama) Configured() bool { return true }

// Respond sends the history to /api/chat.
func (o *Ollama) Respond(ctx context.Context, history []chat.Message, settings chat.Settings) (string, error) {
	turns := make([]ollama.Turn, 0, len(history)+1)
	if sp := settings.SystemPromptOr(""); sp != "" {
		turns = append(turns, ollama.Turn{Role: ollama.RoleSystem, Content: sp})
	}
	for _, m := range history {
		role := ollama.RoleUser
		if m.Role == chat.RoleAssistant {
			role = ollama.RoleAssistant
		}
		turns = append(turns, ollama.Turn{Role: role, Content: m.Content})
	}

	sampling := &ollama.Sampling{
		Temperature: settings.TemperatureOr(DefaultTemperature),
		TopK:        settings.TopKOr(DefaultTopK),
		TopP:        settings.TopPOr(DefaultTopP),
		NumPredict:  settings.MaxTokensOr(DefaultMaxTokens),
	}

	reply, err := o.client.Chat(ctx, turns, sampling)
	if err != nil {
		var oe *ollama.Error
		if errors.As(err, &oe) {
			return "", &Error{Provider: ProviderOllama, Message: oe.Message, Cause: oe.Err}
		}
		return "", newError(ProviderOllama, err, "chat request failed")
	}
	if reply.Message.Content == "" {
		return "", newError(ProviderOllama, nil, "empty response returned")
	}
	return reply.Message.Content, nil
}
