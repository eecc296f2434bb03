// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package responder

import (
	"context"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/ATreeShine/GEMINI-AGENT/internal/chat"
)

// Default models per hosted provider.
const (
	DefaultGeminiModel = "gemini-1.5-flash"
	DefaultOpenAIModel = "gpt-4o-mini"
)

// LangChain answers through a langchaingo llms.Model.
type LangChain struct {
	provider string
	model    llms.Model

	// foldSystem merges the system prompt into the first user message for
	// backends that reject a system role inside the message list.
	foldSystem bool
}

// NewLangChain wraps an existing model. Mostly useful with a fake model in tests.
func NewLangChain(provider string, model llms.Model, foldSystem bool) *LangChain {
	return &LangChain{provider: provider, model: model, foldSystem: foldSystem}
}

// NewGemini builds a Gemini responder.
func NewGemini(ctx context.Context, apiKey, model string) (*LangChain, error) {
	if model == "" {
		model = DefaultGeminiModel
	}
	llm, err := googleai.New(ctx,
		googleai.WithAPIKey(apiKey),
		googleai.WithDefaultModel(model),
	)
	if err != nil {
		return nil, newError(ProviderGemini, err, "failed to initialize Gemini client")
	}
	return NewLangChain(ProviderGemini, llm, true), nil
}

// NewOpenAI builds a responder for an OpenAI-compatible endpoint.
func NewOpenAI(apiKey, baseURL, model string) (*LangChain, error) {
	if model == "" {
		model = DefaultOpenAIModel
	}
	opts := []openai.Option{
		openai.WithToken(apiKey),
		openai.WithModel(model),
	}
	if baseURL != "" {
		opts = append(opts, openai.WithBaseURL(baseURL))
	}
	llm, err := openai.New(opts...)
	if err != nil {
		return nil, newError(ProviderOpenAI, err, "failed to initialize OpenAI client")
	}
	return NewLangChain(ProviderOpenAI, llm, false), nil
}

// Provider returns the provider name.
func (l *LangChain) Provider() string { return l.provider }

// Configured is true once the client was built.
func (l *LangChain) Configured() bool { return l.model != nil }

// Respond sends the history to the model and returns the first choice.
func (l *LangChain) Respond(ctx context.Context, history []chat.Message, settings chat.Settings) (string, error) {
	if len(history) == 0 {
		return "", newError(l.provider, nil, "empty history")
	}

	msgs := l.buildMessages(history, settings.SystemPromptOr(""))

	resp, err := l.model.GenerateContent(ctx, msgs,
		llms.WithTemperature(settings.TemperatureOr(DefaultTemperature)),
		llms.WithMaxTokens(settings.MaxTokensOr(DefaultMaxTokens)),
		llms.WithTopK(settings.TopKOr(DefaultTopK)),
		llms.WithTopP(settings.TopPOr(DefaultTopP)),
	)
	if err != nil {
		if ctx.Err() != nil {
			return "", newError(l.provider, ctx.Err(), "request cancelled")
		}
		return "", newError(l.provider, err, "generation failed")
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", newError(l.provider, nil, "no response candidates returned")
	}

	text := resp.Choices[0].Content
	if strings.TrimSpace(text) == "" {
		return "", newError(l.provider, nil, "empty response returned")
	}
	return text, nil
}

func (l *LangChain) buildMessages(history []chat.Message, systemPrompt string) []llms.MessageContent {
	msgs := make([]llms.MessageContent, 0, len(history)+1)
	if systemPrompt != "" && !l.foldSystem {
		msgs = append(msgs, llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt))
	}

	folded := systemPrompt == "" || !l.foldSystem
	for _, m := range history {
		role := llms.ChatMessageTypeHuman
		if m.Role == chat.RoleAssistant {
			role = llms.ChatMessageTypeAI
		}
		content := m.Content
		if !folded && role == llms.ChatMessageTypeHuman {
			content = systemPrompt + "\n\n" + content
			folded = true
		}
		msgs = append(msgs, llms.TextParts(role, content))
	}
	return msgs
}
