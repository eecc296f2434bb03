// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package responder

import (
	"context"
	"fmt"
	"strings"

	"github.com/ATreeShine/GEMINI-AGENT/internal/chat"
)

// Provider names accepted by New.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

// Fallback generation parameters used when settings leave a field unset.
const (
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 4096
	DefaultTopK        = 40
	DefaultTopP        = 0.95
)

// Responder generates the assistant reply for a history.
type Responder interface {
	Respond(ctx context.Context, history []chat.Message, settings chat.Settings) (string, error)
}

// Func adapts a plain function to the Responder interface.
type Func func(ctx context.Context, history []chat.Message, settings chat.Settings) (string, error)

// Respond calls f.
func (f Func) Respond(ctx context.Context, history []chat.Message, settings chat.Settings) (string, error) {
	return f(ctx, history, settings)
}

// Describer is implemented by responders that can report their provider and
// whether they hold the credentials they need.
type Describer interface {
	Provider() string
	Configured() bool
}

// IsConfigured reports whether r can be expected to produce replies.
// Responders that do not implement Describer are assumed configured.
func IsConfigured(r Responder) bool {
	if d, ok := r.(Describer); ok {
		return d.Configured()
	}
	return r != nil
}

// =============================================================================
// ERRORS
// =============================================================================

// Error is a responder failure with a human-readable message.
type Error struct {
	Provider string
	Message  string
	Cause    error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Provider != "" {
		b.WriteString(e.Provider)
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func newError(provider string, cause error, format string, args ...any) *Error {
	return &Error{Provider: provider, Message: fmt.Sprintf(format, args...), Cause: cause}
}
