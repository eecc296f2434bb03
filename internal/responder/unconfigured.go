// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package responder

import (
	"context"

	"github.com/ATreeShine/GEMINI-AGENT/internal/chat"
)

// UnconfiguredMessage is the failure text of the Unconfigured responder.
const UnconfiguredMessage = "API key not configured or Gemini API initialization failed. Please check server logs."

// Unconfigured stands in for a provider that could not be initialized.
// Every call fails, so turns still persist with a visible error message.
type Unconfigured struct {
	Name   string
	Reason error
}

// Respond always fails.
func (u *Unconfigured) Respond(context.Context, []chat.Message, chat.Settings) (string, error) {
	return "", &Error{Provider: u.Name, Message: UnconfiguredMessage}
}

// Provider returns the provider that failed to initialize.
func (u *Unconfigured) Provider() string { return u.Name }

// Configured is always false.
func (u *Unconfigured) Configured() bool { return false }
