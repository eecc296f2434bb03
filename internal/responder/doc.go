// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package responder produces assistant replies for a chat history.
//
// A Responder receives the full ordered history (ending with the newest user
// message) and the effective settings of the turn. Failures are returned as
// *Error values whose Message is safe to show to the user.
//
// # Providers
//
//   - gemini: Google Gemini through langchaingo's googleai client
//   - openai: Any OpenAI-compatible endpoint through langchaingo's openai client
//   - ollama: A local Ollama server through the ollama package
//
// When no API key is configured for a hosted provider, New returns an
// Unconfigured responder that fails every call with a fixed message.
//
// # Usage
//
//	r, err := responder.New(ctx, responder.Options{Provider: "gemini", APIKey: key})
//	reply, err := r.Respond(ctx, history, settings)
package responder
