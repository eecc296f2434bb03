// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ollama is a minimal client for a local Ollama server.
//
// Only the non-streaming chat endpoint is implemented; the responder package
// wraps Client as the "ollama" provider.
//
// # Usage
//
//	client := ollama.New(url, "llama3.1:8b", time.Minute)
//	reply, err := client.Chat(ctx, turns, &ollama.Sampling{TopK: 40})
//	fmt.Println(reply.Message.Content)
package ollama
