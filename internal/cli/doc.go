// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides the gemini-agent command-line interface.
//
// Commands are built with cobra. Each command loads configuration through
// the persistent --config flag and assembles only the components it needs.
//
// # Commands Overview
//
//   - serve: Run the HTTP API and web client
//   - chat: Interactive chat session with history and slash commands
//   - send: Single turn, prints the chat id and reply
//   - chats: list, show, delete and export stored chats
//   - format: Render stdin to HTML markup
//   - config: show the effective configuration or write a starter file
//   - version: Print version information
//
// # Usage
//
//	func main() {
//		os.Exit(cli.Execute())
//	}
package cli
