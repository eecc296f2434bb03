// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package server provides the JSON HTTP API for gemini-agent.
//
// # Endpoints
//
//   - GET    /api/status               - Liveness and responder configuration
//   - GET    /api/chats                - Chat summaries, newest first
//   - GET    /api/chats/{id}           - Full chat (empty skeleton when unknown)
//   - POST   /api/chat                 - Run one turn
//   - DELETE /api/chats/{id}           - Delete a chat
//   - POST   /api/chats/{id}/export    - Write an export file
//   - PUT    /api/chats/{id}/settings  - Replace stored settings
//   - POST   /api/chats/{id}/title     - Set or clear the title
//   - POST   /api/format               - Render message text to markup
//   - GET    /                         - Static web client, when configured
//
// # Middleware
//
// Every request passes through request id tagging, zap request logging,
// panic recovery, security headers, optional CORS, per-client rate
// limiting (golang.org/x/time/rate) and a 5 MB body cap.
//
// # Usage
//
//	srv := server.New(svc, idx, server.Options{Addr: cfg.Addr(), Logger: logger})
//	if err := srv.Run(ctx); err != nil {
//		return err
//	}
package server
