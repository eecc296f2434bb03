// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package conversation implements the turn protocol over stored chats.
//
// A turn loads a chat, appends the user message, asks the responder for a
// reply under a bounded wait, appends the reply (or a visible error message)
// and saves the chat. Every operation on a chat id runs under that id's
// KeyedLock entry, so concurrent turns on one chat never lose messages.
//
// # Key Types
//
//   - Service: Send, Get, Delete, UpdateSettings, UpdateTitle, Export
//   - KeyedLock: Per-key FIFO mutex registry with context-aware acquisition
//   - ValidationError: Rejected input; nothing was read or written
//
// # Usage
//
//	svc := conversation.NewService(store, r, conversation.Options{Defaults: defaults})
//	res, err := svc.Send(ctx, conversation.SendRequest{Message: "Hello"})
//	fmt.Println(res.ChatID, res.Message)
package conversation
