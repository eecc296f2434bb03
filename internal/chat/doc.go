// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat contains the transcript data model shared by the store,
// the index and the conversation service.
//
// # Key Types
//
//   - Chat: A persisted transcript with id, optional title, messages and settings
//   - Message: A single user or assistant message with an epoch-millisecond timestamp
//   - Settings: Generation parameters where every field is optional
//   - Role: Message role enumeration (user, assistant)
//   - IDGenerator: Process-wide source of strictly increasing time-derived ids
//
// # Usage
//
//	ids := chat.NewIDGenerator()
//	c := chat.New(ids.Next())
//	c.Append(chat.NewMessage(chat.RoleUser, "Hello!"))
//	fmt.Println(chat.DeriveTitle(c)) // "Hello!..."
package chat
