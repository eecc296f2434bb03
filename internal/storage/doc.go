// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides transcript persistence for gemini-agent.
//
// Each chat lives in its own JSON file, written atomically so a crash leaves
// either the previous or the new version on disk.
//
// # Key Types
//
//   - ChatStore: File-per-chat store rooted at a directory
//   - LoadResult: Tagged result of Load, either Found or Fresh
//   - Entry: One enumerated record, holding either a Chat or an error
//   - StorageError: I/O or decode failure with the operation and chat id
//
// # Usage
//
//	store, err := storage.NewChatStore("saved_chats")
//	res, err := store.Load(id)
//	if res.Found() {
//	    fmt.Println(len(res.Chat.Messages))
//	}
//	err = store.Save(id, res.Chat)
//
// # Storage Location
//
// Chats are stored as <dir>/chat_<id>.json. Temp files from in-flight
// writes are never reported by Enumerate.
package storage
