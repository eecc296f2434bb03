// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"fmt"
)

// ErrChatNotFound is returned when a chat has no record on disk.
// Use errors.Is(err, ErrChatNotFound) to check for this error.
var ErrChatNotFound = &ChatError{Message: "chat not found"}

// ChatError represents a chat-level condition that callers branch on.
type ChatError struct {
	Message string
}

// Error implements the error interface.
func (e *ChatError) Error() string {
	return e.Message
}

// Is implements errors.Is support for comparing chat errors.
func (e *ChatError) Is(target error) bool {
	t, ok := target.(*ChatError)
	if !ok {
		return false
	}
	return e.Message == t.Message
}

// StorageError wraps a failure to read, decode or write a chat record.
type StorageError struct {
	Op  string // "load", "save", "delete", "enumerate"
	ID  string
	Err error
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("storage %s %s: %v", e.Op, e.ID, e.Err)
}

// Unwrap returns the underlying error.
func (e *StorageError) Unwrap() error {
	return e.Err
}

// Cause supports github.com/pkg/errors.Cause.
func (e *StorageError) Cause() error {
	return e.Err
}
