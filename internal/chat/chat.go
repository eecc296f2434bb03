// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"time"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Assistant"
	default:
		return string(r)
	}
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message is a single entry in a transcript. Messages are never edited once
// appended to a Chat.
type Message struct {
	Role      Role   `json:"role"`
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"` // epoch milliseconds
}

// NewMessage creates a message stamped with the current time.
func NewMessage(role Role, content string) Message {
	return Message{
		Role:      role,
		Content:   content,
		Timestamp: time.Now().UnixMilli(),
	}
}

// =============================================================================
// CHAT TYPE
// =============================================================================

// Chat is a persisted transcript.
type Chat struct {
	ID       string    `json:"id"`
	Title    string    `json:"title,omitempty"`
	Messages []Message `json:"messages"`
	Settings *Settings `json:"settings,omitempty"`
}

// New returns an empty chat with the given id.
func New(id string) *Chat {
	return &Chat{
		ID:       id,
		Messages: make([]Message, 0),
	}
}

// Append adds a message to the end of the transcript.
func (c *Chat) Append(msg Message) {
	c.Messages = append(c.Messages, msg)
}

// Clone returns a deep copy of the chat. Callers outside the service receive
// clones so the append-only history cannot be mutated through shared slices.
func (c *Chat) Clone() *Chat {
	if c == nil {
		return nil
	}
	out := &Chat{
		ID:       c.ID,
		Title:    c.Title,
		Messages: make([]Message, len(c.Messages)),
	}
	copy(out.Messages, c.Messages)
	if c.Settings != nil {
		s := c.Settings.Clone()
		out.Settings = &s
	}
	return out
}
