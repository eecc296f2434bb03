// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"golang.org/x/text/unicode/norm"

	"github.com/ATreeShine/GEMINI-AGENT/internal/util"
)

// TitleRunes is how many characters of the first message a derived title keeps.
const TitleRunes = 30

// DeriveTitle computes the display title of a chat:
// the stored title, else the first message truncated to TitleRunes
// characters plus "...", else "Chat <id>".
func DeriveTitle(c *Chat) string {
	if c.Title != "" {
		return c.Title
	}
	if len(c.Messages) > 0 {
		return titlePrefix(c.Messages[0].Content) + "..."
	}
	return "Chat " + c.ID
}

// titlePrefix keeps the first TitleRunes runes of content as written. A cut
// that would land inside a combining sequence is moved to its end.
func titlePrefix(content string) string {
	head := util.TruncateRunes(content, TitleRunes)
	rest := content[len(head):]
	if rest == "" || norm.NFC.PropertiesString(rest).BoundaryBefore() {
		return head
	}
	return head + rest[:norm.NFC.NextBoundaryInString(rest, true)]
}
