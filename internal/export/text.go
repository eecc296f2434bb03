// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"strings"

	"github.com/ATreeShine/GEMINI-AGENT/internal/chat"
)

// TextExporter exports a plain text transcript.
type TextExporter struct{}

// NewTextExporter creates a new plain text exporter.
func NewTextExporter() *TextExporter {
	return &TextExporter{}
}

// Export converts a chat to plain text.
func (e *TextExporter) Export(c *chat.Chat) ([]byte, error) {
	if err := checkExportable(c); err != nil {
		return nil, err
	}

	var sb strings.Builder
	sb.WriteString(chat.DeriveTitle(c))
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 40))
	sb.WriteString("\n\n")

	for _, msg := range c.Messages {
		sb.WriteString(roleLabel(msg.Role))
		if ts := formatTimestamp(msg.Timestamp); ts != "" {
			sb.WriteString(" [" + ts + "]")
		}
		sb.WriteString(":\n")
		sb.WriteString(msg.Content)
		sb.WriteString("\n\n")
	}
	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for plain text.
func (e *TextExporter) FileExtension() string {
	return ".txt"
}

// MimeType returns the MIME type for plain text.
func (e *TextExporter) MimeType() string {
	return "text/plain"
}
