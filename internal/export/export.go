// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/ATreeShine/GEMINI-AGENT/internal/chat"
	"github.com/ATreeShine/GEMINI-AGENT/internal/util"
)

// =============================================================================
// EXPORT INTERFACE
// =============================================================================

// Exporter defines the interface for chat exporters.
type Exporter interface {
	// Export converts a chat to the target format and returns the content.
	Export(c *chat.Chat) ([]byte, error)

	// FileExtension returns the file extension, including the dot.
	FileExtension() string

	// MimeType returns the MIME type for the exported format.
	MimeType() string
}

// ErrEmptyChat is returned when exporting a chat with no messages.
var ErrEmptyChat = errors.New("chat has no messages")

// registry maps format names and aliases to exporter constructors.
var registry = map[string]func() Exporter{
	"json":     func() Exporter { return NewJSONExporter() },
	"markdown": func() Exporter { return NewMarkdownExporter() },
	"md":       func() Exporter { return NewMarkdownExporter() },
	"html":     func() Exporter { return NewHTMLExporter() },
	"txt":      func() Exporter { return NewTextExporter() },
	"text":     func() Exporter { return NewTextExporter() },
}

// ForFormat returns the exporter for a format name (case-insensitive).
func ForFormat(name string) (Exporter, bool) {
	ctor, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, false
	}
	return ctor(), true
}

// Formats lists the accepted format names.
func Formats() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// =============================================================================
// EXPORT FUNCTIONS
// =============================================================================

// ExportToFile exports a chat into dir and returns the output path.
func ExportToFile(c *chat.Chat, exporter Exporter, dir string, now time.Time) (string, error) {
	if c == nil {
		return "", errors.New("chat is nil")
	}

	content, err := exporter.Export(c)
	if err != nil {
		return "", errors.Wrap(err, "export failed")
	}

	filename := fmt.Sprintf("chat_%s_%s%s",
		sanitizeFilename(c.ID),
		now.Format("20060102_150405"),
		exporter.FileExtension(),
	)
	if dir == "" {
		dir = "."
	}
	outputPath := filepath.Join(dir, filename)

	if err := util.AtomicWriteFile(outputPath, content, 0644); err != nil {
		return "", errors.Wrap(err, "write export")
	}
	return outputPath, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// sanitizeFilename replaces characters that are invalid in file names.
func sanitizeFilename(s string) string {
	s = util.TruncateRunes(s, 64)

	var b strings.Builder
	for _, r := range s {
		switch {
		case r == '/' || r == '\\' || r == ':' || r == '*' || r == '?' ||
			r == '"' || r == '<' || r == '>' || r == '|':
			b.WriteRune('-')
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			b.WriteRune('_')
		case r < 32 || r == 127:
			b.WriteRune('-')
		default:
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "chat"
	}
	return b.String()
}

// checkExportable rejects nil and empty chats.
func checkExportable(c *chat.Chat) error {
	if c == nil {
		return errors.New("chat is nil")
	}
	if len(c.Messages) == 0 {
		return ErrEmptyChat
	}
	return nil
}

// formatTimestamp renders an epoch-millisecond timestamp for display.
func formatTimestamp(ms int64) string {
	if ms <= 0 {
		return ""
	}
	return time.UnixMilli(ms).Format("2006-01-02 15:04:05")
}

// roleLabel returns the display label for a message role.
func roleLabel(r chat.Role) string {
	if r == "" {
		return "Unknown"
	}
	return r.DisplayName()
}
