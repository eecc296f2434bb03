// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes chats to shareable files.
//
// # Key Types
//
//   - Exporter: Converts a chat to bytes in one format
//   - JSONExporter: The stored record, pretty-printed
//   - MarkdownExporter: Role headings with the raw message text
//   - HTMLExporter: Standalone page; message bodies go through format.Format
//   - TextExporter: Plain text transcript
//
// # Usage
//
//	exp, ok := export.ForFormat("markdown")
//	path, err := export.ExportToFile(c, exp, "exports", time.Now())
//
// Files are named chat_<id>_<yyyymmdd_hhmmss><ext> and written atomically.
package export
