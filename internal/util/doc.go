// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared across the gemini-agent packages.
//
// # Key Functions
//
// File Operations:
//   - AtomicWriteFile: Crash-safe file writing with fsync and rename
//   - IsTempFile: Reports whether a name is an in-flight atomic write
//
// String Utilities:
//   - TruncateRunes: UTF-8 safe truncation to a rune count
//   - TruncateWidth, PadRight: Display-width aware helpers for tables
//
// # Usage
//
//	// Write a transcript so a crash leaves either the old or the new file
//	err := util.AtomicWriteFile(path, data, 0644)
//
//	// Fit a title into a table column
//	cell := util.PadRight(util.TruncateWidth(title, 40), 40)
package util
