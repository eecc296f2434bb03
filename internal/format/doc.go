// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package format turns raw chat text into safe HTML markup.
//
// Format runs a fixed, ordered list of stages over a Document. The first
// stage escapes every markup-significant character, so later stages only
// introduce markup through their own rules. Regions that must not be touched
// again (code blocks, code spans) are frozen: they move into a side table
// and leave a placeholder in the text that is expanded after the last stage.
//
// # Stages
//
//  1. escape: CRLF to LF, HTML-escape & < > " '
//  2. fenced code: ```lang ... ``` at line start, frozen
//  3. inline code: `x` on one line, frozen
//  4. bold, then italic: **x** and *x* on one line
//  5. links: [text](url) with http, https, mailto or relative urls
//  6. headers: #, ## and ### at line start
//  7. list items: "* " or "1. " at line start, one <li> per line
//  8. line breaks: remaining newlines become <br>
//
// Format never fails; text that does not match a rule is kept literally.
//
// # Usage
//
//	html := format.Format("`x` and **y**")
//	// <code>x</code> and <strong>y</strong>
package format
