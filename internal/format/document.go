// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package format

import (
	"regexp"
	"strconv"
	"strings"
)

// Placeholder delimiters come from the Unicode private use area. The escape
// stage rewrites any occurrence in user text as a character reference, so a
// placeholder in the working text was always produced by a stage.
const (
	phOpen  = '\uE000'
	phClose = '\uE001'
)

// maxExpandDepth bounds nested placeholder expansion.
const maxExpandDepth = 8

var placeholderPattern = regexp.MustCompile("\uE000([0-9]+)\uE001")

// Document is the intermediate representation the stages operate on.
type Document struct {
	// Text is the working text. It is HTML-escaped once the escape stage ran.
	Text string

	frozen []string
}

// Freeze stores markup that later stages must not rewrite and returns the
// placeholder to put in its place.
func (d *Document) Freeze(markup string) string {
	d.frozen = append(d.frozen, markup)
	return string(phOpen) + strconv.Itoa(len(d.frozen)-1) + string(phClose)
}

// Render returns the text with every placeholder expanded.
func (d *Document) Render() string {
	out := d.Text
	for depth := 0; depth < maxExpandDepth && strings.ContainsRune(out, phOpen); depth++ {
		out = placeholderPattern.ReplaceAllStringFunc(out, func(ph string) string {
			idx, err := strconv.Atoi(ph[len(string(phOpen)) : len(ph)-len(string(phClose))])
			if err != nil || idx < 0 || idx >= len(d.frozen) {
				return ""
			}
			return d.frozen[idx]
		})
	}
	return out
}

// hasPlaceholder reports whether s contains a frozen region.
func hasPlaceholder(s string) bool {
	return strings.ContainsRune(s, phOpen)
}
