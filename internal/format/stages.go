// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package format

import (
	"html"
	"regexp"
	"strings"
)

// Stage is one rewrite step of the pipeline.
type Stage struct {
	Name  string
	Apply func(d *Document)
}

// =============================================================================
// ESCAPE
// =============================================================================

var placeholderEscaper = strings.NewReplacer(
	string(phOpen), "&#57344;",
	string(phClose), "&#57345;",
)

// escapeStage normalizes line endings and escapes & < > " '.
func escapeStage(d *Document) {
	text := strings.ReplaceAll(d.Text, "\r\n", "\n")
	text = html.EscapeString(text)
	d.Text = placeholderEscaper.Replace(text)
}

// =============================================================================
// CODE
// =============================================================================

// Opening fence at line start with an optional language tag; the body runs
// to the first closing fence that starts a line.
var fencedPattern = regexp.MustCompile("(?m)^```([A-Za-z0-9_+-]*)\n((?s:.*?))\n```")

func fencedCodeStage(d *Document) {
	d.Text = fencedPattern.ReplaceAllStringFunc(d.Text, func(m string) string {
		sub := fencedPattern.FindStringSubmatch(m)
		class := "code-block"
		if sub[1] != "" {
			class += " language-" + sub[1]
		}
		return d.Freeze(`<pre class="` + class + `"><code>` + sub[2] + `</code></pre>`)
	})
}

var inlineCodePattern = regexp.MustCompile("`([^`\n]+)`")

func inlineCodeStage(d *Document) {
	d.Text = inlineCodePattern.ReplaceAllStringFunc(d.Text, func(m string) string {
		return d.Freeze("<code>" + m[1:len(m)-1] + "</code>")
	})
}

// =============================================================================
// EMPHASIS
// =============================================================================

// Content is one line, starts and ends with a non-space and holds no '*'.
var (
	boldPattern   = regexp.MustCompile(`\*\*([^*\s](?:[^*\n]*[^*\s])?)\*\*`)
	italicPattern = regexp.MustCompile(`\*([^*\s](?:[^*\n]*[^*\s])?)\*`)
)

func boldStage(d *Document) {
	d.Text = boldPattern.ReplaceAllString(d.Text, "<strong>$1</strong>")
}

func italicStage(d *Document) {
	d.Text = italicPattern.ReplaceAllString(d.Text, "<em>$1</em>")
}

// =============================================================================
// LINKS
// =============================================================================

var linkPattern = regexp.MustCompile(`\[([^\]\n]+)\]\(([^)\s]+)\)`)

func linkStage(d *Document) {
	d.Text = linkPattern.ReplaceAllStringFunc(d.Text, func(m string) string {
		sub := linkPattern.FindStringSubmatch(m)
		text, url := sub[1], sub[2]
		if !safeURL(url) {
			return m
		}
		return `<a href="` + url + `" target="_blank" rel="noopener noreferrer">` + text + `</a>`
	})
}

// safeURL allows http, https and mailto urls plus urls without a scheme.
// The url is already HTML-escaped, so a '<' can only come from markup an
// earlier stage inserted.
func safeURL(url string) bool {
	if hasPlaceholder(url) || strings.ContainsRune(url, '<') {
		return false
	}
	end := strings.IndexAny(url, "/?#")
	if end < 0 {
		end = len(url)
	}
	colon := strings.IndexByte(url[:end], ':')
	if colon < 0 {
		return true
	}
	switch strings.ToLower(url[:colon]) {
	case "http", "https", "mailto":
		return true
	default:
		return false
	}
}

// =============================================================================
// BLOCKS
// =============================================================================

var headerPattern = regexp.MustCompile(`(?m)^(#{1,3}) ([^\n]*)$`)

func headerStage(d *Document) {
	d.Text = headerPattern.ReplaceAllStringFunc(d.Text, func(m string) string {
		sub := headerPattern.FindStringSubmatch(m)
		level := string(rune('0' + len(sub[1])))
		return "<h" + level + ">" + sub[2] + "</h" + level + ">"
	})
}

var (
	bulletPattern   = regexp.MustCompile(`(?m)^\* ([^\n]*)$`)
	numberedPattern = regexp.MustCompile(`(?m)^[0-9]+\. ([^\n]*)$`)
)

func listStage(d *Document) {
	d.Text = bulletPattern.ReplaceAllString(d.Text, "<li>$1</li>")
	d.Text = numberedPattern.ReplaceAllString(d.Text, "<li>$1</li>")
}

func lineBreakStage(d *Document) {
	d.Text = strings.ReplaceAll(d.Text, "\n", "<br>")
}
