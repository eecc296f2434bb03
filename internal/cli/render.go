// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"

	"github.com/ATreeShine/GEMINI-AGENT/internal/conversation"
)

// markdownRenderers caches one glamour renderer per wrap width.
var markdownRenderers sync.Map

// newMarkdownRenderer returns a render func for t. Plain streams get the
// content unchanged so piped output stays greppable.
func newMarkdownRenderer(t terminal) func(string) string {
	if !t.tty {
		return func(s string) string { return s }
	}
	return func(content string) string {
		r, err := markdownRendererFor(t.width - 4)
		if err != nil {
			return content
		}
		rendered, err := r.Render(content)
		if err != nil {
			return content
		}
		return strings.TrimRight(rendered, "\n")
	}
}

func markdownRendererFor(width int) (*glamour.TermRenderer, error) {
	if r, ok := markdownRenderers.Load(width); ok {
		return r.(*glamour.TermRenderer), nil
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, err
	}
	actual, _ := markdownRenderers.LoadOrStore(width, r)
	return actual.(*glamour.TermRenderer), nil
}

// replyRenderer styles assistant replies for t, marking recorded failures.
func replyRenderer(t terminal) func(string) string {
	md := newMarkdownRenderer(t)
	return func(content string) string {
		if conversation.IsErrorTurn(content) {
			return ErrorStyle.Render(content)
		}
		return md(content)
	}
}
