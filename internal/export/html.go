// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"html"
	"strings"

	"github.com/ATreeShine/GEMINI-AGENT/internal/chat"
	"github.com/ATreeShine/GEMINI-AGENT/internal/format"
)

// =============================================================================
// HTML EXPORTER
// =============================================================================

// HTMLExporter exports chats to a standalone HTML page with embedded CSS.
type HTMLExporter struct {
	// Theme is "light" or "dark".
	Theme string
}

// NewHTMLExporter creates a new HTML exporter.
func NewHTMLExporter() *HTMLExporter {
	return &HTMLExporter{Theme: "dark"}
}

// Export converts a chat to HTML.
func (e *HTMLExporter) Export(c *chat.Chat) ([]byte, error) {
	if err := checkExportable(c); err != nil {
		return nil, err
	}

	title := html.EscapeString(chat.DeriveTitle(c))
	theme := e.Theme
	if theme != "light" {
		theme = "dark"
	}

	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n")
	sb.WriteString("<html lang=\"en\">\n")
	sb.WriteString("<head>\n")
	sb.WriteString("    <meta charset=\"UTF-8\">\n")
	sb.WriteString("    <meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n")
	sb.WriteString(fmt.Sprintf("    <title>%s</title>\n", title))
	sb.WriteString("    <meta name=\"generator\" content=\"gemini-agent\">\n")
	sb.WriteString(css)
	sb.WriteString("</head>\n")
	sb.WriteString(fmt.Sprintf("<body class=\"%s-theme\">\n", theme))
	sb.WriteString("    <div class=\"container\">\n")
	sb.WriteString(fmt.Sprintf("        <header class=\"header\"><h1>%s</h1><span class=\"meta\">%d messages</span></header>\n",
		title, len(c.Messages)))

	sb.WriteString("        <main class=\"conversation\">\n")
	for _, msg := range c.Messages {
		sb.WriteString(e.renderMessage(msg))
	}
	sb.WriteString("        </main>\n")
	sb.WriteString("    </div>\n")
	sb.WriteString("</body>\n")
	sb.WriteString("</html>\n")

	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for HTML.
func (e *HTMLExporter) FileExtension() string {
	return ".html"
}

// MimeType returns the MIME type for HTML.
func (e *HTMLExporter) MimeType() string {
	return "text/html"
}

// renderMessage renders a single message; the body goes through the formatter.
func (e *HTMLExporter) renderMessage(msg chat.Message) string {
	var sb strings.Builder

	roleClass := "user"
	if msg.Role == chat.RoleAssistant {
		roleClass = "assistant"
	}
	sb.WriteString(fmt.Sprintf("            <div class=\"message %s-message\">\n", roleClass))
	sb.WriteString("                <div class=\"message-header\">\n")
	sb.WriteString(fmt.Sprintf("                    <span class=\"role-label\">%s</span>\n", html.EscapeString(roleLabel(msg.Role))))
	if ts := formatTimestamp(msg.Timestamp); ts != "" {
		sb.WriteString(fmt.Sprintf("                    <span class=\"timestamp\">%s</span>\n", ts))
	}
	sb.WriteString("                </div>\n")
	sb.WriteString("                <div class=\"message-content\">")
	sb.WriteString(format.Format(msg.Content))
	sb.WriteString("</div>\n")
	sb.WriteString("            </div>\n")
	return sb.String()
}

const css = `    <style>
        * { margin: 0; padding: 0; box-sizing: border-box; }
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif; line-height: 1.6; }
        .dark-theme { background: #1e1e2e; color: #cdd6f4; }
        .light-theme { background: #ffffff; color: #1e1e2e; }
        .container { max-width: 900px; margin: 0 auto; padding: 2rem 1rem; }
        .header { margin-bottom: 2rem; border-bottom: 1px solid #45475a; padding-bottom: 1rem; }
        .header .meta { font-size: 0.85rem; opacity: 0.7; }
        .message { margin-bottom: 1.5rem; padding: 1rem; border-radius: 8px; }
        .user-message { background: rgba(137, 180, 250, 0.12); }
        .assistant-message { background: rgba(166, 227, 161, 0.10); }
        .message-header { display: flex; justify-content: space-between; margin-bottom: 0.5rem; font-weight: 600; }
        .timestamp { font-weight: normal; font-size: 0.8rem; opacity: 0.6; }
        .code-block { background: #11111b; color: #cdd6f4; padding: 0.75rem; border-radius: 6px; overflow-x: auto; }
        code { font-family: "SF Mono", "Fira Code", monospace; font-size: 0.9em; }
        a { color: #89b4fa; }
    </style>
`
