// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func init() {
	lipgloss.SetColorProfile(colorProfile())
}

// =============================================================================
// PALETTE
// =============================================================================

// ANSI 256 colors used across commands.
const (
	colorAccent    = lipgloss.Color("39")  // cyan
	colorMuted     = lipgloss.Color("242") // gray
	colorRule      = lipgloss.Color("240")
	colorOK        = lipgloss.Color("42")  // green
	colorFail      = lipgloss.Color("196") // red
	colorCaution   = lipgloss.Color("214") // orange
	colorUser      = lipgloss.Color("75")
	colorAssistant = lipgloss.Color("141")
)

var (
	// TitleStyle renders chat titles and table headers.
	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)

	// LabelStyle aligns the command column of /help.
	LabelStyle = lipgloss.NewStyle().Foreground(colorMuted).Width(16)

	SuccessStyle = lipgloss.NewStyle().Bold(true).Foreground(colorOK)

	// ErrorStyle also marks recorded error turns in transcripts.
	ErrorStyle = lipgloss.NewStyle().Bold(true).Foreground(colorFail)

	WarningStyle = lipgloss.NewStyle().Foreground(colorCaution)

	// DimStyle is for chat ids, timestamps and hints.
	DimStyle = lipgloss.NewStyle().Foreground(colorMuted)

	// UserStyle and AssistantStyle label transcript roles.
	UserStyle      = lipgloss.NewStyle().Bold(true).Foreground(colorUser)
	AssistantStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAssistant)

	ruleStyle = lipgloss.NewStyle().Foreground(colorRule)
)

// rule draws a horizontal line width columns wide.
func rule(width int) string {
	if width <= 0 {
		width = defaultWidth
	}
	return ruleStyle.Render(strings.Repeat("─", width))
}

// RenderLabel renders a fixed-width label.
func RenderLabel(label string) string {
	return LabelStyle.Render(label)
}
