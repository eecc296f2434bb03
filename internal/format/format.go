// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package format

// Pipeline is the ordered stage list used by Format. Order matters: every
// stage assumes the ones before it already ran.
var Pipeline = []Stage{
	{Name: "escape", Apply: escapeStage},
	{Name: "fenced-code", Apply: fencedCodeStage},
	{Name: "inline-code", Apply: inlineCodeStage},
	{Name: "bold", Apply: boldStage},
	{Name: "italic", Apply: italicStage},
	{Name: "links", Apply: linkStage},
	{Name: "headers", Apply: headerStage},
	{Name: "lists", Apply: listStage},
	{Name: "line-breaks", Apply: lineBreakStage},
}

// Format converts raw text to safe HTML.
func Format(raw string) string {
	return Run(raw, Pipeline)
}

// Run applies stages to raw in order and renders the result.
func Run(raw string, stages []Stage) string {
	d := &Document{Text: raw}
	for _, s := range stages {
		s.Apply(d)
	}
	return d.Render()
}
