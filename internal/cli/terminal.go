// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"io"
	"os"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// Wrapping bounds for rendered replies.
const (
	defaultWidth = 80
	minWidth     = 40
)

// terminal describes the destination of command output.
type terminal struct {
	tty   bool
	width int
}

// detectTerminal inspects w. Anything that is not a terminal file, such as
// a pipe or a test buffer, is reported as a plain stream of defaultWidth.
func detectTerminal(w io.Writer) terminal {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return terminal{width: defaultWidth}
	}

	width, _, err := term.GetSize(int(f.Fd()))
	switch {
	case err != nil || width <= 0:
		width = defaultWidth
	case width < minWidth:
		width = minWidth
	}
	return terminal{tty: true, width: width}
}

// colorProfile chooses the lipgloss profile for stdout. NO_COLOR (and
// CLICOLOR=0) disable styling, FORCE_COLOR enables it for pipes.
func colorProfile() termenv.Profile {
	if termenv.EnvNoColor() {
		return termenv.Ascii
	}
	if os.Getenv("FORCE_COLOR") != "" {
		return termenv.ANSI256
	}
	if !detectTerminal(os.Stdout).tty {
		return termenv.Ascii
	}
	return termenv.EnvColorProfile()
}
