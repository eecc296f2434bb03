// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"io"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/ATreeShine/GEMINI-AGENT/internal/format"
)

func newFormatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "format",
		Short: "Render message text from stdin as HTML",
		Long: `Read message text from stdin and write the HTML markup the web client
displays: escaped text with code blocks, inline code, emphasis, links,
headers, lists and line breaks.`,
		Example: `  echo '**hi** there' | gemini-agent format`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return errors.Wrap(err, "failed to read stdin")
			}
			_, err = io.WriteString(cmd.OutOrStdout(), format.Format(string(data))+"\n")
			return err
		},
	}
}
