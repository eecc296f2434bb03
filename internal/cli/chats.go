// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/ATreeShine/GEMINI-AGENT/internal/chat"
	"github.com/ATreeShine/GEMINI-AGENT/internal/export"
	"github.com/ATreeShine/GEMINI-AGENT/internal/index"
	"github.com/ATreeShine/GEMINI-AGENT/internal/util"
)

func newChatsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chats",
		Short: "Manage stored chats",
	}
	cmd.AddCommand(
		newChatsListCmd(opts),
		newChatsShowCmd(opts),
		newChatsDeleteCmd(opts),
		newChatsExportCmd(opts),
	)
	return cmd
}

func newChatsListCmd(opts *rootOptions) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List chats, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd.Context(), opts, true)
			if err != nil {
				return err
			}
			defer a.Close()

			summaries, err := a.index.List(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				if summaries == nil {
					summaries = []index.Summary{}
				}
				return writeJSON(out, summaries)
			}
			writeSummaryTable(out, summaries)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "print summaries as JSON")
	return cmd
}

func newChatsShowCmd(opts *rootOptions) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "show ID",
		Short: "Print a chat transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd.Context(), opts, true)
			if err != nil {
				return err
			}
			defer a.Close()

			c, err := a.svc.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				return writeJSON(out, c)
			}
			writeTranscript(out, c)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "print the stored record as JSON")
	return cmd
}

func newChatsDeleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "delete ID",
		Aliases: []string{"rm"},
		Short:   "Delete a chat",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd.Context(), opts, true)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.svc.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), SuccessStyle.Render("Deleted chat "+args[0]))
			return nil
		},
	}
}

func newChatsExportCmd(opts *rootOptions) *cobra.Command {
	var formatName string

	cmd := &cobra.Command{
		Use:   "export ID",
		Short: "Export a chat to a file",
		Long: fmt.Sprintf(`Write the chat to the configured export directory.

Formats: %s`, strings.Join(export.Formats(), ", ")),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd.Context(), opts, true)
			if err != nil {
				return err
			}
			defer a.Close()

			path, err := a.svc.Export(cmd.Context(), args[0], formatName)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&formatName, "format", "f", "json", "export format")
	return cmd
}

// =============================================================================
// OUTPUT HELPERS
// =============================================================================

const (
	idColumnWidth    = 16
	titleColumnWidth = 36
)

// writeSummaryTable prints summaries as aligned columns. Titles are cut by
// display width so wide characters keep the columns straight.
func writeSummaryTable(w io.Writer, summaries []index.Summary) {
	if len(summaries) == 0 {
		fmt.Fprintln(w, DimStyle.Render("No saved chats."))
		return
	}

	header := util.PadRight("ID", idColumnWidth) + "  " +
		util.PadRight("TITLE", titleColumnWidth) + "  " +
		util.PadRight("MSGS", 5) + "  UPDATED"
	fmt.Fprintln(w, TitleStyle.Render(header))
	fmt.Fprintln(w, rule(runewidth.StringWidth(header)+len("2006-01-02 15:04")-len("UPDATED")))

	for _, s := range summaries {
		fmt.Fprintf(w, "%s  %s  %s  %s\n",
			util.PadRight(util.TruncateWidth(s.ID, idColumnWidth), idColumnWidth),
			util.PadRight(util.TruncateWidth(s.Title, titleColumnWidth), titleColumnWidth),
			util.PadRight(strconv.Itoa(s.MessageCount), 5),
			formatMillis(s.Timestamp),
		)
	}
}

// writeTranscript prints every message of c with its role and time.
func writeTranscript(w io.Writer, c *chat.Chat) {
	fmt.Fprintln(w, TitleStyle.Render(chat.DeriveTitle(c)))
	fmt.Fprintln(w, DimStyle.Render("chat "+c.ID))
	if len(c.Messages) == 0 {
		fmt.Fprintln(w, DimStyle.Render("(no messages)"))
		return
	}
	render := replyRenderer(detectTerminal(w))
	for _, m := range c.Messages {
		fmt.Fprintln(w)
		writeMessage(w, m, render)
	}
}

func writeMessage(w io.Writer, m chat.Message, render func(string) string) {
	label := UserStyle.Render(m.Role.DisplayName())
	content := m.Content
	if m.Role == chat.RoleAssistant {
		label = AssistantStyle.Render(m.Role.DisplayName())
		content = render(content)
	}
	fmt.Fprintf(w, "%s %s\n%s\n", label, DimStyle.Render(formatMillis(m.Timestamp)), content)
}

func formatMillis(ms int64) string {
	if ms <= 0 {
		return "-"
	}
	return time.UnixMilli(ms).Format("2006-01-02 15:04")
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
