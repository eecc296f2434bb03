// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/ATreeShine/GEMINI-AGENT/internal/conversation"
	"github.com/ATreeShine/GEMINI-AGENT/internal/server"
)

func newSendCmd(opts *rootOptions) *cobra.Command {
	var (
		chatID  string
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:   "send [MESSAGE...]",
		Short: "Send one message and print the reply",
		Long: `Run a single turn. The words of MESSAGE are joined with spaces; with no
arguments the message is read from stdin. A new chat is started unless
--chat names an existing one.`,
		Example: `  gemini-agent send "What is a goroutine?"
  gemini-agent send --chat 1718000000000 "And a channel?"
  git diff | gemini-agent send`,
		RunE: func(cmd *cobra.Command, args []string) error {
			message := strings.Join(args, " ")
			if len(args) == 0 {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return errors.Wrap(err, "failed to read message from stdin")
				}
				message = string(data)
			}

			a, err := loadApp(cmd.Context(), opts, true)
			if err != nil {
				return err
			}
			defer a.Close()

			result, err := a.svc.Send(cmd.Context(), conversation.SendRequest{
				Message: message,
				ChatID:  chatID,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(server.SendResponse{
					ChatID:   result.ChatID,
					Message:  result.Message,
					Messages: result.Messages,
				})
			}

			fmt.Fprintln(out, DimStyle.Render("chat "+result.ChatID))
			fmt.Fprintln(out)
			fmt.Fprintln(out, replyRenderer(detectTerminal(out))(result.Message))
			return nil
		},
	}

	cmd.Flags().StringVar(&chatID, "chat", "", "continue the chat with this id")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "print the full turn result as JSON")
	return cmd
}
