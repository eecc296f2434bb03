// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ATreeShine/GEMINI-AGENT/internal/server"
)

// Version information (can be overridden at build time)
var (
	Version   = server.Version
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// rootOptions holds the persistent flags shared by every command.
type rootOptions struct {
	configPath string
	logLevel   string
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "gemini-agent",
		Short: "Chat with Gemini from the browser or the terminal",
		Long: `gemini-agent keeps persistent chat transcripts and answers each turn
with a configured text generation backend (Gemini, an OpenAI-compatible
API, or a local Ollama server).

Run "gemini-agent serve" for the web client and JSON API, or
"gemini-agent chat" for an interactive terminal session.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "",
		"config file (default ./gemini-agent.toml, then ./gemini-agent.json)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "",
		"log level override: debug, info, warn, error")

	cmd.AddCommand(
		newServeCmd(opts),
		newChatCmd(opts),
		newSendCmd(opts),
		newChatsCmd(opts),
		newFormatCmd(),
		newConfigCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

// Execute runs the command line and returns the process exit code.
// SIGINT and SIGTERM cancel the command context.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error:"), err)
		return 1
	}
	return 0
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "gemini-agent %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
		},
	}
}
