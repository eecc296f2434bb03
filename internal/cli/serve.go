// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"github.com/spf13/cobra"

	"github.com/ATreeShine/GEMINI-AGENT/internal/server"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var addr, staticDir string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and web client",
		Long: `Serve the JSON API under /api and, when a static directory is
configured, the web client at /. Stops gracefully on SIGINT or SIGTERM.`,
		Example: `  gemini-agent serve
  gemini-agent serve --addr 127.0.0.1:8080 --static ./public`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd.Context(), opts, false)
			if err != nil {
				return err
			}
			defer a.Close()

			so := server.Options{
				Addr:           a.cfg.Addr(),
				StaticDir:      a.cfg.Server.StaticDir,
				RateLimitRPS:   a.cfg.Server.RateLimitRPS,
				RateLimitBurst: a.cfg.Server.RateLimitBurst,
				AllowedOrigins: a.cfg.Server.AllowedOrigins,
				Logger:         a.logger,
			}
			if addr != "" {
				so.Addr = addr
			}
			if staticDir != "" {
				so.StaticDir = staticDir
			}

			return server.New(a.svc, a.index, so).Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.host/server.port)")
	cmd.Flags().StringVar(&staticDir, "static", "", "directory holding the web client")
	return cmd
}
