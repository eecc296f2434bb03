// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/ATreeShine/GEMINI-AGENT/internal/config"
	"github.com/ATreeShine/GEMINI-AGENT/internal/conversation"
	"github.com/ATreeShine/GEMINI-AGENT/internal/index"
	"github.com/ATreeShine/GEMINI-AGENT/internal/logging"
	"github.com/ATreeShine/GEMINI-AGENT/internal/responder"
	"github.com/ATreeShine/GEMINI-AGENT/internal/storage"
)

// app is the assembled component graph a command works with.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	store  *storage.ChatStore
	index  *index.Index
	svc    *conversation.Service
}

// loadApp reads configuration and wires storage, the responder and the
// conversation service. Terminal commands log at warn unless --log-level
// says otherwise, so routine entries do not interleave with the transcript.
func loadApp(ctx context.Context, opts *rootOptions, terminal bool) (*app, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}

	level := cfg.Logging.Level
	switch {
	case opts.logLevel != "":
		level = opts.logLevel
	case terminal:
		level = "warn"
	}
	logger, err := logging.New(logging.Options{Mode: cfg.Logging.Mode, Level: level})
	if err != nil {
		return nil, err
	}

	store, err := storage.NewChatStore(cfg.Storage.ChatDir)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open chat storage")
	}

	r, err := responder.New(ctx, cfg.ResponderOptions(logger))
	if err != nil {
		return nil, err
	}

	svc := conversation.NewService(store, r, conversation.Options{
		Defaults:         cfg.ChatDefaults(),
		ResponderTimeout: cfg.ResponderTimeout(),
		ExportDir:        cfg.Storage.ExportDir,
		Logger:           logger,
	})

	return &app{
		cfg:    cfg,
		logger: logger,
		store:  store,
		index:  index.New(store, logger),
		svc:    svc,
	}, nil
}

// Close flushes the logger.
func (a *app) Close() {
	logging.Sync(a.logger)
}
