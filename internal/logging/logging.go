// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging builds the zap loggers used across gemini-agent.
//
// Production mode writes JSON lines; development mode writes colored,
// human-readable console output. Components receive a *zap.Logger through
// their constructors and name it with Named.
package logging

import (
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Modes accepted by New.
const (
	ModeProduction  = "production"
	ModeDevelopment = "development"
)

// Options selects the logger preset.
type Options struct {
	// Mode is "production" (JSON) or "development" (console). Empty means
	// production.
	Mode string

	// Level is a zap level name: debug, info, warn, error.
	Level string

	// OutputPaths overrides where entries are written. Defaults to stderr.
	OutputPaths []string
}

// New builds a logger from opts.
func New(opts Options) (*zap.Logger, error) {
	var cfg zap.Config
	switch strings.ToLower(opts.Mode) {
	case "", "prod", ModeProduction:
		cfg = zap.NewProductionConfig()
	case "dev", ModeDevelopment:
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	default:
		return nil, errors.Errorf("unknown log mode %q", opts.Mode)
	}

	if opts.Level != "" {
		level, err := zapcore.ParseLevel(opts.Level)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid log level %q", opts.Level)
		}
		cfg.Level = zap.NewAtomicLevelAt(level)
	}

	if len(opts.OutputPaths) > 0 {
		cfg.OutputPaths = opts.OutputPaths
	} else {
		cfg.OutputPaths = []string{"stderr"}
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, errors.Wrap(err, "failed to build logger")
	}
	return logger, nil
}

// Sync flushes logger, ignoring the errors stderr and stdout return on
// some platforms.
func Sync(logger *zap.Logger) {
	if logger != nil {
		_ = logger.Sync()
	}
}
