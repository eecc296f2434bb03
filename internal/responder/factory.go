// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package responder

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/ATreeShine/GEMINI-AGENT/internal/ollama"
)

// Options selects and configures a provider.
type Options struct {
	Provider string
	Model    string
	APIKey   string
	BaseURL  string
	Timeout  time.Duration
	Logger   *zap.Logger
}

// New builds the responder for opts.Provider. A hosted provider without an
// API key, or one whose client fails to initialize, yields an Unconfigured
// responder rather than an error so the service still starts.
// Only an unknown provider name is an error.
func New(ctx context.Context, opts Options) (Responder, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	provider := strings.ToLower(strings.TrimSpace(opts.Provider))
	if provider == "" {
		provider = ProviderGemini
	}

	switch provider {
	case ProviderGemini, ProviderOpenAI:
		if opts.APIKey == "" {
			logger.Warn("no API key configured; replies will be error messages", zap.String("provider", provider))
			return &Unconfigured{Name: provider}, nil
		}
		var (
			r   Responder
			err error
		)
		if provider == ProviderGemini {
			r, err = NewGemini(ctx, opts.APIKey, opts.Model)
		} else {
			r, err = NewOpenAI(opts.APIKey, opts.BaseURL, opts.Model)
		}
		if err != nil {
			logger.Error("responder initialization failed", zap.String("provider", provider), zap.Error(err))
			return &Unconfigured{Name: provider, Reason: err}, nil
		}
		logger.Info("responder ready", zap.String("provider", provider), zap.String("model", opts.Model))
		return r, nil

	case ProviderOllama:
		client := ollama.New(opts.BaseURL, opts.Model, opts.Timeout)
		logger.Info("responder ready",
			zap.String("provider", provider),
			zap.String("base_url", client.BaseURL()),
			zap.String("model", client.Model()),
		)
		return NewOllama(client), nil

	default:
		return nil, errors.Errorf("unknown responder provider %q", opts.Provider)
	}
}
