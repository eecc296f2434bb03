// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading for gemini-agent.
//
// Supports both TOML and JSON configuration formats, with built-in
// defaults, environment variable overrides, and validation. The loaded
// Config is passed explicitly to the components that need it; there is no
// process-wide instance.
//
// # Key Types
//
//   - Config: Main configuration structure with all sections
//   - ServerConfig: Listen address, static client, rate limits, CORS
//   - ResponderConfig: Provider selection and credentials
//   - DefaultsConfig: Generation settings used when a chat sets none
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (PORT, GEMINI_API_KEY, GEMINI_AGENT_*)
//   - The file named by --config
//   - ./gemini-agent.toml
//   - ./gemini-agent.json
//   - Built-in defaults
//
// # Usage
//
//	cfg, err := config.Load(flagPath)
//	if err != nil {
//	    return err
//	}
//	svc := conversation.NewService(store, r, conversation.Options{
//	    Defaults:         cfg.ChatDefaults(),
//	    ResponderTimeout: cfg.ResponderTimeout(),
//	})
package config
