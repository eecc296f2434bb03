// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/ATreeShine/GEMINI-AGENT/internal/chat"
	"github.com/ATreeShine/GEMINI-AGENT/internal/responder"
	"github.com/ATreeShine/GEMINI-AGENT/internal/util"
)

// Default file names searched in the working directory when no explicit
// path is given.
const (
	DefaultTOMLFile = "gemini-agent.toml"
	DefaultJSONFile = "gemini-agent.json"
)

// DefaultSystemPrompt matches the prompt the web client starts with.
const DefaultSystemPrompt = "You are an AI assistant. Respond thoughtfully and helpfully."

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config is the complete gemini-agent configuration.
type Config struct {
	Server    ServerConfig    `toml:"server" json:"server"`
	Storage   StorageConfig   `toml:"storage" json:"storage"`
	Responder ResponderConfig `toml:"responder" json:"responder"`
	Defaults  DefaultsConfig  `toml:"defaults" json:"defaults"`
	Logging   LoggingConfig   `toml:"logging" json:"logging"`
}

// ServerConfig controls the HTTP surface.
type ServerConfig struct {
	Host string `toml:"host" json:"host"`
	Port int    `toml:"port" json:"port"`

	// StaticDir holds the web client. Empty disables static serving.
	StaticDir string `toml:"static_dir" json:"static_dir"`

	// RateLimitRPS is the per-client request rate. Zero disables limiting.
	RateLimitRPS   float64 `toml:"rate_limit_rps" json:"rate_limit_rps"`
	RateLimitBurst int     `toml:"rate_limit_burst" json:"rate_limit_burst"`

	// AllowedOrigins lists CORS origins. "*" allows any origin.
	AllowedOrigins []string `toml:"allowed_origins" json:"allowed_origins"`
}

// StorageConfig locates transcripts and export files.
type StorageConfig struct {
	ChatDir   string `toml:"chat_dir" json:"chat_dir"`
	ExportDir string `toml:"export_dir" json:"export_dir"`
}

// ResponderConfig selects and authenticates the text generation backend.
type ResponderConfig struct {
	Provider    string `toml:"provider" json:"provider"`
	Model       string `toml:"model" json:"model"`
	APIKey      string `toml:"api_key" json:"api_key"`
	BaseURL     string `toml:"base_url" json:"base_url"`
	TimeoutSecs int    `toml:"timeout_secs" json:"timeout_secs"`
}

// DefaultsConfig holds the generation settings applied when neither the
// request nor the stored chat specifies them.
type DefaultsConfig struct {
	Temperature  float64 `toml:"temperature" json:"temperature"`
	MaxTokens    int     `toml:"max_tokens" json:"max_tokens"`
	TopK         int     `toml:"top_k" json:"top_k"`
	TopP         float64 `toml:"top_p" json:"top_p"`
	SystemPrompt string  `toml:"system_prompt" json:"system_prompt"`
}

// LoggingConfig selects the zap preset and level.
type LoggingConfig struct {
	Mode  string `toml:"mode" json:"mode"`
	Level string `toml:"level" json:"level"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns a Config populated with built-in defaults.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:           "",
			Port:           3000,
			RateLimitRPS:   10,
			RateLimitBurst: 20,
			AllowedOrigins: []string{"*"},
		},
		Storage: StorageConfig{
			ChatDir:   "saved_chats",
			ExportDir: "exports",
		},
		Responder: ResponderConfig{
			Provider:    responder.ProviderGemini,
			TimeoutSecs: 60,
		},
		Defaults: DefaultsConfig{
			Temperature:  responder.DefaultTemperature,
			MaxTokens:    responder.DefaultMaxTokens,
			TopK:         responder.DefaultTopK,
			TopP:         responder.DefaultTopP,
			SystemPrompt: DefaultSystemPrompt,
		},
		Logging: LoggingConfig{
			Mode:  "production",
			Level: "info",
		},
	}
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load resolves the configuration. An explicit path must exist. Without
// one, ./gemini-agent.toml and then ./gemini-agent.json are tried before
// falling back to defaults. Environment overrides are applied last and the
// result is validated.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = discover()
	}

	if path != "" {
		var err error
		if strings.EqualFold(filepath.Ext(path), ".json") {
			err = LoadJSON(cfg, path)
		} else {
			err = LoadTOML(cfg, path)
		}
		if err != nil {
			return nil, errors.Wrapf(err, "failed to load config from %s", path)
		}
	}

	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	return cfg, nil
}

// discover returns the first default config file present in the working
// directory, or "".
func discover() string {
	for _, name := range []string{DefaultTOMLFile, DefaultJSONFile} {
		if info, err := os.Stat(name); err == nil && !info.IsDir() {
			return name
		}
	}
	return ""
}

// LoadTOML decodes a TOML file over cfg. Keys absent from the file keep
// their current values.
func LoadTOML(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return errors.Wrap(err, "failed to decode TOML file")
	}
	return fillDefaults(cfg)
}

// LoadJSON decodes a JSON file over cfg.
func LoadJSON(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "failed to read JSON file")
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return errors.Wrap(err, "failed to decode JSON file")
	}
	return fillDefaults(cfg)
}

// fillDefaults restores values that a file blanked out but that have no
// meaningful empty form. Rate limits and sampling values are left alone
// since zero is a legitimate setting for them.
func fillDefaults(cfg *Config) error {
	defaults := Default()

	if cfg.Server.Port == 0 {
		cfg.Server.Port = defaults.Server.Port
	}
	if cfg.Storage.ChatDir == "" {
		cfg.Storage.ChatDir = defaults.Storage.ChatDir
	}
	if cfg.Storage.ExportDir == "" {
		cfg.Storage.ExportDir = defaults.Storage.ExportDir
	}
	if cfg.Responder.Provider == "" {
		cfg.Responder.Provider = defaults.Responder.Provider
	}
	if cfg.Responder.TimeoutSecs == 0 {
		cfg.Responder.TimeoutSecs = defaults.Responder.TimeoutSecs
	}
	if cfg.Defaults.MaxTokens == 0 {
		cfg.Defaults.MaxTokens = defaults.Defaults.MaxTokens
	}
	if cfg.Logging.Mode == "" {
		cfg.Logging.Mode = defaults.Logging.Mode
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = defaults.Logging.Level
	}

	return nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// SaveTOML writes cfg to path. The file may carry an API key, so it is
// created owner read/write only.
func SaveTOML(cfg *Config, path string) error {
	var buf bytes.Buffer
	fmt.Fprintln(&buf, "# gemini-agent configuration file")
	fmt.Fprintln(&buf, "")

	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return errors.Wrap(err, "failed to encode config")
	}
	if err := util.AtomicWriteFile(path, buf.Bytes(), 0600); err != nil {
		return errors.Wrap(err, "failed to write config file")
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

var (
	validProviders = map[string]bool{
		responder.ProviderGemini: true,
		responder.ProviderOpenAI: true,
		responder.ProviderOllama: true,
	}
	validModes  = map[string]bool{"production": true, "development": true}
	validLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
)

// Validate checks every section and returns ValidateErrors listing each
// problem, or nil.
func (c *Config) Validate() error {
	var errs ValidateErrors
	add := func(field, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	// Server
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		add("server.port", "port %d out of range 1-65535", c.Server.Port)
	}
	if c.Server.RateLimitRPS < 0 {
		add("server.rate_limit_rps", "cannot be negative")
	}
	if c.Server.RateLimitBurst < 0 {
		add("server.rate_limit_burst", "cannot be negative")
	}
	if c.Server.RateLimitRPS > 0 && c.Server.RateLimitBurst == 0 {
		add("server.rate_limit_burst", "must be at least 1 when rate limiting is enabled")
	}
	if c.Server.StaticDir != "" {
		if info, err := os.Stat(c.Server.StaticDir); err != nil || !info.IsDir() {
			add("server.static_dir", "'%s' is not a directory", c.Server.StaticDir)
		}
	}

	// Storage
	if strings.TrimSpace(c.Storage.ChatDir) == "" {
		add("storage.chat_dir", "cannot be empty")
	}
	if strings.TrimSpace(c.Storage.ExportDir) == "" {
		add("storage.export_dir", "cannot be empty")
	}

	// Responder
	if !validProviders[strings.ToLower(c.Responder.Provider)] {
		add("responder.provider", "invalid provider '%s', must be one of: gemini, openai, ollama", c.Responder.Provider)
	}
	if c.Responder.TimeoutSecs <= 0 {
		add("responder.timeout_secs", "must be positive")
	}

	// Defaults
	if c.Defaults.Temperature < 0 || c.Defaults.Temperature > 2 {
		add("defaults.temperature", "%.2f out of range 0-2", c.Defaults.Temperature)
	}
	if c.Defaults.MaxTokens < 1 {
		add("defaults.max_tokens", "must be at least 1")
	}
	if c.Defaults.TopK < 1 {
		add("defaults.top_k", "must be at least 1")
	}
	if c.Defaults.TopP < 0 || c.Defaults.TopP > 1 {
		add("defaults.top_p", "%.2f out of range 0-1", c.Defaults.TopP)
	}

	// Logging
	if !validModes[strings.ToLower(c.Logging.Mode)] {
		add("logging.mode", "invalid mode '%s', must be one of: production, development", c.Logging.Mode)
	}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		add("logging.level", "invalid level '%s', must be one of: debug, info, warn, error", c.Logging.Level)
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - PORT: overrides server.port (ignored when not a number)
//   - GEMINI_API_KEY: overrides responder.api_key
//   - GEMINI_AGENT_PROVIDER: overrides responder.provider
//   - GEMINI_AGENT_MODEL: overrides responder.model
//   - GEMINI_AGENT_BASE_URL: overrides responder.base_url
//   - GEMINI_AGENT_CHAT_DIR: overrides storage.chat_dir
//   - GEMINI_AGENT_EXPORT_DIR: overrides storage.export_dir
//   - GEMINI_AGENT_LOG_LEVEL: overrides logging.level
func (c *Config) ApplyEnvOverrides() {
	if port := os.Getenv("PORT"); port != "" {
		if n, err := strconv.Atoi(port); err == nil {
			c.Server.Port = n
		}
	}

	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.Responder.APIKey = key
	}

	if provider := os.Getenv("GEMINI_AGENT_PROVIDER"); provider != "" {
		c.Responder.Provider = strings.ToLower(provider)
	}
	if model := os.Getenv("GEMINI_AGENT_MODEL"); model != "" {
		c.Responder.Model = model
	}
	if url := os.Getenv("GEMINI_AGENT_BASE_URL"); url != "" {
		c.Responder.BaseURL = url
	}

	if dir := os.Getenv("GEMINI_AGENT_CHAT_DIR"); dir != "" {
		c.Storage.ChatDir = dir
	}
	if dir := os.Getenv("GEMINI_AGENT_EXPORT_DIR"); dir != "" {
		c.Storage.ExportDir = dir
	}

	if level := os.Getenv("GEMINI_AGENT_LOG_LEVEL"); level != "" {
		c.Logging.Level = strings.ToLower(level)
	}
}

// =============================================================================
// DERIVED VALUES
// =============================================================================

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// ResponderTimeout returns the per-turn wait bound.
func (c *Config) ResponderTimeout() time.Duration {
	return time.Duration(c.Responder.TimeoutSecs) * time.Second
}

// ChatDefaults converts the [defaults] section into the lowest-priority
// settings layer.
func (c *Config) ChatDefaults() chat.Settings {
	return chat.Settings{
		Temperature:  chat.Float(c.Defaults.Temperature),
		MaxTokens:    chat.Int(c.Defaults.MaxTokens),
		TopK:         chat.Int(c.Defaults.TopK),
		TopP:         chat.Float(c.Defaults.TopP),
		SystemPrompt: chat.String(c.Defaults.SystemPrompt),
	}
}

// ResponderOptions builds the responder factory options.
func (c *Config) ResponderOptions(logger *zap.Logger) responder.Options {
	return responder.Options{
		Provider: strings.ToLower(c.Responder.Provider),
		Model:    c.Responder.Model,
		APIKey:   c.Responder.APIKey,
		BaseURL:  c.Responder.BaseURL,
		Timeout:  c.ResponderTimeout(),
		Logger:   logger,
	}
}

// String renders the configuration as TOML with the API key masked.
func (c *Config) String() string {
	masked := *c
	if masked.Responder.APIKey != "" {
		masked.Responder.APIKey = "********"
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(masked); err != nil {
		return fmt.Sprintf("config: %v", err)
	}
	return buf.String()
}
