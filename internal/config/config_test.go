// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// clearEnv blanks every variable ApplyEnvOverrides reads so the host
// environment cannot leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"PORT", "GEMINI_API_KEY", "GEMINI_AGENT_PROVIDER", "GEMINI_AGENT_MODEL",
		"GEMINI_AGENT_BASE_URL", "GEMINI_AGENT_CHAT_DIR", "GEMINI_AGENT_EXPORT_DIR",
		"GEMINI_AGENT_LOG_LEVEL",
	} {
		t.Setenv(name, "")
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "saved_chats", cfg.Storage.ChatDir)
	assert.Equal(t, "gemini", cfg.Responder.Provider)
	assert.Equal(t, 0.7, cfg.Defaults.Temperature)
	assert.Equal(t, 4096, cfg.Defaults.MaxTokens)
	assert.Equal(t, 40, cfg.Defaults.TopK)
	assert.Equal(t, 0.95, cfg.Defaults.TopP)
	assert.Equal(t, DefaultSystemPrompt, cfg.Defaults.SystemPrompt)
}

func TestLoad_TOMLOverlaysDefaults(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "agent.toml", `
[server]
port = 8080
rate_limit_rps = 0

[responder]
provider = "ollama"
model = "llama3.1:8b"

[defaults]
temperature = 0.0
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, float64(0), cfg.Server.RateLimitRPS, "explicit zero disables limiting")
	assert.Equal(t, "ollama", cfg.Responder.Provider)
	assert.Equal(t, "llama3.1:8b", cfg.Responder.Model)
	assert.Equal(t, float64(0), cfg.Defaults.Temperature)
	// Untouched keys keep their defaults.
	assert.Equal(t, 4096, cfg.Defaults.MaxTokens)
	assert.Equal(t, "exports", cfg.Storage.ExportDir)
	assert.Equal(t, 60, cfg.Responder.TimeoutSecs)
}

func TestLoad_JSON(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "agent.json", `{"storage": {"chat_dir": "/tmp/chats"}, "logging": {"level": "debug"}}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/chats", cfg.Storage.ChatDir)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_BlankedValuesRestored(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "agent.toml", `
[storage]
chat_dir = ""

[responder]
provider = ""
timeout_secs = 0
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "saved_chats", cfg.Storage.ChatDir)
	assert.Equal(t, "gemini", cfg.Responder.Provider)
	assert.Equal(t, 60, cfg.Responder.TimeoutSecs)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
}

func TestLoad_MalformedTOML(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "agent.toml", "[server\nport = ")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode TOML file")
}

func TestLoad_DiscoversWorkingDirectoryFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultTOMLFile), []byte("[server]\nport = 4100\n"), 0600))
	t.Chdir(dir)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 4100, cfg.Server.Port)
}

func TestLoad_NoFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default().Server.Port, cfg.Server.Port)
}

func TestApplyEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("GEMINI_API_KEY", "secret")
	t.Setenv("GEMINI_AGENT_PROVIDER", "OpenAI")
	t.Setenv("GEMINI_AGENT_MODEL", "gpt-4o")
	t.Setenv("GEMINI_AGENT_BASE_URL", "http://localhost:8000/v1")
	t.Setenv("GEMINI_AGENT_CHAT_DIR", "/data/chats")
	t.Setenv("GEMINI_AGENT_EXPORT_DIR", "/data/exports")
	t.Setenv("GEMINI_AGENT_LOG_LEVEL", "WARN")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "secret", cfg.Responder.APIKey)
	assert.Equal(t, "openai", cfg.Responder.Provider)
	assert.Equal(t, "gpt-4o", cfg.Responder.Model)
	assert.Equal(t, "http://localhost:8000/v1", cfg.Responder.BaseURL)
	assert.Equal(t, "/data/chats", cfg.Storage.ChatDir)
	assert.Equal(t, "/data/exports", cfg.Storage.ExportDir)
	assert.Equal(t, "warn", cfg.Logging.Level)
	require.NoError(t, cfg.Validate())
}

func TestApplyEnvOverrides_BadPortIgnored(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "http")

	cfg := Default()
	cfg.ApplyEnvOverrides()
	assert.Equal(t, 3000, cfg.Server.Port)
}

func TestValidate_CollectsEveryProblem(t *testing.T) {
	cfg := Default()
	cfg.Server.Port = 70000
	cfg.Responder.Provider = "claude"
	cfg.Defaults.Temperature = 3
	cfg.Defaults.TopP = 1.5
	cfg.Logging.Mode = "verbose"

	err := cfg.Validate()
	require.Error(t, err)

	var verrs ValidateErrors
	require.True(t, errors.As(err, &verrs))

	fields := make([]string, 0, len(verrs))
	for _, v := range verrs {
		fields = append(fields, v.Field)
	}
	assert.ElementsMatch(t, []string{
		"server.port", "responder.provider", "defaults.temperature", "defaults.top_p", "logging.mode",
	}, fields)
	assert.Contains(t, err.Error(), "; ")
}

func TestValidate_RateLimitNeedsBurst(t *testing.T) {
	cfg := Default()
	cfg.Server.RateLimitBurst = 0
	require.Error(t, cfg.Validate())

	cfg.Server.RateLimitRPS = 0
	require.NoError(t, cfg.Validate())
}

func TestValidate_StaticDirMustExist(t *testing.T) {
	cfg := Default()
	cfg.Server.StaticDir = filepath.Join(t.TempDir(), "missing")
	require.Error(t, cfg.Validate())

	cfg.Server.StaticDir = t.TempDir()
	require.NoError(t, cfg.Validate())
}

func TestSaveTOML_RoundTrip(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "out", "agent.toml")

	cfg := Default()
	cfg.Server.Port = 5000
	cfg.Responder.APIKey = "k"
	require.NoError(t, SaveTOML(cfg, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5000, loaded.Server.Port)
	assert.Equal(t, "k", loaded.Responder.APIKey)
}

func TestDerivedValues(t *testing.T) {
	cfg := Default()
	cfg.Server.Host = "127.0.0.1"
	cfg.Responder.Provider = "Gemini"
	cfg.Responder.APIKey = "key"

	assert.Equal(t, "127.0.0.1:3000", cfg.Addr())
	assert.Equal(t, 60*time.Second, cfg.ResponderTimeout())

	st := cfg.ChatDefaults()
	assert.Equal(t, 0.7, st.TemperatureOr(0))
	assert.Equal(t, 40, st.TopKOr(0))
	assert.Equal(t, DefaultSystemPrompt, st.SystemPromptOr(""))

	opts := cfg.ResponderOptions(zap.NewNop())
	assert.Equal(t, "gemini", opts.Provider)
	assert.Equal(t, "key", opts.APIKey)
	assert.Equal(t, 60*time.Second, opts.Timeout)
}

func TestString_MasksAPIKey(t *testing.T) {
	cfg := Default()
	cfg.Responder.APIKey = "super-secret"

	out := cfg.String()
	assert.NotContains(t, out, "super-secret")
	assert.Contains(t, out, "********")
	assert.Equal(t, "super-secret", cfg.Responder.APIKey)
}
