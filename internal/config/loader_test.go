package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "promptcraft-ai-api/pkg/errors"
)

func writeConfig(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

func TestLoadFromAppliesDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	dir := t.TempDir()
	writeConfig(t, dir, "config.yaml", "app:\n  name: promptcraft-test\n")

	cfg, err := LoadFrom(dir)
	require.NoError(t, err)

	assert.Equal(t, "promptcraft-test", cfg.App.Name)
	assert.Equal(t, 5, cfg.Agent.MaxMemoryItems)
	assert.Equal(t, 3, cfg.Agent.MaxVariations)
	assert.InDelta(t, 0.7, cfg.Agent.Temperature, 1e-9)
	assert.Equal(t, "rules", cfg.Agent.Parser.Mode)
	assert.Equal(t, 30*time.Second, cfg.Server.HTTP.ReadTimeout)
	assert.Equal(t, "openai", cfg.AgentProvider())
	assert.Equal(t, "gpt-3.5-turbo", cfg.AgentModel())
}

func TestLoadFromMergesEnvFileAndExpandsPlaceholders(t *testing.T) {
	t.Setenv("APP_ENV", "staging")
	t.Setenv("PC_TEST_API_KEY", "sk-test")
	dir := t.TempDir()
	writeConfig(t, dir, "config.yaml", `
llm:
  default_provider: openai
  providers:
    openai:
      api_key: ${PC_TEST_API_KEY}
      base_url: ${PC_TEST_BASE_URL:https://example.invalid/v1}
      model: gpt-4o-mini
agent:
  max_memory_items: 5
`)
	writeConfig(t, dir, "config.staging.yaml", "agent:\n  max_memory_items: 8\n")

	cfg, err := LoadFrom(dir)
	require.NoError(t, err)

	p := cfg.LLM.Providers["openai"]
	assert.Equal(t, "sk-test", p.APIKey)
	assert.Equal(t, "https://example.invalid/v1", p.BaseURL)
	assert.Equal(t, 8, cfg.Agent.MaxMemoryItems)
	assert.Equal(t, "gpt-3.5-turbo", cfg.AgentModel())
}

func TestAgentModelFallsBackToProviderModel(t *testing.T) {
	cfg := &Config{
		LLM: LLMConfig{
			DefaultProvider: "openai",
			Providers:       map[string]ProviderConfig{"openai": {Model: "gpt-4o-mini"}},
		},
	}
	assert.Equal(t, "openai", cfg.AgentProvider())
	assert.Equal(t, "gpt-4o-mini", cfg.AgentModel())

	cfg.Agent.Provider = "local"
	assert.Equal(t, "local", cfg.AgentProvider())
	assert.Empty(t, cfg.AgentModel())
}

func TestLoadFromEnvOverride(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("AGENT_MAX_VARIATIONS", "4")
	dir := t.TempDir()
	writeConfig(t, dir, "config.yaml", "app:\n  name: x\n")

	cfg, err := LoadFrom(dir)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Agent.MaxVariations)
}

func TestLoadFromRejectsInvalidAgentConfig(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	dir := t.TempDir()
	writeConfig(t, dir, "config.yaml", "agent:\n  temperature: 2.5\n")

	_, err := LoadFrom(dir)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeInvalidConfig))
}

func TestLoadFromMissingBaseFile(t *testing.T) {
	_, err := LoadFrom(t.TempDir())
	assert.ErrorContains(t, err, "failed to read config file")
}

func TestExpandEnv(t *testing.T) {
	t.Setenv("PC_SET", "value")

	tests := []struct {
		in   string
		want string
	}{
		{"${PC_SET}", "value"},
		{"${PC_SET:fallback}", "value"},
		{"${PC_UNSET_FOR_TEST:fallback}", "fallback"},
		{"${PC_UNSET_FOR_TEST:}", ""},
		{"${PC_UNSET_FOR_TEST}", "${PC_UNSET_FOR_TEST}"},
		{"plain", "plain"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, expandEnv(tt.in), tt.in)
	}
}
