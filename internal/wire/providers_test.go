package wire

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"promptcraft-ai-api/internal/application/promptcraft"
	"promptcraft-ai-api/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Name: "promptcraft-ai-api", Version: "test"},
		LLM: config.LLMConfig{
			DefaultProvider: "openai",
			Providers:       map[string]config.ProviderConfig{"openai": {Model: "gpt-4o-mini"}},
		},
		Agent: config.AgentConfig{
			Temperature:    0.9,
			MaxTokens:      300,
			MaxMemoryItems: 4,
			MaxVariations:  2,
			Parser:         config.ParserConfig{Mode: "llm", Temperature: 0.2, MaxTokens: 128},
		},
	}
}

func TestProvideAgentConfig(t *testing.T) {
	got := ProvideAgentConfig(testConfig())

	assert.Equal(t, promptcraft.AgentConfig{
		Model:             "gpt-4o-mini",
		Temperature:       0.9,
		MaxTokens:         300,
		MaxMemoryItems:    4,
		MaxVariations:     2,
		ParserMode:        promptcraft.ParserModeLLM,
		ParserTemperature: 0.2,
		ParserMaxTokens:   128,
	}, got)
}

func TestRedisDisabledProvidesNothing(t *testing.T) {
	client, cleanup, err := ProvideRedisClientOptional(context.Background(), testConfig())
	require.NoError(t, err)
	assert.Nil(t, client)
	assert.NotPanics(t, cleanup)
	assert.Nil(t, ProvideRateLimiter(nil))
}

func TestInitializeApp(t *testing.T) {
	r, cleanup, err := InitializeApp(context.Background(), testConfig())
	require.NoError(t, err)
	defer cleanup()
	assert.NotNil(t, r.Engine())
}
