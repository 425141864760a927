package prompt

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryRenderPlan(t *testing.T) {
	r := NewRegistry()

	in, err := r.Render(context.Background(), PromptPlanV1, map[string]any{
		"niche":         "travel",
		"tone":          "humorous",
		"topic":         "hidden gems in europe",
		"variations":    "2",
		"details_block": "Previously explored topics: vegan baking",
	})
	require.NoError(t, err)

	assert.Contains(t, in.System, "Niche: travel")
	assert.Contains(t, in.System, "Tone: humorous")
	assert.Contains(t, in.User, "Topic: hidden gems in europe")
	assert.Contains(t, in.User, "exactly 2 lines")
	assert.Contains(t, in.User, "Previously explored topics: vegan baking")
}

func TestRegistryRenderParseRequestUnescapesBraces(t *testing.T) {
	r := NewRegistry()

	in, err := r.Render(context.Background(), PromptParseRequestV1, map[string]any{
		"request": "Give me a funny prompt about vegan baking",
	})
	require.NoError(t, err)

	assert.Contains(t, in.System, `{"topic": "..."`)
	assert.Equal(t, "Give me a funny prompt about vegan baking", in.User)
}

func TestRegistryCachesTemplates(t *testing.T) {
	r := NewRegistry()

	a, err := r.ChatTemplate(PromptPlanV1)
	require.NoError(t, err)
	b, err := r.ChatTemplate(PromptPlanV1)
	require.NoError(t, err)
	assert.Same(t, a, b)
}

func TestRegistryUnknownPrompt(t *testing.T) {
	_, err := NewRegistry().ChatTemplate("nope_v9")
	assert.ErrorContains(t, err, "unknown prompt id")

	var nilRegistry *Registry
	_, err = nilRegistry.ChatTemplate(PromptPlanV1)
	assert.Error(t, err)
}
