package promptcraft

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"promptcraft-ai-api/internal/domain/entity"
	"promptcraft-ai-api/internal/domain/service"
	workflowprompt "promptcraft-ai-api/internal/workflow/prompt"
	apperrors "promptcraft-ai-api/pkg/errors"
)

func TestParseRules(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want entity.ParsedRequest
	}{
		{
			name: "topic after about",
			raw:  "Give me a prompt about space exploration",
			want: entity.ParsedRequest{Topic: "space exploration", Niche: "science", Tone: "neutral"},
		},
		{
			name: "tone and niche keywords",
			raw:  "Give me a funny prompt about vegan baking",
			want: entity.ParsedRequest{Topic: "vegan baking", Niche: "food", Tone: "humorous"},
		},
		{
			name: "format and audience",
			raw:  "Write a dark poem about the ocean for teenagers",
			want: entity.ParsedRequest{Topic: "the ocean", Niche: "science", Tone: "dark", RequestedFormat: "poem", Audience: "teenagers"},
		},
		{
			name: "on marker and format phrase is not an audience",
			raw:  "Ideas on hidden gems in Europe for a travel blog",
			want: entity.ParsedRequest{Topic: "hidden gems in Europe", Niche: "travel", Tone: "neutral", RequestedFormat: "blog post"},
		},
		{
			name: "multiword keywords",
			raw:  "An inspirational LinkedIn post about machine learning careers",
			want: entity.ParsedRequest{Topic: "machine learning careers", Niche: "tech", Tone: "inspirational", RequestedFormat: "linkedin post"},
		},
		{
			name: "no marker strips filler",
			raw:  "Write a serious essay",
			want: entity.ParsedRequest{Topic: "serious essay", Niche: "general", Tone: "serious", RequestedFormat: "essay"},
		},
		{
			name: "only filler keeps the request",
			raw:  "Give me a prompt",
			want: entity.ParsedRequest{Topic: "Give me a prompt", Niche: "general", Tone: "neutral"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseRules(tt.raw))
		})
	}
}

func TestParseRulesDefaultFill(t *testing.T) {
	for _, raw := range []string{
		"Tell me something about quiet mornings",
		"lighthouses",
		"  a letter to my future self  ",
	} {
		got := ParseRules(raw)
		assert.Equal(t, entity.DefaultNiche, got.Niche, raw)
		assert.Equal(t, entity.DefaultTone, got.Tone, raw)
		assert.NotEmpty(t, got.Topic, raw)
	}
}

func TestParseRulesWholeWordMatching(t *testing.T) {
	// "spacious" 不应命中 "space"，"said" 不应命中 "ai"
	got := ParseRules("She said the room felt spacious")
	assert.Equal(t, entity.DefaultNiche, got.Niche)
}

func TestParserRejectsBlankInput(t *testing.T) {
	p := NewParser(ParserModeRules, nil, nil, entity.ModelParameters{})

	for _, raw := range []string{"", "   ", "\n\t "} {
		_, err := p.Parse(context.Background(), raw)
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
	}
}

func TestParserModelMode(t *testing.T) {
	var gotIns entity.Instruction
	var gotParams entity.ModelParameters
	var gotWorkflow string
	completer := service.CompleterFunc(func(ctx context.Context, in entity.Instruction, params entity.ModelParameters) (string, error) {
		gotIns, gotParams = in, params
		gotWorkflow = service.WorkflowFromContext(ctx)
		return "Sure!\n```json\n{\"topic\": \"sourdough starters\", \"niche\": \"Food\", \"tone\": \"\", \"format\": \"\", \"audience\": \"home bakers\"}\n```", nil
	})

	p := NewParser(ParserModeLLM, completer, workflowprompt.NewRegistry(), entity.ModelParameters{
		Model: "gpt-3.5-turbo", Temperature: 0.3, MaxTokens: 256,
	})
	require.Equal(t, ParserModeLLM, p.Mode())

	got, err := p.Parse(context.Background(), "  A serious prompt on keeping sourdough alive  ")
	require.NoError(t, err)

	assert.Equal(t, entity.ParsedRequest{
		Topic:    "sourdough starters",
		Niche:    "food",
		Tone:     "serious",
		Audience: "home bakers",
	}, got)
	assert.Equal(t, "A serious prompt on keeping sourdough alive", gotIns.User)
	assert.True(t, gotParams.JSONOutput)
	assert.InDelta(t, 0.3, gotParams.Temperature, 1e-9)
	assert.Equal(t, service.WorkflowParseRequest, gotWorkflow)
}

func TestParserModelModeFallsBackToRules(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		err   error
	}{
		{name: "model error", err: apperrors.ErrGenerationUnavailable},
		{name: "no json", reply: "I think the topic is space."},
		{name: "broken json", reply: `{"topic": "space"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			completer := service.CompleterFunc(func(context.Context, entity.Instruction, entity.ModelParameters) (string, error) {
				return tt.reply, tt.err
			})
			p := NewParser(ParserModeLLM, completer, workflowprompt.NewRegistry(), entity.ModelParameters{})

			got, err := p.Parse(context.Background(), "Give me a prompt about space exploration")
			require.NoError(t, err)
			assert.Equal(t, ParseRules("Give me a prompt about space exploration"), got)
		})
	}
}

func TestNewParserWithoutCompleterUsesRules(t *testing.T) {
	p := NewParser(ParserModeLLM, nil, workflowprompt.NewRegistry(), entity.ModelParameters{})
	assert.Equal(t, ParserModeRules, p.Mode())

	p = NewParser("", service.CompleterFunc(func(context.Context, entity.Instruction, entity.ModelParameters) (string, error) {
		return "", errors.New("should not be called")
	}), workflowprompt.NewRegistry(), entity.ModelParameters{})
	got, err := p.Parse(context.Background(), "lighthouses")
	require.NoError(t, err)
	assert.Equal(t, "lighthouses", got.Topic)
}

func TestParserModelModeConstraints(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  []string
	}{
		{
			name:  "list",
			reply: `{"topic": "haunted lighthouses", "constraints": ["under 100 words", " ", "no ghosts", "No ghosts"]}`,
			want:  []string{"under 100 words", "no ghosts"},
		},
		{
			name:  "single string",
			reply: `{"topic": "haunted lighthouses", "constraints": "rhyme every line"}`,
			want:  []string{"rhyme every line"},
		},
		{
			name:  "placeholder",
			reply: `{"topic": "haunted lighthouses", "constraints": "none"}`,
		},
		{
			name:  "null",
			reply: `{"topic": "haunted lighthouses", "constraints": null}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			completer := service.CompleterFunc(func(context.Context, entity.Instruction, entity.ModelParameters) (string, error) {
				return tt.reply, nil
			})
			p := NewParser(ParserModeLLM, completer, workflowprompt.NewRegistry(), entity.ModelParameters{})

			got, err := p.Parse(context.Background(), "A spooky prompt about lighthouses, under 100 words, no ghosts")
			require.NoError(t, err)
			assert.Equal(t, "haunted lighthouses", got.Topic)
			assert.Equal(t, tt.want, got.Constraints)
		})
	}
}

func TestParseRulesLeavesConstraintsEmpty(t *testing.T) {
	assert.Nil(t, ParseRules("A spooky prompt about lighthouses, under 100 words").Constraints)
}
