package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"promptcraft-ai-api/internal/domain/entity"
	"promptcraft-ai-api/internal/interfaces/http/dto"
	apperrors "promptcraft-ai-api/pkg/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeAgent struct {
	out    *entity.FormattedPromptOutput
	err    error
	snap   entity.ContextSnapshot
	got    string
	resets int
}

func (f *fakeAgent) Run(_ context.Context, raw string) (*entity.FormattedPromptOutput, error) {
	f.got = raw
	return f.out, f.err
}

func (f *fakeAgent) Context() entity.ContextSnapshot { return f.snap }

func (f *fakeAgent) ResetContext() { f.resets++ }

func newPromptEngine(agent PromptAgent) *gin.Engine {
	h := NewPromptHandler(agent)
	r := gin.New()
	r.POST("/v1/prompts", h.GeneratePrompt)
	r.GET("/v1/context", h.GetContext)
	r.DELETE("/v1/context", h.ResetContext)
	return r
}

func doJSON(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGeneratePromptSuccess(t *testing.T) {
	agent := &fakeAgent{out: &entity.FormattedPromptOutput{
		PrimaryPrompt:    "Describe a day in the life of a Martian colonist",
		Variations:       []string{"Write about Earth as seen from a Mars colony"},
		FollowUpQuestion: "What would be the biggest cultural difference?",
	}}

	w := doJSON(newPromptEngine(agent), http.MethodPost, "/v1/prompts", `{"request":"Give me a prompt about space exploration"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Give me a prompt about space exploration", agent.got)

	var resp dto.Response[dto.PromptResponse]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 200, resp.Code)
	assert.Equal(t, "Describe a day in the life of a Martian colonist", resp.Data.PrimaryPrompt)
	assert.Equal(t, []string{"Write about Earth as seen from a Mars colony"}, resp.Data.Variations)
	assert.Equal(t, "What would be the biggest cultural difference?", resp.Data.FollowUpQuestion)
}

func TestGeneratePromptEmptyVariationsSerializeAsArray(t *testing.T) {
	agent := &fakeAgent{out: &entity.FormattedPromptOutput{PrimaryPrompt: "raw text"}}

	w := doJSON(newPromptEngine(agent), http.MethodPost, "/v1/prompts", `{"request":"x"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"variations":[]`)
	assert.NotContains(t, w.Body.String(), "follow_up_question")
}

func TestGeneratePromptErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "invalid input",
			body:       `{"request":"   "}`,
			err:        apperrors.ErrInvalidInput.WithDetail("request must not be empty"),
			wantStatus: http.StatusBadRequest,
			wantCode:   "1001",
		},
		{
			name:       "malformed body",
			body:       `{"request":`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "1001",
		},
		{
			name:       "generation unavailable",
			body:       `{"request":"space"}`,
			err:        apperrors.Wrap(errors.New("401"), apperrors.CodeGenerationUnavailable, "generation unavailable"),
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   "5005",
		},
		{
			name:       "unclassified error",
			body:       `{"request":"space"}`,
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "1000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(newPromptEngine(&fakeAgent{err: tt.err}), http.MethodPost, "/v1/prompts", tt.body)
			require.Equal(t, tt.wantStatus, w.Code)

			var resp dto.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantStatus, resp.Code)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.ErrorCode)
		})
	}
}

func TestGetAndResetContext(t *testing.T) {
	agent := &fakeAgent{snap: entity.ContextSnapshot{
		Requests: []entity.ParsedRequest{{Topic: "space exploration", Niche: "science", Tone: "neutral"}},
	}}
	r := newPromptEngine(agent)

	w := doJSON(r, http.MethodGet, "/v1/context", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response[dto.ContextResponse]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data.Requests, 1)
	assert.Equal(t, "space exploration", resp.Data.Requests[0].Topic)
	assert.Empty(t, resp.Data.RecentPrompts)

	w = doJSON(r, http.MethodDelete, "/v1/context", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, 1, agent.resets)
}

type fakeChecker struct{ err error }

func (f fakeChecker) HealthCheck(context.Context) error { return f.err }

func TestReady(t *testing.T) {
	tests := []struct {
		name       string
		handler    *HealthHandler
		wantStatus int
		wantRedis  string
	}{
		{"redis disabled", NewHealthHandler("v0.1.0", nil), http.StatusOK, "disabled"},
		{"redis ok", &HealthHandler{redis: fakeChecker{}}, http.StatusOK, "ok"},
		{"redis down", &HealthHandler{redis: fakeChecker{err: errors.New("connection refused")}}, http.StatusServiceUnavailable, "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/ready", tt.handler.Ready)
			w := doJSON(r, http.MethodGet, "/ready", "")
			require.Equal(t, tt.wantStatus, w.Code)

			var resp readinessResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantRedis, resp.Checks["redis"].Status)
		})
	}
}

func TestHealthAndLive(t *testing.T) {
	h := NewHealthHandler("v0.1.0", nil)
	r := gin.New()
	r.GET("/health", h.Health)
	r.GET("/live", h.Live)

	w := doJSON(r, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"version":"v0.1.0"`)

	w = doJSON(r, http.MethodGet, "/live", "")
	assert.Equal(t, http.StatusOK, w.Code)
}
