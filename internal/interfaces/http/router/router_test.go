package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"promptcraft-ai-api/internal/application/promptcraft"
	"promptcraft-ai-api/internal/config"
	"promptcraft-ai-api/internal/domain/entity"
	"promptcraft-ai-api/internal/domain/service"
	"promptcraft-ai-api/internal/interfaces/http/dto"
	"promptcraft-ai-api/internal/interfaces/http/handler"
)

func newTestRouter(t *testing.T, reply string) *Router {
	t.Helper()
	gin.SetMode(gin.TestMode)

	completer := service.CompleterFunc(func(context.Context, entity.Instruction, entity.ModelParameters) (string, error) {
		return reply, nil
	})
	agent, err := promptcraft.NewAgent(promptcraft.DefaultAgentConfig(), completer)
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.Observability.Metrics.Enabled = true
	cfg.Observability.Metrics.Path = "/metrics"
	return New(cfg, handler.NewPromptHandler(agent), handler.NewHealthHandler("test", nil), nil)
}

func TestRouterEndToEnd(t *testing.T) {
	r := newTestRouter(t, "**Describe a day in the life of a Martian colonist**\n- Write about Earth as seen from a Mars colony\n*What would be the biggest cultural difference?*")

	req := httptest.NewRequest(http.MethodPost, "/v1/prompts", strings.NewReader(`{"request":"Give me a prompt about space exploration"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.Engine().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	var resp dto.Response[dto.PromptResponse]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Describe a day in the life of a Martian colonist", resp.Data.PrimaryPrompt)

	w = httptest.NewRecorder()
	r.Engine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/context", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"topic":"space exploration"`)
}

func TestRouterBlankRequestIsBadRequest(t *testing.T) {
	r := newTestRouter(t, "unused")

	req := httptest.NewRequest(http.MethodPost, "/v1/prompts", strings.NewReader(`{"request":"   "}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.Engine().ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouterSystemEndpoints(t *testing.T) {
	r := newTestRouter(t, "unused")

	for _, path := range []string{"/health", "/live", "/ready", "/metrics"} {
		w := httptest.NewRecorder()
		r.Engine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestRouterUnknownPath(t *testing.T) {
	r := newTestRouter(t, "unused")

	w := httptest.NewRecorder()
	r.Engine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v2/prompts", nil))
	require.Equal(t, http.StatusNotFound, w.Code)

	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, "1004", resp.Error.ErrorCode)
}
