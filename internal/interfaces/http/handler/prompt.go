// Package handler 提供 HTTP 请求处理器
package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"promptcraft-ai-api/internal/domain/entity"
	"promptcraft-ai-api/internal/interfaces/http/dto"
	apperrors "promptcraft-ai-api/pkg/errors"
	"promptcraft-ai-api/pkg/logger"
)

// PromptAgent 提示词生成流水线
type PromptAgent interface {
	Run(ctx context.Context, raw string) (*entity.FormattedPromptOutput, error)
	Context() entity.ContextSnapshot
	ResetContext()
}

// PromptHandler 提示词处理器
type PromptHandler struct {
	agent PromptAgent
}

// NewPromptHandler 创建提示词处理器
func NewPromptHandler(agent PromptAgent) *PromptHandler {
	return &PromptHandler{agent: agent}
}

// GeneratePrompt 生成提示词
// @Summary 生成提示词
// @Description 将一句自然语言请求转换为主提示词、变体与追问
// @Tags Prompts
// @Accept json
// @Produce json
// @Param body body dto.GeneratePromptRequest true "原始请求"
// @Success 200 {object} dto.Response[dto.PromptResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /v1/prompts [post]
func (h *PromptHandler) GeneratePrompt(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.GeneratePromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.AppError(c, apperrors.ErrInvalidInput.WithDetail("invalid request body: "+err.Error()))
		return
	}

	out, err := h.agent.Run(ctx, req.Request)
	if err != nil {
		if !apperrors.IsCode(err, apperrors.CodeInvalidInput) {
			logger.Error(ctx, "failed to generate prompt", err)
		}
		dto.AppError(c, err)
		return
	}

	dto.Success(c, dto.ToPromptResponse(out))
}

// GetContext 获取上下文快照
// @Summary 获取上下文
// @Tags Prompts
// @Produce json
// @Success 200 {object} dto.Response[dto.ContextResponse]
// @Router /v1/context [get]
func (h *PromptHandler) GetContext(c *gin.Context) {
	dto.Success(c, dto.ToContextResponse(h.agent.Context()))
}

// ResetContext 清空上下文
// @Summary 清空上下文
// @Tags Prompts
// @Success 204
// @Router /v1/context [delete]
func (h *PromptHandler) ResetContext(c *gin.Context) {
	h.agent.ResetContext()
	logger.Info(c.Request.Context(), "context reset")
	dto.NoContent(c)
}
