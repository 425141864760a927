package llm

import (
	"context"
	"strings"

	"promptcraft-ai-api/internal/domain/entity"
	"promptcraft-ai-api/internal/domain/service"
	"promptcraft-ai-api/internal/workflow/chain"
	wfmodel "promptcraft-ai-api/internal/workflow/model"
	workflowport "promptcraft-ai-api/internal/workflow/port"
	apperrors "promptcraft-ai-api/pkg/errors"
)

// EinoCompleter 基于 Eino 补全链实现 service.Completer
type EinoCompleter struct {
	chain    *chain.CompletionChain
	provider string
}

var _ service.Completer = (*EinoCompleter)(nil)

// NewEinoCompleter 创建补全器，provider 为空时由工厂选择默认 provider
func NewEinoCompleter(factory workflowport.ChatModelFactory, provider string) *EinoCompleter {
	return &EinoCompleter{
		chain:    chain.NewCompletionChain(factory),
		provider: strings.TrimSpace(provider),
	}
}

// Complete 调用模型并返回去除首尾空白的文本。
// 任何调用失败及空回复均归类为 CodeGenerationUnavailable。
func (c *EinoCompleter) Complete(ctx context.Context, in entity.Instruction, params entity.ModelParameters) (string, error) {
	ctx = service.WithProvider(ctx, c.provider)

	msg, err := c.chain.Invoke(ctx, &wfmodel.CompletionInput{
		Instruction: in,
		Parameters:  params,
		Provider:    c.provider,
	})
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeGenerationUnavailable, "generation unavailable")
	}

	text := strings.TrimSpace(msg.Content)
	if text == "" {
		return "", apperrors.ErrGenerationUnavailable.WithDetail("model returned an empty completion")
	}
	return text, nil
}
