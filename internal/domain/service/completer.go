package service

import (
	"context"

	"promptcraft-ai-api/internal/domain/entity"
)

// Completer 外部文本补全能力（port）。
// 传输、鉴权、配额类失败应返回 CodeGenerationUnavailable；凭据获取与重试策略由实现方负责。
type Completer interface {
	Complete(ctx context.Context, in entity.Instruction, params entity.ModelParameters) (string, error)
}

// CompleterFunc 函数适配器
type CompleterFunc func(ctx context.Context, in entity.Instruction, params entity.ModelParameters) (string, error)

// Complete 实现 Completer
func (f CompleterFunc) Complete(ctx context.Context, in entity.Instruction, params entity.ModelParameters) (string, error) {
	return f(ctx, in, params)
}
