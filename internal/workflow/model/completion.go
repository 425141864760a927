package model

import "promptcraft-ai-api/internal/domain/entity"

// CompletionInput 定义了补全链的输入参数
type CompletionInput struct {
	Instruction entity.Instruction
	Parameters  entity.ModelParameters

	// Provider 为空时使用默认 provider
	Provider string
}
