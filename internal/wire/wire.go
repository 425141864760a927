//go:build wireinject
// +build wireinject

// Package wire 提供依赖注入配置
package wire

import (
	"context"

	"github.com/google/wire"

	"promptcraft-ai-api/internal/application/promptcraft"
	"promptcraft-ai-api/internal/config"
	"promptcraft-ai-api/internal/infrastructure/llm"
	"promptcraft-ai-api/internal/interfaces/http/handler"
	"promptcraft-ai-api/internal/interfaces/http/router"
	workflowport "promptcraft-ai-api/internal/workflow/port"
)

// InitializeApp 初始化整个应用（带路由器）
func InitializeApp(ctx context.Context, cfg *config.Config) (*router.Router, func(), error) {
	wire.Build(
		LLMSet,
		AgentSet,
		RedisSet,
		RouterSet,
	)
	return nil, nil, nil
}

// LLMSet 模型调用提供者集合
var LLMSet = wire.NewSet(
	llm.NewEinoFactory,
	wire.Bind(new(workflowport.ChatModelFactory), new(*llm.EinoFactory)),
	ProvideCompleter,
)

// AgentSet 流水线提供者集合
var AgentSet = wire.NewSet(
	ProvideAgentConfig,
	ProvideAgent,
	wire.Bind(new(handler.PromptAgent), new(*promptcraft.Agent)),
)

// RedisSet Redis 提供者集合（可选）
var RedisSet = wire.NewSet(
	ProvideRedisClientOptional,
	ProvideRateLimiter,
)

// RouterSet 路由器提供者集合
var RouterSet = wire.NewSet(
	handler.NewPromptHandler,
	ProvideHealthHandler,
	router.New,
)
