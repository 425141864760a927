package wire

import (
	"context"

	"promptcraft-ai-api/internal/application/promptcraft"
	"promptcraft-ai-api/internal/config"
	"promptcraft-ai-api/internal/domain/service"
	"promptcraft-ai-api/internal/infrastructure/llm"
	"promptcraft-ai-api/internal/infrastructure/persistence/redis"
	"promptcraft-ai-api/internal/interfaces/http/handler"
	"promptcraft-ai-api/internal/interfaces/http/middleware"
	workflowport "promptcraft-ai-api/internal/workflow/port"
	"promptcraft-ai-api/pkg/logger"
)

// ProvideCompleter 提供基于 Eino 的补全能力
func ProvideCompleter(factory workflowport.ChatModelFactory, cfg *config.Config) service.Completer {
	return llm.NewEinoCompleter(factory, cfg.AgentProvider())
}

// ProvideAgentConfig 将配置文件中的 agent 段映射为流水线配置
func ProvideAgentConfig(cfg *config.Config) promptcraft.AgentConfig {
	a := cfg.Agent
	return promptcraft.AgentConfig{
		Model:             cfg.AgentModel(),
		Temperature:       a.Temperature,
		MaxTokens:         a.MaxTokens,
		MaxMemoryItems:    a.MaxMemoryItems,
		MaxVariations:     a.MaxVariations,
		ParserMode:        promptcraft.ParserMode(a.Parser.Mode),
		ParserTemperature: a.Parser.Temperature,
		ParserMaxTokens:   a.Parser.MaxTokens,
	}
}

// ProvideAgent 提供进程内唯一的 Agent 实例
func ProvideAgent(cfg promptcraft.AgentConfig, completer service.Completer) (*promptcraft.Agent, error) {
	return promptcraft.NewAgent(cfg, completer)
}

// ProvideRedisClientOptional Redis 仅用于限流；未启用或不可达时返回 nil，不阻塞启动
func ProvideRedisClientOptional(ctx context.Context, cfg *config.Config) (*redis.Client, func(), error) {
	if !cfg.Cache.Redis.Enabled {
		return nil, func() {}, nil
	}
	client, err := redis.NewClient(&cfg.Cache.Redis)
	if err != nil {
		logger.Warn(ctx, "redis not available, rate limiting disabled", "error", err.Error())
		return nil, func() {}, nil
	}
	cleanup := func() {
		_ = client.Close()
	}
	return client, cleanup, nil
}

// ProvideRateLimiter client 为 nil 时返回 nil 接口
func ProvideRateLimiter(client *redis.Client) middleware.RateLimiter {
	if client == nil {
		return nil
	}
	return redis.NewRateLimiter(client)
}

func ProvideHealthHandler(cfg *config.Config, client *redis.Client) *handler.HealthHandler {
	return handler.NewHealthHandler(cfg.App.Version, client)
}
