package promptcraft

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	pccontext "promptcraft-ai-api/internal/application/promptcraft/context"
	"promptcraft-ai-api/internal/domain/entity"
	"promptcraft-ai-api/internal/domain/service"
	workflowprompt "promptcraft-ai-api/internal/workflow/prompt"
	apperrors "promptcraft-ai-api/pkg/errors"
	"promptcraft-ai-api/pkg/logger"
	"promptcraft-ai-api/pkg/metrics"
	"promptcraft-ai-api/pkg/tracer"
)

// AgentConfig 流水线静态配置
type AgentConfig struct {
	Model          string
	Temperature    float64
	MaxTokens      int
	MaxMemoryItems int
	MaxVariations  int

	ParserMode        ParserMode
	ParserTemperature float64
	ParserMaxTokens   int
}

// DefaultAgentConfig 返回默认配置
func DefaultAgentConfig() AgentConfig {
	return AgentConfig{
		Model:             "gpt-3.5-turbo",
		Temperature:       0.7,
		MaxTokens:         512,
		MaxMemoryItems:    pccontext.DefaultMaxItems,
		MaxVariations:     3,
		ParserMode:        ParserModeRules,
		ParserTemperature: 0.3,
		ParserMaxTokens:   256,
	}
}

func (c AgentConfig) validate() error {
	switch {
	case strings.TrimSpace(c.Model) == "":
		return apperrors.ErrInvalidConfig.WithDetail("model must not be empty")
	case c.MaxMemoryItems <= 0:
		return apperrors.ErrInvalidConfig.WithDetail("max memory items must be positive")
	case c.MaxVariations <= 0:
		return apperrors.ErrInvalidConfig.WithDetail("max variations must be positive")
	case c.Temperature < 0 || c.Temperature > 2:
		return apperrors.ErrInvalidConfig.WithDetail("temperature must be within [0, 2]")
	case c.ParserTemperature < 0 || c.ParserTemperature > 2:
		return apperrors.ErrInvalidConfig.WithDetail("parser temperature must be within [0, 2]")
	}
	return nil
}

// Option Agent 可选项
type Option func(*Agent)

// WithTracker 使用外部创建的 Tracker。
// 容量以 tracker 自身为准，覆盖 AgentConfig.MaxMemoryItems，Config() 返回的是生效值。
func WithTracker(t *pccontext.Tracker) Option {
	return func(a *Agent) {
		if t != nil {
			a.tracker = t
		}
	}
}

// WithPromptRegistry 替换默认模板注册表
func WithPromptRegistry(r *workflowprompt.Registry) Option {
	return func(a *Agent) {
		if r != nil {
			a.prompts = r
		}
	}
}

// Agent 串联 Parser -> Tracker -> Planner -> Formatter。
// 每个实例持有独立的上下文缓冲，可并发调用 Run。
type Agent struct {
	cfg       AgentConfig
	prompts   *workflowprompt.Registry
	tracker   *pccontext.Tracker
	parser    *Parser
	planner   *Planner
	formatter *Formatter
}

func NewAgent(cfg AgentConfig, completer service.Completer, opts ...Option) (*Agent, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if completer == nil {
		return nil, apperrors.ErrInvalidConfig.WithDetail("completer is required")
	}

	a := &Agent{cfg: cfg}
	for _, opt := range opts {
		opt(a)
	}
	if a.prompts == nil {
		a.prompts = workflowprompt.NewRegistry()
	}
	if a.tracker == nil {
		a.tracker = pccontext.NewTracker(cfg.MaxMemoryItems)
	}
	a.cfg.MaxMemoryItems = a.tracker.Capacity()

	a.parser = NewParser(cfg.ParserMode, completer, a.prompts, entity.ModelParameters{
		Model:       cfg.Model,
		Temperature: cfg.ParserTemperature,
		MaxTokens:   cfg.ParserMaxTokens,
	})
	a.planner = NewPlanner(a.prompts, entity.ModelParameters{
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
	}, cfg.MaxVariations)
	a.formatter = NewFormatter(completer, cfg.MaxVariations)
	return a, nil
}

// Run 处理一条原始请求；出错时不返回任何部分结果
func (a *Agent) Run(ctx context.Context, raw string) (result *entity.FormattedPromptOutput, err error) {
	start := time.Now()
	ctx, span := tracer.Start(ctx, "promptcraft.run",
		trace.WithAttributes(attribute.String("promptcraft.parser_mode", string(a.parser.Mode()))),
	)
	defer func() {
		metrics.AgentRunsTotal.WithLabelValues(runStatus(err)).Inc()
		metrics.AgentRunDuration.Observe(time.Since(start).Seconds())
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	req, err := a.parser.Parse(ctx, raw)
	if err != nil {
		logger.Warn(ctx, "request rejected", "error", err.Error())
		return nil, err
	}
	logger.Debug(ctx, "request parsed",
		"topic", req.Topic,
		"niche", req.Niche,
		"tone", req.Tone,
		"format", req.RequestedFormat,
		"audience", req.Audience,
	)

	// 先取快照再记录，本次请求不出现在自己的历史里
	snap := a.tracker.Snapshot()
	a.tracker.Record(req)
	metrics.ContextBufferSize.Set(float64(a.tracker.Len()))
	logger.Debug(ctx, "context updated",
		"prior_requests", len(snap.Requests),
		"recent_prompts", len(snap.RecentPrompts),
	)

	plan, err := a.planner.Plan(ctx, req, snap)
	if err != nil {
		logger.Error(ctx, "plan prompt failed", err)
		return nil, err
	}
	logger.Debug(ctx, "plan ready",
		"model", plan.Parameters.Model,
		"temperature", plan.Parameters.Temperature,
		"variations", plan.Variations,
	)

	out, err := a.formatter.Format(ctx, plan)
	if err != nil {
		logger.Error(ctx, "generate prompt failed", err)
		return nil, err
	}
	a.tracker.RecordPrompt(out.PrimaryPrompt)

	span.SetAttributes(
		attribute.String("promptcraft.niche", req.Niche),
		attribute.String("promptcraft.tone", req.Tone),
		attribute.Int("promptcraft.variations", len(out.Variations)),
	)
	logger.Info(ctx, "prompt generated",
		"niche", req.Niche,
		"tone", req.Tone,
		"variations", len(out.Variations),
		"has_follow_up", out.HasFollowUp(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return &out, nil
}

// Context 返回当前上下文缓冲的只读快照
func (a *Agent) Context() entity.ContextSnapshot {
	return a.tracker.Snapshot()
}

// ResetContext 清空上下文缓冲
func (a *Agent) ResetContext() {
	a.tracker.Reset()
	metrics.ContextBufferSize.Set(0)
}

// Config 返回生效配置，MaxMemoryItems 为上下文缓冲的实际容量
func (a *Agent) Config() AgentConfig {
	return a.cfg
}

func runStatus(err error) string {
	switch {
	case err == nil:
		return "success"
	case apperrors.IsCode(err, apperrors.CodeInvalidInput):
		return "invalid_input"
	case apperrors.IsCode(err, apperrors.CodeGenerationUnavailable):
		return "generation_unavailable"
	default:
		return "error"
	}
}
