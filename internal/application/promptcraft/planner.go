package promptcraft

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"promptcraft-ai-api/internal/domain/entity"
	wfnode "promptcraft-ai-api/internal/workflow/node"
	workflowprompt "promptcraft-ai-api/internal/workflow/prompt"
	apperrors "promptcraft-ai-api/pkg/errors"
)

const (
	maxPriorTopics       = 5
	recentPromptMaxRunes = 200
)

// Planner 根据解析结果与上下文快照生成本次调用的指令与参数
type Planner struct {
	prompts    *workflowprompt.Registry
	params     entity.ModelParameters
	variations int
}

func NewPlanner(prompts *workflowprompt.Registry, params entity.ModelParameters, variations int) *Planner {
	params.JSONOutput = false
	return &Planner{
		prompts:    prompts,
		params:     params,
		variations: variations,
	}
}

// Plan 只在模板渲染失败或入参不满足前置条件时返回错误
func (p *Planner) Plan(ctx context.Context, req entity.ParsedRequest, snap entity.ContextSnapshot) (entity.GenerationPlan, error) {
	topic := strings.TrimSpace(req.Topic)
	if topic == "" {
		return entity.GenerationPlan{}, apperrors.ErrInvalidInput.WithDetail("parsed request has no topic")
	}

	ins, err := p.prompts.Render(ctx, workflowprompt.PromptPlanV1, map[string]any{
		"niche":         orDefault(req.Niche, entity.DefaultNiche),
		"tone":          orDefault(req.Tone, entity.DefaultTone),
		"topic":         topic,
		"variations":    strconv.Itoa(p.variations),
		"details_block": buildDetailsBlock(req, snap),
	})
	if err != nil {
		return entity.GenerationPlan{}, apperrors.Wrap(err, apperrors.CodeInternalError, "render prompt plan")
	}

	return entity.GenerationPlan{
		Instruction: ins,
		Parameters:  p.params,
		Variations:  p.variations,
	}, nil
}

func buildDetailsBlock(req entity.ParsedRequest, snap entity.ContextSnapshot) string {
	lines := make([]string, 0, 8)
	if req.HasFormat() {
		lines = append(lines, "Format: "+req.RequestedFormat)
	}
	if a := strings.TrimSpace(req.Audience); a != "" {
		lines = append(lines, "Audience: "+a)
	}
	if len(req.Constraints) > 0 {
		lines = append(lines, "Respect these constraints: "+strings.Join(req.Constraints, "; "))
	}

	prior := make([]string, 0, maxPriorTopics)
	for _, t := range snap.PriorTopics() {
		if strings.EqualFold(t, strings.TrimSpace(req.Topic)) {
			continue
		}
		prior = append(prior, t)
		if len(prior) == maxPriorTopics {
			break
		}
	}
	if len(prior) > 0 {
		lines = append(lines, "Previously explored topics (most recent first): "+strings.Join(prior, "; "))
	}

	if n := len(snap.RecentPrompts); n > 0 {
		lines = append(lines, "Do not repeat these recent prompts:")
		for i := n - 1; i >= 0; i-- {
			lines = append(lines, fmt.Sprintf("- %s", wfnode.TruncateByRunes(snap.RecentPrompts[i], recentPromptMaxRunes)))
		}
	}

	if len(lines) == 0 {
		return "This is the first request in the session."
	}
	return wfnode.JoinNonEmpty(lines...)
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return def
}
