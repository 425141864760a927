package promptcraft

import (
	"context"
	"regexp"
	"strings"

	"promptcraft-ai-api/internal/domain/entity"
	"promptcraft-ai-api/internal/domain/service"
	apperrors "promptcraft-ai-api/pkg/errors"
	"promptcraft-ai-api/pkg/logger"
	"promptcraft-ai-api/pkg/metrics"
)

var (
	boldSegment    = regexp.MustCompile(`\*\*(.+?)\*\*|__(.+?)__`)
	numberedBullet = regexp.MustCompile(`^\d+[.)]\s+`)
	// 形如 **Follow-up Question:** 或 *Variation 1*: 的强调标签
	emphasisLabel  = regexp.MustCompile(`^(?:\*\*|__|\*|_)[^*_\n]{1,40}(?::(?:\*\*|__|\*|_)|(?:\*\*|__|\*|_):)\s*`)
	bulletPrefixes = []string{"- ", "* ", "• "}
)

// Formatter 调用外部模型并把回复整理成固定结构
type Formatter struct {
	completer     service.Completer
	maxVariations int
}

func NewFormatter(completer service.Completer, maxVariations int) *Formatter {
	return &Formatter{
		completer:     completer,
		maxVariations: maxVariations,
	}
}

// Format 模型调用失败或回复为空时返回 GenerationUnavailable；回复结构不符时降级而不报错
func (f *Formatter) Format(ctx context.Context, plan entity.GenerationPlan) (entity.FormattedPromptOutput, error) {
	ctx = service.WithWorkflow(ctx, service.WorkflowGeneratePrompt)

	raw, err := f.completer.Complete(ctx, plan.Instruction, plan.Parameters)
	if err != nil {
		if apperrors.IsCode(err, apperrors.CodeGenerationUnavailable) {
			return entity.FormattedPromptOutput{}, err
		}
		return entity.FormattedPromptOutput{}, apperrors.Wrap(err, apperrors.CodeGenerationUnavailable, "generation unavailable")
	}
	if strings.TrimSpace(raw) == "" {
		return entity.FormattedPromptOutput{}, apperrors.ErrGenerationUnavailable.WithDetail("model returned an empty completion")
	}

	limit := plan.Variations
	if limit <= 0 {
		limit = f.maxVariations
	}
	out, structured := parseOutput(raw, limit)
	if !structured {
		metrics.FormatterFallbackTotal.Inc()
		logger.Warn(ctx, "model reply has no primary prompt marker, returning raw text",
			"reply_len", len(raw),
		)
	}
	return out, nil
}

// ParseOutput 从模型回复中提取主提示词、变体与追问；找不到主提示词时整段原文作为主提示词
func ParseOutput(raw string, maxVariations int) entity.FormattedPromptOutput {
	out, _ := parseOutput(raw, maxVariations)
	return out
}

func parseOutput(raw string, maxVariations int) (entity.FormattedPromptOutput, bool) {
	lines := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")

	primaryIdx := -1
	primary := ""
	for i, line := range lines {
		if v, ok := firstBold(line); ok {
			primaryIdx, primary = i, v
			if isLabel(v) || labelColonFollows(line) {
				primaryIdx, primary = labelledPrimary(lines, i)
			}
			break
		}
	}
	if primaryIdx < 0 || primary == "" {
		return entity.FormattedPromptOutput{
			PrimaryPrompt: strings.TrimSpace(raw),
			Variations:    []string{},
		}, false
	}

	followIdx := -1
	followUp := ""
	for i := len(lines) - 1; i > primaryIdx; i-- {
		if c := cleanLine(lines[i]); c != "" && strings.HasSuffix(c, "?") {
			followIdx, followUp = i, c
			break
		}
	}

	variations := make([]string, 0, max(maxVariations, 0))
	for i := primaryIdx + 1; i < len(lines); i++ {
		if i == followIdx {
			continue
		}
		if maxVariations > 0 && len(variations) >= maxVariations {
			break
		}
		body, ok := bulletBody(lines[i])
		if !ok {
			continue
		}
		if v := stripEmphasis(emphasisLabel.ReplaceAllString(body, "")); v != "" {
			variations = append(variations, v)
		}
	}

	return entity.FormattedPromptOutput{
		PrimaryPrompt:    primary,
		Variations:       variations,
		FollowUpQuestion: followUp,
	}, true
}

func firstBold(line string) (string, bool) {
	m := boldSegment.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	v := m[1]
	if v == "" {
		v = m[2]
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

func isLabel(s string) bool {
	return strings.HasSuffix(s, ":")
}

// labelColonFollows 处理 **Main Prompt**: 这种冒号在加粗之外的写法
func labelColonFollows(line string) bool {
	loc := boldSegment.FindStringIndex(line)
	return loc != nil && strings.HasPrefix(strings.TrimSpace(line[loc[1]:]), ":")
}

// labelledPrimary 加粗部分只是标签时，取同一行剩余文本；同行为空则取下一条非列表行
func labelledPrimary(lines []string, i int) (int, string) {
	loc := boldSegment.FindStringIndex(lines[i])
	rest := strings.TrimPrefix(strings.TrimSpace(lines[i][loc[1]:]), ":")
	if rest = stripEmphasis(rest); rest != "" {
		return i, rest
	}
	for j := i + 1; j < len(lines); j++ {
		if strings.TrimSpace(lines[j]) == "" {
			continue
		}
		if _, isBullet := bulletBody(lines[j]); isBullet {
			break
		}
		if v := stripEmphasis(lines[j]); v != "" && !isLabel(v) {
			return j, v
		}
		break
	}
	return -1, ""
}

func bulletBody(line string) (string, bool) {
	t := strings.TrimSpace(line)
	for _, p := range bulletPrefixes {
		if strings.HasPrefix(t, p) {
			return strings.TrimSpace(t[len(p):]), true
		}
	}
	if loc := numberedBullet.FindStringIndex(t); loc != nil {
		return strings.TrimSpace(t[loc[1]:]), true
	}
	return "", false
}

func cleanLine(line string) string {
	if body, ok := bulletBody(line); ok {
		line = body
	}
	return stripEmphasis(emphasisLabel.ReplaceAllString(strings.TrimSpace(line), ""))
}

func stripEmphasis(s string) string {
	s = strings.ReplaceAll(s, "**", "")
	s = strings.ReplaceAll(s, "__", "")
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(s), "*_"))
}
