// Package promptcraft 实现提示词生成流水线：解析 -> 上下文 -> 规划 -> 格式化
package promptcraft

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"
	"unicode"

	"promptcraft-ai-api/internal/domain/entity"
	"promptcraft-ai-api/internal/domain/service"
	wfnode "promptcraft-ai-api/internal/workflow/node"
	workflowprompt "promptcraft-ai-api/internal/workflow/prompt"
	apperrors "promptcraft-ai-api/pkg/errors"
	"promptcraft-ai-api/pkg/logger"
	"promptcraft-ai-api/pkg/metrics"
)

// ParserMode 输入解析方式
type ParserMode string

const (
	ParserModeRules ParserMode = "rules"
	ParserModeLLM   ParserMode = "llm"
)

type keywordRule struct {
	label    string
	keywords []string
}

// 按顺序匹配，先命中者优先
var nicheRules = []keywordRule{
	{label: "tech", keywords: []string{"tech", "technology", "software", "programming", "coding", "code", "ai", "artificial intelligence", "machine learning", "robot", "robots", "computer", "computers", "gadget", "gadgets", "app", "apps"}},
	{label: "food", keywords: []string{"food", "cooking", "cook", "recipe", "recipes", "baking", "bake", "cuisine", "restaurant", "vegan", "dessert", "dinner", "meal", "meals"}},
	{label: "travel", keywords: []string{"travel", "traveling", "travelling", "trip", "trips", "vacation", "journey", "destination", "destinations", "tourism", "backpacking", "road trip"}},
	{label: "science", keywords: []string{"science", "space", "physics", "biology", "chemistry", "astronomy", "planet", "planets", "mars", "universe", "climate", "ocean", "evolution"}},
	{label: "business", keywords: []string{"business", "marketing", "startup", "startups", "entrepreneur", "entrepreneurship", "finance", "sales", "leadership", "career", "productivity"}},
	{label: "health", keywords: []string{"health", "fitness", "wellness", "nutrition", "exercise", "workout", "mental health", "yoga", "meditation", "sleep"}},
}

var toneRules = []keywordRule{
	{label: "humorous", keywords: []string{"funny", "humorous", "humor", "humour", "witty", "hilarious", "playful", "lighthearted", "comedic"}},
	{label: "serious", keywords: []string{"serious", "formal", "professional", "academic", "thoughtful"}},
	{label: "inspirational", keywords: []string{"inspiring", "inspirational", "motivational", "motivating", "uplifting", "hopeful", "encouraging"}},
	{label: "dark", keywords: []string{"dark", "gloomy", "creepy", "eerie", "sinister", "horror", "spooky", "grim"}},
}

var formatRules = []keywordRule{
	{label: "instagram post", keywords: []string{"instagram post", "instagram caption", "instagram"}},
	{label: "linkedin post", keywords: []string{"linkedin post", "linkedin"}},
	{label: "blog post", keywords: []string{"blog post", "blog"}},
	{label: "short story", keywords: []string{"short story", "story"}},
	{label: "tweet", keywords: []string{"tweet", "twitter"}},
	{label: "haiku", keywords: []string{"haiku"}},
	{label: "poem", keywords: []string{"poem", "poetry"}},
	{label: "essay", keywords: []string{"essay"}},
	{label: "newsletter", keywords: []string{"newsletter"}},
	{label: "script", keywords: []string{"script", "screenplay"}},
}

var (
	aboutMarker     = regexp.MustCompile(`(?i)\babout\s+`)
	onMarker        = regexp.MustCompile(`(?i)\bon\s+`)
	topicStop       = regexp.MustCompile(`(?i)\s+for\s+|[.,!?;:\n]`)
	audiencePhrase  = regexp.MustCompile(`(?i)\bfor\s+([^.,!?;:\n]+)`)
	audienceStop    = regexp.MustCompile(`(?i)\s+(?:about|on)\s+`)
	fillerPhrases   = regexp.MustCompile(`(?i)\b(?:please|can you|could you|give me|write me|write|create|generate|make|come up with|i want|i need|i'd like|some|an?|prompts?|ideas?)\b`)
	repeatedSpaces  = regexp.MustCompile(`\s+`)
	leadingArticles = map[string]struct{}{"a": {}, "an": {}, "the": {}, "my": {}, "our": {}}
)

// Parser 将原始文本解析为 ParsedRequest
type Parser struct {
	mode      ParserMode
	completer service.Completer
	prompts   *workflowprompt.Registry
	params    entity.ModelParameters
}

// NewParser llm 模式缺少 completer 时退化为 rules 模式
func NewParser(mode ParserMode, completer service.Completer, prompts *workflowprompt.Registry, params entity.ModelParameters) *Parser {
	if mode != ParserModeLLM || completer == nil || prompts == nil {
		mode = ParserModeRules
	}
	params.JSONOutput = true
	return &Parser{
		mode:      mode,
		completer: completer,
		prompts:   prompts,
		params:    params,
	}
}

func (p *Parser) Mode() ParserMode {
	return p.mode
}

// Parse 空白输入返回 InvalidInput；其余情况总能给出 Topic 非空的结果
func (p *Parser) Parse(ctx context.Context, raw string) (entity.ParsedRequest, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return entity.ParsedRequest{}, apperrors.ErrInvalidInput.WithDetail("request must not be empty")
	}

	base := ParseRules(text)
	if p.mode != ParserModeLLM {
		metrics.ParserOutcomeTotal.WithLabelValues(string(ParserModeRules), "ok").Inc()
		return base, nil
	}

	req, err := p.parseWithModel(ctx, text, base)
	if err != nil {
		logger.Warn(ctx, "model parse failed, fallback to rules",
			"error", err.Error(),
		)
		metrics.ParserOutcomeTotal.WithLabelValues(string(ParserModeLLM), "fallback").Inc()
		return base, nil
	}
	metrics.ParserOutcomeTotal.WithLabelValues(string(ParserModeLLM), "ok").Inc()
	return req, nil
}

type modelParsedRequest struct {
	Topic       string     `json:"topic"`
	Niche       string     `json:"niche"`
	Tone        string     `json:"tone"`
	Format      string     `json:"format"`
	Audience    string     `json:"audience"`
	Constraints stringList `json:"constraints"`
}

// stringList 兼容模型返回数组、单个字符串或 null
type stringList []string

func (l *stringList) UnmarshalJSON(b []byte) error {
	var one string
	if err := json.Unmarshal(b, &one); err == nil {
		*l = stringList{one}
		return nil
	}
	var many []string
	if err := json.Unmarshal(b, &many); err != nil {
		return err
	}
	*l = many
	return nil
}

func (p *Parser) parseWithModel(ctx context.Context, text string, base entity.ParsedRequest) (entity.ParsedRequest, error) {
	ctx = service.WithWorkflow(ctx, service.WorkflowParseRequest)

	ins, err := p.prompts.Render(ctx, workflowprompt.PromptParseRequestV1, map[string]any{
		"request": text,
	})
	if err != nil {
		return entity.ParsedRequest{}, err
	}
	out, err := p.completer.Complete(ctx, ins, p.params)
	if err != nil {
		return entity.ParsedRequest{}, err
	}

	var parsed modelParsedRequest
	if err := wfnode.DecodeJSONObject(out, &parsed); err != nil {
		return entity.ParsedRequest{}, err
	}
	return mergeParsed(base, parsed), nil
}

// mergeParsed 模型给出的非空字段覆盖规则解析结果
func mergeParsed(base entity.ParsedRequest, m modelParsedRequest) entity.ParsedRequest {
	out := base
	if v := strings.TrimSpace(m.Topic); v != "" {
		out.Topic = v
	}
	if v := normalizeLabel(m.Niche); v != "" {
		out.Niche = v
	}
	if v := normalizeLabel(m.Tone); v != "" {
		out.Tone = v
	}
	if v := normalizeLabel(m.Format); v != "" {
		out.RequestedFormat = v
	}
	if v := strings.TrimSpace(m.Audience); v != "" {
		out.Audience = v
	}
	if cs := cleanConstraints(m.Constraints); len(cs) > 0 {
		out.Constraints = cs
	}
	return out
}

// cleanConstraints 去空白、去重，丢弃 "none" 之类的占位值
func cleanConstraints(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, c := range in {
		c = strings.TrimSpace(c)
		key := strings.ToLower(c)
		switch key {
		case "", "none", "n/a", "null":
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, c)
	}
	return out
}

func normalizeLabel(s string) string {
	return strings.Join(words(s), " ")
}

// ParseRules 基于关键词表的本地解析，text 需非空
func ParseRules(text string) entity.ParsedRequest {
	text = strings.TrimSpace(text)
	ws := words(text)

	req := entity.ParsedRequest{
		Topic:    extractTopic(text),
		Niche:    entity.DefaultNiche,
		Tone:     entity.DefaultTone,
		Audience: extractAudience(text),
	}
	if v, ok := matchRule(ws, nicheRules); ok {
		req.Niche = v
	}
	if v, ok := matchRule(ws, toneRules); ok {
		req.Tone = v
	}
	if v, ok := matchRule(ws, formatRules); ok {
		req.RequestedFormat = v
	}
	return req
}

func extractTopic(text string) string {
	loc := aboutMarker.FindStringIndex(text)
	if loc == nil {
		loc = onMarker.FindStringIndex(text)
	}
	if loc != nil {
		if t := cutAt(text[loc[1]:], topicStop); t != "" {
			return t
		}
	}

	stripped := fillerPhrases.ReplaceAllString(cutAt(text, topicStop), " ")
	stripped = strings.Trim(repeatedSpaces.ReplaceAllString(stripped, " "), " .,!?;:-")
	if stripped != "" {
		return stripped
	}
	return text
}

func extractAudience(text string) string {
	for _, m := range audiencePhrase.FindAllStringSubmatch(text, -1) {
		cand := cutAt(m[1], audienceStop)
		norm := stripArticles(words(cand))
		if len(norm) == 0 {
			continue
		}
		if _, isFormat := matchRule(norm, formatRules); isFormat && len(norm) <= 2 {
			continue
		}
		return cand
	}
	return ""
}

func cutAt(s string, stop *regexp.Regexp) string {
	if loc := stop.FindStringIndex(s); loc != nil {
		s = s[:loc[0]]
	}
	return strings.TrimSpace(s)
}

func stripArticles(ws []string) []string {
	for len(ws) > 0 {
		if _, ok := leadingArticles[ws[0]]; !ok {
			break
		}
		ws = ws[1:]
	}
	return ws
}

// words 小写切词，只保留字母与数字
func words(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func matchRule(ws []string, rules []keywordRule) (string, bool) {
	for _, rule := range rules {
		for _, kw := range rule.keywords {
			if containsPhrase(ws, words(kw)) {
				return rule.label, true
			}
		}
	}
	return "", false
}

// containsPhrase 整词匹配，多词关键词按连续词序列匹配
func containsPhrase(ws, phrase []string) bool {
	if len(phrase) == 0 || len(phrase) > len(ws) {
		return false
	}
	for i := 0; i+len(phrase) <= len(ws); i++ {
		match := true
		for j := range phrase {
			if ws[i+j] != phrase[j] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}
