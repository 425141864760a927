package prompt

import (
	"context"
	"embed"
	"fmt"
	"strings"
	"sync"

	einoprompt "github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"promptcraft-ai-api/internal/domain/entity"
)

//go:embed templates/*.txt
var templatesFS embed.FS

type PromptID string

const (
	PromptParseRequestV1 PromptID = "parse_request_v1"
	PromptPlanV1         PromptID = "prompt_plan_v1"
)

var knownPrompts = map[PromptID]struct{}{
	PromptParseRequestV1: {},
	PromptPlanV1:         {},
}

// Registry 按需加载并缓存内嵌的 system/user 模板
type Registry struct {
	mu    sync.RWMutex
	cache map[PromptID]einoprompt.ChatTemplate
}

func NewRegistry() *Registry {
	return &Registry{
		cache: make(map[PromptID]einoprompt.ChatTemplate),
	}
}

func (r *Registry) ChatTemplate(id PromptID) (einoprompt.ChatTemplate, error) {
	if r == nil {
		return nil, fmt.Errorf("prompt registry is nil")
	}

	r.mu.RLock()
	if tpl, ok := r.cache[id]; ok {
		r.mu.RUnlock()
		return tpl, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	if tpl, ok := r.cache[id]; ok {
		return tpl, nil
	}

	systemPath, userPath, err := resolvePromptFiles(id)
	if err != nil {
		return nil, err
	}
	system, err := readEmbeddedText(systemPath)
	if err != nil {
		return nil, err
	}
	user, err := readEmbeddedText(userPath)
	if err != nil {
		return nil, err
	}

	tpl := einoprompt.FromMessages(
		schema.FString,
		schema.SystemMessage(system),
		schema.UserMessage(user),
	)
	r.cache[id] = tpl
	return tpl, nil
}

// Render 渲染模板并取出 system/user 两条消息的文本
func (r *Registry) Render(ctx context.Context, id PromptID, vars map[string]any) (entity.Instruction, error) {
	tpl, err := r.ChatTemplate(id)
	if err != nil {
		return entity.Instruction{}, err
	}
	msgs, err := tpl.Format(ctx, vars)
	if err != nil {
		return entity.Instruction{}, fmt.Errorf("format prompt %s: %w", id, err)
	}

	var out entity.Instruction
	for _, m := range msgs {
		if m == nil {
			continue
		}
		switch m.Role {
		case schema.System:
			out.System = strings.TrimSpace(m.Content)
		case schema.User:
			out.User = strings.TrimSpace(m.Content)
		}
	}
	if out.User == "" {
		return entity.Instruction{}, fmt.Errorf("prompt %s rendered an empty user message", id)
	}
	return out, nil
}

func resolvePromptFiles(id PromptID) (systemFile string, userFile string, err error) {
	if _, ok := knownPrompts[id]; !ok {
		return "", "", fmt.Errorf("unknown prompt id: %s", id)
	}
	base := "templates/" + string(id)
	return base + ".system.txt", base + ".user.txt", nil
}

func readEmbeddedText(path string) (string, error) {
	b, err := templatesFS.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}
