package dto

import "promptcraft-ai-api/internal/domain/entity"

// GeneratePromptRequest 生成提示词请求
type GeneratePromptRequest struct {
	Request string `json:"request"`
}

// PromptResponse 生成结果
type PromptResponse struct {
	PrimaryPrompt    string   `json:"primary_prompt"`
	Variations       []string `json:"variations"`
	FollowUpQuestion string   `json:"follow_up_question,omitempty"`
}

// ParsedRequestResponse 上下文中的一条解析结果
type ParsedRequestResponse struct {
	Topic           string   `json:"topic"`
	Niche           string   `json:"niche"`
	Tone            string   `json:"tone"`
	RequestedFormat string   `json:"requested_format,omitempty"`
	Audience        string   `json:"audience,omitempty"`
	Constraints     []string `json:"constraints,omitempty"`
}

// ContextResponse 上下文快照
type ContextResponse struct {
	Requests      []*ParsedRequestResponse `json:"requests"`
	RecentPrompts []string                 `json:"recent_prompts"`
}

func ToPromptResponse(out *entity.FormattedPromptOutput) *PromptResponse {
	if out == nil {
		return nil
	}
	variations := out.Variations
	if variations == nil {
		variations = []string{}
	}
	return &PromptResponse{
		PrimaryPrompt:    out.PrimaryPrompt,
		Variations:       variations,
		FollowUpQuestion: out.FollowUpQuestion,
	}
}

func ToContextResponse(s entity.ContextSnapshot) *ContextResponse {
	reqs := make([]*ParsedRequestResponse, 0, len(s.Requests))
	for i := range s.Requests {
		r := s.Requests[i]
		reqs = append(reqs, &ParsedRequestResponse{
			Topic:           r.Topic,
			Niche:           r.Niche,
			Tone:            r.Tone,
			RequestedFormat: r.RequestedFormat,
			Audience:        r.Audience,
			Constraints:     r.Constraints,
		})
	}
	prompts := s.RecentPrompts
	if prompts == nil {
		prompts = []string{}
	}
	return &ContextResponse{
		Requests:      reqs,
		RecentPrompts: prompts,
	}
}
