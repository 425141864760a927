// Package entity 定义领域实体
package entity

import "slices"

// 兜底取值：解析不到时使用
const (
	DefaultNiche = "general"
	DefaultTone  = "neutral"
)

// ParsedRequest 从一条原始请求中解析出的结构化字段，创建后不再修改
type ParsedRequest struct {
	Topic string `json:"topic"`
	Niche string `json:"niche"`
	Tone  string `json:"tone"`
	// RequestedFormat 为空表示未指定
	RequestedFormat string `json:"requested_format,omitempty"`
	Audience        string `json:"audience,omitempty"`
	// Constraints 额外限制（字数、禁用元素等），仅 llm 解析模式会填充
	Constraints []string `json:"constraints,omitempty"`
}

// Clone 深拷贝，Constraints 不与原值共享底层数组
func (r ParsedRequest) Clone() ParsedRequest {
	if r.Constraints != nil {
		r.Constraints = slices.Clone(r.Constraints)
	}
	return r
}

// HasFormat 是否指定了输出形式
func (r ParsedRequest) HasFormat() bool {
	return r.RequestedFormat != ""
}

// ContextSnapshot Context Tracker 在某一时刻的只读副本
type ContextSnapshot struct {
	// Requests 按时间顺序排列，末尾为最近一次
	Requests []ParsedRequest `json:"requests"`
	// RecentPrompts 最近生成的主提示词，末尾为最近一次
	RecentPrompts []string `json:"recent_prompts"`
}

// PriorTopics 按从新到旧返回去重后的历史主题
func (s ContextSnapshot) PriorTopics() []string {
	seen := make(map[string]struct{}, len(s.Requests))
	topics := make([]string, 0, len(s.Requests))
	for i := len(s.Requests) - 1; i >= 0; i-- {
		t := s.Requests[i].Topic
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		topics = append(topics, t)
	}
	return topics
}
