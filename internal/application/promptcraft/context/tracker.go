// Package context 维护 Agent 的短期会话记忆（仅进程内，不落盘）
package context

import (
	"strings"
	"sync"

	"promptcraft-ai-api/internal/domain/entity"
)

// DefaultMaxItems 默认保留的最近请求数
const DefaultMaxItems = 5

// Tracker 有界 FIFO 缓冲：最近的解析结果与最近生成的主提示词。
// 超出容量时从最旧的一端淘汰；所有读操作返回副本。
type Tracker struct {
	mu       sync.RWMutex
	maxItems int
	requests []entity.ParsedRequest
	prompts  []string
}

// NewTracker maxItems <= 0 时使用 DefaultMaxItems
func NewTracker(maxItems int) *Tracker {
	if maxItems <= 0 {
		maxItems = DefaultMaxItems
	}
	return &Tracker{
		maxItems: maxItems,
		requests: make([]entity.ParsedRequest, 0, maxItems),
		prompts:  make([]string, 0, maxItems),
	}
}

func (t *Tracker) Capacity() int {
	return t.maxItems
}

// Read 返回按提交顺序排列的请求副本
func (t *Tracker) Read() []entity.ParsedRequest {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return cloneRequests(t.requests)
}

// Record 追加一条请求，超出容量时淘汰最旧的一条
func (t *Tracker) Record(req entity.ParsedRequest) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.requests = appendBounded(t.requests, req.Clone(), t.maxItems)
}

// RecordPrompt 记录一条已生成的主提示词
func (t *Tracker) RecordPrompt(prompt string) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.prompts = appendBounded(t.prompts, prompt, t.maxItems)
}

func (t *Tracker) RecentPrompts() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]string, len(t.prompts))
	copy(out, t.prompts)
	return out
}

// Snapshot 在同一把读锁下复制两份列表
func (t *Tracker) Snapshot() entity.ContextSnapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s := entity.ContextSnapshot{
		Requests:      cloneRequests(t.requests),
		RecentPrompts: make([]string, len(t.prompts)),
	}
	copy(s.RecentPrompts, t.prompts)
	return s
}

func cloneRequests(in []entity.ParsedRequest) []entity.ParsedRequest {
	out := make([]entity.ParsedRequest, len(in))
	for i := range in {
		out[i] = in[i].Clone()
	}
	return out
}

func (t *Tracker) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.requests)
}

func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.requests = t.requests[:0]
	t.prompts = t.prompts[:0]
}

// appendBounded 追加并只保留末尾 limit 个元素
func appendBounded[T any](items []T, v T, limit int) []T {
	if len(items) < limit {
		return append(items, v)
	}
	copy(items, items[1:])
	items[len(items)-1] = v
	return items
}
