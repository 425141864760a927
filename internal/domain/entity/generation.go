package entity

// Instruction 面向模型的 system/user 消息对
type Instruction struct {
	System string `json:"system"`
	User   string `json:"user"`
}

// ModelParameters 生成参数，来自静态配置
type ModelParameters struct {
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
	// JSONOutput 要求模型返回 JSON 对象，仅输入解析使用
	JSONOutput bool `json:"json_output,omitempty"`
}

// GenerationPlan 单次请求的生成计划，使用一次后丢弃
type GenerationPlan struct {
	Instruction Instruction     `json:"instruction"`
	Parameters  ModelParameters `json:"parameters"`
	// Variations 计划要求模型给出的变体数量
	Variations int `json:"variations"`
}

// FormattedPromptOutput 返回给调用方的固定结构
type FormattedPromptOutput struct {
	PrimaryPrompt    string   `json:"primary_prompt"`
	Variations       []string `json:"variations"`
	FollowUpQuestion string   `json:"follow_up_question,omitempty"`
}

// HasFollowUp 是否包含追问
func (o FormattedPromptOutput) HasFollowUp() bool {
	return o.FollowUpQuestion != ""
}
