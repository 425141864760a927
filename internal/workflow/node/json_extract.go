package node

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ExtractJSONObject 从模型输出中截取第一个 "{" 到最后一个 "}" 之间的内容。
// 模型常在 JSON 前后夹带说明文字或 ``` 代码块标记。
func ExtractJSONObject(s string) (string, bool) {
	raw := strings.TrimSpace(s)
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return "", false
	}
	raw = raw[start : end+1]
	if !json.Valid([]byte(raw)) {
		return "", false
	}
	return raw, true
}

// DecodeJSONObject 截取并解码模型输出中的 JSON 对象
func DecodeJSONObject(s string, v any) error {
	raw, ok := ExtractJSONObject(s)
	if !ok {
		return fmt.Errorf("no json object in model output")
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("decode model json: %w", err)
	}
	return nil
}
