package port

import (
	"context"

	"github.com/cloudwego/eino/components/model"
)

// ChatModelFactory 按 provider 名称提供 ChatModel，空名称表示默认 provider。
// 由 infrastructure/llm.EinoFactory 实现，测试中可替换为固定模型。
type ChatModelFactory interface {
	Get(ctx context.Context, name string) (model.BaseChatModel, error)
}
