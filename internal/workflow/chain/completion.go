package chain

import (
	"context"
	"fmt"
	"strings"
	"sync"

	openaiopts "github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	llmctx "promptcraft-ai-api/internal/domain/service"
	wfmodel "promptcraft-ai-api/internal/workflow/model"
	wfnode "promptcraft-ai-api/internal/workflow/node"
	workflowport "promptcraft-ai-api/internal/workflow/port"
	"promptcraft-ai-api/pkg/logger"
)

// CompletionChain 单轮补全：消息组装 -> LLM -> 结果输出
type CompletionChain struct {
	factory workflowport.ChatModelFactory

	chainOnce sync.Once
	chain     compose.Runnable[*wfmodel.CompletionInput, *schema.Message]
	chainErr  error
}

func NewCompletionChain(factory workflowport.ChatModelFactory) *CompletionChain {
	return &CompletionChain{factory: factory}
}

func (c *CompletionChain) Invoke(ctx context.Context, in *wfmodel.CompletionInput) (*schema.Message, error) {
	if c == nil || c.factory == nil {
		return nil, fmt.Errorf("llm factory not configured")
	}
	if in == nil {
		return nil, fmt.Errorf("input is nil")
	}

	chain, err := c.getChain()
	if err != nil {
		return nil, err
	}
	return chain.Invoke(ctx, in)
}

type completionChainState struct {
	In       *wfmodel.CompletionInput
	Messages []*schema.Message
	OutMsg   *schema.Message
}

func (c *CompletionChain) getChain() (compose.Runnable[*wfmodel.CompletionInput, *schema.Message], error) {
	c.chainOnce.Do(func() {
		c.chain, c.chainErr = c.buildChain(context.Background())
	})
	return c.chain, c.chainErr
}

func (c *CompletionChain) buildChain(ctx context.Context) (compose.Runnable[*wfmodel.CompletionInput, *schema.Message], error) {
	chain := compose.NewChain[*wfmodel.CompletionInput, *schema.Message]()

	chain.AppendLambda(
		compose.InvokableLambda(func(_ context.Context, in *wfmodel.CompletionInput) (*completionChainState, error) {
			if in == nil {
				return nil, fmt.Errorf("input is nil")
			}
			return &completionChainState{In: in}, nil
		}),
		compose.WithNodeName("completion.init"),
	)

	chain.AppendLambda(
		compose.InvokableLambda(func(_ context.Context, st *completionChainState) (*completionChainState, error) {
			if st == nil || st.In == nil {
				return nil, fmt.Errorf("state is nil")
			}
			msgs, err := buildCompletionMessages(st.In)
			if err != nil {
				return nil, err
			}
			st.Messages = msgs
			return st, nil
		}),
		compose.WithNodeName("completion.messages"),
	)

	chain.AppendLambda(
		compose.InvokableLambda(func(ctx context.Context, st *completionChainState) (*completionChainState, error) {
			if st == nil || st.In == nil {
				return nil, fmt.Errorf("state is nil")
			}

			provider := strings.TrimSpace(st.In.Provider)
			chatModel, err := c.factory.Get(ctx, provider)
			if err != nil {
				return nil, err
			}

			jsonOutput := st.In.Parameters.JSONOutput
			outMsg, err := chatModel.Generate(ctx, st.Messages, buildCompletionModelOptions(st.In, jsonOutput)...)
			if err != nil && jsonOutput && wfnode.IsResponseFormatUnsupportedError(err) {
				logger.Warn(ctx, "llm json output not supported, fallback to prompt-only",
					"workflow", llmctx.WorkflowFromContext(ctx),
					"provider", provider,
					"model", st.In.Parameters.Model,
					"error", err.Error(),
				)
				outMsg, err = chatModel.Generate(ctx, st.Messages, buildCompletionModelOptions(st.In, false)...)
			}
			if err != nil {
				return nil, err
			}
			if outMsg == nil {
				return nil, fmt.Errorf("empty llm response")
			}
			st.OutMsg = outMsg
			return st, nil
		}),
		compose.WithNodeName("completion.llm"),
	)

	chain.AppendLambda(
		compose.InvokableLambda(func(_ context.Context, st *completionChainState) (*schema.Message, error) {
			if st == nil || st.OutMsg == nil {
				return nil, fmt.Errorf("state is nil")
			}
			return st.OutMsg, nil
		}),
		compose.WithNodeName("completion.finalize"),
	)

	return chain.Compile(ctx)
}

func buildCompletionMessages(in *wfmodel.CompletionInput) ([]*schema.Message, error) {
	user := strings.TrimSpace(in.Instruction.User)
	if user == "" {
		return nil, fmt.Errorf("instruction has no user message")
	}
	msgs := make([]*schema.Message, 0, 2)
	if system := strings.TrimSpace(in.Instruction.System); system != "" {
		msgs = append(msgs, schema.SystemMessage(system))
	}
	return append(msgs, schema.UserMessage(user)), nil
}

func buildCompletionModelOptions(in *wfmodel.CompletionInput, jsonOutput bool) []model.Option {
	opts := make([]model.Option, 0, 4)
	if in == nil {
		return opts
	}
	p := in.Parameters
	opts = append(opts, model.WithTemperature(float32(p.Temperature)))
	if p.MaxTokens > 0 {
		opts = append(opts, model.WithMaxTokens(p.MaxTokens))
	}
	if m := strings.TrimSpace(p.Model); m != "" {
		opts = append(opts, model.WithModel(m))
	}

	if jsonOutput {
		opts = append(opts, openaiopts.WithExtraFields(map[string]any{
			"response_format": map[string]any{"type": "json_object"},
		}))
	}

	return opts
}
