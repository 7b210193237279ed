package eino

import (
	"context"
	"errors"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/aretw0/hostflow/pkg/domain"
	"github.com/aretw0/hostflow/pkg/ports"
)

// Model implements ports.LanguageModel on top of an Eino tool-calling chat model.
// Tools are bound per request because the manifest changes with every node.
type Model struct {
	chat model.ToolCallingChatModel
}

// New wraps an existing chat model.
func New(chat model.ToolCallingChatModel) *Model {
	return &Model{chat: chat}
}

// OpenAIConfig configures an OpenAI-compatible endpoint.
type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	MaxTokens   int
}

// NewOpenAI builds a Model backed by the Eino OpenAI chat model.
func NewOpenAI(ctx context.Context, cfg OpenAIConfig) (*Model, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai: api key is required")
	}
	conf := &openai.ChatModelConfig{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Model:   cfg.Model,
	}
	if cfg.Temperature > 0 {
		conf.Temperature = &cfg.Temperature
	}
	if cfg.MaxTokens > 0 {
		conf.MaxTokens = &cfg.MaxTokens
	}

	chat, err := openai.NewChatModel(ctx, conf)
	if err != nil {
		return nil, fmt.Errorf("error creating chat model: %w", err)
	}
	return New(chat), nil
}

func (m *Model) Complete(ctx context.Context, req ports.CompletionRequest) (ports.Completion, error) {
	chat := m.chat
	if len(req.Tools) > 0 {
		bound, err := m.chat.WithTools(ToolInfos(req.Tools))
		if err != nil {
			return ports.Completion{}, fmt.Errorf("failed to bind tools: %w", err)
		}
		chat = bound
	}

	msgs, err := Messages(req)
	if err != nil {
		return ports.Completion{}, err
	}

	out, err := chat.Generate(ctx, msgs)
	if err != nil {
		return ports.Completion{}, err
	}
	return FromMessage(out)
}

// Messages converts a completion request into Eino messages, system text first.
func Messages(req ports.CompletionRequest) ([]*schema.Message, error) {
	out := make([]*schema.Message, 0, len(req.Messages)+1)
	if req.System != "" {
		out = append(out, schema.SystemMessage(req.System))
	}
	for _, msg := range req.Messages {
		switch msg.Role {
		case domain.RoleSystem:
			out = append(out, schema.SystemMessage(msg.Content))
		case domain.RoleUser:
			out = append(out, schema.UserMessage(msg.Content))
		case domain.RoleAssistant:
			var calls []schema.ToolCall
			if msg.ToolCall != nil {
				args, err := sonic.MarshalString(msg.ToolCall.Arguments)
				if err != nil {
					return nil, fmt.Errorf("failed to encode arguments of %s: %w", msg.ToolCall.Name, err)
				}
				calls = append(calls, schema.ToolCall{
					ID:   msg.ToolCall.ID,
					Type: "function",
					Function: schema.FunctionCall{
						Name:      msg.ToolCall.Name,
						Arguments: args,
					},
				})
			}
			out = append(out, schema.AssistantMessage(msg.Content, calls))
		case domain.RoleTool:
			out = append(out, schema.ToolMessage(msg.Content, msg.ToolCallID))
		default:
			return nil, fmt.Errorf("unsupported message role: %s", msg.Role)
		}
	}
	return out, nil
}

// FromMessage reads the model's reply. Only the first tool call is used:
// the flow accepts one action per turn.
func FromMessage(msg *schema.Message) (ports.Completion, error) {
	if msg == nil {
		return ports.Completion{}, errors.New("empty reply from model")
	}
	out := ports.Completion{Text: msg.Content}
	if len(msg.ToolCalls) == 0 {
		return out, nil
	}

	tc := msg.ToolCalls[0]
	args := map[string]any{}
	if tc.Function.Arguments != "" {
		if err := sonic.UnmarshalString(tc.Function.Arguments, &args); err != nil {
			return ports.Completion{}, fmt.Errorf("failed to decode arguments of %s: %w", tc.Function.Name, err)
		}
	}
	out.ToolCall = &domain.ToolCall{
		ID:        tc.ID,
		Name:      tc.Function.Name,
		Arguments: args,
	}
	return out, nil
}
