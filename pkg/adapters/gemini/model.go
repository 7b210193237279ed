package gemini

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"github.com/aretw0/hostflow/pkg/domain"
	"github.com/aretw0/hostflow/pkg/ports"
)

// DefaultModel is used when Config.Model is empty.
const DefaultModel = "gemini-2.5-flash"

// generator is the part of *genai.Models the adapter needs.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Config configures the Gemini API client.
type Config struct {
	APIKey      string
	Model       string
	Temperature float32
}

// Model implements ports.LanguageModel with Gemini function calling.
type Model struct {
	models      generator
	model       string
	temperature float32
}

// New creates a Gemini-backed model.
func New(ctx context.Context, cfg Config) (*Model, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini: api key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return newModel(client.Models, cfg), nil
}

func newModel(g generator, cfg Config) *Model {
	name := cfg.Model
	if name == "" {
		name = DefaultModel
	}
	return &Model{models: g, model: name, temperature: cfg.Temperature}
}

func (m *Model) Complete(ctx context.Context, req ports.CompletionRequest) (ports.Completion, error) {
	contents, err := Contents(req.Messages)
	if err != nil {
		return ports.Completion{}, err
	}

	conf := &genai.GenerateContentConfig{}
	if req.System != "" {
		conf.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if len(req.Tools) > 0 {
		conf.Tools = []*genai.Tool{{FunctionDeclarations: Declarations(req.Tools)}}
	}
	if m.temperature > 0 {
		conf.Temperature = genai.Ptr(m.temperature)
	}

	resp, err := m.models.GenerateContent(ctx, m.model, contents, conf)
	if err != nil {
		return ports.Completion{}, err
	}
	return FromResponse(resp)
}

// Contents converts the conversation history into Gemini contents.
// Tool results are sent as function responses named after the call they answer.
func Contents(history []domain.Message) ([]*genai.Content, error) {
	names := make(map[string]string)
	out := make([]*genai.Content, 0, len(history))
	for _, msg := range history {
		switch msg.Role {
		case domain.RoleUser, domain.RoleSystem:
			out = append(out, genai.NewContentFromText(msg.Content, genai.RoleUser))
		case domain.RoleAssistant:
			var parts []*genai.Part
			if msg.Content != "" {
				parts = append(parts, genai.NewPartFromText(msg.Content))
			}
			if msg.ToolCall != nil {
				names[msg.ToolCall.ID] = msg.ToolCall.Name
				parts = append(parts, &genai.Part{FunctionCall: &genai.FunctionCall{
					ID:   msg.ToolCall.ID,
					Name: msg.ToolCall.Name,
					Args: msg.ToolCall.Arguments,
				}})
			}
			if len(parts) == 0 {
				continue
			}
			out = append(out, genai.NewContentFromParts(parts, genai.RoleModel))
		case domain.RoleTool:
			name, ok := names[msg.ToolCallID]
			if !ok {
				return nil, fmt.Errorf("tool result %q answers no known call", msg.ToolCallID)
			}
			out = append(out, genai.NewContentFromParts([]*genai.Part{{FunctionResponse: &genai.FunctionResponse{
				ID:       msg.ToolCallID,
				Name:     name,
				Response: map[string]any{"output": msg.Content},
			}}}, genai.RoleUser))
		default:
			return nil, fmt.Errorf("unsupported message role: %s", msg.Role)
		}
	}
	return out, nil
}

// FromResponse reads the first function call and the text of the first candidate.
func FromResponse(resp *genai.GenerateContentResponse) (ports.Completion, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return ports.Completion{}, errors.New("gemini returned no candidates")
	}
	out := ports.Completion{Text: resp.Text()}
	if calls := resp.FunctionCalls(); len(calls) > 0 {
		args := calls[0].Args
		if args == nil {
			args = map[string]any{}
		}
		out.ToolCall = &domain.ToolCall{
			ID:        calls[0].ID,
			Name:      calls[0].Name,
			Arguments: args,
		}
	}
	return out, nil
}
