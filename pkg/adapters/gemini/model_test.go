package gemini

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/aretw0/hostflow/pkg/domain"
	"github.com/aretw0/hostflow/pkg/ports"
)

type fakeModels struct {
	resp     *genai.GenerateContentResponse
	err      error
	model    string
	contents []*genai.Content
	config   *genai.GenerateContentConfig
}

func (f *fakeModels) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.model, f.contents, f.config = model, contents, config
	return f.resp, f.err
}

func candidate(parts ...*genai.Part) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
		Content: &genai.Content{Role: string(genai.RoleModel), Parts: parts},
	}}}
}

var capturePlug = domain.ToolSpec{
	Name:        "capture_plug",
	Description: "Record what the guest wants to promote.",
	Parameters: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"has_plug": map[string]any{"type": "boolean"},
			"plug":     map[string]any{"type": "string", "description": "What to promote"},
		},
		"required": []string{"has_plug"},
	},
}

func TestModel_FunctionCall(t *testing.T) {
	fake := &fakeModels{resp: candidate(&genai.Part{FunctionCall: &genai.FunctionCall{
		Name: "capture_plug",
		Args: map[string]any{"has_plug": true, "plug": "the book"},
	}})}
	m := newModel(fake, Config{})

	got, err := m.Complete(context.Background(), ports.CompletionRequest{
		System:   "You are Sam.",
		Messages: []domain.Message{{Role: domain.RoleUser, Content: "Check out my book."}},
		Tools:    []domain.ToolSpec{capturePlug},
	})
	require.NoError(t, err)
	require.NotNil(t, got.ToolCall)
	assert.Equal(t, "capture_plug", got.ToolCall.Name)
	assert.Equal(t, true, got.ToolCall.Arguments["has_plug"])

	assert.Equal(t, DefaultModel, fake.model)
	require.NotNil(t, fake.config.SystemInstruction)
	assert.Equal(t, "You are Sam.", fake.config.SystemInstruction.Parts[0].Text)
	require.Len(t, fake.config.Tools, 1)
	decl := fake.config.Tools[0].FunctionDeclarations[0]
	assert.Equal(t, "capture_plug", decl.Name)
	assert.Equal(t, genai.TypeObject, decl.Parameters.Type)
	assert.Equal(t, []string{"has_plug"}, decl.Parameters.Required)
	assert.Equal(t, genai.TypeBoolean, decl.Parameters.Properties["has_plug"].Type)
}

func TestModel_TextAndErrors(t *testing.T) {
	m := newModel(&fakeModels{resp: candidate(genai.NewPartFromText("Goodbye!"))}, Config{Model: "gemini-test"})
	got, err := m.Complete(context.Background(), ports.CompletionRequest{})
	require.NoError(t, err)
	assert.Equal(t, "Goodbye!", got.Text)
	assert.Nil(t, got.ToolCall)

	boom := errors.New("quota")
	_, err = newModel(&fakeModels{err: boom}, Config{}).Complete(context.Background(), ports.CompletionRequest{})
	assert.ErrorIs(t, err, boom)

	_, err = newModel(&fakeModels{resp: &genai.GenerateContentResponse{}}, Config{}).Complete(context.Background(), ports.CompletionRequest{})
	assert.Error(t, err)
}

func TestContents_ToolResultsCarryTheCallName(t *testing.T) {
	contents, err := Contents([]domain.Message{
		{Role: domain.RoleAssistant, Content: "Welcome!"},
		{Role: domain.RoleUser, Content: "Hi."},
		{Role: domain.RoleAssistant, ToolCall: &domain.ToolCall{ID: "c1", Name: "begin_interview", Arguments: map[string]any{"guest_name": "Ada"}}},
		{Role: domain.RoleTool, ToolCallID: "c1", Content: "ok"},
	})
	require.NoError(t, err)
	require.Len(t, contents, 4)
	assert.Equal(t, string(genai.RoleModel), contents[0].Role)
	assert.Equal(t, string(genai.RoleUser), contents[1].Role)
	assert.Equal(t, "begin_interview", contents[2].Parts[0].FunctionCall.Name)

	resp := contents[3].Parts[0].FunctionResponse
	require.NotNil(t, resp)
	assert.Equal(t, "begin_interview", resp.Name)
	assert.Equal(t, "ok", resp.Response["output"])

	_, err = Contents([]domain.Message{{Role: domain.RoleTool, ToolCallID: "nope"}})
	assert.Error(t, err)
}

func TestDeclarations_EmptyParameters(t *testing.T) {
	decls := Declarations([]domain.ToolSpec{{
		Name:       "guest_wants_to_skip",
		Parameters: map[string]any{"type": "object", "properties": map[string]any{}},
	}})
	require.Len(t, decls, 1)
	assert.Nil(t, decls[0].Parameters)
}

func TestSchema_Nested(t *testing.T) {
	s := Schema(map[string]any{
		"type":  "array",
		"items": map[string]any{"type": "string", "enum": []any{"a", "b"}},
	})
	assert.Equal(t, genai.TypeArray, s.Type)
	require.NotNil(t, s.Items)
	assert.Equal(t, []string{"a", "b"}, s.Items.Enum)
}

func TestSchema_Bounds(t *testing.T) {
	s := Schema(map[string]any{
		"type":     "array",
		"minItems": 3,
		"items":    map[string]any{"type": "string", "description": "one answer", "format": "enum"},
	})
	require.NotNil(t, s.MinItems)
	assert.EqualValues(t, 3, *s.MinItems)
	assert.Nil(t, s.MaxItems)
	assert.Equal(t, "one answer", s.Items.Description)
	assert.Equal(t, "enum", s.Items.Format)

	n := Schema(map[string]any{"type": "integer", "minimum": 1.0, "maximum": 5})
	require.NotNil(t, n.Minimum)
	require.NotNil(t, n.Maximum)
	assert.Equal(t, 1.0, *n.Minimum)
	assert.Equal(t, 5.0, *n.Maximum)
}
