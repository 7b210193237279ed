package eino

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/hostflow/pkg/domain"
	"github.com/aretw0/hostflow/pkg/ports"
)

// fakeChat records what it was given and answers with a fixed message.
type fakeChat struct {
	reply *schema.Message
	err   error
	tools []*schema.ToolInfo
	input []*schema.Message
}

func (f *fakeChat) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	f.input = input
	return f.reply, f.err
}

func (f *fakeChat) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("not supported")
}

func (f *fakeChat) WithTools(tools []*schema.ToolInfo) (model.ToolCallingChatModel, error) {
	f.tools = tools
	return f, nil
}

var beginInterview = domain.ToolSpec{
	Name:        "begin_interview",
	Description: "Guest agreed to start.",
	Parameters: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"guest_name": map[string]any{"type": "string", "description": "Name to use on air"},
			"mood":       map[string]any{"type": "string", "enum": []string{"calm", "excited"}},
			"topics":     map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		},
		"required": []string{"guest_name"},
	},
}

func TestModel_ToolCallReply(t *testing.T) {
	chat := &fakeChat{reply: &schema.Message{
		Role: schema.Assistant,
		ToolCalls: []schema.ToolCall{{
			ID:       "call_1",
			Function: schema.FunctionCall{Name: "begin_interview", Arguments: `{"guest_name":"Ada","years":3}`},
		}},
	}}

	got, err := New(chat).Complete(context.Background(), ports.CompletionRequest{
		System: "You are Sam.",
		Messages: []domain.Message{
			{Role: domain.RoleAssistant, Content: "Welcome!"},
			{Role: domain.RoleUser, Content: "Hi, I'm Ada."},
		},
		Tools: []domain.ToolSpec{beginInterview},
	})
	require.NoError(t, err)
	require.NotNil(t, got.ToolCall)
	assert.Equal(t, "call_1", got.ToolCall.ID)
	assert.Equal(t, "begin_interview", got.ToolCall.Name)
	assert.Equal(t, "Ada", got.ToolCall.Arguments["guest_name"])
	assert.EqualValues(t, 3, got.ToolCall.Arguments["years"])

	require.Len(t, chat.tools, 1)
	assert.Equal(t, "begin_interview", chat.tools[0].Name)
	require.Len(t, chat.input, 3)
	assert.Equal(t, schema.System, chat.input[0].Role)
	assert.Equal(t, "You are Sam.", chat.input[0].Content)
	assert.Equal(t, schema.User, chat.input[2].Role)
}

func TestModel_TextReplyWithoutTools(t *testing.T) {
	chat := &fakeChat{reply: schema.AssistantMessage("Goodbye everyone!", nil)}

	got, err := New(chat).Complete(context.Background(), ports.CompletionRequest{System: "Say goodbye."})
	require.NoError(t, err)
	assert.Equal(t, "Goodbye everyone!", got.Text)
	assert.Nil(t, got.ToolCall)
	assert.Nil(t, chat.tools, "no tools are bound at a terminal node")
}

func TestModel_Errors(t *testing.T) {
	boom := errors.New("rate limited")
	_, err := New(&fakeChat{err: boom}).Complete(context.Background(), ports.CompletionRequest{})
	assert.ErrorIs(t, err, boom)

	bad := &fakeChat{reply: &schema.Message{ToolCalls: []schema.ToolCall{{
		Function: schema.FunctionCall{Name: "x", Arguments: "{not json"},
	}}}}
	_, err = New(bad).Complete(context.Background(), ports.CompletionRequest{})
	assert.Error(t, err)

	_, err = FromMessage(nil)
	assert.Error(t, err)
}

func TestMessages_ToolRoundTrip(t *testing.T) {
	msgs, err := Messages(ports.CompletionRequest{Messages: []domain.Message{
		{Role: domain.RoleAssistant, ToolCall: &domain.ToolCall{ID: "c1", Name: "capture_plug", Arguments: map[string]any{"has_plug": true}}},
		{Role: domain.RoleTool, ToolCallID: "c1", Content: "ok"},
	}})
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	require.Len(t, msgs[0].ToolCalls, 1)
	assert.Equal(t, "capture_plug", msgs[0].ToolCalls[0].Function.Name)
	assert.JSONEq(t, `{"has_plug":true}`, msgs[0].ToolCalls[0].Function.Arguments)
	assert.Equal(t, schema.Tool, msgs[1].Role)
	assert.Equal(t, "c1", msgs[1].ToolCallID)

	_, err = Messages(ports.CompletionRequest{Messages: []domain.Message{{Role: "narrator"}}})
	assert.Error(t, err)
}

func TestProperties(t *testing.T) {
	params := properties(beginInterview.Parameters)
	require.Len(t, params, 3)

	assert.True(t, params["guest_name"].Required)
	assert.Equal(t, schema.String, params["guest_name"].Type)
	assert.Equal(t, "Name to use on air", params["guest_name"].Desc)

	assert.False(t, params["mood"].Required)
	assert.Equal(t, []string{"calm", "excited"}, params["mood"].Enum)

	assert.Equal(t, schema.Array, params["topics"].Type)
	require.NotNil(t, params["topics"].ElemInfo)
	assert.Equal(t, schema.String, params["topics"].ElemInfo.Type)

	assert.Nil(t, properties(map[string]any{"type": "object", "properties": map[string]any{}}))
}

func TestToolInfos_KeepsDeclaredKeywords(t *testing.T) {
	survey := domain.ToolSpec{
		Name: "capture_answers",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"answers": map[string]any{
					"type":     "array",
					"minItems": 3,
					"items":    map[string]any{"type": "string", "description": "one answer"},
				},
				"rating": map[string]any{"type": "integer", "enum": []any{1, 2, 3}},
			},
			"required": []any{"answers"},
		},
	}

	def, err := openAPISchema(survey.Parameters)
	require.NoError(t, err)
	answers := def.Properties["answers"].Value
	assert.EqualValues(t, 3, answers.MinItems)
	assert.Equal(t, "one answer", answers.Items.Value.Description)
	assert.Equal(t, []any{1.0, 2.0, 3.0}, def.Properties["rating"].Value.Enum)
	assert.Equal(t, []string{"answers"}, def.Required)

	infos := ToolInfos([]domain.ToolSpec{survey})
	require.Len(t, infos, 1)
	assert.NotNil(t, infos[0].ParamsOneOf)
}
