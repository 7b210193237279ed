package runtime_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/hostflow/internal/runtime"
	"github.com/aretw0/hostflow/pkg/domain"
	"github.com/aretw0/hostflow/pkg/registry"
)

func names(specs []domain.ToolSpec) []string {
	out := make([]string, len(specs))
	for i, s := range specs {
		out[i] = s.Name
	}
	return out
}

func TestManifest_TracksCurrentNode(t *testing.T) {
	engine := podcastEngine(t)
	ctx := context.Background()

	sess, err := engine.Start(ctx, "s1")
	require.NoError(t, err)

	m, err := engine.Manifest(sess)
	require.NoError(t, err)
	assert.Equal(t, []string{"begin_interview", "route_guest_conversation", "guest_declines"}, names(m))
	assert.Equal(t, "object", m[0].Parameters["type"])
	assert.Equal(t, []any{"guest_name"}, m[0].Parameters["required"])

	sess, err = engine.Transition(ctx, sess, domain.ToolCall{Name: "guest_declines"})
	require.NoError(t, err)

	m, err = engine.Manifest(sess)
	require.NoError(t, err)
	assert.Equal(t, []string{"acknowledge_closing"}, names(m))
}

func TestPrompt_SharesPersona(t *testing.T) {
	engine := podcastEngine(t)
	ctx := context.Background()

	sess, err := engine.Start(ctx, "s1")
	require.NoError(t, err)
	first, err := engine.Prompt(sess)
	require.NoError(t, err)
	assert.Contains(t, first.Persona, "Build Notes")
	assert.Contains(t, first.Task, "begin_interview")
	assert.Contains(t, first.System(), first.Persona)
	assert.Contains(t, first.System(), first.Task)

	sess, err = engine.Transition(ctx, sess, domain.ToolCall{Name: "guest_declines"})
	require.NoError(t, err)
	second, err := engine.Prompt(sess)
	require.NoError(t, err)
	assert.Equal(t, first.Persona, second.Persona)
	assert.NotEqual(t, first.Task, second.Task)
}

func TestManifest_OffersDeclaredSchemaVerbatim(t *testing.T) {
	reg, err := registry.LoadBytes([]byte(`
initial_node: survey
nodes:
  survey:
    functions:
      - type: function
        function:
          name: capture_answers
          parameters:
            type: object
            properties:
              answers: {type: array, minItems: 3, items: {type: string, description: one answer}}
              rating: {type: integer, enum: [1, 2, 3], default: 2}
              email: {type: string, format: email}
            required: [answers]
          transition_to: done
  done:
    post_actions: [{type: end_conversation}]
`))
	require.NoError(t, err)
	engine, err := runtime.NewEngine(reg)
	require.NoError(t, err)

	sess, err := engine.Start(context.Background(), "s1")
	require.NoError(t, err)
	m, err := engine.Manifest(sess)
	require.NoError(t, err)
	require.Len(t, m, 1)

	props := m[0].Parameters["properties"].(map[string]any)
	answers := props["answers"].(map[string]any)
	assert.Equal(t, 3, answers["minItems"])
	assert.Equal(t, "one answer", answers["items"].(map[string]any)["description"])
	rating := props["rating"].(map[string]any)
	assert.Equal(t, []any{1, 2, 3}, rating["enum"])
	assert.Equal(t, 2, rating["default"])
	assert.Equal(t, "email", props["email"].(map[string]any)["format"])

	// Each manifest is a private copy of the declaration.
	answers["minItems"] = 0
	again, err := engine.Manifest(sess)
	require.NoError(t, err)
	againAnswers := again[0].Parameters["properties"].(map[string]any)["answers"].(map[string]any)
	assert.Equal(t, 3, againAnswers["minItems"])

	_, err = engine.Transition(context.Background(), sess, domain.ToolCall{
		Name:      "capture_answers",
		Arguments: map[string]any{"answers": []any{"x"}, "rating": 7},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidArguments, "declared enums are enforced")
}
