package registry_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/hostflow/flows"
	"github.com/aretw0/hostflow/pkg/domain"
	"github.com/aretw0/hostflow/pkg/registry"
)

func TestLoad_PodcastFlow(t *testing.T) {
	reg, err := registry.LoadBytes(flows.PodcastHost)
	require.NoError(t, err)

	assert.Equal(t, "greeting", reg.Start())
	assert.Equal(t, 9, reg.Len())
	assert.Equal(t, 1, reg.Personas(), "identical role text must be shared")

	greeting, err := reg.Lookup("greeting")
	require.NoError(t, err)
	bye, err := reg.Lookup("final_goodbye")
	require.NoError(t, err)
	assert.Same(t, greeting.Persona, bye.Persona)

	assert.True(t, bye.IsTerminal())
	assert.Empty(t, bye.Actions)

	route, ok := greeting.Action("route_guest_conversation")
	require.True(t, ok)
	assert.True(t, route.SelfLoops("greeting"))

	closing, err := reg.Lookup("closing_remarks")
	require.NoError(t, err)
	ack, ok := closing.Action("acknowledge_closing")
	require.True(t, ok)
	assert.Equal(t, "final_goodbye", ack.Successor)
	assert.Equal(t, []string{"acknowledgement"}, ack.Parameters.Required)

	work, err := reg.Lookup("current_work")
	require.NoError(t, err)
	skip, ok := work.Action("guest_wants_to_skip")
	require.True(t, ok)
	assert.True(t, skip.Parameters.IsEmpty())

	assert.Equal(t, []string{domain.EffectEndConversation, "log_summary"}, reg.EffectTypes())
}

func TestLookup_NotFound(t *testing.T) {
	reg, err := registry.LoadBytes(flows.PodcastHost)
	require.NoError(t, err)

	_, err = reg.Lookup("backstage")
	require.Error(t, err)
	var nf *domain.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "backstage", nf.NodeID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLoad_ConfigurationErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "missing start node",
			src: `
initial_node: lobby
nodes:
  end:
    post_actions: [{type: end_conversation}]
`,
			want: `initial_node "lobby" does not exist`,
		},
		{
			name: "dangling successor",
			src: `
initial_node: a
nodes:
  a:
    functions:
      - {name: go, transition_to: nowhere}
`,
			want: `transitions to unknown node "nowhere"`,
		},
		{
			name: "duplicate action",
			src: `
initial_node: a
nodes:
  a:
    functions:
      - {name: go, transition_to: b}
      - {name: go, transition_to: b}
  b:
    post_actions: [{type: end_conversation}]
`,
			want: `duplicate action "go"`,
		},
		{
			name: "terminal node with actions",
			src: `
initial_node: a
nodes:
  a:
    functions:
      - {name: again}
    post_actions: [{type: end_conversation}]
`,
			want: `ends the conversation but declares 1 actions`,
		},
		{
			name: "dead end",
			src: `
initial_node: a
nodes:
  a:
    task_messages: [{role: system, content: "wait"}]
`,
			want: `declares no actions`,
		},
		{
			name: "bad parameters",
			src: `
initial_node: a
nodes:
  a:
    functions:
      - name: go
        parameters: {type: object, properties: {when: {type: date}}}
        transition_to: b
  b:
    post_actions: [{type: end_conversation}]
`,
			want: `invalid parameters`,
		},
		{
			name: "malformed yaml",
			src:  "nodes: [",
			want: "failed to parse flow",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := registry.LoadBytes([]byte(tt.src))
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrConfiguration), "got %T", err)
			assert.True(t, strings.Contains(err.Error(), tt.want), "error %q should contain %q", err, tt.want)
		})
	}
}

func TestLoad_ReportsAllProblems(t *testing.T) {
	_, err := registry.LoadBytes([]byte(`
initial_node: ghost
nodes:
  a:
    functions:
      - {name: x, transition_to: y}
      - {name: x}
`))
	var cfg *domain.ConfigurationError
	require.ErrorAs(t, err, &cfg)
	assert.Len(t, cfg.Problems, 3)
}

func TestLoad_PersonaFallsBackToStartNode(t *testing.T) {
	reg, err := registry.LoadBytes([]byte(`
initial_node: a
nodes:
  a:
    role_messages: [{role: system, content: "You are a host."}]
    functions:
      - {name: next, transition_to: b}
  b:
    post_actions: [{type: end_conversation}]
`))
	require.NoError(t, err)
	b, err := reg.Lookup("b")
	require.NoError(t, err)
	require.NotNil(t, b.Persona)
	assert.Equal(t, "You are a host.", b.Persona.Text)
	assert.Equal(t, 1, reg.Personas())
}
