package runtime_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/hostflow/flows"
	"github.com/aretw0/hostflow/internal/effects"
	"github.com/aretw0/hostflow/internal/runtime"
	"github.com/aretw0/hostflow/pkg/domain"
	"github.com/aretw0/hostflow/pkg/registry"
)

func podcastEngine(t *testing.T, opts ...runtime.EngineOption) *runtime.Engine {
	t.Helper()
	reg, err := registry.LoadBytes(flows.PodcastHost)
	require.NoError(t, err)

	fx := effects.NewRegistry()
	fx.Register(effects.LogSummary, func(context.Context, effects.Invocation) error { return nil })
	opts = append([]runtime.EngineOption{runtime.WithEffects(fx)}, opts...)

	engine, err := runtime.NewEngine(reg, opts...)
	require.NoError(t, err)
	return engine
}

func TestEngine_StartAtGreeting(t *testing.T) {
	engine := podcastEngine(t)

	sess, err := engine.Start(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "greeting", sess.CurrentNodeID)
	assert.Equal(t, domain.StatusActive, sess.Status)
	assert.Empty(t, sess.CollectedArguments)
}

func TestEngine_SelfLoopRecordsArguments(t *testing.T) {
	engine := podcastEngine(t)
	ctx := context.Background()

	sess, err := engine.Start(ctx, "s1")
	require.NoError(t, err)

	next, err := engine.Transition(ctx, sess, domain.ToolCall{
		Name:      "route_guest_conversation",
		Arguments: map[string]any{"intent": "small_talk"},
	})
	require.NoError(t, err)
	assert.Equal(t, "greeting", next.CurrentNodeID)
	assert.Equal(t, map[string]any{"intent": "small_talk"}, next.CollectedArguments["route_guest_conversation"])
	assert.Equal(t, []string{"greeting"}, next.History)

	// Last write wins
	again, err := engine.Transition(ctx, next, domain.ToolCall{
		Name:      "route_guest_conversation",
		Arguments: map[string]any{"intent": "needs_time"},
	})
	require.NoError(t, err)
	assert.Equal(t, "needs_time", again.CollectedArguments["route_guest_conversation"]["intent"])
	assert.Equal(t, 2, again.Transitions)

	// The input session is untouched
	assert.Empty(t, sess.CollectedArguments)
	assert.Equal(t, "small_talk", next.CollectedArguments["route_guest_conversation"]["intent"])
}

func TestEngine_ClosingEndsConversation(t *testing.T) {
	engine := podcastEngine(t)
	ctx := context.Background()

	sess, err := engine.Start(ctx, "s1")
	require.NoError(t, err)
	sess, err = engine.Transition(ctx, sess, domain.ToolCall{Name: "guest_declines"})
	require.NoError(t, err)
	require.Equal(t, "closing_remarks", sess.CurrentNodeID)

	sess, err = engine.Transition(ctx, sess, domain.ToolCall{
		Name:      "acknowledge_closing",
		Arguments: map[string]any{"acknowledgement": "thanks"},
	})
	require.NoError(t, err)
	assert.Equal(t, "final_goodbye", sess.CurrentNodeID)
	assert.Equal(t, domain.StatusEnded, sess.Status)
	assert.Equal(t, domain.EndReasonConversation, sess.EndReason)
	assert.Equal(t, "thanks", sess.CollectedArguments["acknowledge_closing"]["acknowledgement"])

	manifest, err := engine.Manifest(sess)
	require.NoError(t, err)
	assert.Empty(t, manifest)

	_, err = engine.Transition(ctx, sess, domain.ToolCall{Name: "acknowledge_closing"})
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestEngine_UnknownActionDoesNotMutate(t *testing.T) {
	engine := podcastEngine(t)
	ctx := context.Background()

	sess, err := engine.Start(ctx, "s1")
	require.NoError(t, err)

	next, err := engine.Transition(ctx, sess, domain.ToolCall{Name: "acknowledge_closing"})
	require.Error(t, err)
	assert.Nil(t, next)

	var unknown *domain.UnknownActionError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "greeting", unknown.NodeID)
	assert.Contains(t, unknown.Available, "begin_interview")

	assert.Equal(t, "greeting", sess.CurrentNodeID)
	assert.Empty(t, sess.CollectedArguments)
}

func TestEngine_InvalidArgumentsAreAllOrNothing(t *testing.T) {
	engine := podcastEngine(t)
	ctx := context.Background()

	sess, err := engine.Start(ctx, "s1")
	require.NoError(t, err)

	tests := []struct {
		name string
		args map[string]any
	}{
		{"missing required", map[string]any{"company": "Acme"}},
		{"wrong type", map[string]any{"guest_name": 42}},
		{"nil arguments", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, err := engine.Transition(ctx, sess, domain.ToolCall{Name: "begin_interview", Arguments: tt.args})
			require.Error(t, err)
			assert.Nil(t, next)
			assert.ErrorIs(t, err, domain.ErrInvalidArguments)
			assert.True(t, domain.IsRecoverable(err))
			assert.Equal(t, "greeting", sess.CurrentNodeID)
			assert.Empty(t, sess.CollectedArguments)
		})
	}

	t.Run("enum violation", func(t *testing.T) {
		_, err := engine.Transition(ctx, sess, domain.ToolCall{
			Name:      "route_guest_conversation",
			Arguments: map[string]any{"intent": "karaoke"},
		})
		assert.ErrorIs(t, err, domain.ErrInvalidArguments)
	})
}

func TestEngine_NoArgumentAction(t *testing.T) {
	engine := podcastEngine(t)
	ctx := context.Background()

	sess, err := engine.Start(ctx, "s1")
	require.NoError(t, err)
	sess, err = engine.Transition(ctx, sess, domain.ToolCall{
		Name: "begin_interview", Arguments: map[string]any{"guest_name": "Ada"},
	})
	require.NoError(t, err)
	sess, err = engine.Transition(ctx, sess, domain.ToolCall{
		Name: "capture_origin_story", Arguments: map[string]any{"summary": "garage"},
	})
	require.NoError(t, err)
	require.Equal(t, "current_work", sess.CurrentNodeID)

	sess, err = engine.Transition(ctx, sess, domain.ToolCall{Name: "guest_wants_to_skip"})
	require.NoError(t, err)
	assert.Equal(t, "lightning_round", sess.CurrentNodeID)
	assert.NotNil(t, sess.CollectedArguments["guest_wants_to_skip"])
	assert.Equal(t,
		[]string{"greeting", "origin_story", "current_work", "lightning_round"},
		sess.History)
}

func TestEngine_UnresolvableNodeIsInvalidState(t *testing.T) {
	engine := podcastEngine(t)

	sess := domain.NewSession("s1", "green_room")
	_, err := engine.Transition(context.Background(), sess, domain.ToolCall{Name: "begin_interview"})
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	_, err = engine.Manifest(sess)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestNewEngine_RejectsUnhandledEffects(t *testing.T) {
	reg, err := registry.LoadBytes(flows.PodcastHost)
	require.NoError(t, err)

	_, err = runtime.NewEngine(reg)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
	assert.Contains(t, err.Error(), `no handler for effect "log_summary"`)
}
