package runtime_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/hostflow/internal/effects"
	"github.com/aretw0/hostflow/internal/runtime"
	"github.com/aretw0/hostflow/pkg/domain"
	"github.com/aretw0/hostflow/pkg/registry"
)

const effectsFlow = `
initial_node: start
nodes:
  start:
    functions:
      - {name: stay}
      - {name: advance, transition_to: middle}
  middle:
    post_actions:
      - {type: notify, channel: producers}
      - {type: broken}
    functions:
      - {name: loop}
      - {name: finish, transition_to: end}
  end:
    post_actions:
      - {type: notify, channel: archive}
      - {type: end_conversation}
`

func TestEngine_LifecycleHooksAndEffects(t *testing.T) {
	reg, err := registry.LoadBytes([]byte(effectsFlow))
	require.NoError(t, err)

	var notified []string
	fx := effects.NewRegistry()
	fx.Register("notify", func(_ context.Context, inv effects.Invocation) error {
		notified = append(notified, inv.NodeID+":"+inv.Effect.Params["channel"].(string))
		return nil
	})
	fx.Register("broken", func(context.Context, effects.Invocation) error {
		return errors.New("webhook down")
	})

	var entered, left, accepted, rejected, effectLog []string
	var ended *domain.SessionEvent
	hooks := domain.LifecycleHooks{
		OnNodeEnter:      func(_ context.Context, e *domain.NodeEvent) { entered = append(entered, e.NodeID) },
		OnNodeLeave:      func(_ context.Context, e *domain.NodeEvent) { left = append(left, e.NodeID) },
		OnActionAccepted: func(_ context.Context, e *domain.ActionEvent) { accepted = append(accepted, e.Action) },
		OnActionRejected: func(_ context.Context, e *domain.ActionEvent) { rejected = append(rejected, e.Action) },
		OnEffect: func(_ context.Context, e *domain.EffectEvent) {
			entry := e.Effect
			if e.Err != nil {
				entry += "!"
			}
			effectLog = append(effectLog, entry)
		},
		OnSessionEnd: func(_ context.Context, e *domain.SessionEvent) { ended = e },
	}

	engine, err := runtime.NewEngine(reg, runtime.WithEffects(fx), runtime.WithLifecycleHooks(hooks))
	require.NoError(t, err)

	ctx := context.Background()
	sess, err := engine.Start(ctx, "s1")
	require.NoError(t, err)

	steps := []string{"stay", "advance", "loop", "loop", "nope", "finish"}
	for _, name := range steps {
		next, err := engine.Transition(ctx, sess, domain.ToolCall{Name: name})
		if name == "nope" {
			require.Error(t, err)
			continue
		}
		require.NoError(t, err)
		sess = next
	}

	assert.Equal(t, []string{"start", "middle", "end"}, entered)
	assert.Equal(t, []string{"start", "middle"}, left)
	assert.Equal(t, []string{"stay", "advance", "loop", "loop", "finish"}, accepted)
	assert.Equal(t, []string{"nope"}, rejected)

	// Self-loops on middle do not re-run its entry effects
	assert.Equal(t, []string{"middle:producers", "end:archive"}, notified)
	assert.Equal(t, []string{"notify", "broken!", "notify", domain.EffectEndConversation}, effectLog)

	require.NotNil(t, ended)
	assert.Equal(t, domain.EndReasonConversation, ended.Reason)
	assert.True(t, sess.IsEnded())
}

func TestEngine_EndIsIdempotent(t *testing.T) {
	ctx := context.Background()

	var ends int
	engine := podcastEngine(t, runtime.WithLifecycleHooks(domain.LifecycleHooks{
		OnSessionEnd: func(context.Context, *domain.SessionEvent) { ends++ },
	}))

	sess, err := engine.Start(ctx, "s1")
	require.NoError(t, err)

	sess = engine.End(ctx, sess, domain.EndReasonDisconnect)
	sess = engine.End(ctx, sess, domain.EndReasonModel)
	assert.Equal(t, domain.EndReasonDisconnect, sess.EndReason)
	assert.Equal(t, 1, ends)
}
