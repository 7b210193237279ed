package observability_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/hostflow"
	"github.com/aretw0/hostflow/flows"
	"github.com/aretw0/hostflow/pkg/domain"
	"github.com/aretw0/hostflow/pkg/observability"
)

func TestMetrics_RecordsFlowActivity(t *testing.T) {
	m := observability.NewMetrics()
	engine, err := hostflow.New("", hostflow.WithFlow(flows.PodcastHost), hostflow.WithLifecycleHooks(m.Hooks()))
	require.NoError(t, err)

	ctx := context.Background()
	sess, err := engine.Start(ctx, "ep-1")
	require.NoError(t, err)

	_, err = engine.Transition(ctx, sess, domain.ToolCall{Name: "begin_interview", Arguments: map[string]any{}})
	require.Error(t, err)

	sess, err = engine.Transition(ctx, sess, domain.ToolCall{Name: "guest_declines", Arguments: map[string]any{"reason": "busy"}})
	require.NoError(t, err)
	sess, err = engine.Transition(ctx, sess, domain.ToolCall{Name: "acknowledge_closing", Arguments: map[string]any{"acknowledgement": "bye"}})
	require.NoError(t, err)
	require.True(t, sess.IsEnded())

	reg := m.Registry()
	assert.Equal(t, 3, testutil.CollectAndCount(reg, "hostflow_node_visits_total"))

	expected := `
# HELP hostflow_sessions_ended_total Sessions that reached the ended state, by reason.
# TYPE hostflow_sessions_ended_total counter
hostflow_sessions_ended_total{reason="end_conversation"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "hostflow_sessions_ended_total"))

	expected = `
# HELP hostflow_actions_total Action invocations by outcome.
# TYPE hostflow_actions_total counter
hostflow_actions_total{action="acknowledge_closing",node_id="closing_remarks",outcome="accepted"} 1
hostflow_actions_total{action="begin_interview",node_id="greeting",outcome="rejected"} 1
hostflow_actions_total{action="guest_declines",node_id="greeting",outcome="accepted"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "hostflow_actions_total"))
}

func TestMetrics_TurnsAndCorrections(t *testing.T) {
	m := observability.NewMetrics()

	m.ObserveTurn("greeting", 120*time.Millisecond, nil)
	m.ObserveTurn("greeting", time.Second, errors.New("rate limited"))
	m.ObserveTurn("greeting", time.Second, context.Canceled)
	m.ObserveCorrection("greeting", "invalid_arguments")
	m.SessionOpened()
	m.SessionOpened()
	m.SessionClosed()

	expected := `
# HELP hostflow_model_turns_total Language model turns by outcome.
# TYPE hostflow_model_turns_total counter
hostflow_model_turns_total{node_id="greeting",outcome="cancelled"} 1
hostflow_model_turns_total{node_id="greeting",outcome="error"} 1
hostflow_model_turns_total{node_id="greeting",outcome="ok"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "hostflow_model_turns_total"))
	assert.Equal(t, 1, testutil.CollectAndCount(m.Registry(), "hostflow_corrections_total"))

	expected = `
# HELP hostflow_sessions_active Conversations currently held by this process.
# TYPE hostflow_sessions_active gauge
hostflow_sessions_active 1
`
	assert.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "hostflow_sessions_active"))
}

func TestMetrics_Handler(t *testing.T) {
	m := observability.NewMetrics()
	m.ObserveCorrection("plug", "unknown_action")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `hostflow_corrections_total{kind="unknown_action",node_id="plug"} 1`)
}
