package observability

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/hostflow/pkg/domain"
)

const namespace = "hostflow"

// Metrics records flow activity as Prometheus metrics.
// Lifecycle hooks feed the flow counters; the session driver feeds the turn
// measurements through ObserveTurn and ObserveCorrection.
type Metrics struct {
	registry *prometheus.Registry

	nodeVisits      *prometheus.CounterVec
	actions         *prometheus.CounterVec
	effects         *prometheus.CounterVec
	sessionsEnded   *prometheus.CounterVec
	sessionDuration prometheus.Histogram
	sessionsActive  prometheus.Gauge
	turnDuration    *prometheus.HistogramVec
	turns           *prometheus.CounterVec
	corrections     *prometheus.CounterVec
}

// NewMetrics creates the collectors on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		nodeVisits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "node_visits_total",
			Help:      "Total number of node entries.",
		}, []string{"node_id"}),
		actions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "actions_total",
			Help:      "Action invocations by outcome.",
		}, []string{"node_id", "action", "outcome"}),
		effects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "effects_total",
			Help:      "Entry effect executions by outcome.",
		}, []string{"effect", "outcome"}),
		sessionsEnded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_ended_total",
			Help:      "Sessions that reached the ended state, by reason.",
		}, []string{"reason"}),
		sessionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "session_duration_seconds",
			Help:      "Wall-clock length of ended sessions.",
			Buckets:   []float64{15, 30, 60, 120, 300, 600, 1200, 1800, 3600},
		}),
		sessionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Conversations currently held by this process.",
		}),
		turnDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "model_turn_duration_seconds",
			Help:      "Latency of language model turns.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"node_id"}),
		turns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "model_turns_total",
			Help:      "Language model turns by outcome.",
		}, []string{"node_id", "outcome"}),
		corrections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "corrections_total",
			Help:      "Corrective turns sent after a rejected action.",
		}, []string{"node_id", "kind"}),
	}
	m.registry.MustRegister(
		m.nodeVisits, m.actions, m.effects,
		m.sessionsEnded, m.sessionDuration, m.sessionsActive,
		m.turnDuration, m.turns, m.corrections,
	)
	return m
}

// Registry exposes the underlying registry, e.g. to add process collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the metrics in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Hooks returns lifecycle hooks that record flow activity.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeEnter: func(ctx context.Context, e *domain.NodeEvent) {
			m.nodeVisits.WithLabelValues(e.NodeID).Inc()
		},
		OnActionAccepted: func(ctx context.Context, e *domain.ActionEvent) {
			m.actions.WithLabelValues(e.NodeID, e.Action, "accepted").Inc()
		},
		OnActionRejected: func(ctx context.Context, e *domain.ActionEvent) {
			m.actions.WithLabelValues(e.NodeID, e.Action, "rejected").Inc()
		},
		OnEffect: func(ctx context.Context, e *domain.EffectEvent) {
			m.effects.WithLabelValues(e.Effect, outcome(e.Err)).Inc()
		},
		OnSessionEnd: func(ctx context.Context, e *domain.SessionEvent) {
			m.sessionsEnded.WithLabelValues(e.Reason).Inc()
			m.sessionDuration.Observe(e.Duration.Seconds())
		},
	}
}

// SessionOpened and SessionClosed track conversations held by the process.
func (m *Metrics) SessionOpened() { m.sessionsActive.Inc() }
func (m *Metrics) SessionClosed() { m.sessionsActive.Dec() }

// ObserveTurn records one model turn.
func (m *Metrics) ObserveTurn(nodeID string, d time.Duration, err error) {
	m.turnDuration.WithLabelValues(nodeID).Observe(d.Seconds())
	o := outcome(err)
	if errors.Is(err, context.Canceled) {
		o = "cancelled"
	}
	m.turns.WithLabelValues(nodeID, o).Inc()
}

// ObserveCorrection records a corrective turn.
func (m *Metrics) ObserveCorrection(nodeID, kind string) {
	m.corrections.WithLabelValues(nodeID, kind).Inc()
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
