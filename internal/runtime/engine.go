package runtime

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/hostflow/internal/effects"
	"github.com/aretw0/hostflow/pkg/domain"
	"github.com/aretw0/hostflow/pkg/ports"
)

// Engine is the flow controller. It holds no session state: every operation
// takes a session value and returns a new one.
type Engine struct {
	graph   ports.Graph
	effects *effects.Registry
	logger  *slog.Logger
	hooks   domain.LifecycleHooks
}

// EngineOption configures the engine.
type EngineOption func(*Engine)

// WithLogger sets the logger for the engine.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithLifecycleHooks registers observability callbacks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithEffects sets the registry used to run non-terminal entry effects.
func WithEffects(r *effects.Registry) EngineOption {
	return func(e *Engine) {
		e.effects = r
	}
}

// NewEngine creates a flow controller over the graph.
// It fails with a *domain.ConfigurationError if a node references an effect
// type that has no registered handler.
func NewEngine(graph ports.Graph, opts ...EngineOption) (*Engine, error) {
	e := &Engine{
		graph:   graph,
		effects: effects.NewRegistry(),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}

	var problems []string
	for _, n := range graph.Nodes() {
		for _, eff := range n.Effects {
			if eff.Type == domain.EffectEndConversation || e.effects.Has(eff.Type) {
				continue
			}
			problems = append(problems, fmt.Sprintf("node %q: no handler for effect %q", n.ID, eff.Type))
		}
	}
	if len(problems) > 0 {
		return nil, &domain.ConfigurationError{Problems: problems}
	}
	return e, nil
}

// Graph returns the graph the engine runs against.
func (e *Engine) Graph() ports.Graph {
	return e.graph
}
