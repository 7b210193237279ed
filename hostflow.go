package hostflow

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/aretw0/hostflow/internal/effects"
	"github.com/aretw0/hostflow/internal/runtime"
	"github.com/aretw0/hostflow/internal/validator"
	"github.com/aretw0/hostflow/pkg/domain"
	"github.com/aretw0/hostflow/pkg/ports"
	"github.com/aretw0/hostflow/pkg/registry"
	"github.com/aretw0/hostflow/pkg/runner"
)

// EffectHandler implements a custom entry effect type.
type EffectHandler func(ctx context.Context, sess *domain.Session, nodeID string, effect domain.Effect) error

// Engine is the high-level entry point for the hostflow library.
// It wraps the flow controller and provides a simplified API for consumers.
type Engine struct {
	runtime  *runtime.Engine
	registry *registry.Registry
	effects  *effects.Registry
	queue    *runner.Queue
	hooks    domain.LifecycleHooks
	logger   *slog.Logger
	source   []byte
	custom   map[string]EffectHandler
	Name     string
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLifecycleHooks registers observability hooks.
// Calling it more than once merges the hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = e.hooks.Merge(hooks)
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithFlow provides the flow document directly, bypassing the file system.
func WithFlow(data []byte) Option {
	return func(e *Engine) {
		e.source = data
	}
}

// WithRegistry uses an already loaded flow, such as one built with pkg/dsl.
func WithRegistry(r *registry.Registry) Option {
	return func(e *Engine) {
		e.registry = r
	}
}

// WithEffect registers a handler for a custom entry effect type.
func WithEffect(effectType string, fn EffectHandler) Option {
	return func(e *Engine) {
		e.custom[effectType] = fn
	}
}

// New loads the flow at path and initializes the engine.
// If WithFlow is provided, path only names the flow and may be empty.
func New(path string, opts ...Option) (*Engine, error) {
	eng := &Engine{
		effects: effects.NewRegistry(),
		queue:   runner.NewQueue(),
		logger:  slog.New(slog.NewJSONHandler(io.Discard, nil)),
		custom:  make(map[string]EffectHandler),
	}
	for _, opt := range opts {
		opt(eng)
	}

	// Custom handlers may replace built-ins of the same type.
	effects.RegisterBuiltins(eng.effects, eng.logger, eng.queue)
	for effectType, fn := range eng.custom {
		eng.effects.Register(effectType, func(ctx context.Context, inv effects.Invocation) error {
			return fn(ctx, inv.Session, inv.NodeID, inv.Effect)
		})
	}

	var err error
	embedded := eng.registry != nil || eng.source != nil
	switch {
	case eng.registry != nil:
		eng.Name = "embedded"
	case eng.source != nil:
		eng.registry, err = registry.LoadBytes(eng.source)
		eng.Name = "embedded"
	case path != "":
		eng.registry, err = registry.LoadFile(path)
		eng.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	default:
		return nil, fmt.Errorf("a flow path is required when no flow is provided")
	}
	if err != nil {
		return nil, err
	}
	if embedded && path != "" {
		eng.Name = path
	}

	eng.logger = eng.logger.With("flow", eng.Name)

	eng.runtime, err = runtime.NewEngine(eng.registry,
		runtime.WithLogger(eng.logger),
		runtime.WithLifecycleHooks(eng.hooks),
		runtime.WithEffects(eng.effects),
	)
	if err != nil {
		return nil, err
	}
	return eng, nil
}

// Start creates a new session at the start node.
func (e *Engine) Start(ctx context.Context, sessionID string) (*domain.Session, error) {
	return e.runtime.Start(ctx, sessionID)
}

// Transition applies an action invocation to the session and returns the new session.
func (e *Engine) Transition(ctx context.Context, sess *domain.Session, call domain.ToolCall) (*domain.Session, error) {
	return e.runtime.Transition(ctx, sess, call)
}

// Manifest returns the actions available at the session's current node.
func (e *Engine) Manifest(sess *domain.Session) ([]domain.ToolSpec, error) {
	return e.runtime.Manifest(sess)
}

// Prompt returns the system text for the session's current node.
func (e *Engine) Prompt(sess *domain.Session) (domain.Prompt, error) {
	return e.runtime.Prompt(sess)
}

// End stops the session for a reason other than reaching a terminal node.
func (e *Engine) End(ctx context.Context, sess *domain.Session, reason string) *domain.Session {
	return e.runtime.End(ctx, sess, reason)
}

// Queue returns the queue that receives utterances from tts_say effects.
func (e *Engine) Queue() *runner.Queue {
	return e.queue
}

// Graph returns the loaded flow.
func (e *Engine) Graph() ports.Graph {
	return e.registry
}

// Inspect returns every node of the flow, sorted by id.
func (e *Engine) Inspect() []*domain.Node {
	return e.registry.Nodes()
}

// Validate checks reachability and termination of the loaded flow.
func (e *Engine) Validate() error {
	return validator.ValidateGraph(e.registry)
}

// NewRunner creates a session driver bound to this engine.
func (e *Engine) NewRunner(model ports.LanguageModel, opts ...runner.Option) *runner.Runner {
	base := []runner.Option{
		runner.WithLogger(e.logger),
		runner.WithQueue(e.queue),
	}
	return runner.New(e, model, append(base, opts...)...)
}

// NewSessionID returns a fresh random session id.
func NewSessionID() string {
	return uuid.NewString()
}
