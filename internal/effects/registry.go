package effects

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/hostflow/pkg/domain"
)

// Invocation carries what a handler needs to know about the entry that triggered it.
type Invocation struct {
	Session *domain.Session
	NodeID  string
	Effect  domain.Effect
}

// Handler implements one effect type.
type Handler func(ctx context.Context, inv Invocation) error

// Registry manages the available effect handlers.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		handlers: make(map[string]Handler),
	}
}

// Register adds a handler to the registry.
// If a handler with the same type exists, it is overwritten.
func (r *Registry) Register(effectType string, fn Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[effectType] = fn
}

// Has reports whether a handler is registered for the effect type.
func (r *Registry) Has(effectType string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.handlers[effectType]
	return ok
}

// Types lists the registered effect types, sorted.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.handlers))
	for k := range r.handlers {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Execute looks up a handler by effect type and runs it.
// Returns an error if no handler is registered.
func (r *Registry) Execute(ctx context.Context, inv Invocation) error {
	r.mu.RLock()
	fn, ok := r.handlers[inv.Effect.Type]
	r.mu.RUnlock()

	if !ok {
		return fmt.Errorf("effect handler not found: %s", inv.Effect.Type)
	}

	return fn(ctx, inv)
}
