package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventNodeEnter      EventType = "node_enter"
	EventNodeLeave      EventType = "node_leave"
	EventActionAccepted EventType = "action_accepted"
	EventActionRejected EventType = "action_rejected"
	EventEffect         EventType = "effect"
	EventSessionEnd     EventType = "session_end"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id"`
}

// NodeEvent represents entry into or exit from a node.
type NodeEvent struct {
	EventBase
	NodeID string `json:"node_id"`
}

// ActionEvent represents an action invocation, accepted or rejected.
type ActionEvent struct {
	EventBase
	NodeID    string         `json:"node_id"`
	Action    string         `json:"action"`
	Arguments map[string]any `json:"arguments,omitempty"`
	Err       error          `json:"-"`
}

// EffectEvent represents an entry effect execution.
type EffectEvent struct {
	EventBase
	NodeID string `json:"node_id"`
	Effect string `json:"effect"`
	Err    error  `json:"-"`
}

// SessionEvent represents a session reaching its sink state.
type SessionEvent struct {
	EventBase
	NodeID   string        `json:"node_id"`
	Reason   string        `json:"reason"`
	Duration time.Duration `json:"duration"`
}

// LifecycleHooks defines callbacks for engine observability.
// Any hook may be nil.
type LifecycleHooks struct {
	OnNodeEnter      func(context.Context, *NodeEvent)
	OnNodeLeave      func(context.Context, *NodeEvent)
	OnActionAccepted func(context.Context, *ActionEvent)
	OnActionRejected func(context.Context, *ActionEvent)
	OnEffect         func(context.Context, *EffectEvent)
	OnSessionEnd     func(context.Context, *SessionEvent)
}

// Merge returns hooks that call h first and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnNodeEnter:      chain(h.OnNodeEnter, other.OnNodeEnter),
		OnNodeLeave:      chain(h.OnNodeLeave, other.OnNodeLeave),
		OnActionAccepted: chain(h.OnActionAccepted, other.OnActionAccepted),
		OnActionRejected: chain(h.OnActionRejected, other.OnActionRejected),
		OnEffect:         chain(h.OnEffect, other.OnEffect),
		OnSessionEnd:     chain(h.OnSessionEnd, other.OnSessionEnd),
	}
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
