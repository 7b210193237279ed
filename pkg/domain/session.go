package domain

import (
	"maps"
	"slices"
	"time"
)

// SessionStatus is the lifecycle state of a conversation.
type SessionStatus string

const (
	StatusActive SessionStatus = "active" // Conversation in progress
	StatusEnded  SessionStatus = "ended"  // Sink state, no further actions accepted
)

// Session is the runtime snapshot of one conversation.
// The flow controller never mutates a Session in place: each transition
// returns a new value.
type Session struct {
	ID string `json:"id"`

	// CurrentNodeID is the node whose instructions and actions are in force.
	CurrentNodeID string `json:"current_node_id"`

	Status SessionStatus `json:"status"`

	// CollectedArguments holds the arguments of every accepted action,
	// keyed by action name. A later invocation of the same action replaces the earlier one.
	CollectedArguments map[string]map[string]any `json:"collected_arguments"`

	// History is the path of node ids entered, starting with the start node.
	History []string `json:"history"`

	// Transitions counts accepted actions.
	Transitions int `json:"transitions"`

	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
	EndReason string     `json:"end_reason,omitempty"`
}

// NewSession creates an active session positioned at the start node.
func NewSession(id, startNodeID string) *Session {
	return &Session{
		ID:                 id,
		CurrentNodeID:      startNodeID,
		Status:             StatusActive,
		CollectedArguments: make(map[string]map[string]any),
		History:            []string{startNodeID},
		StartedAt:          time.Now(),
	}
}

// IsEnded reports whether the session reached its sink state.
func (s *Session) IsEnded() bool {
	return s.Status == StatusEnded
}

// Clone returns a deep copy of the session.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	out.CollectedArguments = make(map[string]map[string]any, len(s.CollectedArguments))
	for name, args := range s.CollectedArguments {
		out.CollectedArguments[name] = maps.Clone(args)
	}
	out.History = slices.Clone(s.History)
	if s.EndedAt != nil {
		t := *s.EndedAt
		out.EndedAt = &t
	}
	return &out
}

// End returns a copy of the session moved to the ended state.
// Ending an ended session keeps the original reason.
func (s *Session) End(reason string) *Session {
	out := s.Clone()
	if out.Status == StatusEnded {
		return out
	}
	now := time.Now()
	out.Status = StatusEnded
	out.EndedAt = &now
	out.EndReason = reason
	return out
}
