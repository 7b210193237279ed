package domain

import (
	"reflect"
)

// SessionDiff represents the changes between two session snapshots.
// It is serialized to clients as a partial update.
type SessionDiff struct {
	// SessionID is always present to identify the target.
	SessionID string `json:"session_id"`

	CurrentNodeID *string        `json:"current_node_id,omitempty"`
	Status        *SessionStatus `json:"status,omitempty"`
	EndReason     string         `json:"end_reason,omitempty"`

	// Arguments contains only actions whose collected arguments changed.
	Arguments map[string]map[string]any `json:"arguments,omitempty"`

	// Entered lists node ids appended to the history.
	Entered []string `json:"entered,omitempty"`
}

// Diff calculates the difference between prev and next.
// If prev is nil, the diff describes the entire next session.
// It returns nil when nothing changed.
func Diff(prev, next *Session) *SessionDiff {
	if next == nil {
		return nil
	}

	diff := &SessionDiff{SessionID: next.ID}

	if prev == nil || prev.CurrentNodeID != next.CurrentNodeID {
		id := next.CurrentNodeID
		diff.CurrentNodeID = &id
	}
	if prev == nil || prev.Status != next.Status {
		st := next.Status
		diff.Status = &st
		diff.EndReason = next.EndReason
	}

	diff.Arguments = diffArguments(prev, next)
	diff.Entered = diffHistory(prev, next)

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

func diffArguments(prev, next *Session) map[string]map[string]any {
	delta := make(map[string]map[string]any)
	for name, args := range next.CollectedArguments {
		if prev != nil {
			if old, ok := prev.CollectedArguments[name]; ok && reflect.DeepEqual(old, args) {
				continue
			}
		}
		delta[name] = args
	}
	if len(delta) == 0 {
		return nil
	}
	return delta
}

// diffHistory assumes the history is append-only.
func diffHistory(prev, next *Session) []string {
	if len(next.History) == 0 {
		return nil
	}
	if prev == nil {
		return next.History
	}
	if len(next.History) > len(prev.History) {
		return next.History[len(prev.History):]
	}
	return nil
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *SessionDiff) IsEmpty() bool {
	return d.CurrentNodeID == nil &&
		d.Status == nil &&
		len(d.Arguments) == 0 &&
		len(d.Entered) == 0
}
