package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinels for errors.Is checks against the typed errors below.
var (
	ErrConfiguration    = errors.New("invalid flow configuration")
	ErrNotFound         = errors.New("node not found")
	ErrUnknownAction    = errors.New("unknown action")
	ErrInvalidArguments = errors.New("invalid action arguments")
	ErrInvalidState     = errors.New("invalid session state")
)

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ConfigurationError reports every problem found while loading a flow.
type ConfigurationError struct {
	Problems []string
}

func (e *ConfigurationError) Error() string {
	if len(e.Problems) == 1 {
		return "invalid flow configuration: " + e.Problems[0]
	}
	return fmt.Sprintf("invalid flow configuration (%d problems):\n  - %s",
		len(e.Problems), strings.Join(e.Problems, "\n  - "))
}

func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

// NotFoundError is returned when a node id does not resolve.
type NotFoundError struct {
	NodeID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("node %q not found", e.NodeID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// UnknownActionError is returned when the model invokes an action the
// current node does not declare.
type UnknownActionError struct {
	NodeID    string
	Action    string
	Available []string
}

func (e *UnknownActionError) Error() string {
	return fmt.Sprintf("action %q is not available at node %q (available: %s)",
		e.Action, e.NodeID, strings.Join(e.Available, ", "))
}

func (e *UnknownActionError) Is(target error) bool { return target == ErrUnknownAction }

// InvalidArgumentsError is returned when arguments fail the action's schema.
// Err holds the underlying schema.AggregateError.
type InvalidArgumentsError struct {
	NodeID string
	Action string
	Err    error
}

func (e *InvalidArgumentsError) Error() string {
	return fmt.Sprintf("invalid arguments for action %q at node %q: %v", e.Action, e.NodeID, e.Err)
}

func (e *InvalidArgumentsError) Is(target error) bool { return target == ErrInvalidArguments }

func (e *InvalidArgumentsError) Unwrap() error { return e.Err }

// InvalidStateError is returned when the session cannot accept the operation,
// either because it has ended or because its node no longer resolves.
type InvalidStateError struct {
	SessionID string
	NodeID    string
	Reason    string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("session %q at node %q: %s", e.SessionID, e.NodeID, e.Reason)
}

func (e *InvalidStateError) Is(target error) bool { return target == ErrInvalidState }

// IsRecoverable reports whether the error is a model mistake the driver
// should answer with a corrective prompt rather than end the session.
func IsRecoverable(err error) bool {
	return errors.Is(err, ErrUnknownAction) || errors.Is(err, ErrInvalidArguments)
}

// ErrDisconnected is returned by transports once the guest has left.
var ErrDisconnected = errors.New("transport disconnected")
