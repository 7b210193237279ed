package schema

import (
	"errors"
	"fmt"
	"strings"
)

// ErrRequired is matched by the ValidationError of a missing required argument.
var ErrRequired = errors.New("required")

// ValidationError is the failure of one argument.
type ValidationError struct {
	Key    string // argument name
	Reason string
	Value  any   // offending value; nil when the argument is missing
	Err    error // underlying type or enum failure, or ErrRequired
}

func (e *ValidationError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("argument %q: %s", e.Key, e.Reason)
	}
	return fmt.Sprintf("argument %q: %s (got %T)", e.Key, e.Reason, e.Value)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// AggregateError collects every argument failure of one invocation.
// errors.Is and errors.As see through it to the individual failures.
type AggregateError struct {
	Errors []error
}

func (e *AggregateError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d invalid arguments:", len(e.Errors))
	for _, err := range e.Errors {
		sb.WriteString("\n  - ")
		sb.WriteString(err.Error())
	}
	return sb.String()
}

func (e *AggregateError) Unwrap() []error { return e.Errors }

// Keys lists the names of the failing arguments in report order.
func (e *AggregateError) Keys() []string {
	var keys []string
	for _, err := range e.Errors {
		var ve *ValidationError
		if errors.As(err, &ve) {
			keys = append(keys, ve.Key)
		}
	}
	return keys
}

// ValidationErrors returns the individual failures carried by err, which may
// wrap an AggregateError. It returns nil for any other error.
func ValidationErrors(err error) []error {
	var aggr *AggregateError
	if errors.As(err, &aggr) {
		return aggr.Errors
	}
	return nil
}
