package runner

import (
	"log/slog"

	"github.com/aretw0/hostflow/pkg/domain"
	"github.com/aretw0/hostflow/pkg/session"
)

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithSessions records live snapshots through the session manager.
func WithSessions(m *session.Manager) Option {
	return func(r *Runner) {
		r.sessions = m
	}
}

// WithSessionID fixes the id of the next session. A random id is used otherwise.
func WithSessionID(id string) Option {
	return func(r *Runner) {
		r.sessionID = id
	}
}

// WithQueue sets the queue drained for utterances produced by entry effects.
func WithQueue(q *Queue) Option {
	return func(r *Runner) {
		r.queue = q
	}
}

// WithObserver attaches per-turn measurements.
func WithObserver(o Observer) Option {
	return func(r *Runner) {
		r.observer = o
	}
}

// WithMaxCorrections bounds how many rejected actions in a row are answered
// with a corrective turn before the runner waits for the guest again.
func WithMaxCorrections(n int) Option {
	return func(r *Runner) {
		r.maxCorrections = n
	}
}

// WithMaxChainedTurns bounds how many model turns may follow each other
// without a guest utterance in between.
func WithMaxChainedTurns(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.maxChained = n
		}
	}
}

// WithFarewell toggles the closing model turn spoken at a terminal node.
func WithFarewell(enabled bool) Option {
	return func(r *Runner) {
		r.farewell = enabled
	}
}

// WithUpdates registers a callback invoked after every committed session change.
func WithUpdates(fn func(prev, next *domain.Session)) Option {
	return func(r *Runner) {
		r.onUpdate = fn
	}
}
