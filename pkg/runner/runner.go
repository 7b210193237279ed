package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aretw0/hostflow/internal/logging"
	"github.com/aretw0/hostflow/pkg/domain"
	"github.com/aretw0/hostflow/pkg/ports"
	"github.com/aretw0/hostflow/pkg/session"
)

// Flow is the flow controller the runner drives.
// hostflow.Engine is the standard implementation.
type Flow interface {
	Start(ctx context.Context, sessionID string) (*domain.Session, error)
	Transition(ctx context.Context, sess *domain.Session, call domain.ToolCall) (*domain.Session, error)
	Manifest(sess *domain.Session) ([]domain.ToolSpec, error)
	Prompt(sess *domain.Session) (domain.Prompt, error)
	End(ctx context.Context, sess *domain.Session, reason string) *domain.Session
}

// Observer receives per-turn measurements.
type Observer interface {
	ObserveTurn(nodeID string, d time.Duration, err error)
	ObserveCorrection(nodeID, kind string)
}

// Runner drives one conversation at a time: it alternates between the
// guest (through a ports.Transport) and the model, feeding the model's
// action invocations to the flow.
type Runner struct {
	flow  Flow
	model ports.LanguageModel

	logger         *slog.Logger
	sessions       *session.Manager
	queue          *Queue
	observer       Observer
	sessionID      string
	maxCorrections int
	maxChained     int
	farewell       bool
	onUpdate       func(prev, next *domain.Session)
}

// New creates a runner.
func New(flow Flow, model ports.LanguageModel, opts ...Option) *Runner {
	r := &Runner{
		flow:           flow,
		model:          model,
		logger:         logging.NewNop(),
		maxCorrections: 3,
		maxChained:     4,
		farewell:       true,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// conversation is the per-Run state.
type conversation struct {
	sess        *domain.Session
	history     []domain.Message
	transport   ports.Transport
	corrections int
	chained     int
}

// Run holds the conversation until the session ends, the guest leaves or a
// collaborator fails. The returned session is always ENDED unless it is nil.
// A guest disconnect is a normal outcome and returns a nil error.
func (r *Runner) Run(ctx context.Context, t ports.Transport) (*domain.Session, error) {
	id := r.sessionID
	if id == "" {
		id = uuid.NewString()
	}

	sess, err := r.flow.Start(ctx, id)
	if err != nil {
		_ = t.Close()
		return nil, fmt.Errorf("failed to start session: %w", err)
	}
	c := &conversation{sess: sess, transport: t}
	r.commit(ctx, nil, sess)
	r.logger.InfoContext(ctx, "Conversation started", "session", sess.ID, "node", sess.CurrentNodeID)

	awaitGuest := false
	for {
		if c.sess.IsEnded() {
			return r.finish(ctx, c)
		}
		if err := r.announce(ctx, c); err != nil {
			return r.stop(ctx, c, err)
		}

		if awaitGuest || c.chained >= r.maxChained {
			text, err := t.Receive(ctx)
			if err != nil {
				return r.stop(ctx, c, err)
			}
			c.history = append(c.history, domain.Message{Role: domain.RoleUser, Content: text})
			c.chained = 0
		}

		call, err := r.turn(ctx, c)
		if err != nil {
			return r.stop(ctx, c, err)
		}
		c.chained++

		if call == nil {
			awaitGuest = true
			continue
		}

		next, err := r.flow.Transition(ctx, c.sess, *call)
		switch {
		case domain.IsRecoverable(err):
			c.history = append(c.history, toolResult(call.ID, correction(err)))
			c.corrections++
			if r.observer != nil {
				r.observer.ObserveCorrection(c.sess.CurrentNodeID, correctionKind(err))
			}
			// Stop nagging the model and let the guest speak again.
			awaitGuest = c.corrections > r.maxCorrections
			if awaitGuest {
				c.corrections = 0
			}
			continue
		case err != nil:
			r.logger.ErrorContext(ctx, "Flow rejected the session", "session", c.sess.ID, "error", err)
			prev := c.sess
			c.sess = r.flow.End(ctx, c.sess, domain.EndReasonInvalidState)
			r.commit(ctx, prev, c.sess)
			_ = t.Close()
			return c.sess, err
		}

		c.history = append(c.history, toolResult(call.ID, "ok"))
		c.corrections = 0
		moved := next.CurrentNodeID != c.sess.CurrentNodeID
		r.commit(ctx, c.sess, next)
		c.sess = next

		// A new node speaks first; a self-loop lets the model follow up once.
		awaitGuest = false
		if moved {
			c.chained = 0
		}
	}
}

// turn runs one model request for the current node and speaks any text.
// It returns the action invocation, if the model produced one.
func (r *Runner) turn(ctx context.Context, c *conversation) (*domain.ToolCall, error) {
	prompt, err := r.flow.Prompt(c.sess)
	if err != nil {
		return nil, err
	}
	tools, err := r.flow.Manifest(c.sess)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	reply, err := r.complete(ctx, c.transport, ports.CompletionRequest{
		System:   prompt.System(),
		Messages: c.history,
		Tools:    tools,
	})
	if r.observer != nil {
		r.observer.ObserveTurn(c.sess.CurrentNodeID, time.Since(started), err)
	}
	if err != nil {
		return nil, err
	}

	if text := strings.TrimSpace(reply.Text); text != "" {
		if err := c.transport.Speak(ctx, text); err != nil {
			return nil, transportError{err}
		}
	}

	msg := domain.Message{Role: domain.RoleAssistant, Content: reply.Text}
	if reply.ToolCall != nil {
		call := *reply.ToolCall
		if call.ID == "" {
			call.ID = "call_" + uuid.NewString()
		}
		msg.ToolCall = &call
		c.history = append(c.history, msg)
		return &call, nil
	}
	if msg.Content != "" {
		c.history = append(c.history, msg)
	}
	return nil, nil
}

// complete issues the model request and abandons it if the guest leaves first.
func (r *Runner) complete(ctx context.Context, t ports.Transport, req ports.CompletionRequest) (ports.Completion, error) {
	turnCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	type result struct {
		reply ports.Completion
		err   error
	}
	ch := make(chan result, 1)
	go func() {
		reply, err := r.model.Complete(turnCtx, req)
		ch <- result{reply, err}
	}()

	select {
	case res := <-ch:
		select {
		case <-t.Done():
			return ports.Completion{}, domain.ErrDisconnected
		default:
		}
		if res.err != nil {
			return ports.Completion{}, modelError{res.err}
		}
		return res.reply, nil
	case <-t.Done():
		return ports.Completion{}, domain.ErrDisconnected
	case <-ctx.Done():
		return ports.Completion{}, ctx.Err()
	}
}

// announce speaks utterances queued by entry effects.
func (r *Runner) announce(ctx context.Context, c *conversation) error {
	if r.queue == nil {
		return nil
	}
	for _, text := range r.queue.Drain(c.sess.ID) {
		if err := c.transport.Speak(ctx, text); err != nil {
			return transportError{err}
		}
		c.history = append(c.history, domain.Message{Role: domain.RoleAssistant, Content: text})
	}
	return nil
}

// finish closes a conversation that reached a terminal node.
func (r *Runner) finish(ctx context.Context, c *conversation) (*domain.Session, error) {
	if err := r.announce(ctx, c); err != nil {
		r.logger.WarnContext(ctx, "Could not deliver closing announcement", "session", c.sess.ID, "error", err)
	}
	if r.farewell {
		if err := r.speakFarewell(ctx, c); err != nil {
			r.logger.WarnContext(ctx, "Farewell turn failed", "session", c.sess.ID, "error", err)
		}
	}
	if err := c.transport.Close(); err != nil {
		r.logger.WarnContext(ctx, "Failed to close transport", "session", c.sess.ID, "error", err)
	}
	r.logger.InfoContext(ctx, "Conversation finished",
		"session", c.sess.ID, "node", c.sess.CurrentNodeID, "transitions", c.sess.Transitions)
	return c.sess, nil
}

// speakFarewell gives the terminal node's instructions one model turn without actions.
func (r *Runner) speakFarewell(ctx context.Context, c *conversation) error {
	prompt, err := r.flow.Prompt(c.sess)
	if err != nil {
		return err
	}
	if prompt.Task == "" {
		return nil
	}
	reply, err := r.complete(ctx, c.transport, ports.CompletionRequest{
		System:   prompt.System(),
		Messages: c.history,
	})
	if err != nil {
		return err
	}
	if text := strings.TrimSpace(reply.Text); text != "" {
		return c.transport.Speak(ctx, text)
	}
	return nil
}

// stop ends the session because of err and reports whether that is a failure.
func (r *Runner) stop(ctx context.Context, c *conversation, err error) (*domain.Session, error) {
	var (
		reason string
		result error
	)
	var me modelError
	switch {
	case errors.Is(err, domain.ErrDisconnected):
		reason = domain.EndReasonDisconnect
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		reason, result = domain.EndReasonCancelled, err
	case errors.As(err, &me):
		reason, result = domain.EndReasonModel, fmt.Errorf("language model failed: %w", me.err)
	case errors.Is(err, domain.ErrInvalidState):
		reason, result = domain.EndReasonInvalidState, err
	default:
		reason, result = domain.EndReasonTransport, fmt.Errorf("transport failed: %w", err)
	}

	if result != nil {
		r.logger.ErrorContext(ctx, "Conversation aborted", "session", c.sess.ID, "reason", reason, "error", result)
	} else {
		r.logger.InfoContext(ctx, "Guest left", "session", c.sess.ID, "node", c.sess.CurrentNodeID)
	}

	// The run context may already be cancelled; the final bookkeeping must still happen.
	final := context.WithoutCancel(ctx)
	prev := c.sess
	c.sess = r.flow.End(final, c.sess, reason)
	r.commit(final, prev, c.sess)
	_ = c.transport.Close()
	return c.sess, result
}

// commit records the snapshot and notifies the update callback.
func (r *Runner) commit(ctx context.Context, prev, next *domain.Session) {
	if r.sessions != nil {
		if err := r.sessions.Track(ctx, next); err != nil {
			r.logger.WarnContext(ctx, "Failed to record session snapshot", "session", next.ID, "error", err)
		}
	}
	if r.onUpdate != nil {
		r.onUpdate(prev, next)
	}
}

func toolResult(id, content string) domain.Message {
	return domain.Message{Role: domain.RoleTool, ToolCallID: id, Content: content}
}

// correction is the instruction fed back to the model after a rejected action.
func correction(err error) string {
	var unknown *domain.UnknownActionError
	if errors.As(err, &unknown) {
		return fmt.Sprintf("error: %q is not available right now. Only call one of: %s. "+
			"If none of them fits yet, keep talking with the guest.",
			unknown.Action, strings.Join(unknown.Available, ", "))
	}
	return fmt.Sprintf("error: %v. Call the function again with every required argument "+
		"using the declared types, or ask the guest for what is missing.", err)
}

func correctionKind(err error) string {
	if errors.Is(err, domain.ErrUnknownAction) {
		return "unknown_action"
	}
	return "invalid_arguments"
}

type modelError struct{ err error }

func (e modelError) Error() string { return e.err.Error() }
func (e modelError) Unwrap() error { return e.err }

type transportError struct{ err error }

func (e transportError) Error() string { return e.err.Error() }
func (e transportError) Unwrap() error { return e.err }
