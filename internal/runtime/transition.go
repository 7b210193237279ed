package runtime

import (
	"context"
	"fmt"
	"maps"

	"github.com/aretw0/hostflow/internal/effects"
	"github.com/aretw0/hostflow/pkg/domain"
)

// Start creates a session positioned at the start node and runs the start
// node's entry effects.
func (e *Engine) Start(ctx context.Context, sessionID string) (*domain.Session, error) {
	start := e.graph.Start()
	node, err := e.graph.Lookup(start)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve start node: %w", err)
	}

	sess := domain.NewSession(sessionID, start)
	e.emitNodeEnter(ctx, sess, node.ID)
	return e.enter(ctx, sess, node), nil
}

// Transition applies one action invocation to the session.
//
// The input session is never modified. On success the returned session
// reflects the recorded arguments, the new current node and any entry
// effects. On failure no new session is returned and the caller keeps the old one.
func (e *Engine) Transition(ctx context.Context, sess *domain.Session, call domain.ToolCall) (*domain.Session, error) {
	if sess == nil {
		return nil, &domain.InvalidStateError{Reason: "no session"}
	}
	if sess.IsEnded() {
		return nil, &domain.InvalidStateError{
			SessionID: sess.ID,
			NodeID:    sess.CurrentNodeID,
			Reason:    "session has ended",
		}
	}

	// 1. Resolve current node
	node, err := e.graph.Lookup(sess.CurrentNodeID)
	if err != nil {
		return nil, &domain.InvalidStateError{
			SessionID: sess.ID,
			NodeID:    sess.CurrentNodeID,
			Reason:    "current node does not resolve",
		}
	}

	// 2. Resolve action
	action, ok := node.Action(call.Name)
	if !ok {
		err := &domain.UnknownActionError{
			NodeID:    node.ID,
			Action:    call.Name,
			Available: node.ActionNames(),
		}
		e.emitActionRejected(ctx, sess, node.ID, call, err)
		return nil, err
	}

	// 3. Validate arguments, all or nothing
	if err := action.Parameters.Validate(call.Arguments); err != nil {
		err := &domain.InvalidArgumentsError{NodeID: node.ID, Action: action.Name, Err: err}
		e.emitActionRejected(ctx, sess, node.ID, call, err)
		return nil, err
	}

	// 4. Record arguments (last write wins)
	next := sess.Clone()
	args := maps.Clone(call.Arguments)
	if args == nil {
		args = map[string]any{}
	}
	next.CollectedArguments[action.Name] = args
	next.Transitions++
	e.emitActionAccepted(ctx, next, node.ID, call)

	// 5. Move the pointer
	if action.SelfLoops(node.ID) {
		e.logger.DebugContext(ctx, "Action kept session on node",
			"session", next.ID, "node", node.ID, "action", action.Name)
		return next, nil
	}

	target, err := e.graph.Lookup(action.Successor)
	if err != nil {
		// Successors are checked at load time; reaching this means the graph changed underneath.
		return nil, &domain.InvalidStateError{
			SessionID: sess.ID,
			NodeID:    node.ID,
			Reason:    fmt.Sprintf("successor %q does not resolve", action.Successor),
		}
	}

	e.emitNodeLeave(ctx, next, node.ID)
	next.CurrentNodeID = target.ID
	next.History = append(next.History, target.ID)
	e.emitNodeEnter(ctx, next, target.ID)

	e.logger.DebugContext(ctx, "Transitioned",
		"session", next.ID, "from", node.ID, "to", target.ID, "action", action.Name)

	// 6. Entry effects
	return e.enter(ctx, next, target), nil
}

// enter runs the node's entry effects in declaration order.
// end_conversation ends the session; other effects are dispatched to the
// registry and their failures are logged without undoing the transition.
func (e *Engine) enter(ctx context.Context, sess *domain.Session, node *domain.Node) *domain.Session {
	for _, eff := range node.Effects {
		if eff.Type == domain.EffectEndConversation {
			sess = sess.End(domain.EndReasonConversation)
			e.emitEffect(ctx, sess, node.ID, eff.Type, nil)
			e.emitSessionEnd(ctx, sess)
			continue
		}

		err := e.effects.Execute(ctx, effects.Invocation{Session: sess, NodeID: node.ID, Effect: eff})
		if err != nil {
			e.logger.ErrorContext(ctx, "Entry effect failed",
				"session", sess.ID, "node", node.ID, "effect", eff.Type, "error", err)
		}
		e.emitEffect(ctx, sess, node.ID, eff.Type, err)
	}
	return sess
}

// End moves the session to the ended state for a reason other than reaching
// a terminal node (disconnect, collaborator failure).
func (e *Engine) End(ctx context.Context, sess *domain.Session, reason string) *domain.Session {
	if sess.IsEnded() {
		return sess
	}
	out := sess.End(reason)
	e.emitSessionEnd(ctx, out)
	return out
}
