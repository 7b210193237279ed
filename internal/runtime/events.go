package runtime

import (
	"context"
	"time"

	"github.com/aretw0/hostflow/pkg/domain"
)

func (e *Engine) base(t domain.EventType, sess *domain.Session) domain.EventBase {
	return domain.EventBase{Timestamp: time.Now(), Type: t, SessionID: sess.ID}
}

func (e *Engine) emitNodeEnter(ctx context.Context, sess *domain.Session, nodeID string) {
	if e.hooks.OnNodeEnter != nil {
		e.hooks.OnNodeEnter(ctx, &domain.NodeEvent{EventBase: e.base(domain.EventNodeEnter, sess), NodeID: nodeID})
	}
}

func (e *Engine) emitNodeLeave(ctx context.Context, sess *domain.Session, nodeID string) {
	if e.hooks.OnNodeLeave != nil {
		e.hooks.OnNodeLeave(ctx, &domain.NodeEvent{EventBase: e.base(domain.EventNodeLeave, sess), NodeID: nodeID})
	}
}

func (e *Engine) emitActionAccepted(ctx context.Context, sess *domain.Session, nodeID string, call domain.ToolCall) {
	if e.hooks.OnActionAccepted != nil {
		e.hooks.OnActionAccepted(ctx, &domain.ActionEvent{
			EventBase: e.base(domain.EventActionAccepted, sess),
			NodeID:    nodeID,
			Action:    call.Name,
			Arguments: call.Arguments,
		})
	}
}

func (e *Engine) emitActionRejected(ctx context.Context, sess *domain.Session, nodeID string, call domain.ToolCall, err error) {
	e.logger.WarnContext(ctx, "Action rejected",
		"session", sess.ID, "node", nodeID, "action", call.Name, "error", err)
	if e.hooks.OnActionRejected != nil {
		e.hooks.OnActionRejected(ctx, &domain.ActionEvent{
			EventBase: e.base(domain.EventActionRejected, sess),
			NodeID:    nodeID,
			Action:    call.Name,
			Arguments: call.Arguments,
			Err:       err,
		})
	}
}

func (e *Engine) emitEffect(ctx context.Context, sess *domain.Session, nodeID, effect string, err error) {
	if e.hooks.OnEffect != nil {
		e.hooks.OnEffect(ctx, &domain.EffectEvent{
			EventBase: e.base(domain.EventEffect, sess),
			NodeID:    nodeID,
			Effect:    effect,
			Err:       err,
		})
	}
}

func (e *Engine) emitSessionEnd(ctx context.Context, sess *domain.Session) {
	e.logger.InfoContext(ctx, "Session ended",
		"session", sess.ID, "node", sess.CurrentNodeID, "reason", sess.EndReason)
	if e.hooks.OnSessionEnd != nil {
		var d time.Duration
		if sess.EndedAt != nil {
			d = sess.EndedAt.Sub(sess.StartedAt)
		}
		e.hooks.OnSessionEnd(ctx, &domain.SessionEvent{
			EventBase: e.base(domain.EventSessionEnd, sess),
			NodeID:    sess.CurrentNodeID,
			Reason:    sess.EndReason,
			Duration:  d,
		})
	}
}
