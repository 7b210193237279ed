package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/aretw0/hostflow/pkg/ports"
)

// ErrScriptExhausted is returned once every scripted reply has been used.
var ErrScriptExhausted = errors.New("scripted model: no replies left")

// Reply is one scripted model turn. Err, when set, is returned instead of the completion.
type Reply struct {
	Completion ports.Completion
	Err        error
	// Block makes the turn wait until the request context is cancelled.
	Block bool
}

// Model replays a fixed list of replies and records every request it receives.
type Model struct {
	mu       sync.Mutex
	replies  []Reply
	requests []ports.CompletionRequest
}

// NewModel creates a scripted model.
func NewModel(replies ...Reply) *Model {
	return &Model{replies: replies}
}

// Text is a shorthand for a plain spoken reply.
func Text(s string) Reply {
	return Reply{Completion: ports.Completion{Text: s}}
}

func (m *Model) Complete(ctx context.Context, req ports.CompletionRequest) (ports.Completion, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	if len(m.replies) == 0 {
		m.mu.Unlock()
		return ports.Completion{}, ErrScriptExhausted
	}
	r := m.replies[0]
	m.replies = m.replies[1:]
	m.mu.Unlock()

	if r.Block {
		<-ctx.Done()
		return r.Completion, ctx.Err()
	}
	return r.Completion, r.Err
}

// Requests returns a copy of the requests received so far.
func (m *Model) Requests() []ports.CompletionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ports.CompletionRequest(nil), m.requests...)
}
