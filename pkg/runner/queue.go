package runner

import "sync"

// Queue holds fixed utterances queued by entry effects until the runner
// speaks them. It implements effects.Speaker.
type Queue struct {
	mu    sync.Mutex
	items map[string][]string
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{items: make(map[string][]string)}
}

// Enqueue adds an utterance for the session.
func (q *Queue) Enqueue(sessionID, text string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items[sessionID] = append(q.items[sessionID], text)
}

// Drain removes and returns the session's pending utterances in order.
func (q *Queue) Drain(sessionID string) []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.items[sessionID]
	delete(q.items, sessionID)
	return out
}
