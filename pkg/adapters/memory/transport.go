package memory

import (
	"context"
	"sync"

	"github.com/aretw0/hostflow/pkg/domain"
)

// Transport is an in-process ports.Transport backed by channels.
// The guest side is driven with Say and Leave; host utterances are read from Spoken.
type Transport struct {
	in     chan string
	out    chan string
	done   chan struct{}
	once   sync.Once
	mu     sync.Mutex
	closed bool
}

// NewTransport creates a transport whose Spoken channel buffers up to size utterances.
func NewTransport(size int) *Transport {
	return &Transport{
		in:   make(chan string, size),
		out:  make(chan string, size),
		done: make(chan struct{}),
	}
}

// Say queues a guest utterance.
func (t *Transport) Say(text string) {
	select {
	case t.in <- text:
	case <-t.done:
	}
}

// Leave simulates the guest disconnecting.
func (t *Transport) Leave() {
	t.once.Do(func() { close(t.done) })
}

// Spoken returns the host utterances.
func (t *Transport) Spoken() <-chan string { return t.out }

// Closed reports whether the host closed the transport.
func (t *Transport) Closed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}

func (t *Transport) Receive(ctx context.Context) (string, error) {
	select {
	case text := <-t.in:
		return text, nil
	case <-t.done:
		return "", domain.ErrDisconnected
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (t *Transport) Speak(ctx context.Context, text string) error {
	select {
	case <-t.done:
		return domain.ErrDisconnected
	default:
	}
	select {
	case t.out <- text:
		return nil
	case <-t.done:
		return domain.ErrDisconnected
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *Transport) Done() <-chan struct{} { return t.done }

func (t *Transport) Close() error {
	t.mu.Lock()
	t.closed = true
	t.mu.Unlock()
	t.Leave()
	return nil
}
