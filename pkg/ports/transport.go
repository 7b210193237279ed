package ports

import "context"

// Transport carries guest utterances in and host utterances out.
type Transport interface {
	// Receive blocks until the guest says something.
	// It returns domain.ErrDisconnected once the guest has left.
	Receive(ctx context.Context) (string, error)

	// Speak delivers one host utterance.
	Speak(ctx context.Context, text string) error

	// Done is closed when the guest disconnects or the transport is closed.
	Done() <-chan struct{}

	// Close ends the conversation from the host side.
	Close() error
}
