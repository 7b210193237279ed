package ports

import (
	"context"

	"github.com/aretw0/hostflow/pkg/domain"
)

// StateStore keeps snapshots of live sessions.
// Snapshots are removed when a session ends.
type StateStore interface {
	// Save persists the session snapshot.
	Save(ctx context.Context, session *domain.Session) error

	// Load retrieves the snapshot for a given session ID.
	// Returns domain.ErrSessionNotFound if the session does not exist.
	Load(ctx context.Context, sessionID string) (*domain.Session, error)

	// Delete removes the snapshot for a given session ID.
	Delete(ctx context.Context, sessionID string) error

	// List returns the IDs of the stored sessions.
	List(ctx context.Context) ([]string, error)
}
