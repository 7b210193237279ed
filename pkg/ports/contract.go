package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/hostflow/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunStateStoreContract runs a suite of tests to verify that a StateStore implementation
// adheres to the defined interface contract.
func RunStateStoreContract(t *testing.T, store StateStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		sess := domain.NewSession(sessionID, "greeting")
		sess.CollectedArguments["begin_interview"] = map[string]any{"guest_name": "Ada", "years": 3}

		err := store.Save(ctx, sess)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, sess.CurrentNodeID, loaded.CurrentNodeID)
		assert.Equal(t, domain.StatusActive, loaded.Status)
		assert.Equal(t, "Ada", loaded.CollectedArguments["begin_interview"]["guest_name"])
		// JSON backed stores turn ints into float64; only check presence.
		assert.NotNil(t, loaded.CollectedArguments["begin_interview"]["years"])
		assert.Equal(t, []string{"greeting"}, loaded.History)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, domain.NewSession(sessionID, "greeting"))
		require.NoError(t, err)

		err = store.Delete(ctx, sessionID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		_ = store.Save(ctx, domain.NewSession(id1, "greeting"))
		_ = store.Save(ctx, domain.NewSession(id2, "greeting"))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}
