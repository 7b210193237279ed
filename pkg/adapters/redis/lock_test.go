package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/hostflow/pkg/adapters/memory"
	"github.com/aretw0/hostflow/pkg/adapters/redis"
	"github.com/aretw0/hostflow/pkg/domain"
	"github.com/aretw0/hostflow/pkg/session"
)

func TestRedisLocker_LockUnlock(t *testing.T) {
	mr, client := newClient(t)
	locker := redis.NewLocker(client, "test:")
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "resource1", 5*time.Second)
	require.NoError(t, err)
	assert.True(t, mr.Exists("test:lock:resource1"))

	require.NoError(t, unlock(ctx))
	assert.False(t, mr.Exists("test:lock:resource1"))
}

func TestRedisLocker_Contention(t *testing.T) {
	mr, client := newClient(t)
	first := redis.NewLocker(client, "test:")
	second := redis.NewLocker(client, "test:")
	ctx := context.Background()

	unlock1, err := first.Lock(ctx, "shared", 5*time.Second)
	require.NoError(t, err)

	short, cancel := context.WithTimeout(ctx, 300*time.Millisecond)
	defer cancel()
	_, err = second.Lock(short, "shared", 5*time.Second)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	require.NoError(t, unlock1(ctx))

	unlock2, err := second.Lock(ctx, "shared", 5*time.Second)
	require.NoError(t, err)
	defer unlock2(ctx)
	assert.True(t, mr.Exists("test:lock:shared"))
}

func TestRedisLocker_StaleUnlockKeepsNewOwner(t *testing.T) {
	mr, client := newClient(t)
	locker := redis.NewLocker(client, "test:")
	ctx := context.Background()

	unlock1, err := locker.Lock(ctx, "k", time.Second)
	require.NoError(t, err)

	// The first lease expires and someone else takes the lock.
	mr.FastForward(2 * time.Second)
	unlock2, err := locker.Lock(ctx, "k", 5*time.Second)
	require.NoError(t, err)

	require.NoError(t, unlock1(ctx))
	assert.True(t, mr.Exists("test:lock:k"), "a stale unlock must not release the new owner's lock")
	require.NoError(t, unlock2(ctx))
}

func TestRedisLocker_GuardsSessionManager(t *testing.T) {
	_, client := newClient(t)
	mgr := session.NewManager(memory.NewStore(), session.WithLocker(redis.NewLocker(client, "hostflow:")))
	ctx := context.Background()

	require.NoError(t, mgr.Track(ctx, domain.NewSession("ep-1", "greeting")))
	updated, err := mgr.Update(ctx, "ep-1", func(s *domain.Session) (*domain.Session, error) {
		next := s.Clone()
		next.CurrentNodeID = "origin_story"
		return next, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "origin_story", updated.CurrentNodeID)

	got, err := mgr.Load(ctx, "ep-1")
	require.NoError(t, err)
	assert.Equal(t, "origin_story", got.CurrentNodeID)
}
