package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/handshake/pkg/adapters/memory"
	"github.com/aretw0/handshake/pkg/adapters/redis"
	"github.com/aretw0/handshake/pkg/domain"
	"github.com/aretw0/handshake/pkg/process"
	"github.com/aretw0/handshake/pkg/session"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisLocker_LockUnlock(t *testing.T) {
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	locker := redis.NewLocker(client, "test:")
	ctx := context.Background()

	// 1. Acquire Lock
	unlock, err := locker.Lock(ctx, "inv-1", 5*time.Second)
	require.NoError(t, err)
	require.NotNil(t, unlock)

	assert.True(t, mr.Exists("test:lock:inv-1"), "Lock key should be set in Redis")
	assert.Equal(t, 5*time.Second, mr.TTL("test:lock:inv-1"))

	// 2. Release Lock
	require.NoError(t, unlock(ctx))
	assert.False(t, mr.Exists("test:lock:inv-1"), "Lock key should be removed after unlock")
}

func TestRedisLocker_Contention(t *testing.T) {
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	locker1 := redis.NewLocker(client, "test:")
	locker2 := redis.NewLocker(client, "test:") // Same prefix -> contention
	ctx := context.Background()

	// 1. Client 1 acquires lock
	unlock1, err := locker1.Lock(ctx, "inv-1", 5*time.Second)
	require.NoError(t, err)

	// 2. Client 2 blocks until its context expires
	ctxTimeout, cancel := context.WithTimeout(ctx, 300*time.Millisecond)
	defer cancel()

	_, err = locker2.Lock(ctxTimeout, "inv-1", 5*time.Second)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// 3. Client 1 unlocks, Client 2 succeeds
	require.NoError(t, unlock1(ctx))

	unlock2, err := locker2.Lock(ctx, "inv-1", 5*time.Second)
	require.NoError(t, err)
	defer unlock2(ctx)

	assert.True(t, mr.Exists("test:lock:inv-1"))
}

func TestRedisLocker_StaleUnlockKeepsNewOwner(t *testing.T) {
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	locker := redis.NewLocker(client, "test:")
	ctx := context.Background()

	unlockOld, err := locker.Lock(ctx, "inv-1", time.Second)
	require.NoError(t, err)

	// The first owner's lock expires and someone else takes it.
	mr.FastForward(2 * time.Second)
	unlockNew, err := locker.Lock(ctx, "inv-1", 5*time.Second)
	require.NoError(t, err)

	require.NoError(t, unlockOld(ctx))
	assert.True(t, mr.Exists("test:lock:inv-1"), "stale unlock must not release the new owner's lock")

	require.NoError(t, unlockNew(ctx))
	assert.False(t, mr.Exists("test:lock:inv-1"))
}

func TestRedisLocker_Refresh(t *testing.T) {
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	locker := redis.NewLocker(client, "test:")
	other := redis.NewLocker(client, "test:")
	ctx := context.Background()

	assert.ErrorIs(t, locker.Refresh(ctx, "inv-1", time.Second), domain.ErrLockLost)

	unlock, err := locker.Lock(ctx, "inv-1", time.Second)
	require.NoError(t, err)

	mr.FastForward(600 * time.Millisecond)
	require.NoError(t, locker.Refresh(ctx, "inv-1", time.Second))
	assert.Equal(t, time.Second, mr.TTL("test:lock:inv-1"))

	// Expired and taken over by another replica.
	mr.FastForward(2 * time.Second)
	unlockOther, err := other.Lock(ctx, "inv-1", 5*time.Second)
	require.NoError(t, err)
	assert.ErrorIs(t, locker.Refresh(ctx, "inv-1", time.Second), domain.ErrLockLost)
	assert.Equal(t, 5*time.Second, mr.TTL("test:lock:inv-1"))

	require.NoError(t, unlock(ctx))
	assert.ErrorIs(t, locker.Refresh(ctx, "inv-1", time.Second), domain.ErrLockLost)
	require.NoError(t, unlockOther(ctx))
}

func newReplica(t *testing.T, client *backend.Client, ttl time.Duration) *session.Manager {
	t.Helper()
	store := memory.NewStore()
	m := session.NewManager(store, store,
		session.WithLocker(redis.NewLocker(client, "test:")),
		session.WithLockTTL(ttl),
		session.WithProcessOptions(process.WithConfig(domain.Config{Delay: time.Minute})),
	)
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func TestRedisLocker_RenewedWhileProcessLive(t *testing.T) {
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	ttl := 300 * time.Millisecond

	replicaA := newReplica(t, client, ttl)
	replicaB := newReplica(t, client, ttl)

	_, err := replicaA.Start(context.Background(), "inv-1", memory.NewNavigator())
	require.NoError(t, err)

	// Past the original TTL: the lock must have been renewed in between.
	mr.FastForward(250 * time.Millisecond)
	assert.Eventually(t, func() bool {
		return mr.TTL("test:lock:inv-1") == ttl
	}, 2*time.Second, 10*time.Millisecond)
	mr.FastForward(250 * time.Millisecond)
	require.True(t, mr.Exists("test:lock:inv-1"))

	ctx, cancel := context.WithTimeout(context.Background(), 250*time.Millisecond)
	defer cancel()
	_, err = replicaB.Start(ctx, "inv-1", memory.NewNavigator())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Empty(t, replicaB.List())

	_, live := replicaA.Get("inv-1")
	assert.True(t, live)
}

func TestRedisLocker_LostLockTearsProcessDown(t *testing.T) {
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	replica := newReplica(t, client, 150*time.Millisecond)
	nav := memory.NewNavigator()

	p, err := replica.Start(context.Background(), "inv-1", nav)
	require.NoError(t, err)

	// Another owner took the key over.
	require.NoError(t, mr.Set("test:lock:inv-1", "someone-else"))

	select {
	case <-p.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("process kept running without its lock")
	}
	_, err = p.Result()
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, nav.Destinations())
	assert.Empty(t, replica.List())

	owner, err := mr.Get("test:lock:inv-1")
	require.NoError(t, err)
	assert.Equal(t, "someone-else", owner, "teardown must not release a lock it lost")
}
