package redis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/aretw0/handshake/pkg/domain"
	"github.com/aretw0/handshake/pkg/ports"
	"github.com/google/uuid"
	backend "github.com/redis/go-redis/v9"
)

var (
	// ErrLockAcquire is returned when the lock cannot be acquired.
	ErrLockAcquire = errors.New("failed to acquire distributed lock")
)

// unlockScript deletes the lock only if it still holds our token.
var unlockScript = backend.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	else
		return 0
	end
`)

// refreshScript extends the lock only if it still holds our token.
var refreshScript = backend.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("pexpire", KEYS[1], ARGV[2])
	else
		return 0
	end
`)

// Locker implements ports.DistributedLocker and ports.LockRefresher using Redis.
type Locker struct {
	client   *backend.Client
	prefix   string
	interval time.Duration

	mu     sync.Mutex
	tokens map[string]string // held locks by key
}

// NewLocker creates a new Redis locker.
func NewLocker(client *backend.Client, prefix string) *Locker {
	return &Locker{
		client:   client,
		prefix:   prefix,
		interval: 100 * time.Millisecond,
		tokens:   make(map[string]string),
	}
}

// Lock acquires a distributed lock for the given key using Redis SET NX PX.
// It polls until the lock is free or ctx is done.
func (l *Locker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	lockKey := l.prefix + "lock:" + key
	token := uuid.NewString()

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		success, err := l.client.SetNX(ctx, lockKey, token, ttl).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("%w: %v", ErrLockAcquire, err)
		}
		if success {
			l.mu.Lock()
			l.tokens[key] = token
			l.mu.Unlock()

			return func(ctx context.Context) error {
				l.mu.Lock()
				if l.tokens[key] == token {
					delete(l.tokens, key)
				}
				l.mu.Unlock()
				return unlockScript.Run(ctx, l.client, []string{lockKey}, token).Err()
			}, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// Refresh resets the TTL of a lock held by this locker.
func (l *Locker) Refresh(ctx context.Context, key string, ttl time.Duration) error {
	l.mu.Lock()
	token, ok := l.tokens[key]
	l.mu.Unlock()
	if !ok {
		return domain.ErrLockLost
	}

	extended, err := refreshScript.Run(ctx, l.client, []string{l.prefix + "lock:" + key}, token, ttl.Milliseconds()).Int()
	if err != nil {
		return fmt.Errorf("failed to refresh lock %s: %w", key, err)
	}
	if extended == 0 {
		return domain.ErrLockLost
	}
	return nil
}
