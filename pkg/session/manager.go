package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/aretw0/handshake/internal/logging"
	"github.com/aretw0/handshake/pkg/domain"
	"github.com/aretw0/handshake/pkg/ports"
	"github.com/aretw0/handshake/pkg/process"
)

// DefaultLockTTL bounds how long a crashed replica can keep an invitation locked.
// Live processes renew their lock every third of the TTL when the locker
// implements ports.LockRefresher.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// live is a running process and what it holds.
type live struct {
	proc   *process.Process
	cancel context.CancelFunc
	unlock ports.UnlockFunc // Function to release distributed lock (if any)
}

// Manager orchestrates process lifecycles, ensuring one live process per invitation.
// It uses Reference Counting to garbage collect unused locks.
type Manager struct {
	store ports.RecordStore
	feed  ports.NotificationFeed

	mu    sync.Mutex            // Global lock for the maps
	locks map[string]*lockEntry // Map of active per-invitation locks
	procs map[string]*live      // Live processes by invitation id

	base   context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	locker  ports.DistributedLocker // Optional distributed locker
	lockTTL time.Duration
	opts    []process.Option
	logger  *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the TTL of distributed locks.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.lockTTL = ttl
		}
	}
}

// WithLogger configures a logger for the Manager and the processes it starts.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logging.Guard(logger)
		}
	}
}

// WithProcessOptions sets options applied to every process the Manager starts.
func WithProcessOptions(opts ...process.Option) Option {
	return func(m *Manager) {
		m.opts = append(m.opts, opts...)
	}
}

// NewManager creates a new Manager observing the given store and feed.
func NewManager(store ports.RecordStore, feed ports.NotificationFeed, opts ...Option) *Manager {
	base, cancel := context.WithCancel(context.Background())
	m := &Manager{
		store:   store,
		feed:    feed,
		locks:   make(map[string]*lockEntry),
		procs:   make(map[string]*live),
		base:    base,
		cancel:  cancel,
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(), // Default to no-op
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(invitationID) after unlocking.
func (m *Manager) acquire(invitationID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[invitationID]
	if !exists {
		entry = &lockEntry{}
		m.locks[invitationID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(invitationID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[invitationID]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, invitationID)
	}
}

func (m *Manager) withLock(invitationID string, fn func() error) error {
	entry := m.acquire(invitationID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(invitationID)
	}()
	return fn()
}

// Start launches a process for the invitation in the background.
// It returns domain.ErrProcessRunning if one is already live.
// ctx only bounds the acquisition of the distributed lock; the process itself
// lives until it resolves, is torn down, or the Manager is closed.
func (m *Manager) Start(ctx context.Context, invitationID string, nav ports.Navigator, opts ...process.Option) (*process.Process, error) {
	var p *process.Process
	err := m.withLock(invitationID, func() error {
		if _, ok := m.Get(invitationID); ok {
			return domain.ErrProcessRunning
		}

		var unlock ports.UnlockFunc
		if m.locker != nil {
			var err error
			unlock, err = m.locker.Lock(ctx, invitationID, m.lockTTL)
			if err != nil {
				return fmt.Errorf("failed to acquire distributed lock: %w", err)
			}
		}

		all := append([]process.Option{process.WithLogger(m.logger)}, m.opts...)
		p = process.New(invitationID, m.store, m.feed, nav, append(all, opts...)...)

		runCtx, cancel := context.WithCancel(m.base)
		entry := &live{proc: p, cancel: cancel, unlock: unlock}

		m.mu.Lock()
		m.procs[invitationID] = entry
		m.mu.Unlock()

		m.wg.Add(1)
		go m.run(runCtx, invitationID, entry)
		return nil
	})
	return p, err
}

func (m *Manager) run(ctx context.Context, invitationID string, entry *live) {
	defer m.wg.Done()
	defer entry.cancel()

	if refresher, ok := m.locker.(ports.LockRefresher); ok && entry.unlock != nil {
		go m.keepAlive(invitationID, entry, refresher)
	}

	dest, err := entry.proc.Run(ctx)

	m.mu.Lock()
	if m.procs[invitationID] == entry {
		delete(m.procs, invitationID)
	}
	m.mu.Unlock()

	if entry.unlock != nil {
		if uerr := entry.unlock(context.Background()); uerr != nil {
			m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
				"invitation_id", invitationID,
				"err", uerr,
			)
		}
	}

	if err != nil {
		m.logger.Debug("process ended without navigation", "invitation_id", invitationID, "err", err)
		return
	}
	m.logger.Debug("process finished", "invitation_id", invitationID, "destination", dest.Kind())
}

// keepAlive renews the distributed lock until the process ends.
// A lost lock means another replica may own the invitation: the process is
// torn down so that it cannot navigate a second time.
func (m *Manager) keepAlive(invitationID string, entry *live, refresher ports.LockRefresher) {
	interval := max(m.lockTTL/3, time.Millisecond)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-entry.proc.Done():
			return
		case <-ticker.C:
		}
		select {
		case <-entry.proc.Done():
			return
		default:
		}

		ctx, cancel := context.WithTimeout(context.Background(), interval)
		err := refresher.Refresh(ctx, invitationID, m.lockTTL)
		cancel()

		switch {
		case err == nil:
		case errors.Is(err, domain.ErrLockLost):
			m.logger.Error("distributed lock lost, tearing process down", "invitation_id", invitationID)
			entry.cancel()
			return
		default:
			m.logger.Warn("failed to renew distributed lock", "invitation_id", invitationID, "err", err)
		}
	}
}

// Resolve starts a process and blocks until it resolves.
// If ctx is done first, the process is torn down and ctx.Err() is returned.
func (m *Manager) Resolve(ctx context.Context, invitationID string, nav ports.Navigator, opts ...process.Option) (domain.Destination, error) {
	p, err := m.Start(ctx, invitationID, nav, opts...)
	if err != nil {
		return nil, err
	}

	select {
	case <-p.Done():
		return p.Result()
	case <-ctx.Done():
		_ = m.Teardown(invitationID)
		<-p.Done()
		if dest, err := p.Result(); err == nil {
			// Resolved before the teardown was observed.
			return dest, nil
		}
		return nil, ctx.Err()
	}
}

// Get returns the live process of an invitation.
func (m *Manager) Get(invitationID string) (*process.Process, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.procs[invitationID]
	if !ok {
		return nil, false
	}
	return entry.proc, true
}

// Dismiss forwards a user abort to the live process of an invitation.
func (m *Manager) Dismiss(invitationID string) error {
	p, ok := m.Get(invitationID)
	if !ok {
		return domain.ErrProcessNotFound
	}
	p.Dismiss()
	return nil
}

// Teardown cancels the live process of an invitation without navigating
// and waits for it to stop.
func (m *Manager) Teardown(invitationID string) error {
	m.mu.Lock()
	entry, ok := m.procs[invitationID]
	m.mu.Unlock()
	if !ok {
		return domain.ErrProcessNotFound
	}
	entry.cancel()
	<-entry.proc.Done()

	m.mu.Lock()
	if m.procs[invitationID] == entry {
		delete(m.procs, invitationID)
	}
	m.mu.Unlock()
	return nil
}

// List returns the invitation ids of live processes, sorted.
func (m *Manager) List() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.procs))
	for id := range m.procs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Close tears down every live process and waits for them to stop.
func (m *Manager) Close() error {
	m.cancel()
	m.wg.Wait()
	return nil
}
