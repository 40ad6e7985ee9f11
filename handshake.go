package handshake

import (
	"context"
	"log/slog"

	"github.com/aretw0/handshake/internal/logging"
	"github.com/aretw0/handshake/pkg/domain"
	"github.com/aretw0/handshake/pkg/ports"
	"github.com/aretw0/handshake/pkg/process"
	"github.com/aretw0/handshake/pkg/session"
)

// Engine is the high-level entry point for the library.
// It wraps the session manager and provides a simplified API for consumers.
type Engine struct {
	manager *session.Manager
	cfg     domain.Config
	hooks   domain.LifecycleHooks
	locker  ports.DistributedLocker
	logger  *slog.Logger
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithConfig sets the watchdog configuration used by every process.
func WithConfig(cfg domain.Config) Option {
	return func(e *Engine) {
		e.cfg = cfg
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = e.hooks.Merge(hooks)
	}
}

// WithLocker enables distributed single-instance locking per invitation.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(e *Engine) {
		e.locker = locker
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logging.Guard(logger)
	}
}

// New initializes an Engine observing the given record store and notification feed.
// A single backend usually implements both.
func New(store ports.RecordStore, feed ports.NotificationFeed, opts ...Option) *Engine {
	eng := &Engine{cfg: domain.DefaultConfig()}
	for _, opt := range opts {
		opt(eng)
	}

	// Ensure logger is initialized (so we don't pass nil down)
	if eng.logger == nil {
		eng.logger = logging.NewNop()
	}

	managerOpts := []session.Option{
		session.WithLogger(eng.logger),
		session.WithProcessOptions(
			process.WithConfig(eng.cfg),
			process.WithLifecycleHooks(eng.hooks),
		),
	}
	if eng.locker != nil {
		managerOpts = append(managerOpts, session.WithLocker(eng.locker))
	}

	eng.manager = session.NewManager(store, feed, managerOpts...)
	return eng
}

// Resolve runs a process for the invitation and blocks until it navigates.
// Cancelling ctx tears the process down without navigating.
func (e *Engine) Resolve(ctx context.Context, invitationID string, nav ports.Navigator, opts ...process.Option) (domain.Destination, error) {
	return e.manager.Resolve(ctx, invitationID, nav, opts...)
}

// Start runs a process for the invitation in the background.
func (e *Engine) Start(ctx context.Context, invitationID string, nav ports.Navigator, opts ...process.Option) (*process.Process, error) {
	return e.manager.Start(ctx, invitationID, nav, opts...)
}

// Get returns the live process of an invitation.
func (e *Engine) Get(invitationID string) (*process.Process, bool) {
	return e.manager.Get(invitationID)
}

// Dismiss aborts the live process of an invitation; it navigates home.
func (e *Engine) Dismiss(invitationID string) error {
	return e.manager.Dismiss(invitationID)
}

// Teardown stops the live process of an invitation without navigating.
func (e *Engine) Teardown(invitationID string) error {
	return e.manager.Teardown(invitationID)
}

// Manager returns the underlying session manager.
func (e *Engine) Manager() *session.Manager {
	return e.manager
}

// Config returns the effective watchdog configuration.
func (e *Engine) Config() domain.Config {
	return e.cfg
}

// Close tears down every live process.
func (e *Engine) Close() error {
	return e.manager.Close()
}
