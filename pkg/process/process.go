package process

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aretw0/handshake/internal/logging"
	"github.com/aretw0/handshake/internal/runtime"
	"github.com/aretw0/handshake/pkg/domain"
	"github.com/aretw0/handshake/pkg/ports"
	"github.com/google/uuid"
)

// Process resolves a single invitation into exactly one destination.
//
// All evaluation happens on the goroutine that calls Run: store changes,
// feed changes, the watchdog and dismiss requests are processed one at a time.
type Process struct {
	id           string
	invitationID string

	store ports.RecordStore
	feed  ports.NotificationFeed
	nav   ports.Navigator

	cfg    domain.Config
	query  domain.FeedQuery
	logger *slog.Logger
	hooks  domain.LifecycleHooks

	mu     sync.RWMutex
	state  domain.ProcessState
	result domain.Destination
	err    error

	started   atomic.Bool
	startedAt time.Time
	dismiss   chan struct{}
	notices   chan struct{}
	done      chan struct{}
}

// New creates a process for an invitation. Nothing runs until Run is called.
func New(invitationID string, store ports.RecordStore, feed ports.NotificationFeed, nav ports.Navigator, opts ...Option) *Process {
	p := &Process{
		id:           uuid.NewString(),
		invitationID: invitationID,
		store:        store,
		feed:         feed,
		nav:          nav,
		cfg:          domain.DefaultConfig(),
		logger:       logging.NewNop(),
		state:        domain.NewProcessState(invitationID),
		dismiss:      make(chan struct{}, 1),
		notices:      make(chan struct{}, 1),
		done:         make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.cfg.Delay <= 0 {
		p.cfg.Delay = domain.DefaultDelay
	}
	p.logger = p.logger.With("process_id", p.id, "invitation_id", invitationID)
	return p
}

// ID returns the process identifier used for correlation.
func (p *Process) ID() string { return p.id }

// InvitationID returns the invitation this process resolves.
func (p *Process) InvitationID() string { return p.invitationID }

// State returns a snapshot of the current state.
func (p *Process) State() domain.ProcessState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

// Notices delivers the "taking too long" signal. It fires at most once.
func (p *Process) Notices() <-chan struct{} { return p.notices }

// Done is closed when Run returns.
func (p *Process) Done() <-chan struct{} { return p.done }

// Result returns what Run returned. Only meaningful after Done is closed.
func (p *Process) Result() (domain.Destination, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.result, p.err
}

// Dismiss requests the user abort. It is a no-op once the process is resolved
// or when an abort is already pending.
func (p *Process) Dismiss() {
	select {
	case p.dismiss <- struct{}{}:
	default:
	}
}

// Run executes the process until it resolves or ctx is done.
// On resolution it navigates exactly once and returns the destination.
// On teardown it returns ctx.Err() without navigating.
func (p *Process) Run(ctx context.Context) (dest domain.Destination, err error) {
	if !p.started.CompareAndSwap(false, true) {
		return nil, domain.ErrProcessRunning
	}
	defer func() {
		p.mu.Lock()
		p.result, p.err = dest, err
		p.mu.Unlock()
		close(p.done)
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p.startedAt = time.Now()
	p.emitChange(ctx, nil, p.State())

	storeChanges, err := p.store.Watch(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to watch record store: %w", err)
	}
	feedChanges, err := p.feed.Watch(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to watch notification feed: %w", err)
	}

	wd := startWatchdog(p.cfg.Delay)
	defer wd.Stop()

	p.logger.Debug("process started", "delay", p.cfg.Delay, "auto_redirect", p.cfg.AutoRedirectOnDelay)

	if step, ok := p.evaluate(ctx); ok {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if step.Resolved() {
			return p.commit(ctx, step)
		}
		p.apply(ctx, step)
	}

	for {
		var step runtime.Step

		select {
		case <-ctx.Done():
			p.logger.Debug("process torn down", "err", ctx.Err())
			return nil, ctx.Err()

		case _, ok := <-storeChanges:
			if !ok {
				storeChanges = nil
				p.logger.Warn("record store watch closed")
				continue
			}
			var loaded bool
			if step, loaded = p.evaluate(ctx); !loaded {
				continue
			}

		case _, ok := <-feedChanges:
			if !ok {
				feedChanges = nil
				p.logger.Warn("notification feed watch closed")
				continue
			}
			var loaded bool
			if step, loaded = p.evaluate(ctx); !loaded {
				continue
			}

		case <-wd.C():
			wd.markFired()
			step = runtime.Expire(p.State(), p.cfg)

		case <-p.dismiss:
			step = runtime.Dismiss(p.State())
		}

		// A teardown wins over any event that was ready at the same time.
		if ctx.Err() != nil {
			p.logger.Debug("process torn down", "err", ctx.Err())
			return nil, ctx.Err()
		}
		if step.Resolved() {
			return p.commit(ctx, step)
		}
		p.apply(ctx, step)
	}
}

// evaluate reloads every observed input and runs one evaluation pass.
// It reports false when the inputs could not be read; the pass is skipped
// and the next change triggers a new one.
func (p *Process) evaluate(ctx context.Context) (runtime.Step, bool) {
	in, err := p.load(ctx)
	if err != nil {
		p.logger.Warn("failed to observe records", "err", err)
		return runtime.Step{}, false
	}
	return runtime.Evaluate(p.State(), in), true
}

func (p *Process) load(ctx context.Context) (runtime.Inputs, error) {
	var in runtime.Inputs

	inv, err := p.store.Invitation(ctx, p.invitationID)
	switch {
	case err == nil:
		in.Invitation = inv
	case !errors.Is(err, domain.ErrInvitationNotFound):
		return in, fmt.Errorf("failed to load invitation: %w", err)
	}

	conn, err := p.store.ConnectionByInvitation(ctx, p.invitationID)
	switch {
	case err == nil:
		in.Connection = conn
	case !errors.Is(err, domain.ErrConnectionNotFound):
		return in, fmt.Errorf("failed to load connection: %w", err)
	}

	// The feed is only read while no match exists; the matcher does not run afterwards.
	if p.State().Matched == nil {
		in.Notifications, err = p.feed.Notifications(ctx, p.query)
		if err != nil {
			return in, fmt.Errorf("failed to read notifications: %w", err)
		}
	}
	return in, nil
}

// apply commits a non-terminal step and emits its side-channel events.
func (p *Process) apply(ctx context.Context, step runtime.Step) {
	old := p.swap(step.State)
	now := time.Now()

	if step.Matched != nil {
		p.logger.Info("notification matched", "notification_id", step.Matched.ID(), "kind", step.Matched.Kind())
		if p.hooks.OnMatch != nil {
			p.guard(domain.EventMatch, func() {
				p.hooks.OnMatch(ctx, &domain.MatchEvent{
					EventBase:    p.base(domain.EventMatch, now),
					Notification: step.Matched,
					Elapsed:      now.Sub(p.startedAt),
				})
			})
		}
	}

	if step.Stalled != nil && old.Phase != domain.PhaseDeciding {
		p.logger.Error("decision blocked", "err", step.Stalled)
		if p.hooks.OnStall != nil {
			p.guard(domain.EventStall, func() {
				p.hooks.OnStall(ctx, &domain.StallEvent{EventBase: p.base(domain.EventStall, now), Err: step.Stalled})
			})
		}
	}

	if step.Notice {
		p.logger.Info("resolution is taking too long", "delay", p.cfg.Delay)
		p.notices <- struct{}{}
		p.emitDelay(ctx, now)
	}

	p.emitChange(ctx, &old, step.State)
}

// commit performs the terminal transition and navigates exactly once.
func (p *Process) commit(ctx context.Context, step runtime.Step) (domain.Destination, error) {
	p.apply(ctx, runtime.Step{State: step.State, Matched: step.Matched, Stalled: step.Stalled})

	now := time.Now()
	if step.State.Cause == domain.CauseTimeout {
		p.emitDelay(ctx, now)
	}

	dest := step.Navigate
	p.logger.Info("process resolved", "destination", dest.Kind(), "cause", step.State.Cause)
	if p.hooks.OnResolve != nil {
		p.guard(domain.EventResolve, func() {
			p.hooks.OnResolve(ctx, &domain.ResolveEvent{
				EventBase:   p.base(domain.EventResolve, now),
				Destination: dest,
				Cause:       step.State.Cause,
				Elapsed:     now.Sub(p.startedAt),
			})
		})
	}

	if err := p.nav.Navigate(ctx, dest); err != nil {
		return dest, fmt.Errorf("navigation to %s failed: %w", dest.Kind(), err)
	}
	return dest, nil
}

func (p *Process) swap(next domain.ProcessState) domain.ProcessState {
	p.mu.Lock()
	defer p.mu.Unlock()
	old := p.state
	p.state = next
	return old
}

func (p *Process) emitDelay(ctx context.Context, now time.Time) {
	if p.hooks.OnDelay != nil {
		p.guard(domain.EventDelay, func() {
			p.hooks.OnDelay(ctx, &domain.DelayEvent{
				EventBase:    p.base(domain.EventDelay, now),
				AutoRedirect: p.cfg.AutoRedirectOnDelay,
			})
		})
	}
}

func (p *Process) emitChange(ctx context.Context, old *domain.ProcessState, next domain.ProcessState) {
	if p.hooks.OnChange == nil {
		return
	}
	if diff := domain.Diff(old, next); diff != nil {
		p.guard(domain.EventChange, func() { p.hooks.OnChange(ctx, diff) })
	}
}

// guard runs a lifecycle hook. Hooks are observers: a panicking hook is
// logged and never interrupts the resolution.
func (p *Process) guard(event domain.EventType, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("lifecycle hook panicked", "event", event, "panic", r)
		}
	}()
	fn()
}

func (p *Process) base(t domain.EventType, now time.Time) domain.EventBase {
	return domain.EventBase{
		Timestamp:    now,
		Type:         t,
		ProcessID:    p.id,
		InvitationID: p.invitationID,
	}
}
