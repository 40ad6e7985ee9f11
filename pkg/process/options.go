package process

import (
	"log/slog"

	"github.com/aretw0/handshake/internal/logging"
	"github.com/aretw0/handshake/pkg/domain"
)

// Option defines a functional option for configuring a Process.
type Option func(*Process)

// WithConfig sets the watchdog configuration.
// A non-positive delay falls back to domain.DefaultDelay.
func WithConfig(cfg domain.Config) Option {
	return func(p *Process) {
		p.cfg = cfg
	}
}

// WithLogger configures the structured logger.
// Logging is best-effort: a failing handler never reaches the process.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Process) {
		if logger != nil {
			p.logger = logging.Guard(logger)
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(p *Process) {
		p.hooks = p.hooks.Merge(hooks)
	}
}

// WithFeedQuery sets the query used to read the notification feed,
// e.g. the external credential offer URI being resolved.
func WithFeedQuery(q domain.FeedQuery) Option {
	return func(p *Process) {
		p.query = q
	}
}

// WithID overrides the generated process id.
func WithID(id string) Option {
	return func(p *Process) {
		if id != "" {
			p.id = id
		}
	}
}
