package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/aretw0/handshake"
	"github.com/aretw0/handshake/internal/presentation/tui"
	"github.com/aretw0/handshake/pkg/domain"
	"github.com/aretw0/handshake/pkg/ports"
	"github.com/aretw0/handshake/pkg/process"
)

// RunOptions contains all the configuration for the run command.
type RunOptions struct {
	InvitationID          string
	ConfigPath            string
	Overrides             Overrides
	ExternalCredentialURI string
	Debug                 bool
	JSON                  bool
	Summary               bool
	Style                 string
}

// Run resolves one invitation against the Redis record store.
// The first Ctrl+C dismisses the process (navigating home); a second one aborts.
func Run(opts RunOptions) error {
	cfg, err := LoadConfig(opts.ConfigPath, opts.Overrides)
	if err != nil {
		return err
	}
	logger := createLogger(cfg, opts.Debug)

	store := newRedisStore(cfg, logger)
	defer store.Close()

	engine := handshake.New(store, store, engineOptions(cfg, logger, opts.Debug)...)
	defer engine.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCtx := NewSignalContext(ctx, OnFirstSignal(func(os.Signal) {
		if err := engine.Dismiss(opts.InvitationID); err != nil {
			cancel()
		}
	}))
	defer sigCtx.Cancel()

	_, err = Resolve(sigCtx, engine, opts, os.Stdout)
	if errors.Is(err, context.Canceled) {
		return nil // Exit 0 for interruptions
	}
	return err
}

// Resolver is the part of the engine the run command drives.
type Resolver interface {
	Start(ctx context.Context, invitationID string, nav ports.Navigator, opts ...process.Option) (*process.Process, error)
	Teardown(invitationID string) error
}

// Resolve runs the process and reports progress to out.
func Resolve(ctx context.Context, engine Resolver, opts RunOptions, out io.Writer) (domain.Destination, error) {
	printer := tui.NewPrinter(out)
	if opts.JSON {
		printer = nil
	}

	// The CLI has no screen stack: the destination is printed once Run returns.
	nav := ports.NavigatorFunc(func(context.Context, domain.Destination) error { return nil })

	p, err := engine.Start(ctx, opts.InvitationID, nav,
		process.WithFeedQuery(domain.FeedQuery{ExternalCredentialURI: opts.ExternalCredentialURI}))
	if err != nil {
		return nil, fmt.Errorf("failed to start process: %w", err)
	}
	if printer != nil {
		printer.Waiting(opts.InvitationID)
	}

	notices := p.Notices()
	for done := false; !done; {
		select {
		case <-notices:
			notices = nil
			if printer != nil {
				printer.Notice()
			}
		case <-p.Done():
			done = true
		case <-ctx.Done():
			_ = engine.Teardown(opts.InvitationID)
			<-p.Done()
			done = true
		}
	}

	dest, err := p.Result()
	if err != nil {
		if printer != nil && !errors.Is(err, context.Canceled) {
			printer.Failed(err)
		}
		return nil, err
	}

	if opts.JSON {
		return dest, json.NewEncoder(out).Encode(describe(dest))
	}

	printer.Resolved(dest)
	if opts.Summary {
		render, rerr := tui.NewRenderer(opts.Style, 80)
		if rerr == nil {
			if md, rerr := render(tui.Summary(p.State())); rerr == nil {
				fmt.Fprint(out, md)
			}
		}
	}
	return dest, nil
}

func targetOf(dest domain.Destination) string {
	return tui.Target(dest)
}
