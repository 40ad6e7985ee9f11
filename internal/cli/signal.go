package cli

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// SignalContext wraps a context and captures the signal that cancelled it.
//
// With an OnFirstSignal callback, the first SIGINT/SIGTERM invokes the
// callback instead of cancelling; a second one cancels.
type SignalContext struct {
	context.Context
	Cancel func()

	stop   sync.Once
	sigCh  chan os.Signal
	sigVal os.Signal
	mu     sync.Mutex
}

// SignalOption configures a SignalContext.
type SignalOption func(*signalConfig)

type signalConfig struct {
	onFirst func(os.Signal)
}

// OnFirstSignal runs fn on the first signal instead of cancelling.
func OnFirstSignal(fn func(os.Signal)) SignalOption {
	return func(c *signalConfig) {
		c.onFirst = fn
	}
}

// NewSignalContext creates a context that is cancelled on SIGINT or SIGTERM.
// It acts as a drop-in replacement for signal.NotifyContext but allows retrieving the signal.
func NewSignalContext(parent context.Context, opts ...SignalOption) *SignalContext {
	var cfg signalConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	ctx, cancel := context.WithCancel(parent)
	sc := &SignalContext{
		Context: ctx,
		Cancel:  cancel,
		sigCh:   make(chan os.Signal, 2),
	}

	signal.Notify(sc.sigCh, os.Interrupt, syscall.SIGTERM)
	go sc.loop(cfg.onFirst)

	return sc
}

func (sc *SignalContext) loop(onFirst func(os.Signal)) {
	defer sc.stop.Do(func() { signal.Stop(sc.sigCh) })

	for {
		select {
		case sig := <-sc.sigCh:
			sc.mu.Lock()
			first := sc.sigVal == nil
			sc.sigVal = sig
			sc.mu.Unlock()

			if first && onFirst != nil {
				onFirst(sig)
				continue
			}
			sc.Cancel()
			return
		case <-sc.Context.Done():
			// Context cancelled elsewhere
			return
		}
	}
}

// Signal returns the last signal received, or nil.
func (sc *SignalContext) Signal() os.Signal {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.sigVal
}

// deliver injects a signal as if it came from the OS.
func (sc *SignalContext) deliver(sig os.Signal) {
	sc.sigCh <- sig
}
