package process

import "time"

// watchdog is a single-shot timer owned by one process.
// It is not restarted once fired and must be stopped on every exit path.
type watchdog struct {
	timer *time.Timer
	fired bool
}

func startWatchdog(d time.Duration) *watchdog {
	return &watchdog{timer: time.NewTimer(d)}
}

// C returns the expiry channel, or nil once the watchdog fired or was stopped,
// so that a select never observes it twice.
func (w *watchdog) C() <-chan time.Time {
	if w.fired {
		return nil
	}
	return w.timer.C
}

// markFired records the expiry delivered through C.
func (w *watchdog) markFired() {
	w.fired = true
}

// Stop releases the timer. It is safe to call more than once.
func (w *watchdog) Stop() {
	w.timer.Stop()
	w.fired = true
}
