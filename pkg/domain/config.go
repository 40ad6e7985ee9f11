package domain

import "time"

// DefaultDelay is the watchdog interval used when none is configured.
const DefaultDelay = 10 * time.Second

// Config tunes the watchdog of a process.
type Config struct {
	// Delay is how long to wait for a decision before the watchdog fires.
	Delay time.Duration

	// AutoRedirectOnDelay makes the watchdog resolve to Home instead of
	// only surfacing a "taking too long" notice.
	AutoRedirectOnDelay bool
}

// DefaultConfig returns the configuration used when none is provided.
func DefaultConfig() Config {
	return Config{Delay: DefaultDelay}
}
