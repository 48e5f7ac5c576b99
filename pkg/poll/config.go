package poll

import "time"

// Config holds configuration for the poller
type Config struct {
	// Interval used for fetch functions registered without one
	Interval time.Duration
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() Config {
	return Config{
		Interval: 5 * time.Second,
	}
}
