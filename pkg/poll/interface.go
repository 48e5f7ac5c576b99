package poll

import (
	"context"
	"time"
)

type PollerConfig struct {
	Interval time.Duration
}

type MetaFunc struct {
	FetchFunc
	PollerConfig
}

// Poller runs registered fetch functions on their own interval until stopped.
type Poller interface {
	// Start launches one polling loop per registered fetch function
	Start(ctx context.Context) error
	// Stop gracefully stops the poller and waits for running loops to exit
	Stop() error
	// RegisterFetchFunc adds a named fetch function. Must be called before Start.
	RegisterFetchFunc(name string, fetchFunc FetchFunc, config PollerConfig)
}

// FetchFunc is a function that checks a remote source once
type FetchFunc func(ctx context.Context) error
