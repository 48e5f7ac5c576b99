package poll

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Alwanly/forkauthority-polls/pkg/logger"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

var ErrAlreadyStarted = errors.New("poller already started")

// poller implements the Poller interface
type poller struct {
	logger     *logger.CanonicalLogger
	clock      clockwork.Clock
	defaults   Config
	mu         sync.Mutex
	started    bool
	stopCh     chan struct{}
	stopOnce   sync.Once
	wg         sync.WaitGroup
	fetchFuncs map[string]MetaFunc
}

// NewPoller creates a new Poller instance
func NewPoller(log *logger.CanonicalLogger, clock clockwork.Clock) Poller {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &poller{
		logger:     log,
		clock:      clock,
		defaults:   DefaultConfig(),
		stopCh:     make(chan struct{}),
		fetchFuncs: make(map[string]MetaFunc),
	}
}

// Start begins polling in the background
func (p *poller) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return ErrAlreadyStarted
	}
	p.started = true

	for name, meta := range p.fetchFuncs {
		interval := meta.Interval
		if interval <= 0 {
			interval = p.defaults.Interval
		}
		p.wg.Add(1)
		go p.poll(ctx, name, meta.FetchFunc, interval)
	}
	return nil
}

// Stop gracefully stops the poller
func (p *poller) Stop() error {
	p.stopOnce.Do(func() {
		close(p.stopCh)
	})
	p.wg.Wait()
	return nil
}

// poll runs the ticker loop for a single fetch function
func (p *poller) poll(ctx context.Context, name string, fetch FetchFunc, interval time.Duration) {
	defer p.wg.Done()

	ticker := p.clock.NewTicker(interval)
	defer ticker.Stop()
	p.logger.Info("started polling", zap.String(logger.FieldPollName, name), zap.Duration("interval", interval))

	var fetchCount, failedCount int
	for {
		select {
		case <-p.stopCh:
			p.logger.Info("stopping poller",
				zap.String(logger.FieldPollName, name),
				zap.Int(logger.FieldFetchCount, fetchCount),
				zap.Int(logger.FieldFailedCount, failedCount),
			)
			return
		case <-ctx.Done():
			p.logger.Info("poller context done", zap.String(logger.FieldPollName, name))
			return
		case <-ticker.Chan():
			fetchCount++
			if !p.performPoll(ctx, name, fetch) {
				failedCount++
			}
		}
	}
}

// performPoll executes a single poll operation
func (p *poller) performPoll(ctx context.Context, name string, fetch FetchFunc) bool {
	p.logger.Debug("polling", zap.String(logger.FieldPollName, name))
	if err := fetch(ctx); err != nil {
		logger.AddToContext(ctx, zap.Error(err), zap.Bool(logger.FieldSuccess, false))
		p.logger.Error("poll failed", zap.String(logger.FieldPollName, name), zap.Error(err))
		return false
	}
	logger.AddToContext(ctx, zap.Bool(logger.FieldSuccess, true))
	return true
}

// RegisterFetchFunc registers a fetch function with its polling configuration
func (p *poller) RegisterFetchFunc(name string, fetchFunc FetchFunc, config PollerConfig) {
	if name == "" || fetchFunc == nil {
		p.logger.Error("invalid fetch function registration")
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		p.logger.Error("fetch function registered after start", zap.String(logger.FieldPollName, name))
		return
	}
	if _, exists := p.fetchFuncs[name]; exists {
		panic("name already existing")
	}
	p.fetchFuncs[name] = MetaFunc{
		FetchFunc:    fetchFunc,
		PollerConfig: config,
	}
	p.logger.Info("fetch function registered", zap.String(logger.FieldPollName, name), zap.Duration("interval", config.Interval))
}
