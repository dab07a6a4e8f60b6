package jobs

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// RefreshFunc rebuilds derived state. Returning an error schedules a retry.
type RefreshFunc func(ctx context.Context) error

// Config configures retry behaviour.
type Config struct {
	MaxRetries int
	RetryDelay time.Duration
	Timeout    time.Duration
	Logger     *zap.Logger
}

// Refresher runs a RefreshFunc on a single background worker whenever Trigger is
// called. Triggers arriving while a run is already pending collapse into it, so a
// burst of writes costs one refresh.
type Refresher struct {
	name    string
	refresh RefreshFunc

	maxRetries int
	retryDelay time.Duration
	timeout    time.Duration
	logger     *zap.Logger

	pending chan struct{}
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	started bool
}

// NewRefresher builds a refresher around fn.
func NewRefresher(name string, fn RefreshFunc, cfg Config) *Refresher {
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &Refresher{
		name:       name,
		refresh:    fn,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		timeout:    cfg.Timeout,
		logger:     cfg.Logger,
		pending:    make(chan struct{}, 1),
	}
}

// Start launches the worker. Safe to call once.
func (r *Refresher) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return
	}
	r.ctx, r.cancel = context.WithCancel(ctx)
	r.wg.Add(1)
	go r.worker()
	r.started = true
	r.logger.Sugar().Infow("refresher started", "refresher", r.name)
}

// Stop cancels the worker and waits for it to exit.
func (r *Refresher) Stop() {
	r.mu.Lock()
	if !r.started {
		r.mu.Unlock()
		return
	}
	r.cancel()
	r.mu.Unlock()
	r.wg.Wait()
	r.logger.Sugar().Infow("refresher stopped", "refresher", r.name)
}

// Trigger requests a refresh without blocking. It reports false when a refresh was
// already pending and this request was folded into it.
func (r *Refresher) Trigger() bool {
	select {
	case r.pending <- struct{}{}:
		return true
	default:
		return false
	}
}

func (r *Refresher) worker() {
	defer r.wg.Done()
	for {
		select {
		case <-r.ctx.Done():
			return
		case <-r.pending:
			r.runWithRetry()
		}
	}
}

func (r *Refresher) runWithRetry() {
	for attempt := 0; ; attempt++ {
		ctx, cancel := context.WithTimeout(r.ctx, r.timeout)
		err := r.refresh(ctx)
		cancel()
		if err == nil {
			return
		}
		if attempt >= r.maxRetries {
			r.logger.Sugar().Errorw("refresh exceeded retries", "refresher", r.name, "attempts", attempt+1, "error", err)
			return
		}
		r.logger.Sugar().Warnw("refresh failed, retrying", "refresher", r.name, "attempt", attempt+1, "error", err)

		timer := time.NewTimer(r.retryDelay)
		select {
		case <-r.ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}
