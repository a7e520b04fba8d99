package app

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Expirer resets sessions idle past their timeout.
type Expirer interface {
	ExpireIdle(now time.Time) int
}

// Reaper periodically expires idle question sessions, independent of request traffic.
type Reaper struct {
	target   Expirer
	interval time.Duration
	now      func() time.Time
	logger   *zap.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewReaper(target Expirer, interval time.Duration, logger *zap.Logger) *Reaper {
	if interval <= 0 {
		interval = DefaultSettings().ReaperInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reaper{target: target, interval: interval, now: time.Now, logger: logger}
}

// Start begins the reaping loop. Call Stop to release resources.
func (r *Reaper) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	r.done = make(chan struct{})

	go r.run(ctx, r.done)
	r.logger.Info("session reaper started", zap.Duration("interval", r.interval))
}

// Stop halts the loop and waits for it to exit.
func (r *Reaper) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel == nil {
		return
	}
	r.cancel()
	r.cancel = nil
	<-r.done
	r.logger.Info("session reaper stopped")
}

func (r *Reaper) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.tick()
		}
	}
}

func (r *Reaper) tick() int {
	n := r.target.ExpireIdle(r.now())
	if n > 0 {
		r.logger.Debug("reaper tick", zap.Int("expired", n))
	}
	return n
}
