package mailqueue

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Scheduler runs a tick function on a fixed interval. It fires once
// immediately on Start so sweeps do not wait a full interval after boot.
type Scheduler struct {
	name     string
	interval time.Duration
	tickFn   func(context.Context)
	logger   *slog.Logger

	running atomic.Bool

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewScheduler constructs a stopped scheduler. The interval must be
// positive and tickFn non-nil; the dispatcher guarantees both.
func NewScheduler(name string, interval time.Duration, tickFn func(context.Context), logger *slog.Logger) *Scheduler {
	return &Scheduler{
		name:     name,
		interval: interval,
		tickFn:   tickFn,
		logger:   logger,
	}
}

// Start launches the tick loop. Returns false if already running.
func (s *Scheduler) Start() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running.Load() {
		return false
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	s.running.Store(true)

	go func() {
		defer close(s.done)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.logger.Info("scheduler started", "sweep", s.name, "interval", s.interval.String())

		s.safeTick(ctx)

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.safeTick(ctx)
			}
		}
	}()

	return true
}

// Stop cancels the loop and waits for an in-flight tick to finish. Returns
// false if the scheduler was not running.
func (s *Scheduler) Stop() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running.Load() {
		return false
	}

	s.cancel()
	<-s.done
	s.running.Store(false)

	s.logger.Info("scheduler stopped", "sweep", s.name)
	return true
}

// IsRunning reports whether the tick loop is active.
func (s *Scheduler) IsRunning() bool {
	return s.running.Load()
}

// safeTick isolates a panicking sweep so the ticker loop survives it.
func (s *Scheduler) safeTick(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("scheduler tick panic recovered", "sweep", s.name, "panic", r)
		}
	}()
	s.tickFn(ctx)
}
