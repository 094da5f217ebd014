// Package workerpool runs background tasks on a fixed number of goroutines
// with a bounded queue. When the queue is full the submitting goroutine runs
// the task itself, so producers are throttled instead of queueing unbounded
// work.
package workerpool

import (
	"context"
	"log/slog"
	"sync"
)

// Task is a unit of background work.
type Task func(ctx context.Context)

// Pool is a fixed-size worker pool.
type Pool struct {
	tasks  chan Task
	logger *slog.Logger

	mu     sync.RWMutex
	closed bool

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

// New starts workers goroutines consuming from a queue of size queueSize.
func New(workers, queueSize int, logger *slog.Logger) *Pool {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		tasks:  make(chan Task, queueSize),
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}

	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for task := range p.tasks {
		p.run(task)
	}
}

func (p *Pool) run(task Task) {
	defer func() {
		if rec := recover(); rec != nil {
			p.logger.Error("worker task panic recovered", "panic", rec)
		}
	}()
	task(p.ctx)
}

// Submit enqueues a task. If the queue is full the task runs on the calling
// goroutine (caller-runs backpressure). Tasks submitted after Stop are
// dropped.
func (p *Pool) Submit(task Task) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return
	}

	select {
	case p.tasks <- task:
	default:
		p.run(task)
	}
}

// Stop waits for queued and in-flight tasks, then cancels the pool context.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.tasks)
	p.mu.Unlock()

	p.wg.Wait()
	p.cancel()
}
