package mailqueue

import (
	"context"
	"log/slog"
	"time"

	"treasurehunt/internal/platform/config"
	"treasurehunt/internal/platform/metrics"
	"treasurehunt/internal/platform/workerpool"
)

// Transport delivers one rendered message. Implementations own retry,
// rate limiting, and circuit breaking; the dispatcher only sees the final
// verdict per attempt window.
type Transport interface {
	Send(ctx context.Context, to, toName, subject, htmlBody string) error
}

// Dispatcher drains the queue. A periodic sweep claims a batch of ready
// entries and fans the sends out across the worker pool; companion sweeps
// requeue retriable failures, reclaim stuck PROCESSING rows, and purge old
// SENT rows.
type Dispatcher struct {
	store     Store
	transport Transport
	renderer  *Renderer
	pool      *workerpool.Pool
	metrics   *metrics.Metrics
	logger    *slog.Logger
	cfg       config.DispatcherConfig

	sweeps []*Scheduler
}

// NewDispatcher wires the dispatcher and its worker pool. Call Start to
// begin sweeping and Stop to drain on shutdown.
func NewDispatcher(store Store, transport Transport, renderer *Renderer, m *metrics.Metrics, logger *slog.Logger, cfg config.DispatcherConfig) *Dispatcher {
	d := &Dispatcher{
		store:     store,
		transport: transport,
		renderer:  renderer,
		pool:      workerpool.New(cfg.Workers, cfg.QueueSize, logger),
		metrics:   m,
		logger:    logger,
		cfg:       cfg,
	}
	d.sweeps = []*Scheduler{
		NewScheduler("dispatch", cfg.SweepInterval, d.dispatchSweep, logger),
		NewScheduler("retry", cfg.RetryInterval, d.retrySweep, logger),
		NewScheduler("reclaim", cfg.StaleAfter, d.reclaimSweep, logger),
		NewScheduler("cleanup", cfg.CleanupInterval, d.cleanupSweep, logger),
	}
	return d
}

// Start launches all sweep schedulers. Each fires once immediately, so
// stale PROCESSING rows left by a crashed process are reclaimed at boot.
func (d *Dispatcher) Start() {
	for _, s := range d.sweeps {
		s.Start()
	}
}

// Stop halts the schedulers, then drains the worker pool. In-flight sends
// finish before Stop returns.
func (d *Dispatcher) Stop() {
	for _, s := range d.sweeps {
		s.Stop()
	}
	d.pool.Stop()
}

// Running reports whether every sweep scheduler is live. Health checks use
// it to flag a dispatcher that died or was never started.
func (d *Dispatcher) Running() bool {
	for _, s := range d.sweeps {
		if !s.IsRunning() {
			return false
		}
	}
	return true
}

// dispatchSweep claims one batch and hands each entry to the pool. The
// claim already flipped the entries to PROCESSING, so a concurrent sweep
// cannot pick them up again.
func (d *Dispatcher) dispatchSweep(ctx context.Context) {
	now := time.Now()
	entries, err := d.store.ClaimReady(ctx, now, d.cfg.BatchSize)
	if err != nil {
		d.logger.ErrorContext(ctx, "claim ready entries failed", "error", err)
		return
	}
	for _, entry := range entries {
		e := entry
		d.pool.Submit(func(taskCtx context.Context) {
			d.deliver(taskCtx, e)
		})
	}
	if len(entries) > 0 {
		d.logger.InfoContext(ctx, "dispatch sweep claimed batch", "count", len(entries))
	}
	d.updateQueueDepth(ctx)
}

// deliver sends one claimed entry and records the outcome. A failure here
// never aborts the rest of the batch; each entry settles independently.
func (d *Dispatcher) deliver(ctx context.Context, entry *Entry) {
	sendCtx, cancel := context.WithTimeout(ctx, d.cfg.SendTimeout)
	defer cancel()

	body, err := d.renderer.Render(entry)
	if err == nil {
		err = d.transport.Send(sendCtx, entry.RecipientEmail, entry.RecipientName, entry.Subject, body)
	}
	if err != nil {
		d.metrics.IncEmailFailed()
		d.logger.WarnContext(ctx, "email delivery failed",
			"entry_id", entry.ID, "type", entry.Type, "retry_count", entry.RetryCount, "error", err)
		if markErr := d.store.MarkFailed(ctx, entry.ID, err.Error()); markErr != nil {
			d.logger.ErrorContext(ctx, "mark failed did not apply", "entry_id", entry.ID, "error", markErr)
		}
		return
	}

	d.metrics.IncEmailSent()
	if markErr := d.store.MarkSent(ctx, entry.ID, time.Now()); markErr != nil {
		d.logger.ErrorContext(ctx, "mark sent did not apply", "entry_id", entry.ID, "error", markErr)
		return
	}
	d.logger.InfoContext(ctx, "email delivered", "entry_id", entry.ID, "type", entry.Type)
}

// retrySweep moves retriable FAILED entries back to PENDING so the next
// dispatch sweep picks them up.
func (d *Dispatcher) retrySweep(ctx context.Context) {
	count, err := d.store.RequeueRetriable(ctx)
	if err != nil {
		d.logger.ErrorContext(ctx, "retry sweep failed", "error", err)
		return
	}
	if count > 0 {
		d.logger.InfoContext(ctx, "retry sweep requeued entries", "count", count)
	}
}

// reclaimSweep requeues PROCESSING entries stuck past the staleness
// threshold, counting the lost attempt against their retry budget.
func (d *Dispatcher) reclaimSweep(ctx context.Context) {
	count, err := d.store.ReclaimStale(ctx, time.Now().Add(-d.cfg.StaleAfter))
	if err != nil {
		d.logger.ErrorContext(ctx, "reclaim sweep failed", "error", err)
		return
	}
	if count > 0 {
		d.logger.WarnContext(ctx, "reclaimed stale processing entries", "count", count)
	}
}

// cleanupSweep purges SENT entries older than the retention window. Only
// terminal successes are deleted; failure history stays for inspection.
func (d *Dispatcher) cleanupSweep(ctx context.Context) {
	count, err := d.store.DeleteSentBefore(ctx, time.Now().Add(-d.cfg.Retention))
	if err != nil {
		d.logger.ErrorContext(ctx, "cleanup sweep failed", "error", err)
		return
	}
	if count > 0 {
		d.logger.InfoContext(ctx, "cleanup sweep deleted sent entries", "count", count)
	}
}

func (d *Dispatcher) updateQueueDepth(ctx context.Context) {
	depth, err := d.store.CountReady(ctx, time.Now())
	if err != nil {
		d.logger.WarnContext(ctx, "queue depth probe failed", "error", err)
		return
	}
	d.metrics.SetQueueDepth(depth)
}
