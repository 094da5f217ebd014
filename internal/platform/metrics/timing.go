package metrics

import (
	"context"
	"log/slog"
	"time"
)

// SlowThreshold marks store or service calls worth flagging.
const SlowThreshold = 500 * time.Millisecond

// Track wraps a repository or service call, recording elapsed time and
// counting it as slow when it crosses the threshold. It replaces the
// aspect-style interception the app previously relied on: callers name the
// operation explicitly.
func Track(ctx context.Context, m *Metrics, logger *slog.Logger, operation string, fn func(ctx context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)

	if elapsed > SlowThreshold {
		m.IncSlowQuery()
		logger.WarnContext(ctx, "slow operation",
			"operation", operation,
			"elapsed_ms", elapsed.Milliseconds(),
		)
	}
	return err
}
