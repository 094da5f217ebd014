package database

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"

	"treasurehunt/internal/platform/metrics"
)

// Querier is the subset of *sql.DB the stores use. Production wraps the
// pool in Instrumented; tests pass a bare *sql.DB.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// Instrumented times every store call through metrics.Track, so slow
// queries show up in the slow-query counter and the log.
type Instrumented struct {
	db      *sql.DB
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// Instrument wraps the pool with query timing.
func Instrument(db *sql.DB, m *metrics.Metrics, logger *slog.Logger) *Instrumented {
	return &Instrumented{db: db, metrics: m, logger: logger}
}

func (q *Instrumented) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	var res sql.Result
	err := metrics.Track(ctx, q.metrics, q.logger, operationOf(query), func(ctx context.Context) error {
		var err error
		res, err = q.db.ExecContext(ctx, query, args...)
		return err
	})
	return res, err
}

func (q *Instrumented) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	var rows *sql.Rows
	err := metrics.Track(ctx, q.metrics, q.logger, operationOf(query), func(ctx context.Context) error {
		var err error
		rows, err = q.db.QueryContext(ctx, query, args...)
		return err
	})
	return rows, err
}

func (q *Instrumented) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	var row *sql.Row
	_ = metrics.Track(ctx, q.metrics, q.logger, operationOf(query), func(ctx context.Context) error {
		row = q.db.QueryRowContext(ctx, query, args...)
		return nil
	})
	return row
}

func (q *Instrumented) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	return q.db.BeginTx(ctx, opts)
}

// operationOf condenses a SQL statement into a short label for the slow
// log. The leading keywords are enough to identify the statement.
func operationOf(query string) string {
	fields := strings.Fields(query)
	if len(fields) > 4 {
		fields = fields[:4]
	}
	return strings.Join(fields, " ")
}
