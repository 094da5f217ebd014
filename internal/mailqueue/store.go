package mailqueue

import (
	"context"
	"time"
)

// Store persists queue entries. Implementations are pure I/O; the dispatcher
// owns the state machine rules.
//
// ClaimReady is the only racing operation: the flip to PROCESSING must be
// atomic relative to the readiness query so two concurrent dispatchers never
// claim the same entry.
type Store interface {
	// Enqueue inserts a new entry.
	Enqueue(ctx context.Context, entry *Entry) error

	// FindByID returns one entry or sentinel.ErrNotFound.
	FindByID(ctx context.Context, id string) (*Entry, error)

	// List returns entries filtered by status (empty = all), newest first.
	List(ctx context.Context, status Status, limit, offset int) ([]*Entry, error)

	// CountReady returns how many entries are eligible for dispatch at now.
	CountReady(ctx context.Context, now time.Time) (int, error)

	// ClaimReady atomically selects up to limit entries with status PENDING,
	// or SCHEDULED with scheduled_date <= now, ordered by priority ascending
	// then created_date ascending, flips them to PROCESSING, and returns
	// them already flipped.
	ClaimReady(ctx context.Context, now time.Time, limit int) ([]*Entry, error)

	// MarkSent records a successful delivery: status SENT, sent_date set,
	// error cleared. Only PROCESSING entries may be marked sent; anything
	// else returns sentinel.ErrInvalidState.
	MarkSent(ctx context.Context, id string, sentAt time.Time) error

	// MarkFailed records a failed attempt: retry_count incremented, status
	// FAILED, error message recorded. Only valid from PROCESSING.
	MarkFailed(ctx context.Context, id string, reason string) error

	// Cancel moves a PENDING or SCHEDULED entry to CANCELLED.
	Cancel(ctx context.Context, id string) error

	// RequeueRetriable resets FAILED entries with retries remaining back to
	// PENDING and returns how many were requeued. Terminal entries are
	// untouched.
	RequeueRetriable(ctx context.Context) (int, error)

	// DeleteSentBefore permanently removes SENT entries created before
	// cutoff, returning the count. Rows in any other status survive
	// regardless of age.
	DeleteSentBefore(ctx context.Context, cutoff time.Time) (int, error)

	// ReclaimStale handles entries stuck in PROCESSING since before
	// olderThan (crashed worker, lost SMTP connection): the attempt counts
	// as failed, and entries with retries remaining go back to PENDING
	// while exhausted ones become terminal FAILED. Returns the number
	// reclaimed.
	ReclaimStale(ctx context.Context, olderThan time.Time) (int, error)

	// CampaignCounts returns (sent, failed, pending-or-in-flight) totals
	// for a campaign's entries.
	CampaignCounts(ctx context.Context, campaignID string) (sent, failed, pending int, err error)

	// CancelByCampaign cancels all not-yet-terminal entries of a campaign
	// and returns the count.
	CancelByCampaign(ctx context.Context, campaignID string) (int, error)
}
