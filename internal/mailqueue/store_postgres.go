package mailqueue

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"treasurehunt/internal/platform/database"
	"treasurehunt/pkg/platform/sentinel"
)

const entryColumns = `id, recipient_email, recipient_name, subject, body, email_type, status,
	priority, retry_count, max_retries, created_date, updated_date, scheduled_date,
	sent_date, error_message, registration_id, campaign_id, template_name, template_vars`

// PostgresStore persists queue entries in PostgreSQL.
// This store is pure I/O; retry policy and readiness rules live in the
// dispatcher and service, the store only enforces state-transition atomicity.
type PostgresStore struct {
	db database.Querier
}

// NewPostgres constructs a PostgreSQL-backed queue store.
func NewPostgres(db database.Querier) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Enqueue(ctx context.Context, entry *Entry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedDate.IsZero() {
		entry.CreatedDate = time.Now()
	}
	entry.UpdatedDate = entry.CreatedDate

	vars, err := json.Marshal(entry.TemplateVars)
	if err != nil {
		return fmt.Errorf("marshal template vars: %w", err)
	}
	query := `
		INSERT INTO email_queue (` + entryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, NULLIF($16, ''), NULLIF($17, ''), $18, $19)
	`
	_, err = s.db.ExecContext(ctx, query,
		entry.ID,
		entry.RecipientEmail,
		entry.RecipientName,
		entry.Subject,
		entry.Body,
		entry.Type,
		entry.Status,
		entry.Priority,
		entry.RetryCount,
		entry.MaxRetries,
		entry.CreatedDate,
		entry.UpdatedDate,
		entry.ScheduledDate,
		entry.SentDate,
		entry.ErrorMessage,
		entry.RegistrationID,
		entry.CampaignID,
		entry.TemplateName,
		vars,
	)
	if err != nil {
		return fmt.Errorf("enqueue email: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id string) (*Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM email_queue WHERE id = $1`
	entry, err := scanEntry(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find email by id: %w", err)
	}
	return entry, nil
}

func (s *PostgresStore) List(ctx context.Context, status Status, limit, offset int) ([]*Entry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM email_queue
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_date DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := s.db.QueryContext(ctx, query, string(status), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list emails: %w", err)
	}
	defer rows.Close()
	return collectEntries(rows)
}

func (s *PostgresStore) CountReady(ctx context.Context, now time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM email_queue
		WHERE status = 'PENDING' OR (status = 'SCHEDULED' AND scheduled_date <= $1)
	`
	var count int
	if err := s.db.QueryRowContext(ctx, query, now).Scan(&count); err != nil {
		return 0, fmt.Errorf("count ready emails: %w", err)
	}
	return count, nil
}

// ClaimReady atomically flips a batch of ready entries to PROCESSING and
// returns them. SKIP LOCKED lets concurrent dispatchers claim disjoint
// batches without serializing on each other.
func (s *PostgresStore) ClaimReady(ctx context.Context, now time.Time, limit int) ([]*Entry, error) {
	query := `
		UPDATE email_queue
		SET status = 'PROCESSING', updated_date = $1
		WHERE id IN (
			SELECT id
			FROM email_queue
			WHERE status = 'PENDING' OR (status = 'SCHEDULED' AND scheduled_date <= $1)
			ORDER BY priority ASC, created_date ASC
			LIMIT $2
			FOR UPDATE SKIP LOCKED
		)
		RETURNING ` + entryColumns + `
	`
	rows, err := s.db.QueryContext(ctx, query, now, limit)
	if err != nil {
		return nil, fmt.Errorf("claim ready emails: %w", err)
	}
	defer rows.Close()

	entries, err := collectEntries(rows)
	if err != nil {
		return nil, err
	}
	sortClaimed(entries)
	return entries, nil
}

func (s *PostgresStore) MarkSent(ctx context.Context, id string, sentAt time.Time) error {
	query := `
		UPDATE email_queue
		SET status = 'SENT', sent_date = $2, error_message = '', updated_date = $2
		WHERE id = $1 AND status = 'PROCESSING'
	`
	result, err := s.db.ExecContext(ctx, query, id, sentAt)
	if err != nil {
		return fmt.Errorf("mark email sent: %w", err)
	}
	return s.checkTransition(ctx, result, id)
}

func (s *PostgresStore) MarkFailed(ctx context.Context, id string, reason string) error {
	query := `
		UPDATE email_queue
		SET status = 'FAILED', retry_count = retry_count + 1, error_message = $2, updated_date = NOW()
		WHERE id = $1 AND status = 'PROCESSING'
	`
	result, err := s.db.ExecContext(ctx, query, id, reason)
	if err != nil {
		return fmt.Errorf("mark email failed: %w", err)
	}
	return s.checkTransition(ctx, result, id)
}

func (s *PostgresStore) Cancel(ctx context.Context, id string) error {
	query := `
		UPDATE email_queue
		SET status = 'CANCELLED', updated_date = NOW()
		WHERE id = $1 AND status IN ('PENDING', 'SCHEDULED')
	`
	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("cancel email: %w", err)
	}
	return s.checkTransition(ctx, result, id)
}

func (s *PostgresStore) RequeueRetriable(ctx context.Context) (int, error) {
	query := `
		UPDATE email_queue
		SET status = 'PENDING', updated_date = NOW()
		WHERE status = 'FAILED' AND retry_count < max_retries
	`
	result, err := s.db.ExecContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("requeue retriable emails: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("requeue retriable rows affected: %w", err)
	}
	return int(rows), nil
}

func (s *PostgresStore) DeleteSentBefore(ctx context.Context, cutoff time.Time) (int, error) {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM email_queue WHERE status = 'SENT' AND created_date < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete sent emails: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete sent rows affected: %w", err)
	}
	return int(rows), nil
}

// ReclaimStale requeues PROCESSING entries that have not progressed since
// olderThan. Entries out of retries go to FAILED instead of PENDING.
func (s *PostgresStore) ReclaimStale(ctx context.Context, olderThan time.Time) (int, error) {
	query := `
		UPDATE email_queue
		SET retry_count = retry_count + 1,
			error_message = 'reclaimed: processing timed out',
			status = CASE WHEN retry_count + 1 < max_retries THEN 'PENDING' ELSE 'FAILED' END,
			updated_date = NOW()
		WHERE status = 'PROCESSING' AND updated_date < $1
	`
	result, err := s.db.ExecContext(ctx, query, olderThan)
	if err != nil {
		return 0, fmt.Errorf("reclaim stale emails: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reclaim stale rows affected: %w", err)
	}
	return int(rows), nil
}

func (s *PostgresStore) CampaignCounts(ctx context.Context, campaignID string) (sent, failed, pending int, err error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE status = 'SENT'),
			COUNT(*) FILTER (WHERE status = 'FAILED'),
			COUNT(*) FILTER (WHERE status NOT IN ('SENT', 'FAILED', 'CANCELLED'))
		FROM email_queue
		WHERE campaign_id = $1
	`
	if err := s.db.QueryRowContext(ctx, query, campaignID).Scan(&sent, &failed, &pending); err != nil {
		return 0, 0, 0, fmt.Errorf("campaign counts: %w", err)
	}
	return sent, failed, pending, nil
}

func (s *PostgresStore) CancelByCampaign(ctx context.Context, campaignID string) (int, error) {
	query := `
		UPDATE email_queue
		SET status = 'CANCELLED', updated_date = NOW()
		WHERE campaign_id = $1
		  AND (status IN ('PENDING', 'SCHEDULED') OR (status = 'FAILED' AND retry_count < max_retries))
	`
	result, err := s.db.ExecContext(ctx, query, campaignID)
	if err != nil {
		return 0, fmt.Errorf("cancel campaign emails: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("cancel campaign rows affected: %w", err)
	}
	return int(rows), nil
}

// checkTransition distinguishes a missing row from a row in the wrong state
// after a conditional UPDATE matched nothing.
func (s *PostgresStore) checkTransition(ctx context.Context, result sql.Result, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("transition rows affected: %w", err)
	}
	if rows > 0 {
		return nil
	}
	var exists bool
	if err := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM email_queue WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("check email exists: %w", err)
	}
	if !exists {
		return sentinel.ErrNotFound
	}
	return sentinel.ErrInvalidState
}

// sortClaimed restores dispatch order. UPDATE ... RETURNING does not
// preserve the locking subquery's ORDER BY.
func sortClaimed(entries []*Entry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Priority != entries[j].Priority {
			return entries[i].Priority < entries[j].Priority
		}
		return entries[i].CreatedDate.Before(entries[j].CreatedDate)
	})
}

type entryRow interface {
	Scan(dest ...any) error
}

func scanEntry(row entryRow) (*Entry, error) {
	var entry Entry
	var rawType, rawStatus string
	var scheduled, sent sql.NullTime
	var registrationID, campaignID sql.NullString
	var vars []byte
	err := row.Scan(
		&entry.ID,
		&entry.RecipientEmail,
		&entry.RecipientName,
		&entry.Subject,
		&entry.Body,
		&rawType,
		&rawStatus,
		&entry.Priority,
		&entry.RetryCount,
		&entry.MaxRetries,
		&entry.CreatedDate,
		&entry.UpdatedDate,
		&scheduled,
		&sent,
		&entry.ErrorMessage,
		&registrationID,
		&campaignID,
		&entry.TemplateName,
		&vars,
	)
	if err != nil {
		return nil, err
	}
	if entry.Type, err = ParseType(rawType); err != nil {
		return nil, err
	}
	if entry.Status, err = ParseStatus(rawStatus); err != nil {
		return nil, err
	}
	if scheduled.Valid {
		entry.ScheduledDate = &scheduled.Time
	}
	if sent.Valid {
		entry.SentDate = &sent.Time
	}
	entry.RegistrationID = registrationID.String
	entry.CampaignID = campaignID.String
	if len(vars) > 0 {
		if err := json.Unmarshal(vars, &entry.TemplateVars); err != nil {
			return nil, fmt.Errorf("unmarshal template vars: %w", err)
		}
	}
	return &entry, nil
}

func collectEntries(rows *sql.Rows) ([]*Entry, error) {
	var entries []*Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan email entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate email entries: %w", err)
	}
	return entries, nil
}
