package mailqueue

import (
	"context"
	"database/sql/driver"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"treasurehunt/pkg/platform/sentinel"
)

var entryTestColumns = []string{
	"id", "recipient_email", "recipient_name", "subject", "body", "email_type", "status",
	"priority", "retry_count", "max_retries", "created_date", "updated_date", "scheduled_date",
	"sent_date", "error_message", "registration_id", "campaign_id", "template_name", "template_vars",
}

func entryRowValues(id string, status Status, priority int, created time.Time) []driver.Value {
	return []driver.Value{
		id, "hunter@example.com", "Hunter", "subject", "body", string(TypeReminder), string(status),
		priority, 0, 3, created, created, nil,
		nil, "", nil, nil, "", []byte(`{}`),
	}
}

func TestPostgresClaimReadyFlipsAndOrders(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()
	store := NewPostgres(db)

	now := time.Now()
	// RETURNING rows arrive in storage order; the store re-sorts them.
	rows := sqlmock.NewRows(entryTestColumns).
		AddRow(entryRowValues("low", StatusProcessing, 8, now.Add(-time.Hour))...).
		AddRow(entryRowValues("urgent", StatusProcessing, 1, now)...)
	mock.ExpectQuery(`UPDATE email_queue\s+SET status = 'PROCESSING'`).
		WithArgs(sqlmock.AnyArg(), 10).
		WillReturnRows(rows)

	claimed, err := store.ClaimReady(context.Background(), now, 10)
	require.NoError(t, err)
	require.Len(t, claimed, 2)
	assert.Equal(t, "urgent", claimed[0].ID)
	assert.Equal(t, "low", claimed[1].ID)
	assert.Equal(t, StatusProcessing, claimed[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresMarkSentTransitions(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()
	store := NewPostgres(db)
	ctx := context.Background()

	sentAt := time.Now()
	mock.ExpectExec(`UPDATE email_queue\s+SET status = 'SENT'`).
		WithArgs("e1", sentAt).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, store.MarkSent(ctx, "e1", sentAt))

	// Conditional update misses: existing row in the wrong state.
	mock.ExpectExec(`UPDATE email_queue\s+SET status = 'SENT'`).
		WithArgs("e2", sentAt).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("e2").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	assert.ErrorIs(t, store.MarkSent(ctx, "e2", sentAt), sentinel.ErrInvalidState)

	// Conditional update misses: row does not exist at all.
	mock.ExpectExec(`UPDATE email_queue\s+SET status = 'SENT'`).
		WithArgs("e3", sentAt).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("e3").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	assert.ErrorIs(t, store.MarkSent(ctx, "e3", sentAt), sentinel.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresMarkFailedIncrementsRetry(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()
	store := NewPostgres(db)

	mock.ExpectExec(`UPDATE email_queue\s+SET status = 'FAILED', retry_count = retry_count \+ 1`).
		WithArgs("e1", "smtp timeout").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.MarkFailed(context.Background(), "e1", "smtp timeout"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresEnqueueAssignsID(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()
	store := NewPostgres(db)

	mock.ExpectExec(`INSERT INTO email_queue`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	entry := &Entry{
		RecipientEmail: "hunter@example.com",
		Subject:        "subject",
		Type:           TypeWelcome,
		Status:         StatusPending,
		Priority:       DefaultPriority,
		MaxRetries:     DefaultMaxRetries,
	}
	require.NoError(t, store.Enqueue(context.Background(), entry))
	assert.NotEmpty(t, entry.ID)
	assert.False(t, entry.CreatedDate.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresFindByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()
	store := NewPostgres(db)

	mock.ExpectQuery(`SELECT .+ FROM email_queue WHERE id = \$1`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(entryTestColumns))

	_, err = store.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRequeueRetriableReturnsCount(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()
	store := NewPostgres(db)

	mock.ExpectExec(`UPDATE email_queue\s+SET status = 'PENDING'`).
		WillReturnResult(sqlmock.NewResult(0, 4))

	count, err := store.RequeueRetriable(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCampaignCounts(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()
	store := NewPostgres(db)

	mock.ExpectQuery(`SELECT\s+COUNT\(\*\) FILTER`).
		WithArgs("camp-1").
		WillReturnRows(sqlmock.NewRows([]string{"sent", "failed", "pending"}).AddRow(7, 2, 1))

	sent, failed, pending, err := store.CampaignCounts(context.Background(), "camp-1")
	require.NoError(t, err)
	assert.Equal(t, 7, sent)
	assert.Equal(t, 2, failed)
	assert.Equal(t, 1, pending)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresFindByIDRejectsUnknownEnums(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()
	store := NewPostgres(db)
	ctx := context.Background()

	// A row whose status column drifted outside the enumeration must not
	// come back as a live entry.
	badStatus := entryRowValues("e1", Status("SHIPPED"), 5, time.Now())
	mock.ExpectQuery(`SELECT .+ FROM email_queue WHERE id`).
		WithArgs("e1").
		WillReturnRows(sqlmock.NewRows(entryTestColumns).AddRow(badStatus...))
	_, err = store.FindByID(ctx, "e1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown queue status")

	badType := entryRowValues("e2", StatusPending, 5, time.Now())
	badType[5] = "carrier_pigeon"
	mock.ExpectQuery(`SELECT .+ FROM email_queue WHERE id`).
		WithArgs("e2").
		WillReturnRows(sqlmock.NewRows(entryTestColumns).AddRow(badType...))
	_, err = store.FindByID(ctx, "e2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown queue entry type")

	assert.NoError(t, mock.ExpectationsWereMet())
}
