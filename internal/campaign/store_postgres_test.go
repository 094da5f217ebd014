package campaign

import (
	"context"
	"database/sql/driver"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"treasurehunt/internal/campaign/models"
)

var campaignTestColumns = []string{
	"id", "name", "subject", "body", "template_name", "recipients", "priority", "status",
	"total_count", "sent_count", "failed_count", "pending_count", "created_date", "scheduled_date",
}

func campaignRowValues(id string, status models.CampaignStatus) []driver.Value {
	return []driver.Value{
		id, "Spring opener", "subject", "body", nil, "{maya@example.com,levi@example.com}", 5, string(status),
		2, 0, 0, 0, time.Now(), nil,
	}
}

func TestPostgresFindByIDScansCampaign(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()
	store := NewPostgres(db)

	mock.ExpectQuery(`SELECT .+ FROM campaigns WHERE id`).
		WithArgs("c1").
		WillReturnRows(sqlmock.NewRows(campaignTestColumns).AddRow(campaignRowValues("c1", models.CampaignDraft)...))

	c, err := store.FindByID(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, "c1", c.ID)
	assert.Equal(t, models.CampaignDraft, c.Status)
	assert.Equal(t, []string{"maya@example.com", "levi@example.com"}, c.Recipients)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresFindByIDRejectsUnknownStatus(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()
	store := NewPostgres(db)

	mock.ExpectQuery(`SELECT .+ FROM campaigns WHERE id`).
		WithArgs("c1").
		WillReturnRows(sqlmock.NewRows(campaignTestColumns).AddRow(campaignRowValues("c1", models.CampaignStatus("LAUNCHED"))...))

	_, err = store.FindByID(context.Background(), "c1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown campaign status")
	assert.NoError(t, mock.ExpectationsWereMet())
}
