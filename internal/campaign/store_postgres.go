package campaign

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"treasurehunt/internal/campaign/models"
	"treasurehunt/internal/platform/database"
	"treasurehunt/pkg/platform/sentinel"
)

// PostgresStore persists campaigns in the campaigns table.
type PostgresStore struct {
	db database.Querier
}

// NewPostgres constructs a PostgreSQL-backed campaign store.
func NewPostgres(db database.Querier) *PostgresStore {
	return &PostgresStore{db: db}
}

const campaignColumns = `id, name, subject, body, template_name, recipients, priority, status,
	total_count, sent_count, failed_count, pending_count, created_date, scheduled_date`

func (s *PostgresStore) Create(ctx context.Context, c *models.Campaign) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedDate.IsZero() {
		c.CreatedDate = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO campaigns (`+campaignColumns+`)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`,
		c.ID, c.Name, c.Subject, c.Body, c.TemplateName, pq.Array(c.Recipients),
		c.Priority, string(c.Status), c.TotalCount, c.SentCount, c.FailedCount,
		c.PendingCount, c.CreatedDate, c.ScheduledDate,
	)
	if err != nil {
		return fmt.Errorf("create campaign: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id string) (*models.Campaign, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+campaignColumns+` FROM campaigns WHERE id = $1
	`, id)
	c, err := scanCampaign(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find campaign: %w", err)
	}
	return c, nil
}

func (s *PostgresStore) List(ctx context.Context, status models.CampaignStatus, limit, offset int) ([]*models.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns`
	args := []any{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, string(status))
	}
	query += fmt.Sprintf(` ORDER BY created_date DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list campaigns: %w", err)
	}
	defer rows.Close()

	var out []*models.Campaign
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, fmt.Errorf("scan campaign: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate campaigns: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Update(ctx context.Context, c *models.Campaign) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE campaigns
		SET name = $2, subject = $3, body = $4, template_name = NULLIF($5, ''),
		    recipients = $6, priority = $7, status = $8, total_count = $9,
		    sent_count = $10, failed_count = $11, pending_count = $12,
		    scheduled_date = $13
		WHERE id = $1
	`,
		c.ID, c.Name, c.Subject, c.Body, c.TemplateName, pq.Array(c.Recipients),
		c.Priority, string(c.Status), c.TotalCount, c.SentCount, c.FailedCount,
		c.PendingCount, c.ScheduledDate,
	)
	if err != nil {
		return fmt.Errorf("update campaign: %w", err)
	}
	return requireCampaignRow(result)
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM campaigns WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete campaign: %w", err)
	}
	return requireCampaignRow(result)
}

func requireCampaignRow(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func scanCampaign(row interface{ Scan(dest ...any) error }) (*models.Campaign, error) {
	var (
		c            models.Campaign
		templateName sql.NullString
		status       string
		scheduled    sql.NullTime
	)
	err := row.Scan(
		&c.ID, &c.Name, &c.Subject, &c.Body, &templateName, pq.Array(&c.Recipients),
		&c.Priority, &status, &c.TotalCount, &c.SentCount, &c.FailedCount,
		&c.PendingCount, &c.CreatedDate, &scheduled,
	)
	if err != nil {
		return nil, err
	}
	c.TemplateName = templateName.String
	if c.Status, err = models.ParseCampaignStatus(status); err != nil {
		return nil, err
	}
	if scheduled.Valid {
		at := scheduled.Time
		c.ScheduledDate = &at
	}
	return &c, nil
}
