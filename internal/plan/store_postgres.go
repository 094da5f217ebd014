package plan

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"treasurehunt/internal/plan/models"
	"treasurehunt/internal/platform/database"
	"treasurehunt/pkg/platform/sentinel"
)

const planColumns = `id, name, description, location, duration_days, price_cents, capacity,
	start_date, status, image_path, created_date`

// PostgresStore persists plans in PostgreSQL.
type PostgresStore struct {
	db database.Querier
}

// NewPostgres constructs a PostgreSQL-backed plan store.
func NewPostgres(db database.Querier) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, p *models.Plan) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedDate.IsZero() {
		p.CreatedDate = time.Now()
	}
	query := `
		INSERT INTO plans (` + planColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := s.db.ExecContext(ctx, query,
		p.ID, p.Name, p.Description, p.Location, p.DurationDays, p.PriceCents,
		p.Capacity, p.StartDate, p.Status, p.ImagePath, p.CreatedDate,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create plan: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id string) (*models.Plan, error) {
	query := `SELECT ` + planColumns + ` FROM plans WHERE id = $1`
	p, err := scanPlan(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find plan by id: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) List(ctx context.Context, status models.PlanStatus, limit, offset int) ([]*models.Plan, error) {
	query := `
		SELECT ` + planColumns + `
		FROM plans
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_date DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := s.db.QueryContext(ctx, query, string(status), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	defer rows.Close()

	var out []*models.Plan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan plan: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate plans: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Update(ctx context.Context, p *models.Plan) error {
	query := `
		UPDATE plans
		SET name = $2, description = $3, location = $4, duration_days = $5,
			price_cents = $6, capacity = $7, start_date = $8, status = $9, image_path = $10
		WHERE id = $1
	`
	result, err := s.db.ExecContext(ctx, query,
		p.ID, p.Name, p.Description, p.Location, p.DurationDays, p.PriceCents,
		p.Capacity, p.StartDate, p.Status, p.ImagePath,
	)
	if err != nil {
		return fmt.Errorf("update plan: %w", err)
	}
	return requireRow(result)
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM plans WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete plan: %w", err)
	}
	return requireRow(result)
}

func requireRow(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

type planRow interface {
	Scan(dest ...any) error
}

func scanPlan(row planRow) (*models.Plan, error) {
	var p models.Plan
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.Location, &p.DurationDays, &p.PriceCents,
		&p.Capacity, &p.StartDate, &p.Status, &p.ImagePath, &p.CreatedDate,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
