package registration

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"treasurehunt/internal/registration/models"
	"treasurehunt/internal/platform/database"
	"treasurehunt/pkg/platform/sentinel"
)

const registrationColumns = `id, plan_id, full_name, email, phone, age, registration_type,
	team_name, team_size, status, created_date`

// PostgresStore persists registrations in PostgreSQL. Team members live in
// their own table with ON DELETE CASCADE back to the registration.
type PostgresStore struct {
	db database.Querier
}

// NewPostgres constructs a PostgreSQL-backed registration store.
func NewPostgres(db database.Querier) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, reg *models.Registration) error {
	if reg.ID == "" {
		reg.ID = uuid.NewString()
	}
	if reg.CreatedDate.IsZero() {
		reg.CreatedDate = time.Now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create registration: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		INSERT INTO registrations (` + registrationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err = tx.ExecContext(ctx, query,
		reg.ID, reg.PlanID, reg.FullName, reg.Email, reg.Phone, reg.Age,
		reg.Type, reg.TeamName, reg.TeamSize, reg.Status, reg.CreatedDate,
	)
	if err != nil {
		return fmt.Errorf("insert registration: %w", err)
	}

	for i := range reg.Members {
		if reg.Members[i].ID == "" {
			reg.Members[i].ID = uuid.NewString()
		}
		reg.Members[i].RegistrationID = reg.ID
		_, err = tx.ExecContext(ctx, `
			INSERT INTO team_members (id, registration_id, full_name, email, age)
			VALUES ($1, $2, $3, $4, $5)
		`, reg.Members[i].ID, reg.ID, reg.Members[i].FullName, reg.Members[i].Email, reg.Members[i].Age)
		if err != nil {
			return fmt.Errorf("insert team member: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create registration: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id string) (*models.Registration, error) {
	query := `SELECT ` + registrationColumns + ` FROM registrations WHERE id = $1`
	reg, err := scanRegistration(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find registration by id: %w", err)
	}
	if err := s.loadMembers(ctx, reg); err != nil {
		return nil, err
	}
	return reg, nil
}

func (s *PostgresStore) List(ctx context.Context, status models.RegistrationStatus, planID string, limit, offset int) ([]*models.Registration, error) {
	query := `
		SELECT ` + registrationColumns + `
		FROM registrations
		WHERE ($1 = '' OR status = $1) AND ($2 = '' OR plan_id = $2)
		ORDER BY created_date DESC
		LIMIT $3 OFFSET $4
	`
	rows, err := s.db.QueryContext(ctx, query, string(status), planID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	defer rows.Close()

	var out []*models.Registration
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, fmt.Errorf("scan registration: %w", err)
		}
		out = append(out, reg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate registrations: %w", err)
	}
	for _, reg := range out {
		if err := s.loadMembers(ctx, reg); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *PostgresStore) UpdateStatus(ctx context.Context, id string, status models.RegistrationStatus) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE registrations SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("update registration status: %w", err)
	}
	return requireRow(result)
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	// team_members and uploaded_documents cascade on the foreign key.
	result, err := s.db.ExecContext(ctx, `DELETE FROM registrations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete registration: %w", err)
	}
	return requireRow(result)
}

func (s *PostgresStore) CountActiveByPlan(ctx context.Context, planID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM registrations WHERE plan_id = $1 AND status <> 'CANCELLED'`,
		planID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count registrations: %w", err)
	}
	return count, nil
}

func (s *PostgresStore) loadMembers(ctx context.Context, reg *models.Registration) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, registration_id, full_name, email, age
		FROM team_members
		WHERE registration_id = $1
		ORDER BY full_name
	`, reg.ID)
	if err != nil {
		return fmt.Errorf("load team members: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var m models.TeamMember
		if err := rows.Scan(&m.ID, &m.RegistrationID, &m.FullName, &m.Email, &m.Age); err != nil {
			return fmt.Errorf("scan team member: %w", err)
		}
		reg.Members = append(reg.Members, m)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate team members: %w", err)
	}
	return nil
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

type registrationRow interface {
	Scan(dest ...any) error
}

func scanRegistration(row registrationRow) (*models.Registration, error) {
	var reg models.Registration
	err := row.Scan(
		&reg.ID, &reg.PlanID, &reg.FullName, &reg.Email, &reg.Phone, &reg.Age,
		&reg.Type, &reg.TeamName, &reg.TeamSize, &reg.Status, &reg.CreatedDate,
	)
	if err != nil {
		return nil, err
	}
	return &reg, nil
}
