package settings

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"treasurehunt/internal/settings/models"
	"treasurehunt/internal/platform/database"
	"treasurehunt/pkg/platform/sentinel"
)

// PostgresStore persists settings in the app_settings table.
type PostgresStore struct {
	db database.Querier
}

// NewPostgres constructs a PostgreSQL-backed settings store.
func NewPostgres(db database.Querier) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Get(ctx context.Context, key string) (*models.AppSetting, error) {
	var setting models.AppSetting
	err := s.db.QueryRowContext(ctx, `
		SELECT key, value, updated_at FROM app_settings WHERE key = $1
	`, key).Scan(&setting.Key, &setting.Value, &setting.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get setting: %w", err)
	}
	return &setting, nil
}

func (s *PostgresStore) Set(ctx context.Context, key, value string) (*models.AppSetting, error) {
	setting := models.AppSetting{Key: key, Value: value, UpdatedAt: time.Now()}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO app_settings (key, value, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`, setting.Key, setting.Value, setting.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("set setting: %w", err)
	}
	return &setting, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*models.AppSetting, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT key, value, updated_at FROM app_settings ORDER BY key
	`)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	defer rows.Close()

	var out []*models.AppSetting
	for rows.Next() {
		var setting models.AppSetting
		if err := rows.Scan(&setting.Key, &setting.Value, &setting.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan setting: %w", err)
		}
		out = append(out, &setting)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate settings: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Delete(ctx context.Context, key string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM app_settings WHERE key = $1`, key)
	if err != nil {
		return fmt.Errorf("delete setting: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
