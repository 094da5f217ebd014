// Package settings stores admin-editable runtime configuration as key/value
// rows with typed, default-carrying accessors.
package settings

import (
	"context"

	"treasurehunt/internal/settings/models"
)

// Store persists settings rows.
type Store interface {
	// Get returns one setting or sentinel.ErrNotFound.
	Get(ctx context.Context, key string) (*models.AppSetting, error)

	// Set inserts or replaces a setting and stamps UpdatedAt.
	Set(ctx context.Context, key, value string) (*models.AppSetting, error)

	// List returns all settings ordered by key.
	List(ctx context.Context) ([]*models.AppSetting, error)

	// Delete removes a setting or returns sentinel.ErrNotFound.
	Delete(ctx context.Context, key string) error
}
