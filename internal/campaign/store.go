// Package campaign manages email campaigns: admin-authored blasts that fan
// out into queue entries and track aggregate delivery counts.
package campaign

import (
	"context"

	"treasurehunt/internal/campaign/models"
)

// Store persists campaigns.
type Store interface {
	// Create inserts a campaign, assigning ID and CreatedDate when unset.
	Create(ctx context.Context, c *models.Campaign) error

	// FindByID returns one campaign or sentinel.ErrNotFound.
	FindByID(ctx context.Context, id string) (*models.Campaign, error)

	// List returns campaigns newest first, optionally filtered by status.
	List(ctx context.Context, status models.CampaignStatus, limit, offset int) ([]*models.Campaign, error)

	// Update replaces a campaign's mutable fields.
	Update(ctx context.Context, c *models.Campaign) error

	// Delete removes a campaign row.
	Delete(ctx context.Context, id string) error
}
