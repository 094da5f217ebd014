// Package plan implements event plan management: the public catalog and the
// admin CRUD surface behind it.
package plan

import (
	"context"

	"treasurehunt/internal/plan/models"
)

// Store persists plans. Implementations are pure I/O; availability and
// deletion rules live in the service.
type Store interface {
	// Create inserts a new plan. sentinel.ErrConflict on duplicate id.
	Create(ctx context.Context, p *models.Plan) error

	// FindByID returns one plan or sentinel.ErrNotFound.
	FindByID(ctx context.Context, id string) (*models.Plan, error)

	// List returns plans filtered by status (empty = all), newest first.
	List(ctx context.Context, status models.PlanStatus, limit, offset int) ([]*models.Plan, error)

	// Update replaces a stored plan. sentinel.ErrNotFound if absent.
	Update(ctx context.Context, p *models.Plan) error

	// Delete removes a plan. sentinel.ErrNotFound if absent.
	Delete(ctx context.Context, id string) error
}
