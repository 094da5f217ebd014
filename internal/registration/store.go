// Package registration implements plan bookings: individual and team
// registrations, their lifecycle, and the capacity rules around them.
package registration

import (
	"context"

	"treasurehunt/internal/registration/models"
)

// Store persists registrations together with their team members. A
// registration owns its members: they are written, loaded, and deleted as
// one unit.
type Store interface {
	// Create inserts a registration and its members atomically.
	Create(ctx context.Context, reg *models.Registration) error

	// FindByID returns one registration with members, or
	// sentinel.ErrNotFound.
	FindByID(ctx context.Context, id string) (*models.Registration, error)

	// List returns registrations newest first, optionally filtered by
	// status and plan (empty = no filter). Members are included.
	List(ctx context.Context, status models.RegistrationStatus, planID string, limit, offset int) ([]*models.Registration, error)

	// UpdateStatus moves a registration to the given status.
	UpdateStatus(ctx context.Context, id string, status models.RegistrationStatus) error

	// Delete removes a registration and its members.
	Delete(ctx context.Context, id string) error

	// CountActiveByPlan counts a plan's registrations that still occupy a
	// spot, meaning every status except CANCELLED.
	CountActiveByPlan(ctx context.Context, planID string) (int, error)
}
