package plan

import (
	"context"
	"errors"
	"log/slog"

	"treasurehunt/internal/plan/models"
	"treasurehunt/internal/validation"
	dErrors "treasurehunt/pkg/domain-errors"
	"treasurehunt/pkg/platform/pagination"
	"treasurehunt/pkg/platform/sentinel"
)

// RegistrationCounter reports how many active (not cancelled) registrations
// a plan has. Implemented by the registration service.
type RegistrationCounter interface {
	CountActiveByPlan(ctx context.Context, planID string) (int, error)
}

// WithAvailability pairs a plan with its current registration load.
type WithAvailability struct {
	Plan            *models.Plan `json:"plan"`
	RegisteredCount int          `json:"registered_count"`
	SpotsLeft       int          `json:"spots_left"`
	Available       bool         `json:"available"`
}

// Service owns plan business rules: validation, availability, and the
// no-delete-while-registered constraint.
type Service struct {
	store     Store
	counter   RegistrationCounter
	validator *validation.Service
	logger    *slog.Logger
}

// NewService constructs the plan service.
func NewService(store Store, counter RegistrationCounter, validator *validation.Service, logger *slog.Logger) *Service {
	return &Service{store: store, counter: counter, validator: validator, logger: logger}
}

// Create validates and stores a new plan. Plans default to DRAFT so they
// stay off the public catalog until an admin activates them.
func (s *Service) Create(ctx context.Context, p *models.Plan) (*models.Plan, error) {
	if p == nil {
		return nil, dErrors.New(dErrors.CodeValidation, "plan data is required")
	}
	if p.Status == "" {
		p.Status = models.PlanDraft
	}
	if !p.Status.IsValid() {
		return nil, dErrors.Newf(dErrors.CodeValidation, "unknown plan status %q", p.Status)
	}
	if errs := s.validator.ValidatePlan(p); len(errs) > 0 {
		return nil, validation.ValidateAndThrow(errs, "plan")
	}
	if err := s.store.Create(ctx, p); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "create plan")
	}
	s.logger.InfoContext(ctx, "plan created", "plan_id", p.ID, "name", p.Name, "status", p.Status)
	return p, nil
}

// Get returns any plan by id, regardless of status. Admin use.
func (s *Service) Get(ctx context.Context, id string) (*models.Plan, error) {
	p, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Newf(dErrors.CodeNotFound, "plan %s not found", id)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "find plan")
	}
	return p, nil
}

// GetPublic returns an active plan with availability. Draft and archived
// plans are invisible to visitors, indistinguishable from missing ones.
func (s *Service) GetPublic(ctx context.Context, id string) (*WithAvailability, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Status != models.PlanActive {
		return nil, dErrors.Newf(dErrors.CodeNotFound, "plan %s not found", id)
	}
	return s.withAvailability(ctx, p)
}

// ListPublic returns a page of active plans with availability.
func (s *Service) ListPublic(ctx context.Context, page, limit int) ([]*WithAvailability, error) {
	pg := pagination.Normalize(page, limit)
	plans, err := s.store.List(ctx, models.PlanActive, pg.Limit, pg.Offset())
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list plans")
	}
	out := make([]*WithAvailability, 0, len(plans))
	for _, p := range plans {
		wa, err := s.withAvailability(ctx, p)
		if err != nil {
			return nil, err
		}
		out = append(out, wa)
	}
	return out, nil
}

// List returns a page of plans in any status, optionally filtered. Admin
// use.
func (s *Service) List(ctx context.Context, statusRaw string, page, limit int) ([]*models.Plan, error) {
	var status models.PlanStatus
	if statusRaw != "" {
		parsed, err := models.ParsePlanStatus(statusRaw)
		if err != nil {
			return nil, err
		}
		status = parsed
	}
	pg := pagination.Normalize(page, limit)
	plans, err := s.store.List(ctx, status, pg.Limit, pg.Offset())
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list plans")
	}
	return plans, nil
}

// Update validates and replaces an existing plan.
func (s *Service) Update(ctx context.Context, p *models.Plan) (*models.Plan, error) {
	if p == nil || p.ID == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "plan id is required")
	}
	if !p.Status.IsValid() {
		return nil, dErrors.Newf(dErrors.CodeValidation, "unknown plan status %q", p.Status)
	}
	if errs := s.validator.ValidatePlan(p); len(errs) > 0 {
		return nil, validation.ValidateAndThrow(errs, "plan")
	}
	current, err := s.Get(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	p.CreatedDate = current.CreatedDate
	if p.ImagePath == "" {
		p.ImagePath = current.ImagePath
	}
	if err := s.store.Update(ctx, p); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "update plan")
	}
	s.logger.InfoContext(ctx, "plan updated", "plan_id", p.ID)
	return p, nil
}

// Delete removes a plan that has no registrations. Plans with any
// registration on record, cancelled ones included, are kept for history.
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	count, err := s.counter.CountActiveByPlan(ctx, id)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "count plan registrations")
	}
	if count > 0 {
		return dErrors.Newf(dErrors.CodeConflict, "plan has %d registrations and cannot be deleted", count)
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "delete plan")
	}
	s.logger.InfoContext(ctx, "plan deleted", "plan_id", id)
	return nil
}

// SetImagePath points a plan at its uploaded hero image. An empty path
// clears it.
func (s *Service) SetImagePath(ctx context.Context, id, path string) error {
	p, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	p.ImagePath = path
	if err := s.store.Update(ctx, p); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "update plan image")
	}
	return nil
}

func (s *Service) withAvailability(ctx context.Context, p *models.Plan) (*WithAvailability, error) {
	count, err := s.counter.CountActiveByPlan(ctx, p.ID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "count plan registrations")
	}
	spots := p.Capacity - count
	if spots < 0 {
		spots = 0
	}
	return &WithAvailability{
		Plan:            p,
		RegisteredCount: count,
		SpotsLeft:       spots,
		Available:       p.IsAvailable(count),
	}, nil
}
