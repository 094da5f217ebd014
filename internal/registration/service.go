package registration

import (
	"context"
	"errors"
	"log/slog"
	"time"

	planmodels "treasurehunt/internal/plan/models"
	"treasurehunt/internal/registration/models"
	"treasurehunt/internal/settings"
	"treasurehunt/internal/validation"
	dErrors "treasurehunt/pkg/domain-errors"
	"treasurehunt/pkg/platform/pagination"
	"treasurehunt/pkg/platform/sentinel"
)

// defaultConfirmationWindow bounds how long a pending registration stays
// confirmable when no confirmation_window setting is stored.
const defaultConfirmationWindow = 72 * time.Hour

// PlanGetter resolves the plan a registration points at. Implemented by the
// plan service.
type PlanGetter interface {
	Get(ctx context.Context, id string) (*planmodels.Plan, error)
}

// Notifier enqueues the emails a registration lifecycle produces.
// Implemented by the mail queue service; delivery happens asynchronously.
type Notifier interface {
	EnqueueRegistrationConfirmation(ctx context.Context, reg *models.Registration, plan *planmodels.Plan) error
	EnqueueAdminNotification(ctx context.Context, reg *models.Registration, plan *planmodels.Plan) error
	EnqueueCancellation(ctx context.Context, reg *models.Registration, plan *planmodels.Plan) error
	EnqueueWelcome(ctx context.Context, reg *models.Registration, contactEmail string) error
}

// Settings supplies the runtime-tunable values the registration flow
// honors. Implemented by the settings service; the typed getters never
// fail, so a broken settings row degrades to the default.
type Settings interface {
	GetBool(ctx context.Context, key string, def bool) bool
	GetInt(ctx context.Context, key string, def int) int
	GetString(ctx context.Context, key, def string) string
	GetDuration(ctx context.Context, key string, def time.Duration) time.Duration
}

// Service owns the registration lifecycle: validation, the capacity check,
// and the notifications each transition produces.
type Service struct {
	store     Store
	plans     PlanGetter
	notifier  Notifier
	settings  Settings
	validator *validation.Service
	logger    *slog.Logger
}

// NewService constructs the registration service.
func NewService(store Store, plans PlanGetter, notifier Notifier, appSettings Settings, validator *validation.Service, logger *slog.Logger) *Service {
	return &Service{store: store, plans: plans, notifier: notifier, settings: appSettings, validator: validator, logger: logger}
}

// Register validates a new registration, checks plan availability, stores
// it, and queues the confirmation emails. The emails ride the queue; a
// delivery problem never fails the registration.
func (s *Service) Register(ctx context.Context, reg *models.Registration) (*models.Registration, error) {
	if errs := s.validator.ValidateRegistration(reg); len(errs) > 0 {
		return nil, validation.ValidateAndThrow(errs, "registration")
	}
	if !s.settings.GetBool(ctx, settings.KeyRegistrationOpen, true) {
		return nil, dErrors.New(dErrors.CodeBusinessRule, "registration is currently closed")
	}
	if reg.IsTeam() {
		maxTeam := s.settings.GetInt(ctx, settings.KeyMaxTeamSize, validation.MaxTeamSize)
		if len(reg.Members) > maxTeam {
			return nil, dErrors.Newf(dErrors.CodeBusinessRule, "teams are limited to %d members", maxTeam)
		}
	}

	plan, err := s.plans.Get(ctx, reg.PlanID)
	if err != nil {
		return nil, err
	}
	count, err := s.store.CountActiveByPlan(ctx, reg.PlanID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "count plan registrations")
	}
	if !plan.IsAvailable(count) {
		return nil, dErrors.Newf(dErrors.CodeBusinessRule, "plan %q is not open for registration", plan.Name)
	}

	reg.Status = models.StatusPending
	if err := s.store.Create(ctx, reg); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "create registration")
	}
	s.logger.InfoContext(ctx, "registration created",
		"registration_id", reg.ID, "plan_id", reg.PlanID, "type", reg.Type)

	if err := s.notifier.EnqueueRegistrationConfirmation(ctx, reg, plan); err != nil {
		s.logger.ErrorContext(ctx, "confirmation enqueue failed", "registration_id", reg.ID, "error", err)
	}
	if err := s.notifier.EnqueueAdminNotification(ctx, reg, plan); err != nil {
		s.logger.ErrorContext(ctx, "admin notification enqueue failed", "registration_id", reg.ID, "error", err)
	}
	return reg, nil
}

// Get returns one registration with its team members.
func (s *Service) Get(ctx context.Context, id string) (*models.Registration, error) {
	reg, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Newf(dErrors.CodeNotFound, "registration %s not found", id)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "find registration")
	}
	return reg, nil
}

// List returns a page of registrations, optionally filtered by status and
// plan. Admin use.
func (s *Service) List(ctx context.Context, statusRaw, planID string, page, limit int) ([]*models.Registration, error) {
	var status models.RegistrationStatus
	if statusRaw != "" {
		parsed, err := models.ParseRegistrationStatus(statusRaw)
		if err != nil {
			return nil, err
		}
		status = parsed
	}
	pg := pagination.Normalize(page, limit)
	regs, err := s.store.List(ctx, status, planID, pg.Limit, pg.Offset())
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list registrations")
	}
	return regs, nil
}

// Confirm moves a pending registration to CONFIRMED.
func (s *Service) Confirm(ctx context.Context, id string) (*models.Registration, error) {
	reg, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if reg.Status != models.StatusPending {
		return nil, dErrors.Newf(dErrors.CodeBusinessRule, "only pending registrations can be confirmed, current status is %s", reg.Status)
	}
	window := s.settings.GetDuration(ctx, settings.KeyConfirmationWindow, defaultConfirmationWindow)
	if time.Since(reg.CreatedDate) > window {
		return nil, dErrors.Newf(dErrors.CodeBusinessRule, "confirmation window of %s has passed", window)
	}
	if err := s.store.UpdateStatus(ctx, id, models.StatusConfirmed); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "confirm registration")
	}
	reg.Status = models.StatusConfirmed
	s.logger.InfoContext(ctx, "registration confirmed", "registration_id", id)

	contact := s.settings.GetString(ctx, settings.KeyContactEmail, "")
	if err := s.notifier.EnqueueWelcome(ctx, reg, contact); err != nil {
		s.logger.ErrorContext(ctx, "welcome enqueue failed", "registration_id", id, "error", err)
	}
	return reg, nil
}

// Cancel moves a registration to CANCELLED, frees its spot, and queues the
// cancellation notice.
func (s *Service) Cancel(ctx context.Context, id string) (*models.Registration, error) {
	reg, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if reg.Status == models.StatusCancelled {
		return nil, dErrors.New(dErrors.CodeBusinessRule, "registration is already cancelled")
	}
	if err := s.store.UpdateStatus(ctx, id, models.StatusCancelled); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "cancel registration")
	}
	reg.Status = models.StatusCancelled
	s.logger.InfoContext(ctx, "registration cancelled", "registration_id", id)

	if plan, err := s.plans.Get(ctx, reg.PlanID); err == nil {
		if err := s.notifier.EnqueueCancellation(ctx, reg, plan); err != nil {
			s.logger.ErrorContext(ctx, "cancellation enqueue failed", "registration_id", id, "error", err)
		}
	}
	return reg, nil
}

// Delete permanently removes a registration, its team members, and its
// uploaded documents.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Newf(dErrors.CodeNotFound, "registration %s not found", id)
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "delete registration")
	}
	s.logger.InfoContext(ctx, "registration deleted", "registration_id", id)
	return nil
}

// CountActiveByPlan reports how many spots a plan has taken. Satisfies the
// plan service's counter dependency.
func (s *Service) CountActiveByPlan(ctx context.Context, planID string) (int, error) {
	return s.store.CountActiveByPlan(ctx, planID)
}
