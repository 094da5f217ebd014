package campaign

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"treasurehunt/internal/campaign/models"
	"treasurehunt/internal/validation"
	dErrors "treasurehunt/pkg/domain-errors"
	"treasurehunt/pkg/platform/pagination"
	"treasurehunt/pkg/platform/sentinel"
)

// Queue is the slice of the mail queue campaigns need: fan-out, bulk
// cancel, and per-campaign delivery counts.
type Queue interface {
	ExpandCampaign(ctx context.Context, c *models.Campaign) (int, error)
	CancelCampaignEntries(ctx context.Context, campaignID string) (int, error)
	CampaignCounts(ctx context.Context, campaignID string) (sent, failed, pending int, err error)
	HasTemplate(name string) bool
}

// Service owns the campaign lifecycle. Queue entries are the delivery
// ground truth; campaign counts are refreshed from them on read.
type Service struct {
	store     Store
	queue     Queue
	validator *validation.Service
	logger    *slog.Logger
}

func NewService(store Store, queue Queue, validator *validation.Service, logger *slog.Logger) *Service {
	return &Service{store: store, queue: queue, validator: validator, logger: logger}
}

// Create stores a new campaign in DRAFT, or SCHEDULED when a scheduled
// date is set.
func (s *Service) Create(ctx context.Context, c *models.Campaign) (*models.Campaign, error) {
	if c == nil {
		return nil, dErrors.New(dErrors.CodeValidation, "campaign data is required")
	}
	if c.Priority == 0 {
		c.Priority = 5
	}
	if errs := s.validator.ValidateCampaign(c); len(errs) > 0 {
		return nil, validation.ValidateAndThrow(errs, "campaign")
	}
	if c.TemplateName != "" && !s.queue.HasTemplate(c.TemplateName) {
		return nil, dErrors.Newf(dErrors.CodeValidation, "unknown template %q", c.TemplateName)
	}

	c.Status = models.CampaignDraft
	if c.ScheduledDate != nil {
		c.Status = models.CampaignScheduled
	}
	c.TotalCount = len(c.Recipients)
	c.SentCount, c.FailedCount, c.PendingCount = 0, 0, 0

	if err := s.store.Create(ctx, c); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "create campaign")
	}
	s.logger.InfoContext(ctx, "campaign created", "campaign_id", c.ID, "status", c.Status, "recipients", c.TotalCount)
	return c, nil
}

// Get returns a campaign with its counts refreshed from the queue.
func (s *Service) Get(ctx context.Context, id string) (*models.Campaign, error) {
	c, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.refreshCounts(ctx, c)
}

// List returns campaigns newest first, optionally filtered by status.
func (s *Service) List(ctx context.Context, statusRaw string, page, limit int) ([]*models.Campaign, error) {
	var status models.CampaignStatus
	if statusRaw != "" {
		parsed, err := models.ParseCampaignStatus(statusRaw)
		if err != nil {
			return nil, err
		}
		status = parsed
	}
	params := pagination.Normalize(page, limit)
	out, err := s.store.List(ctx, status, params.Limit, params.Offset())
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list campaigns")
	}
	return out, nil
}

// Update replaces an editable campaign's content. Only DRAFT and SCHEDULED
// campaigns may change; anything later has queue entries in flight.
func (s *Service) Update(ctx context.Context, c *models.Campaign) (*models.Campaign, error) {
	if c == nil {
		return nil, dErrors.New(dErrors.CodeValidation, "campaign data is required")
	}
	existing, err := s.find(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	if existing.Status != models.CampaignDraft && existing.Status != models.CampaignScheduled {
		return nil, dErrors.Newf(dErrors.CodeBusinessRule, "campaign in status %s cannot be edited", existing.Status)
	}
	if c.Priority == 0 {
		c.Priority = existing.Priority
	}
	if errs := s.validator.ValidateCampaign(c); len(errs) > 0 {
		return nil, validation.ValidateAndThrow(errs, "campaign")
	}
	if c.TemplateName != "" && !s.queue.HasTemplate(c.TemplateName) {
		return nil, dErrors.Newf(dErrors.CodeValidation, "unknown template %q", c.TemplateName)
	}

	c.Status = models.CampaignDraft
	if c.ScheduledDate != nil {
		c.Status = models.CampaignScheduled
	}
	c.TotalCount = len(c.Recipients)
	c.CreatedDate = existing.CreatedDate
	c.SentCount, c.FailedCount, c.PendingCount = 0, 0, 0

	if err := s.store.Update(ctx, c); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "update campaign")
	}
	return c, nil
}

// Schedule moves a DRAFT campaign to SCHEDULED at a future time.
func (s *Service) Schedule(ctx context.Context, id string, at time.Time) (*models.Campaign, error) {
	c, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.Status != models.CampaignDraft {
		return nil, dErrors.Newf(dErrors.CodeBusinessRule, "only draft campaigns can be scheduled, campaign is %s", c.Status)
	}
	if !at.After(time.Now()) {
		return nil, dErrors.New(dErrors.CodeValidation, "scheduled date must be in the future")
	}

	c.Status = models.CampaignScheduled
	c.ScheduledDate = &at
	if err := s.store.Update(ctx, c); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "schedule campaign")
	}
	s.logger.InfoContext(ctx, "campaign scheduled", "campaign_id", id, "scheduled_date", at)
	return c, nil
}

// Send expands a campaign into the queue. A scheduled campaign's entries
// are created now but stay dormant until the scheduled time.
func (s *Service) Send(ctx context.Context, id string) (*models.Campaign, error) {
	c, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	switch c.Status {
	case models.CampaignDraft, models.CampaignScheduled:
	default:
		return nil, dErrors.Newf(dErrors.CodeBusinessRule, "campaign in status %s cannot be sent", c.Status)
	}

	enqueued, err := s.queue.ExpandCampaign(ctx, c)
	if err != nil {
		c.Status = models.CampaignFailed
		if updateErr := s.store.Update(ctx, c); updateErr != nil {
			s.logger.ErrorContext(ctx, "campaign not marked failed", "campaign_id", id, "error", updateErr)
		}
		return nil, err
	}

	c.Status = models.CampaignSending
	c.TotalCount = enqueued
	c.PendingCount = enqueued
	if err := s.store.Update(ctx, c); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "update campaign")
	}
	s.logger.InfoContext(ctx, "campaign sending", "campaign_id", id, "enqueued", enqueued)
	return c, nil
}

// Pause stops a SENDING campaign by cancelling its unsent queue entries.
func (s *Service) Pause(ctx context.Context, id string) (*models.Campaign, error) {
	c, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.Status != models.CampaignSending {
		return nil, dErrors.Newf(dErrors.CodeBusinessRule, "only sending campaigns can be paused, campaign is %s", c.Status)
	}

	cancelled, err := s.queue.CancelCampaignEntries(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Status = models.CampaignPaused
	c.PendingCount = 0
	if err := s.store.Update(ctx, c); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "update campaign")
	}
	s.logger.InfoContext(ctx, "campaign paused", "campaign_id", id, "cancelled_entries", cancelled)
	return c, nil
}

// Cancel abandons a campaign and cancels any unsent queue entries.
func (s *Service) Cancel(ctx context.Context, id string) (*models.Campaign, error) {
	c, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	switch c.Status {
	case models.CampaignSent, models.CampaignCancelled:
		return nil, dErrors.Newf(dErrors.CodeBusinessRule, "campaign in status %s cannot be cancelled", c.Status)
	}

	cancelled, err := s.queue.CancelCampaignEntries(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Status = models.CampaignCancelled
	c.PendingCount = 0
	if err := s.store.Update(ctx, c); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "update campaign")
	}
	s.logger.InfoContext(ctx, "campaign cancelled", "campaign_id", id, "cancelled_entries", cancelled)
	return c, nil
}

// Delete removes a campaign. Only terminal or draft campaigns may go; a
// SENDING campaign has live queue entries.
func (s *Service) Delete(ctx context.Context, id string) error {
	c, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if c.Status == models.CampaignSending {
		return dErrors.New(dErrors.CodeBusinessRule, "a sending campaign cannot be deleted, cancel it first")
	}
	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Newf(dErrors.CodeNotFound, "campaign %s not found", id)
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "delete campaign")
	}
	return nil
}

func (s *Service) find(ctx context.Context, id string) (*models.Campaign, error) {
	c, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Newf(dErrors.CodeNotFound, "campaign %s not found", id)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "find campaign")
	}
	return c, nil
}

// refreshCounts pulls delivery counts from the queue and settles a SENDING
// campaign into SENT or FAILED once nothing is pending.
func (s *Service) refreshCounts(ctx context.Context, c *models.Campaign) (*models.Campaign, error) {
	if c.Status != models.CampaignSending && c.Status != models.CampaignPaused {
		return c, nil
	}
	sent, failed, pending, err := s.queue.CampaignCounts(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	c.SentCount, c.FailedCount, c.PendingCount = sent, failed, pending

	if c.Status == models.CampaignSending && pending == 0 {
		if sent > 0 {
			c.Status = models.CampaignSent
		} else {
			c.Status = models.CampaignFailed
		}
	}
	if err := s.store.Update(ctx, c); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "update campaign")
	}
	return c, nil
}
