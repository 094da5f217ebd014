package mailqueue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	campaignmodels "treasurehunt/internal/campaign/models"
	planmodels "treasurehunt/internal/plan/models"
	regmodels "treasurehunt/internal/registration/models"
	dErrors "treasurehunt/pkg/domain-errors"
	"treasurehunt/pkg/email"
	"treasurehunt/pkg/platform/pagination"
	"treasurehunt/pkg/platform/sentinel"
	pstrings "treasurehunt/pkg/platform/strings"
)

// Fixed priorities for system-generated mail. Campaigns carry their own.
const (
	priorityConfirmation = 2
	priorityCancellation = 3
	priorityAdminNotice  = 5
	priorityWelcome      = 7
)

// Service owns enqueueing and queue administration. Delivery is the
// dispatcher's job; the service never talks to SMTP.
type Service struct {
	store      Store
	logger     *slog.Logger
	adminEmail string
}

// NewService constructs the queue service. adminEmail receives staff
// notifications; empty disables them.
func NewService(store Store, logger *slog.Logger, adminEmail string) *Service {
	return &Service{store: store, logger: logger, adminEmail: adminEmail}
}

// EnqueueRegistrationConfirmation queues the confirmation sent to the
// registrant after a successful registration.
func (s *Service) EnqueueRegistrationConfirmation(ctx context.Context, reg *regmodels.Registration, plan *planmodels.Plan) error {
	entry := &Entry{
		RecipientEmail: reg.Email,
		RecipientName:  reg.FullName,
		Subject:        fmt.Sprintf("Registration confirmed: %s", plan.Name),
		Type:           TypeRegistrationConfirmation,
		Status:         StatusPending,
		Priority:       priorityConfirmation,
		MaxRetries:     DefaultMaxRetries,
		RegistrationID: reg.ID,
		TemplateName:   TemplateRegistrationConfirmation,
		TemplateVars:   registrationVars(reg, plan),
	}
	return s.enqueue(ctx, entry)
}

// EnqueueAdminNotification tells staff about a new registration. A missing
// admin address is a no-op, not an error.
func (s *Service) EnqueueAdminNotification(ctx context.Context, reg *regmodels.Registration, plan *planmodels.Plan) error {
	if s.adminEmail == "" {
		return nil
	}
	vars := registrationVars(reg, plan)
	vars["Email"] = reg.Email
	entry := &Entry{
		RecipientEmail: s.adminEmail,
		RecipientName:  "Admin",
		Subject:        fmt.Sprintf("New registration: %s", plan.Name),
		Type:           TypeAdminNotification,
		Status:         StatusPending,
		Priority:       priorityAdminNotice,
		MaxRetries:     DefaultMaxRetries,
		RegistrationID: reg.ID,
		TemplateName:   TemplateAdminNotification,
		TemplateVars:   vars,
	}
	return s.enqueue(ctx, entry)
}

// EnqueueWelcome greets a registrant once an admin confirms their
// registration. contactEmail, when set, is surfaced in the message so
// questions have somewhere to go.
func (s *Service) EnqueueWelcome(ctx context.Context, reg *regmodels.Registration, contactEmail string) error {
	entry := &Entry{
		RecipientEmail: reg.Email,
		RecipientName:  reg.FullName,
		Subject:        "Welcome to Treasure Hunt Adventures",
		Type:           TypeWelcome,
		Status:         StatusPending,
		Priority:       priorityWelcome,
		MaxRetries:     DefaultMaxRetries,
		RegistrationID: reg.ID,
		TemplateName:   TemplateWelcome,
		TemplateVars: map[string]string{
			"Name":         reg.FullName,
			"ContactEmail": contactEmail,
		},
	}
	return s.enqueue(ctx, entry)
}

// EnqueueCancellation notifies the registrant that their registration was
// cancelled.
func (s *Service) EnqueueCancellation(ctx context.Context, reg *regmodels.Registration, plan *planmodels.Plan) error {
	entry := &Entry{
		RecipientEmail: reg.Email,
		RecipientName:  reg.FullName,
		Subject:        fmt.Sprintf("Registration cancelled: %s", plan.Name),
		Type:           TypeCancellation,
		Status:         StatusPending,
		Priority:       priorityCancellation,
		MaxRetries:     DefaultMaxRetries,
		RegistrationID: reg.ID,
		TemplateName:   TemplateCancellation,
		TemplateVars:   registrationVars(reg, plan),
	}
	return s.enqueue(ctx, entry)
}

// ExpandCampaign fans a campaign out into one queue entry per distinct
// recipient and returns how many were enqueued. Scheduled campaigns produce
// SCHEDULED entries that stay dormant until their time arrives.
func (s *Service) ExpandCampaign(ctx context.Context, c *campaignmodels.Campaign) (int, error) {
	recipients := pstrings.DedupeAddresses(c.Recipients)
	if len(recipients) == 0 {
		return 0, dErrors.New(dErrors.CodeBusinessRule, "campaign has no recipients")
	}

	status := StatusPending
	if c.ScheduledDate != nil && c.ScheduledDate.After(time.Now()) {
		status = StatusScheduled
	}
	priority := c.Priority
	if priority < HighestPriority || priority > LowestPriority {
		priority = DefaultPriority
	}

	enqueued := 0
	for _, recipient := range recipients {
		entry := &Entry{
			RecipientEmail: recipient,
			RecipientName:  email.DisplayName(recipient),
			Subject:        c.Subject,
			Body:           c.Body,
			Type:           TypeCampaign,
			Status:         status,
			Priority:       priority,
			MaxRetries:     DefaultMaxRetries,
			ScheduledDate:  c.ScheduledDate,
			CampaignID:     c.ID,
			TemplateName:   c.TemplateName,
		}
		if c.TemplateName != "" {
			entry.TemplateVars = map[string]string{"Name": entry.RecipientName}
		}
		if err := s.enqueue(ctx, entry); err != nil {
			return enqueued, err
		}
		enqueued++
	}
	s.logger.InfoContext(ctx, "campaign expanded into queue",
		"campaign_id", c.ID, "recipients", enqueued, "status", status)
	return enqueued, nil
}

// CancelCampaignEntries cancels every not-yet-sent entry of a campaign and
// returns how many were cancelled.
func (s *Service) CancelCampaignEntries(ctx context.Context, campaignID string) (int, error) {
	count, err := s.store.CancelByCampaign(ctx, campaignID)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "cancel campaign emails")
	}
	return count, nil
}

// CampaignCounts reports sent/failed/pending entry counts for a campaign.
func (s *Service) CampaignCounts(ctx context.Context, campaignID string) (sent, failed, pending int, err error) {
	sent, failed, pending, err = s.store.CampaignCounts(ctx, campaignID)
	if err != nil {
		return 0, 0, 0, dErrors.Wrap(err, dErrors.CodeInternal, "campaign email counts")
	}
	return sent, failed, pending, nil
}

// HasTemplate reports whether name resolves to a built-in template. The
// campaign service checks candidate names here before they reach the queue.
func (s *Service) HasTemplate(name string) bool {
	return KnownTemplate(name)
}

// List returns a page of queue entries, optionally filtered by status.
func (s *Service) List(ctx context.Context, statusRaw string, page, limit int) ([]*Entry, error) {
	var status Status
	if statusRaw != "" {
		parsed, err := ParseStatus(statusRaw)
		if err != nil {
			return nil, err
		}
		status = parsed
	}
	p := pagination.Normalize(page, limit)
	entries, err := s.store.List(ctx, status, p.Limit, p.Offset())
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list queue entries")
	}
	return entries, nil
}

// Get looks up a single queue entry.
func (s *Service) Get(ctx context.Context, id string) (*Entry, error) {
	entry, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Newf(dErrors.CodeNotFound, "queue entry %s not found", id)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "find queue entry")
	}
	return entry, nil
}

// Cancel cancels a PENDING or SCHEDULED entry. Entries already claimed or
// delivered cannot be cancelled.
func (s *Service) Cancel(ctx context.Context, id string) error {
	err := s.store.Cancel(ctx, id)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.Newf(dErrors.CodeNotFound, "queue entry %s not found", id)
	case errors.Is(err, sentinel.ErrInvalidState):
		return dErrors.New(dErrors.CodeBusinessRule, "only pending or scheduled entries can be cancelled")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "cancel queue entry")
	}
}

// RetryFailed requeues every failed entry that still has retries left.
func (s *Service) RetryFailed(ctx context.Context) (int, error) {
	count, err := s.store.RequeueRetriable(ctx)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "requeue failed entries")
	}
	if count > 0 {
		s.logger.InfoContext(ctx, "failed entries requeued", "count", count)
	}
	return count, nil
}

// Cleanup deletes SENT entries older than the retention window.
func (s *Service) Cleanup(ctx context.Context, retention time.Duration) (int, error) {
	if retention <= 0 {
		return 0, dErrors.New(dErrors.CodeValidation, "retention must be positive")
	}
	count, err := s.store.DeleteSentBefore(ctx, time.Now().Add(-retention))
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "cleanup sent entries")
	}
	if count > 0 {
		s.logger.InfoContext(ctx, "sent entries cleaned up", "count", count)
	}
	return count, nil
}

// ReadyCount reports how many entries are eligible for dispatch right now.
func (s *Service) ReadyCount(ctx context.Context) (int, error) {
	count, err := s.store.CountReady(ctx, time.Now())
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "count ready entries")
	}
	return count, nil
}

func (s *Service) enqueue(ctx context.Context, entry *Entry) error {
	if err := s.store.Enqueue(ctx, entry); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "enqueue email")
	}
	s.logger.InfoContext(ctx, "email enqueued",
		"entry_id", entry.ID, "type", entry.Type, "priority", entry.Priority)
	return nil
}

func registrationVars(reg *regmodels.Registration, plan *planmodels.Plan) map[string]string {
	vars := map[string]string{
		"Name":      reg.FullName,
		"PlanName":  plan.Name,
		"Location":  plan.Location,
		"StartDate": plan.StartDate.Format("January 2, 2006"),
		"Duration":  plan.FormattedDuration(),
	}
	if reg.IsTeam() {
		vars["TeamName"] = reg.TeamName
		vars["TeamSize"] = fmt.Sprintf("%d", reg.TeamSize)
	}
	return vars
}
