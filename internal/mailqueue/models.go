// Package mailqueue implements the outbound email queue: durable entries,
// the dispatcher state machine, and the periodic sweeps that drive it.
package mailqueue

import (
	"time"

	dErrors "treasurehunt/pkg/domain-errors"
)

// Status is the delivery state of a queue entry.
//
// Transitions: PENDING/SCHEDULED → PROCESSING → {SENT, FAILED};
// FAILED → PENDING only while retries remain. SENT, CANCELLED, and FAILED
// with exhausted retries are terminal.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusSent       Status = "SENT"
	StatusFailed     Status = "FAILED"
	StatusCancelled  Status = "CANCELLED"
	StatusScheduled  Status = "SCHEDULED"
)

// IsValid checks the status against the closed enumeration.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusSent, StatusFailed, StatusCancelled, StatusScheduled:
		return true
	}
	return false
}

// ParseStatus validates a raw status at the persistence boundary. Unknown
// values are rejected, never silently defaulted.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.IsValid() {
		return "", dErrors.Newf(dErrors.CodeValidation, "unknown queue status %q", raw)
	}
	return s, nil
}

// Type categorizes what kind of email an entry carries.
type Type string

const (
	TypeRegistrationConfirmation Type = "registration_confirmation"
	TypeAdminNotification        Type = "admin_notification"
	TypeCampaign                 Type = "campaign"
	TypeReminder                 Type = "reminder"
	TypeCancellation             Type = "cancellation"
	TypeWelcome                  Type = "welcome"
	TypeEventUpdate              Type = "event_update"
)

// IsValid checks the type against the closed enumeration.
func (t Type) IsValid() bool {
	switch t {
	case TypeRegistrationConfirmation, TypeAdminNotification, TypeCampaign,
		TypeReminder, TypeCancellation, TypeWelcome, TypeEventUpdate:
		return true
	}
	return false
}

// ParseType validates a raw type at the persistence boundary.
func ParseType(raw string) (Type, error) {
	t := Type(raw)
	if !t.IsValid() {
		return "", dErrors.Newf(dErrors.CodeValidation, "unknown queue entry type %q", raw)
	}
	return t, nil
}

// DefaultMaxRetries is applied to entries enqueued without an explicit cap.
const DefaultMaxRetries = 3

// Priority bounds; lower number sends first.
const (
	HighestPriority = 1
	LowestPriority  = 10
	DefaultPriority = 5
)

// Entry is one outbound email and its delivery state.
type Entry struct {
	ID             string     `json:"id"`
	RecipientEmail string     `json:"recipient_email"`
	RecipientName  string     `json:"recipient_name,omitempty"`
	Subject        string     `json:"subject"`
	Body           string     `json:"body"`
	Type           Type       `json:"type"`
	Status         Status     `json:"status"`
	Priority       int        `json:"priority"`
	RetryCount     int        `json:"retry_count"`
	MaxRetries     int        `json:"max_retries"`
	CreatedDate    time.Time  `json:"created_date"`
	UpdatedDate    time.Time  `json:"updated_date"`
	ScheduledDate  *time.Time `json:"scheduled_date,omitempty"`
	SentDate       *time.Time `json:"sent_date,omitempty"`
	ErrorMessage   string     `json:"error_message,omitempty"`
	RegistrationID string     `json:"registration_id,omitempty"`
	CampaignID     string     `json:"campaign_id,omitempty"`
	TemplateName   string     `json:"template_name,omitempty"`
	// TemplateVars is an opaque payload rendered into the template at send
	// time.
	TemplateVars map[string]string `json:"template_vars,omitempty"`
}

// IsReady reports whether the entry is eligible for immediate dispatch.
func (e *Entry) IsReady(now time.Time) bool {
	switch e.Status {
	case StatusPending:
		return true
	case StatusScheduled:
		return e.ScheduledDate != nil && !e.ScheduledDate.After(now)
	}
	return false
}

// Retriable reports whether a FAILED entry may be retried.
func (e *Entry) Retriable() bool {
	return e.Status == StatusFailed && e.RetryCount < e.MaxRetries
}

// Terminal reports whether no further transition is expected.
func (e *Entry) Terminal() bool {
	switch e.Status {
	case StatusSent, StatusCancelled:
		return true
	case StatusFailed:
		return e.RetryCount >= e.MaxRetries
	}
	return false
}
