// Package models defines email campaigns: a named blast that fans out into
// one queue entry per recipient.
package models

import (
	"time"

	dErrors "treasurehunt/pkg/domain-errors"
)

// CampaignStatus is the lifecycle state of a campaign.
type CampaignStatus string

const (
	CampaignDraft     CampaignStatus = "DRAFT"
	CampaignScheduled CampaignStatus = "SCHEDULED"
	CampaignSending   CampaignStatus = "SENDING"
	CampaignSent      CampaignStatus = "SENT"
	CampaignPaused    CampaignStatus = "PAUSED"
	CampaignCancelled CampaignStatus = "CANCELLED"
	CampaignFailed    CampaignStatus = "FAILED"
)

// IsValid checks the status against the closed enumeration.
func (s CampaignStatus) IsValid() bool {
	switch s {
	case CampaignDraft, CampaignScheduled, CampaignSending, CampaignSent,
		CampaignPaused, CampaignCancelled, CampaignFailed:
		return true
	}
	return false
}

// ParseCampaignStatus validates a raw status at the persistence boundary.
func ParseCampaignStatus(raw string) (CampaignStatus, error) {
	s := CampaignStatus(raw)
	if !s.IsValid() {
		return "", dErrors.Newf(dErrors.CodeValidation, "unknown campaign status %q", raw)
	}
	return s, nil
}

// Campaign groups many queue entries and tracks aggregate delivery counts.
type Campaign struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Subject       string         `json:"subject"`
	Body          string         `json:"body"`
	TemplateName  string         `json:"template_name,omitempty"`
	Recipients    []string       `json:"recipients"`
	Priority      int            `json:"priority"`
	Status        CampaignStatus `json:"status"`
	TotalCount    int            `json:"total_count"`
	SentCount     int            `json:"sent_count"`
	FailedCount   int            `json:"failed_count"`
	PendingCount  int            `json:"pending_count"`
	CreatedDate   time.Time      `json:"created_date"`
	ScheduledDate *time.Time     `json:"scheduled_date,omitempty"`
}
