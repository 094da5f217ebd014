// Package models defines the event plan entity.
package models

import (
	"fmt"
	"time"

	dErrors "treasurehunt/pkg/domain-errors"
)

// PlanStatus is the lifecycle state of a plan.
type PlanStatus string

const (
	PlanActive   PlanStatus = "ACTIVE"
	PlanDraft    PlanStatus = "DRAFT"
	PlanArchived PlanStatus = "ARCHIVED"
)

// IsValid checks the status against the closed enumeration.
func (s PlanStatus) IsValid() bool {
	switch s {
	case PlanActive, PlanDraft, PlanArchived:
		return true
	}
	return false
}

// ParsePlanStatus validates a raw status at the persistence boundary.
// Unknown values are rejected, never silently defaulted.
func ParsePlanStatus(raw string) (PlanStatus, error) {
	s := PlanStatus(raw)
	if !s.IsValid() {
		return "", dErrors.Newf(dErrors.CodeValidation, "unknown plan status %q", raw)
	}
	return s, nil
}

// Plan is an event offering visitors can register for.
type Plan struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Description  string     `json:"description"`
	Location     string     `json:"location"`
	DurationDays int        `json:"duration_days"`
	PriceCents   int64      `json:"price_cents"`
	Capacity     int        `json:"capacity"`
	StartDate    time.Time  `json:"start_date"`
	Status       PlanStatus `json:"status"`
	ImagePath    string     `json:"image_path,omitempty"`
	CreatedDate  time.Time  `json:"created_date"`
}

// FormattedPrice renders the price for API responses.
func (p *Plan) FormattedPrice() string {
	return fmt.Sprintf("$%.2f", float64(p.PriceCents)/100)
}

// FormattedDuration renders the duration for API responses.
func (p *Plan) FormattedDuration() string {
	if p.DurationDays == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", p.DurationDays)
}

// IsAvailable reports whether a new registration fits: the plan is active
// and registeredCount has not reached capacity.
func (p *Plan) IsAvailable(registeredCount int) bool {
	return p.Status == PlanActive && registeredCount < p.Capacity
}
