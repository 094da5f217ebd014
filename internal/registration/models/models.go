// Package models defines registrations and their team members. A
// registration owns its team members and uploaded documents: they are loaded
// and deleted together.
package models

import (
	"time"

	dErrors "treasurehunt/pkg/domain-errors"
)

// RegistrationType distinguishes individual from team registrations.
type RegistrationType string

const (
	TypeIndividual RegistrationType = "INDIVIDUAL"
	TypeTeam       RegistrationType = "TEAM"
)

// IsValid checks the type against the closed enumeration.
func (t RegistrationType) IsValid() bool {
	return t == TypeIndividual || t == TypeTeam
}

// RegistrationStatus is the lifecycle state of a registration.
type RegistrationStatus string

const (
	StatusPending   RegistrationStatus = "PENDING"
	StatusConfirmed RegistrationStatus = "CONFIRMED"
	StatusCancelled RegistrationStatus = "CANCELLED"
)

// IsValid checks the status against the closed enumeration.
func (s RegistrationStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled:
		return true
	}
	return false
}

// ParseRegistrationStatus validates a raw status at the persistence
// boundary.
func ParseRegistrationStatus(raw string) (RegistrationStatus, error) {
	s := RegistrationStatus(raw)
	if !s.IsValid() {
		return "", dErrors.Newf(dErrors.CodeValidation, "unknown registration status %q", raw)
	}
	return s, nil
}

// Registration is a booking for a plan, individual or team-based.
type Registration struct {
	ID          string             `json:"id"`
	PlanID      string             `json:"plan_id"`
	FullName    string             `json:"full_name"`
	Email       string             `json:"email"`
	Phone       string             `json:"phone"`
	Age         int                `json:"age"`
	Type        RegistrationType   `json:"type"`
	TeamName    string             `json:"team_name,omitempty"`
	TeamSize    int                `json:"team_size,omitempty"`
	Status      RegistrationStatus `json:"status"`
	CreatedDate time.Time          `json:"created_date"`
	Members     []TeamMember       `json:"members,omitempty"`
}

// IsTeam reports whether this registration carries team members.
func (r *Registration) IsTeam() bool { return r.Type == TypeTeam }

// TeamMember is one participant on a team registration.
type TeamMember struct {
	ID             string `json:"id"`
	RegistrationID string `json:"registration_id"`
	FullName       string `json:"full_name"`
	Email          string `json:"email"`
	Age            int    `json:"age"`
}
