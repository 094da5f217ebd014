package validation

import (
	"fmt"
	"strings"
	"time"

	campaignModel "treasurehunt/internal/campaign/models"
	planModel "treasurehunt/internal/plan/models"
	regModel "treasurehunt/internal/registration/models"
	dErrors "treasurehunt/pkg/domain-errors"
)

// Service aggregates predicate checks into per-entity error lists. Every
// method returns an ordered slice of messages; empty means valid.
type Service struct{}

// New creates a validation Service.
func New() *Service { return &Service{} }

// ValidateRegistration checks a registration request. Team registrations get
// the extra team checks; individual registrations skip them.
func (s *Service) ValidateRegistration(reg *regModel.Registration) []string {
	if reg == nil {
		return []string{"registration data is required"}
	}

	var errs []string
	if reg.PlanID == "" {
		errs = append(errs, "plan is required")
	}
	if !ValidName(reg.FullName) {
		errs = append(errs, "full name must be 2-100 letters")
	}
	if !ValidEmail(reg.Email) {
		errs = append(errs, "email address is invalid")
	}
	if !ValidPhone(reg.Phone) {
		errs = append(errs, "phone number is invalid")
	}
	if !ValidAge(reg.Age) {
		errs = append(errs, fmt.Sprintf("age must be between %d and %d", MinAge, MaxAge))
	}
	if !reg.Type.IsValid() {
		errs = append(errs, "registration type must be INDIVIDUAL or TEAM")
	}

	if reg.Type == regModel.TypeTeam {
		errs = append(errs, s.validateTeam(reg)...)
	}
	return errs
}

func (s *Service) validateTeam(reg *regModel.Registration) []string {
	var errs []string
	if !ValidTeamName(reg.TeamName) {
		errs = append(errs, fmt.Sprintf("team name must be %d-%d letters, digits, spaces, or dashes", MinTeamNameLength, MaxTeamNameLength))
	}
	if reg.TeamSize < MinTeamSize || reg.TeamSize > MaxTeamSize {
		errs = append(errs, fmt.Sprintf("team size must be between %d and %d", MinTeamSize, MaxTeamSize))
	}
	if len(reg.Members) != reg.TeamSize {
		errs = append(errs, fmt.Sprintf("team size is %d but %d members were provided", reg.TeamSize, len(reg.Members)))
	}
	for i, m := range reg.Members {
		if !ValidName(m.FullName) {
			errs = append(errs, fmt.Sprintf("member %d: full name must be 2-100 letters", i+1))
		}
		if !ValidAge(m.Age) {
			errs = append(errs, fmt.Sprintf("member %d: age must be between %d and %d", i+1, MinAge, MaxAge))
		}
	}
	return errs
}

// ValidatePlan checks an event plan before create or update.
func (s *Service) ValidatePlan(plan *planModel.Plan) []string {
	if plan == nil {
		return []string{"plan data is required"}
	}

	var errs []string
	if strings.TrimSpace(plan.Name) == "" {
		errs = append(errs, "plan name is required")
	}
	if plan.DurationDays < 1 {
		errs = append(errs, "duration must be at least 1 day")
	}
	if plan.PriceCents < 0 {
		errs = append(errs, "price must not be negative")
	}
	if plan.Capacity < 1 {
		errs = append(errs, "capacity must be at least 1")
	}
	if !plan.Status.IsValid() {
		errs = append(errs, "plan status is invalid")
	}
	return errs
}

// ValidateCampaign checks a campaign before create or update.
func (s *Service) ValidateCampaign(c *campaignModel.Campaign) []string {
	if c == nil {
		return []string{"campaign data is required"}
	}

	var errs []string
	if strings.TrimSpace(c.Name) == "" {
		errs = append(errs, "campaign name is required")
	}
	if strings.TrimSpace(c.Subject) == "" {
		errs = append(errs, "campaign subject is required")
	}
	if strings.TrimSpace(c.Body) == "" && c.TemplateName == "" {
		errs = append(errs, "campaign body or template is required")
	}
	if c.Priority < 1 || c.Priority > 10 {
		errs = append(errs, "priority must be between 1 and 10")
	}
	if len(c.Recipients) == 0 {
		errs = append(errs, "at least one recipient is required")
	}
	for _, addr := range c.Recipients {
		if !ValidEmail(addr) {
			errs = append(errs, fmt.Sprintf("recipient %q is not a valid email address", addr))
		}
	}
	if c.ScheduledDate != nil && c.ScheduledDate.Before(time.Now()) {
		errs = append(errs, "scheduled date must be in the future")
	}
	return errs
}

// ValidatePhotoFile checks a declared upload size against the 2 MiB photo
// cap and the content type against the photo allow-list. Both checks run
// regardless of the other's outcome.
func (s *Service) ValidatePhotoFile(fileName, contentType string, sizeBytes int64) []string {
	var errs []string
	if sizeBytes > MaxPhotoBytes {
		errs = append(errs, fmt.Sprintf("photo %q exceeds the %d MB size limit", fileName, MaxPhotoBytes>>20))
	}
	if !AllowedPhotoType(contentType) {
		errs = append(errs, fmt.Sprintf("photo type %q is not allowed (jpeg, png, webp)", contentType))
	}
	return errs
}

// ValidateDocumentFile checks a declared upload size against the 10 MiB
// document cap and the content type against the document allow-list.
func (s *Service) ValidateDocumentFile(fileName, contentType string, sizeBytes int64) []string {
	var errs []string
	if sizeBytes > MaxDocumentBytes {
		errs = append(errs, fmt.Sprintf("document %q exceeds the %d MB size limit", fileName, MaxDocumentBytes>>20))
	}
	if !AllowedDocumentType(contentType) {
		errs = append(errs, fmt.Sprintf("document type %q is not allowed (pdf, jpeg, png)", contentType))
	}
	return errs
}

// ValidateAndThrow raises a validation-coded domain error carrying every
// message when errs is non-empty.
func ValidateAndThrow(errs []string, context string) error {
	if len(errs) == 0 {
		return nil
	}
	return dErrors.Newf(dErrors.CodeValidation, "%s failed validation", context).WithDetails(errs...)
}
