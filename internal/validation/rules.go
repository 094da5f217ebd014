// Package validation translates structural and business constraints into
// ordered, human-readable error lists. Checks never mutate their input and
// never short-circuit, so one pass reports every violation.
package validation

import "regexp"

// Field limits shared by the API and admin surfaces.
const (
	MinAge = 10
	MaxAge = 100

	MinNameLength     = 2
	MaxNameLength     = 100
	MinTeamNameLength = 3
	MaxTeamNameLength = 50

	MinTeamSize = 2
	MaxTeamSize = 10

	MaxPhotoBytes    = 2 << 20  // 2 MiB
	MaxDocumentBytes = 10 << 20 // 10 MiB
)

var (
	emailPattern    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	phonePattern    = regexp.MustCompile(`^\+?[0-9][0-9 \-()]{6,18}$`)
	namePattern     = regexp.MustCompile(`^[\p{L}][\p{L} .'-]*$`)
	teamNamePattern = regexp.MustCompile(`^[\p{L}0-9][\p{L}0-9 _-]*$`)
)

// Allowed MIME types per upload kind.
var (
	photoTypes    = map[string]bool{"image/jpeg": true, "image/png": true, "image/webp": true}
	documentTypes = map[string]bool{"application/pdf": true, "image/jpeg": true, "image/png": true}
)

// ValidEmail reports whether s looks like an email address.
func ValidEmail(s string) bool { return emailPattern.MatchString(s) }

// ValidPhone reports whether s is an acceptable phone number.
func ValidPhone(s string) bool { return phonePattern.MatchString(s) }

// ValidName reports whether s is an acceptable person name.
func ValidName(s string) bool {
	return len(s) >= MinNameLength && len(s) <= MaxNameLength && namePattern.MatchString(s)
}

// ValidTeamName reports whether s is an acceptable team name.
func ValidTeamName(s string) bool {
	return len(s) >= MinTeamNameLength && len(s) <= MaxTeamNameLength && teamNamePattern.MatchString(s)
}

// ValidAge reports whether age is within the participation range.
func ValidAge(age int) bool { return age >= MinAge && age <= MaxAge }

// AllowedPhotoType reports whether contentType is in the photo allow-list.
func AllowedPhotoType(contentType string) bool { return photoTypes[contentType] }

// AllowedDocumentType reports whether contentType is in the document
// allow-list.
func AllowedDocumentType(contentType string) bool { return documentTypes[contentType] }
