// Package domainerrors defines the categorized error type used at service
// boundaries. Stores return infrastructure sentinels (pkg/platform/sentinel);
// services translate them into these errors so transport layers can map them
// to HTTP statuses without inspecting error strings.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is a stable error category exposed to API consumers.
type Code string

const (
	CodeValidation      Code = "VALIDATION_ERROR"
	CodeBusinessRule    Code = "BUSINESS_RULE_ERROR"
	CodeNotFound        Code = "NOT_FOUND"
	CodeConflict        Code = "CONFLICT"
	CodeSecurity        Code = "SECURITY_ERROR"
	CodeFileOperation   Code = "FILE_OPERATION_ERROR"
	CodeExternalService Code = "EXTERNAL_SERVICE_ERROR"
	CodeConfiguration   Code = "CONFIGURATION_ERROR"
	CodeInternal        Code = "INTERNAL_ERROR"
)

// Error carries a category code, a human-readable message, optional
// field-level details, and the wrapped cause.
type Error struct {
	Code    Code
	Message string
	Details []string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New creates a domain error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates a domain error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying cause. The cause is
// preserved for errors.Is/As chains but never exposed to clients.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, cause: err}
}

// WithDetails returns a copy of the error carrying field-level detail lines,
// typically the output of a validation pass.
func (e *Error) WithDetails(details ...string) *Error {
	clone := *e
	clone.Details = append([]string(nil), details...)
	return &clone
}

// Is reports whether err (or anything it wraps) is a domain error with the
// given code.
func Is(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// CodeOf extracts the category code from err, defaulting to CodeInternal for
// unrecognized errors so unexpected failures are never leaked as client
// faults.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// DetailsOf returns the field-level details carried by err, if any.
func DetailsOf(err error) []string {
	var de *Error
	if errors.As(err, &de) {
		return de.Details
	}
	return nil
}

// HTTPStatus maps a category code to the HTTP status returned at the
// boundary.
func HTTPStatus(code Code) int {
	switch code {
	case CodeValidation:
		return http.StatusBadRequest
	case CodeBusinessRule:
		return http.StatusUnprocessableEntity
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeSecurity:
		return http.StatusUnauthorized
	case CodeFileOperation:
		return http.StatusBadRequest
	case CodeExternalService:
		return http.StatusBadGateway
	case CodeConfiguration, CodeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
