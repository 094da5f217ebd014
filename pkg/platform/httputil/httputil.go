// Package httputil centralizes JSON response writing so every handler emits
// the same error envelope and internal details never reach clients.
package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	dErrors "treasurehunt/pkg/domain-errors"
)

// ErrorCounter receives the category code of every handled error WriteError
// emits. Satisfied by the metrics collector.
type ErrorCounter interface {
	IncError(code string)
}

type errorCounterKey struct{}

// WithErrorCounter returns a context carrying the counter WriteError
// reports handled errors to. The middleware chain installs it once per
// request; requests without one simply skip the count.
func WithErrorCounter(ctx context.Context, c ErrorCounter) context.Context {
	return context.WithValue(ctx, errorCounterKey{}, c)
}

// ErrorResponse is the envelope returned for every failed request.
type ErrorResponse struct {
	Error     string   `json:"error"`
	Message   string   `json:"message"`
	Status    int      `json:"status"`
	Timestamp string   `json:"timestamp"`
	Path      string   `json:"path"`
	Details   []string `json:"details,omitempty"`
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError maps err to the error envelope. 4xx-class domain errors expose
// their message and details; everything else is replaced with a generic
// message so stack traces and driver errors never leave the process. The
// request path is redacted before being echoed back.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	code := dErrors.CodeOf(err)
	status := dErrors.HTTPStatus(code)

	if counter, ok := r.Context().Value(errorCounterKey{}).(ErrorCounter); ok {
		counter.IncError(string(code))
	}

	resp := ErrorResponse{
		Error:     string(code),
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Path:      RedactPath(r.URL),
	}

	if status < http.StatusInternalServerError && status != http.StatusBadGateway {
		var de *dErrors.Error
		if errors.As(err, &de) {
			resp.Message = de.Message
			resp.Details = de.Details
		} else {
			resp.Message = err.Error()
		}
	} else {
		resp.Message = genericMessage(code)
	}

	WriteJSON(w, status, resp)
}

// WriteAndLogError logs the full error server-side and writes the sanitized
// envelope. Use it whenever a 5xx might carry internal detail.
func WriteAndLogError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	code := dErrors.CodeOf(err)
	status := dErrors.HTTPStatus(code)
	if status >= http.StatusInternalServerError || status == http.StatusBadGateway {
		logger.ErrorContext(r.Context(), "request failed",
			"error", err.Error(),
			"code", string(code),
			"path", RedactPath(r.URL),
		)
	}
	WriteError(w, r, err)
}

// DecodeJSON decodes the request body into dst, returning a validation-coded
// domain error on malformed input.
func DecodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return dErrors.Wrap(err, dErrors.CodeValidation, "invalid request body")
	}
	return nil
}

// PageParams reads page/limit query values for list endpoints. Bad input
// falls back to defaults downstream rather than erroring.
func PageParams(r *http.Request) (page, limit int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	return page, limit
}

// secretParams lists query parameter names whose values must never be echoed
// back in an error body.
var secretParams = []string{"password", "token", "key", "secret"}

// RedactPath returns the request path with secret-bearing query values
// replaced by a placeholder.
func RedactPath(u *url.URL) string {
	if u.RawQuery == "" {
		return u.Path
	}
	q := u.Query()
	redacted := false
	for name := range q {
		lower := strings.ToLower(name)
		for _, secret := range secretParams {
			if strings.Contains(lower, secret) {
				q.Set(name, "REDACTED")
				redacted = true
			}
		}
	}
	if !redacted {
		return u.Path + "?" + u.RawQuery
	}
	return u.Path + "?" + q.Encode()
}

func genericMessage(code dErrors.Code) string {
	switch code {
	case dErrors.CodeExternalService:
		return "upstream service unavailable"
	case dErrors.CodeConfiguration:
		return "service misconfigured"
	default:
		return "an internal error occurred"
	}
}
