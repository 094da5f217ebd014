package testutil

import (
	"net/http"

	"treasurehunt/internal/platform/middleware"
)

// WithAdmin adds authenticated admin claims to the request context,
// simulating what the auth middleware does for a valid bearer token.
func WithAdmin(req *http.Request, userID string) *http.Request {
	return WithUser(req, userID, middleware.RoleAdmin)
}

// WithUser adds authenticated claims with an arbitrary role.
func WithUser(req *http.Request, userID, role string) *http.Request {
	ctx := middleware.WithIdentity(req.Context(), userID, role)
	return req.WithContext(ctx)
}
