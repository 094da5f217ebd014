package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
)

// RoleAdmin is the role required by admin endpoints.
const RoleAdmin = "admin"

// Claims are the validated identity claims extracted from a bearer token.
type Claims struct {
	UserID string
	Role   string
	JTI    string
}

// TokenValidator validates a bearer token string.
type TokenValidator interface {
	ValidateToken(tokenString string) (*Claims, error)
}

// RevocationChecker reports whether a token ID has been revoked (logout).
type RevocationChecker interface {
	IsTokenRevoked(ctx context.Context, jti string) (bool, error)
}

type contextKeyUserID struct{}
type contextKeyRole struct{}

var (
	ContextKeyUserID = contextKeyUserID{}
	ContextKeyRole   = contextKeyRole{}
)

// WithIdentity stores identity claims in the context the way RequireAuth
// does; tests use it to simulate authenticated requests.
func WithIdentity(ctx context.Context, userID, role string) context.Context {
	ctx = context.WithValue(ctx, ContextKeyUserID, userID)
	return context.WithValue(ctx, ContextKeyRole, role)
}

// GetUserID retrieves the authenticated user ID from the context.
func GetUserID(ctx context.Context) string {
	id, ok := ctx.Value(ContextKeyUserID).(string)
	if !ok {
		return ""
	}
	return id
}

// GetRole retrieves the authenticated role from the context.
func GetRole(ctx context.Context) string {
	role, ok := ctx.Value(ContextKeyRole).(string)
	if !ok {
		return ""
	}
	return role
}

func writeAuthError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"error":"` + code + `","message":"` + message + `"}`))
}

// RequireAuth validates the Authorization bearer token, checks revocation,
// and stores the claims in the request context.
func RequireAuth(validator TokenValidator, revocation RevocationChecker, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			authHeader := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", GetRequestID(ctx),
				)
				writeAuthError(w, http.StatusUnauthorized, "SECURITY_ERROR", "missing or invalid Authorization header")
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err.Error(),
					"request_id", GetRequestID(ctx),
				)
				writeAuthError(w, http.StatusUnauthorized, "SECURITY_ERROR", "invalid or expired token")
				return
			}

			if revocation != nil && claims.JTI != "" {
				revoked, err := revocation.IsTokenRevoked(ctx, claims.JTI)
				if err != nil {
					logger.ErrorContext(ctx, "failed to check token revocation",
						"error", err.Error(),
						"request_id", GetRequestID(ctx),
					)
					writeAuthError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to validate token")
					return
				}
				if revoked {
					logger.WarnContext(ctx, "unauthorized access - token revoked",
						"jti", claims.JTI,
						"request_id", GetRequestID(ctx),
					)
					writeAuthError(w, http.StatusUnauthorized, "SECURITY_ERROR", "token has been revoked")
					return
				}
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(ctx, claims.UserID, claims.Role)))
		})
	}
}

// RequireAdmin rejects authenticated requests whose role is not admin. It
// must run after RequireAuth.
func RequireAdmin(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if GetRole(ctx) != RoleAdmin {
				logger.WarnContext(ctx, "forbidden - admin role required",
					"user_id", GetUserID(ctx),
					"request_id", GetRequestID(ctx),
				)
				writeAuthError(w, http.StatusForbidden, "SECURITY_ERROR", "admin role required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
