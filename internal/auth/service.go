package auth

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"treasurehunt/internal/platform/middleware"
	dErrors "treasurehunt/pkg/domain-errors"
)

// Session is a successful login result.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Role      string    `json:"role"`
}

// Service authenticates the admin account and manages token revocation.
// The admin is seeded from configuration; the password is hashed at
// startup so only the bcrypt digest stays in memory.
type Service struct {
	adminEmail   string
	passwordHash []byte
	tokens       *Tokens
	revocations  RevocationStore
	logger       *slog.Logger
}

// NewService hashes the configured admin password and wires the token
// machinery. An empty email or password disables login entirely.
func NewService(adminEmail, adminPassword string, tokens *Tokens, revocations RevocationStore, logger *slog.Logger) (*Service, error) {
	s := &Service{
		adminEmail:  strings.ToLower(strings.TrimSpace(adminEmail)),
		tokens:      tokens,
		revocations: revocations,
		logger:      logger,
	}
	if s.adminEmail != "" && adminPassword != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeConfiguration, "hash admin password")
		}
		s.passwordHash = hash
	}
	return s, nil
}

// Login verifies credentials and issues a bearer token. Wrong email and
// wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	if s.passwordHash == nil {
		return nil, dErrors.New(dErrors.CodeConfiguration, "admin login is not configured")
	}

	email = strings.ToLower(strings.TrimSpace(email))
	if email != s.adminEmail {
		// Burn a bcrypt comparison anyway so the timing does not
		// reveal whether the email matched.
		_ = bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password))
		return nil, dErrors.New(dErrors.CodeSecurity, "invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)); err != nil {
		s.logger.WarnContext(ctx, "failed login attempt", "email", email)
		return nil, dErrors.New(dErrors.CodeSecurity, "invalid credentials")
	}

	token, _, expiresAt, err := s.tokens.Issue(s.adminEmail, middleware.RoleAdmin)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "issue token")
	}
	s.logger.InfoContext(ctx, "admin logged in", "email", email)
	return &Session{Token: token, ExpiresAt: expiresAt, Role: middleware.RoleAdmin}, nil
}

// Logout revokes the presented token for the remainder of its lifetime.
func (s *Service) Logout(ctx context.Context, tokenString string) error {
	claims, err := s.tokens.ValidateToken(tokenString)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeSecurity, "invalid token")
	}
	if err := s.revocations.Revoke(ctx, claims.JTI, s.tokens.TTL()); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "revoke token")
	}
	s.logger.InfoContext(ctx, "token revoked", "jti", claims.JTI)
	return nil
}
