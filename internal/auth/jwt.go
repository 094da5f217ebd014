// Package auth issues and validates the JWT bearer tokens behind the admin
// API, and tracks revoked token IDs so logout takes effect before expiry.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"treasurehunt/internal/platform/middleware"
)

const issuer = "treasurehunt"

type tokenClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Tokens signs and validates HS256 JWTs. It satisfies
// middleware.TokenValidator.
type Tokens struct {
	signingKey []byte
	ttl        time.Duration
}

// NewTokens constructs a token signer with the given key and lifetime.
func NewTokens(signingKey string, ttl time.Duration) *Tokens {
	return &Tokens{signingKey: []byte(signingKey), ttl: ttl}
}

// Issue signs a token for the given identity. The returned jti identifies
// the token for revocation.
func (t *Tokens) Issue(userID, role string) (token, jti string, expiresAt time.Time, err error) {
	now := time.Now()
	expiresAt = now.Add(t.ttl)
	jti = uuid.NewString()

	claims := tokenClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   userID,
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.signingKey)
	if err != nil {
		return "", "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return token, jti, expiresAt, nil
}

// ValidateToken parses and verifies a bearer token string.
func (t *Tokens) ValidateToken(tokenString string) (*middleware.Claims, error) {
	var claims tokenClaims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return t.signingKey, nil
	}, jwt.WithIssuer(issuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	return &middleware.Claims{
		UserID: claims.Subject,
		Role:   claims.Role,
		JTI:    claims.ID,
	}, nil
}

// TTL returns the configured token lifetime.
func (t *Tokens) TTL() time.Duration { return t.ttl }
