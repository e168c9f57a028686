package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Default token TTL constants.
const (
	// DefaultAccessTokenTTL is the default lifetime for access tokens.
	// Short-lived so a stale role or status claim ages out quickly.
	DefaultAccessTokenTTL = 15 * time.Minute

	// DefaultRefreshTokenTTL is the default lifetime for refresh tokens.
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// Claims are access-token claims shared between the service and its
// clients. Keep changes additive.
type Claims struct {
	jwt.RegisteredClaims

	// SID is the session id backing this access token.
	SID string `json:"sid,omitempty"`

	// Scopes granted to this token, e.g. "invites:write".
	Scopes []string `json:"scopes,omitempty"`

	// Role of the account at issue time (admin, agent, student).
	Role string `json:"role,omitempty"`

	// Status of the account at issue time (pending, active, suspended).
	// Advisory only: authorization decisions re-read the store.
	Status string `json:"status,omitempty"`

	// Email of the authenticated account.
	Email string `json:"email,omitempty"`

	// DisplayName is the account's display name.
	DisplayName string `json:"display_name,omitempty"`
}

// NewAccessClaims builds minimally-correct claims.
func NewAccessClaims(
	subject, sid string,
	scopes []string,
	role, status string,
	ttl time.Duration,
	issuer string,
	email, displayName string,
	now time.Time,
) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		SID:         sid,
		Scopes:      scopes,
		Role:        role,
		Status:      status,
		Email:       email,
		DisplayName: displayName,
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// ValidateIssuer checks if the issuer matches the expected value.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected == "" {
		return nil // nothing to enforce
	}
	if c.Issuer != expected {
		return ErrIssuer
	}
	return nil
}

// ValidateExpiry ensures the token hasn't expired (exp) and isn't used
// before it is valid (nbf).
func (c *Claims) ValidateExpiry() error {
	now := time.Now().UTC()

	if c.ExpiresAt != nil && now.After(c.ExpiresAt.Time) {
		return ErrExpired
	}
	if c.NotBefore != nil && now.Before(c.NotBefore.Time) {
		return ErrNotYetValid
	}
	return nil
}
