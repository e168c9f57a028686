package domain

import "time"

// Session backs a refresh token. The raw token is opaque to the service and
// stored only as a SHA-256 fingerprint.
type Session struct {
	ID        string
	AccountID string
	TokenHash string
	ExpiresAt time.Time
	Revoked   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
