package domain

import "time"

// InvitationValidity is how long an invitation can be redeemed after it is
// created.
const InvitationValidity = 48 * time.Hour

// InvitationStatus tracks an invitation through its lifecycle. The expired
// status is advisory: redemption always compares against ExpiresAt, so a
// stale pending row past its expiry is just as dead as an expired one.
type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationExpired  InvitationStatus = "expired"
)

// Invitation is a single-use capability binding an email to a role. The raw
// token is returned to the issuer once and never stored; lookups go through
// its SHA-256 fingerprint.
type Invitation struct {
	ID            string
	TokenHash     string
	Email         string
	Role          Role // agent or student, never admin
	InvitedBy     string
	InvitedByName string
	AgentID       string // propagated to the account when Role is student
	Status        InvitationStatus
	AcceptedBy    string // account id once redeemed
	ExpiresAt     time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Expired reports whether the invitation is past its validity window at
// the given instant.
func (inv Invitation) Expired(now time.Time) bool {
	return now.After(inv.ExpiresAt)
}
