package domain

import "time"

// Role is the fixed set of account roles. There is no roles table: the
// product only ever has these three and their scope grants are part of the
// contract.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleAgent   Role = "agent"
	RoleStudent Role = "student"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleAgent, RoleStudent:
		return true
	}
	return false
}

// Scopes returns the token scopes granted to an active account with this
// role.
func (r Role) Scopes() []string {
	switch r {
	case RoleAdmin:
		return []string{"profile:read", "profile:write", "accounts:read", "accounts:write", "invites:write"}
	case RoleAgent:
		return []string{"profile:read", "profile:write", "invites:write"}
	default:
		return []string{"profile:read", "profile:write"}
	}
}

// Status is an account's lifecycle state. Transitions: pending -> active via
// admin approval. suspended is reserved for future administrative action;
// nothing in the service produces it yet.
type Status string

const (
	StatusPending   Status = "pending"
	StatusActive    Status = "active"
	StatusSuspended Status = "suspended"
)

type Account struct {
	ID           string
	Email        string
	DisplayName  string
	PasswordHash string // argon2id, PHC encoded
	Role         Role
	Status       Status
	InvitedBy    string // empty for bootstrap admins
	AgentID      string // set only for students bound to an agent
	ApprovedAt   *time.Time
	LastLoginAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TokenScopes returns the scopes an access token for this account should
// carry. Status gates before role: pending and suspended accounts get a
// read-only profile scope no matter what their role says.
func (a Account) TokenScopes() []string {
	if a.Status != StatusActive {
		return []string{"profile:read"}
	}
	return a.Role.Scopes()
}
