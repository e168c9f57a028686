package accountsdk

import (
	"github.com/studyconnect/accounts/pkg/jwtx"
)

// ErrorResponse is the standard error body returned by every endpoint.
type ErrorResponse struct {
	// Error is the machine-readable error code (e.g., "invalid_request")
	Error string `json:"error"`

	// ErrorDescription is a human-readable description of the error
	ErrorDescription string `json:"error_description"`
}

// TokenResponse is returned from login and refresh.
type TokenResponse struct {
	// AccessToken is the JWT access token used to authenticate API requests
	AccessToken string `json:"access_token"`

	// RefreshToken is the opaque refresh token used to obtain new access tokens
	RefreshToken string `json:"refresh_token"`

	// TokenType is always "Bearer"
	TokenType string `json:"token_type"`

	// ExpiresIn is the lifetime in seconds of the access token
	ExpiresIn int `json:"expires_in"`
}

// Account is the wire representation of an account.
type Account struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`

	// Role is one of admin, agent, student.
	Role string `json:"role"`

	// Status is one of pending, active, suspended.
	Status string `json:"status"`

	// InvitedBy is the account id of the inviter, empty for bootstrap and
	// self-registered accounts.
	InvitedBy string `json:"invited_by,omitempty"`

	// AgentID binds a student to their agent.
	AgentID string `json:"agent_id,omitempty"`

	// ApprovedAt is set once an admin approves the account (Unix seconds).
	ApprovedAt int64 `json:"approved_at,omitempty"`

	// LastLoginAt is the most recent successful login (Unix seconds).
	LastLoginAt int64 `json:"last_login_at,omitempty"`

	CreatedAt int64 `json:"created_at"`
}

// MeResponse is returned from GET /v1/me: the caller's account plus where
// the client should land.
type MeResponse struct {
	Account Account `json:"account"`

	// Landing is one of login, pending, admin-console, dashboard.
	Landing string `json:"landing"`
}

// BootstrapRequest seeds the first admin account.
type BootstrapRequest struct {
	// Token is the pre-configured bootstrap token.
	Token string `json:"token"`

	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Password    string `json:"password"`
}

// BootstrapResponse contains the created admin account id.
type BootstrapResponse struct {
	AccountID string `json:"account_id"`
}

// LoginRequest authenticates with email and password.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse bundles the token pair with the resolved landing state so
// clients can navigate without a second round trip.
type LoginResponse struct {
	TokenResponse
	Account Account `json:"account"`
	Landing string  `json:"landing"`
}

// RefreshRequest rotates a refresh token.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// LogoutRequest revokes the session behind a refresh token.
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// InviteRequest mints a new invitation.
type InviteRequest struct {
	Email string `json:"email"`

	// Role is agent or student; admin is not grantable by invitation.
	Role string `json:"role"`

	// AgentID optionally binds a student invitation to an agent. Defaults
	// to the issuer when the issuer is an agent.
	AgentID string `json:"agent_id,omitempty"`
}

// InviteResponse returns the raw invitation token. This is the only time
// the token is visible; the service stores only its fingerprint.
type InviteResponse struct {
	InviteToken  string `json:"invite_token"`
	InvitationID string `json:"invitation_id"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	ExpiresAt    int64  `json:"expires_at"`
}

// InvitationPreview is what a prospective user sees before redeeming.
type InvitationPreview struct {
	Email         string `json:"email"`
	Role          string `json:"role"`
	InvitedByName string `json:"invited_by_name,omitempty"`
	ExpiresAt     int64  `json:"expires_at"`
}

// RedeemRequest consumes an invitation token and creates the account.
type RedeemRequest struct {
	Token       string `json:"token"`
	DisplayName string `json:"display_name"`
	Password    string `json:"password"`
}

// RedeemResponse returns the new account and its landing state. Students
// land on the dashboard immediately; agents land on the pending screen.
type RedeemResponse struct {
	Account Account `json:"account"`
	Landing string  `json:"landing"`
}

// RegisterRequest creates an account without an invitation. The account
// starts pending and waits for admin approval.
type RegisterRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Password    string `json:"password"`

	// Role is agent or student.
	Role string `json:"role"`
}

// PendingListResponse is the admin approval queue, newest first.
type PendingListResponse struct {
	Accounts []Account `json:"accounts"`
}

// HealthChecks reports the state of critical dependencies.
type HealthChecks struct {
	Database string `json:"database"`
	Signer   string `json:"signer"`
}

// HealthResponse is returned from the livez and readyz endpoints.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// JWKSResponse is the JSON Web Key Set returned from the well-known
// endpoint.
type JWKSResponse = jwtx.JWKS
