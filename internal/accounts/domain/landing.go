package domain

// LandingTarget is where a client should navigate after resolving the
// current account.
type LandingTarget string

const (
	LandingLogin        LandingTarget = "login"
	LandingPendingHold  LandingTarget = "pending"
	LandingAdminConsole LandingTarget = "admin-console"
	LandingDashboard    LandingTarget = "dashboard"
)

// ResolveLandingState maps an account's (status, role) pair to a landing
// target. Status is checked before role in every branch: a pending admin
// lands on the pending screen, not the admin console. Suspended accounts
// are sent back to login.
func ResolveLandingState(account *Account) LandingTarget {
	if account == nil {
		return LandingLogin
	}

	switch account.Status {
	case StatusPending:
		return LandingPendingHold
	case StatusSuspended:
		return LandingLogin
	}

	if account.Role == RoleAdmin {
		return LandingAdminConsole
	}
	return LandingDashboard
}
