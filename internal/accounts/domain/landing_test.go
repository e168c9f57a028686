package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveLandingState(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		account *Account
		want    LandingTarget
	}{
		{"nil account goes to login", nil, LandingLogin},
		{
			"pending student holds",
			&Account{Role: RoleStudent, Status: StatusPending},
			LandingPendingHold,
		},
		{
			"pending agent holds",
			&Account{Role: RoleAgent, Status: StatusPending},
			LandingPendingHold,
		},
		{
			// Status wins over role: no admin console until approved.
			"pending admin holds",
			&Account{Role: RoleAdmin, Status: StatusPending},
			LandingPendingHold,
		},
		{
			"active admin gets the console",
			&Account{Role: RoleAdmin, Status: StatusActive},
			LandingAdminConsole,
		},
		{
			"active agent gets the dashboard",
			&Account{Role: RoleAgent, Status: StatusActive},
			LandingDashboard,
		},
		{
			"active student gets the dashboard",
			&Account{Role: RoleStudent, Status: StatusActive},
			LandingDashboard,
		},
		{
			"suspended admin goes to login",
			&Account{Role: RoleAdmin, Status: StatusSuspended},
			LandingLogin,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, ResolveLandingState(tc.account))
		})
	}
}

func TestTokenScopes(t *testing.T) {
	t.Parallel()

	t.Run("active accounts get role scopes", func(t *testing.T) {
		admin := Account{Role: RoleAdmin, Status: StatusActive}
		require.Contains(t, admin.TokenScopes(), "accounts:write")

		agent := Account{Role: RoleAgent, Status: StatusActive}
		require.Contains(t, agent.TokenScopes(), "invites:write")
		require.NotContains(t, agent.TokenScopes(), "accounts:write")

		student := Account{Role: RoleStudent, Status: StatusActive}
		require.NotContains(t, student.TokenScopes(), "invites:write")
	})

	t.Run("pending accounts get read-only scopes regardless of role", func(t *testing.T) {
		pendingAdmin := Account{Role: RoleAdmin, Status: StatusPending}
		require.Equal(t, []string{"profile:read"}, pendingAdmin.TokenScopes())
	})

	t.Run("suspended accounts get read-only scopes", func(t *testing.T) {
		suspended := Account{Role: RoleAgent, Status: StatusSuspended}
		require.Equal(t, []string{"profile:read"}, suspended.TokenScopes())
	})
}
