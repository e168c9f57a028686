package service

import (
	"context"
	"testing"
	"time"

	"github.com/studyconnect/accounts/internal/accounts/domain"
	"github.com/studyconnect/accounts/pkg/cryptox"
	"github.com/studyconnect/accounts/pkg/idx"
	"github.com/stretchr/testify/require"
)

func TestCreateInvitationAuthorization(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	admin := env.seedAccount(t, domain.RoleAdmin, domain.StatusActive, "admin@example.com")
	agent := env.seedAccount(t, domain.RoleAgent, domain.StatusActive, "agent@example.com")
	student := env.seedAccount(t, domain.RoleStudent, domain.StatusActive, "student@example.com")
	pendingAgent := env.seedAccount(t, domain.RoleAgent, domain.StatusPending, "pending-agent@example.com")

	t.Run("admin invites agents", func(t *testing.T) {
		token, inv, err := env.invites.CreateInvitation(ctx, admin, "new-agent@example.com", domain.RoleAgent, "")
		require.NoError(t, err)
		require.NotEmpty(t, token)
		require.Equal(t, domain.RoleAgent, inv.Role)
		require.Equal(t, admin.ID, inv.InvitedBy)
		require.Empty(t, inv.AgentID)
	})

	t.Run("admin invites students with explicit agent binding", func(t *testing.T) {
		_, inv, err := env.invites.CreateInvitation(ctx, admin, "s1@example.com", domain.RoleStudent, agent.ID)
		require.NoError(t, err)
		require.Equal(t, agent.ID, inv.AgentID)
	})

	t.Run("agent invites students and becomes the default binding", func(t *testing.T) {
		_, inv, err := env.invites.CreateInvitation(ctx, agent, "s2@example.com", domain.RoleStudent, "")
		require.NoError(t, err)
		require.Equal(t, agent.ID, inv.AgentID)
		require.Equal(t, agent.DisplayName, inv.InvitedByName)
	})

	t.Run("agent may not invite agents", func(t *testing.T) {
		_, _, err := env.invites.CreateInvitation(ctx, agent, "a2@example.com", domain.RoleAgent, "")
		require.ErrorIs(t, err, ErrInviteForbidden)
	})

	t.Run("students may not invite", func(t *testing.T) {
		_, _, err := env.invites.CreateInvitation(ctx, student, "s3@example.com", domain.RoleStudent, "")
		require.ErrorIs(t, err, ErrInviteForbidden)
	})

	t.Run("pending issuers may not invite", func(t *testing.T) {
		_, _, err := env.invites.CreateInvitation(ctx, pendingAgent, "s4@example.com", domain.RoleStudent, "")
		require.ErrorIs(t, err, ErrInviteForbidden)
	})

	t.Run("admin role cannot be granted by invitation", func(t *testing.T) {
		_, _, err := env.invites.CreateInvitation(ctx, admin, "a3@example.com", domain.RoleAdmin, "")
		require.ErrorIs(t, err, ErrInviteRoleNotAllowed)
	})

	t.Run("invalid email rejected", func(t *testing.T) {
		_, _, err := env.invites.CreateInvitation(ctx, admin, "not-an-email", domain.RoleStudent, "")
		require.ErrorIs(t, err, ErrInvalidInviteRequest)
	})
}

func TestInvitationExpiryWindow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	admin := env.seedAccount(t, domain.RoleAdmin, domain.StatusActive, "admin@example.com")

	_, inv, err := env.invites.CreateInvitation(ctx, admin, "x@example.com", domain.RoleStudent, "")
	require.NoError(t, err)
	require.WithinDuration(t, inv.CreatedAt.Add(48*time.Hour), inv.ExpiresAt, time.Second)
}

func TestValidateToken(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	admin := env.seedAccount(t, domain.RoleAdmin, domain.StatusActive, "admin@example.com")

	t.Run("unknown token", func(t *testing.T) {
		_, err := env.invites.ValidateToken(ctx, "no-such-token")
		require.ErrorIs(t, err, ErrInviteNotFound)
	})

	t.Run("live token resolves", func(t *testing.T) {
		token, inv, err := env.invites.CreateInvitation(ctx, admin, "live@example.com", domain.RoleStudent, "")
		require.NoError(t, err)

		got, err := env.invites.ValidateToken(ctx, token)
		require.NoError(t, err)
		require.Equal(t, inv.ID, got.ID)
		require.Equal(t, admin.DisplayName, got.InvitedByName)
	})

	t.Run("expired by the clock even while status still reads pending", func(t *testing.T) {
		// Insert an invitation created 49 hours ago directly; housekeeping
		// has not stamped it yet.
		token, err := cryptox.GenerateToken(cryptox.TokenSize256)
		require.NoError(t, err)

		created := time.Now().UTC().Add(-49 * time.Hour)
		stale := domain.Invitation{
			ID:        idx.New().String(),
			TokenHash: cryptox.FingerprintToken(token),
			Email:     "stale@example.com",
			Role:      domain.RoleStudent,
			InvitedBy: admin.ID,
			Status:    domain.InvitationPending,
			ExpiresAt: created.Add(48 * time.Hour),
			CreatedAt: created,
			UpdatedAt: created,
		}
		require.NoError(t, env.store.Invitations().Create(ctx, stale))

		_, err = env.invites.ValidateToken(ctx, token)
		require.ErrorIs(t, err, ErrInviteExpired)
	})

	t.Run("consumed token reports already used, not expired", func(t *testing.T) {
		token, inv, err := env.invites.CreateInvitation(ctx, admin, "used@example.com", domain.RoleStudent, "")
		require.NoError(t, err)

		accepted, err := env.store.Invitations().Accept(ctx, inv.ID, "some-account")
		require.NoError(t, err)
		require.True(t, accepted)

		_, err = env.invites.ValidateToken(ctx, token)
		require.ErrorIs(t, err, ErrInviteAlreadyUsed)
	})
}

func TestHousekeepingStampsExpiredInvitations(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	admin := env.seedAccount(t, domain.RoleAdmin, domain.StatusActive, "admin@example.com")
	_, inv, err := env.invites.CreateInvitation(ctx, admin, "fresh@example.com", domain.RoleStudent, "")
	require.NoError(t, err)

	// Nothing to stamp yet.
	n, err := env.store.Invitations().MarkExpired(ctx, time.Now().UTC())
	require.NoError(t, err)
	require.Zero(t, n)

	// Advance past the window.
	n, err = env.store.Invitations().MarkExpired(ctx, time.Now().UTC().Add(49*time.Hour))
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	got, err := env.store.Invitations().GetByTokenHash(ctx, inv.TokenHash)
	require.NoError(t, err)
	require.Equal(t, domain.InvitationExpired, got.Status)
}
