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

func TestRedeemInvitationStudent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	agent := env.seedAccount(t, domain.RoleAgent, domain.StatusActive, "agent@example.com")
	token, inv, err := env.invites.CreateInvitation(ctx, agent, "student@example.com", domain.RoleStudent, "")
	require.NoError(t, err)

	account, err := env.accounts.RedeemInvitation(ctx, token, "New Student", "hunter2hunter2")
	require.NoError(t, err)

	// Students activate immediately and inherit the issuing agent.
	require.Equal(t, domain.RoleStudent, account.Role)
	require.Equal(t, domain.StatusActive, account.Status)
	require.Equal(t, agent.ID, account.AgentID)
	require.Equal(t, agent.ID, account.InvitedBy)
	require.Equal(t, "student@example.com", account.Email)
	require.Nil(t, account.ApprovedAt)

	// The invitation is consumed.
	got, err := env.store.Invitations().GetByTokenHash(ctx, inv.TokenHash)
	require.NoError(t, err)
	require.Equal(t, domain.InvitationAccepted, got.Status)
	require.Equal(t, account.ID, got.AcceptedBy)
}

func TestRedeemInvitationAgentNeedsApproval(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	admin := env.seedAccount(t, domain.RoleAdmin, domain.StatusActive, "admin@example.com")
	token, _, err := env.invites.CreateInvitation(ctx, admin, "agent@example.com", domain.RoleAgent, "")
	require.NoError(t, err)

	account, err := env.accounts.RedeemInvitation(ctx, token, "New Agent", "hunter2hunter2")
	require.NoError(t, err)
	require.Equal(t, domain.RoleAgent, account.Role)
	require.Equal(t, domain.StatusPending, account.Status)

	approved, err := env.accounts.Approve(ctx, admin, account.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusActive, approved.Status)
	require.NotNil(t, approved.ApprovedAt)

	t.Run("second approval is a no-op", func(t *testing.T) {
		again, err := env.accounts.Approve(ctx, admin, account.ID)
		require.NoError(t, err)
		require.Equal(t, domain.StatusActive, again.Status)
		require.NotNil(t, again.ApprovedAt)
		require.WithinDuration(t, *approved.ApprovedAt, *again.ApprovedAt, time.Second)
	})
}

func TestRedeemInvitationTwice(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	admin := env.seedAccount(t, domain.RoleAdmin, domain.StatusActive, "admin@example.com")
	token, _, err := env.invites.CreateInvitation(ctx, admin, "once@example.com", domain.RoleStudent, "")
	require.NoError(t, err)

	_, err = env.accounts.RedeemInvitation(ctx, token, "First", "hunter2hunter2")
	require.NoError(t, err)

	_, err = env.accounts.RedeemInvitation(ctx, token, "Second", "hunter2hunter2")
	require.ErrorIs(t, err, ErrInviteAlreadyUsed)
}

func TestRedeemInvitationValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	admin := env.seedAccount(t, domain.RoleAdmin, domain.StatusActive, "admin@example.com")
	token, _, err := env.invites.CreateInvitation(ctx, admin, "v@example.com", domain.RoleStudent, "")
	require.NoError(t, err)

	t.Run("short password", func(t *testing.T) {
		_, err := env.accounts.RedeemInvitation(ctx, token, "Name", "short")
		require.ErrorIs(t, err, ErrWeakPassword)
	})

	t.Run("missing display name", func(t *testing.T) {
		_, err := env.accounts.RedeemInvitation(ctx, token, "", "hunter2hunter2")
		require.ErrorIs(t, err, ErrInvalidRegistration)
	})

	t.Run("expired token", func(t *testing.T) {
		// Stale invitation inserted directly, past its window.
		staleToken, err := cryptox.GenerateToken(cryptox.TokenSize256)
		require.NoError(t, err)
		created := time.Now().UTC().Add(-49 * time.Hour)
		require.NoError(t, env.store.Invitations().Create(ctx, domain.Invitation{
			ID:        idx.New().String(),
			TokenHash: cryptox.FingerprintToken(staleToken),
			Email:     "late@example.com",
			Role:      domain.RoleStudent,
			InvitedBy: admin.ID,
			Status:    domain.InvitationPending,
			ExpiresAt: created.Add(48 * time.Hour),
			CreatedAt: created,
			UpdatedAt: created,
		}))

		_, err = env.accounts.RedeemInvitation(ctx, staleToken, "Late", "hunter2hunter2")
		require.ErrorIs(t, err, ErrInviteExpired)
	})

	t.Run("email already registered", func(t *testing.T) {
		env.seedAccount(t, domain.RoleStudent, domain.StatusActive, "taken@example.com")
		takenToken, _, err := env.invites.CreateInvitation(ctx, admin, "taken@example.com", domain.RoleStudent, "")
		require.NoError(t, err)

		_, err = env.accounts.RedeemInvitation(ctx, takenToken, "Dup", "hunter2hunter2")
		require.ErrorIs(t, err, ErrEmailTaken)
	})
}

func TestRegister(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	t.Run("self-registered accounts start pending", func(t *testing.T) {
		account, err := env.accounts.Register(ctx, "self@example.com", "Self Starter", "hunter2hunter2", domain.RoleAgent)
		require.NoError(t, err)
		require.Equal(t, domain.StatusPending, account.Status)
		require.Empty(t, account.InvitedBy)
	})

	t.Run("duplicate email rejected", func(t *testing.T) {
		_, err := env.accounts.Register(ctx, "self@example.com", "Again", "hunter2hunter2", domain.RoleStudent)
		require.ErrorIs(t, err, ErrEmailTaken)
	})

	t.Run("admin role not self-assignable", func(t *testing.T) {
		_, err := env.accounts.Register(ctx, "boss@example.com", "Boss", "hunter2hunter2", domain.RoleAdmin)
		require.ErrorIs(t, err, ErrInvalidRegistration)
	})
}

func TestApproveAuthorization(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	agent := env.seedAccount(t, domain.RoleAgent, domain.StatusActive, "agent@example.com")
	pendingAdmin := env.seedAccount(t, domain.RoleAdmin, domain.StatusPending, "pending-admin@example.com")
	pending := env.seedAccount(t, domain.RoleAgent, domain.StatusPending, "target@example.com")

	t.Run("agents cannot approve", func(t *testing.T) {
		_, err := env.accounts.Approve(ctx, agent, pending.ID)
		require.ErrorIs(t, err, ErrApproveForbidden)
	})

	t.Run("pending admins cannot approve", func(t *testing.T) {
		_, err := env.accounts.Approve(ctx, pendingAdmin, pending.ID)
		require.ErrorIs(t, err, ErrApproveForbidden)
	})

	t.Run("unknown account", func(t *testing.T) {
		admin := env.seedAccount(t, domain.RoleAdmin, domain.StatusActive, "admin@example.com")
		_, err := env.accounts.Approve(ctx, admin, "no-such-id")
		require.ErrorIs(t, err, ErrAccountNotFound)
	})
}

func TestListPendingNewestFirst(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for i, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		now := time.Now().UTC().Add(time.Duration(i) * time.Minute)
		hash, err := cryptox.HashPassword("hunter2hunter2")
		require.NoError(t, err)
		require.NoError(t, env.store.Accounts().Create(ctx, domain.Account{
			ID:           idx.New().String(),
			Email:        email,
			DisplayName:  email,
			PasswordHash: hash,
			Role:         domain.RoleAgent,
			Status:       domain.StatusPending,
			CreatedAt:    now,
			UpdatedAt:    now,
		}))
	}
	env.seedAccount(t, domain.RoleStudent, domain.StatusActive, "active@example.com")

	queue, err := env.accounts.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, queue, 3)
	require.Equal(t, "c@example.com", queue[0].Email)
	require.Equal(t, "b@example.com", queue[1].Email)
	require.Equal(t, "a@example.com", queue[2].Email)
}

func TestPendingFeed(t *testing.T) {
	t.Parallel()

	feed := NewPendingFeed()
	ch, cancel := feed.Subscribe()
	defer cancel()

	feed.Notify()
	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("expected a wakeup")
	}

	// Repeated notifies collapse into one queued wakeup.
	feed.Notify()
	feed.Notify()
	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("expected a wakeup")
	}

	cancel()
	feed.Notify() // must not panic or block after unsubscribe
}
