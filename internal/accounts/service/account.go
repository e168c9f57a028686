package service

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"time"

	"github.com/studyconnect/accounts/internal/accounts/domain"
	"github.com/studyconnect/accounts/internal/accounts/store"
	"github.com/studyconnect/accounts/pkg/cryptox"
	"github.com/studyconnect/accounts/pkg/idx"
	"github.com/studyconnect/accounts/pkg/slogx"
)

// MinPasswordLength is the floor for new account passwords.
const MinPasswordLength = 8

var (
	ErrInvalidRegistration = errors.New("invalid registration request")
	ErrWeakPassword        = errors.New("password does not meet minimum length")
	ErrEmailTaken          = errors.New("email already registered")
	ErrAccountNotFound     = errors.New("account not found")
	ErrApproveForbidden    = errors.New("only active admins approve accounts")
	ErrNotApprovable       = errors.New("account cannot be approved from its current status")
)

// AccountService owns the account lifecycle: redemption, self registration,
// the approval queue, and lookups.
type AccountService struct {
	Store store.Store
	Feed  *PendingFeed

	// Invites resolves tokens during redemption.
	Invites *InviteService
}

// RedeemInvitation consumes an invitation token and creates the account it
// describes. Students activate immediately and inherit the invitation's
// agent binding; agents are created pending and wait for admin approval.
// The token is consumed atomically with account creation, so concurrent
// redemptions of the same token produce exactly one account.
func (s *AccountService) RedeemInvitation(
	ctx context.Context,
	token string,
	displayName string,
	password string,
) (domain.Account, error) {
	log := slogx.FromContext(ctx)

	// 1. Validate input.
	if token == "" || displayName == "" {
		return domain.Account{}, ErrInvalidRegistration
	}
	if len(password) < MinPasswordLength {
		return domain.Account{}, ErrWeakPassword
	}

	// 2. Resolve the token. Unknown, used, and expired each surface their
	// own error.
	inv, err := s.Invites.ValidateToken(ctx, token)
	if err != nil {
		return domain.Account{}, err
	}

	// 3. Reject a duplicate email before doing any writes.
	if _, err := s.Store.Accounts().GetByEmail(ctx, inv.Email); err == nil {
		log.Warn("redemption attempted for already-registered email",
			slog.String("invitation_id", inv.ID),
		)
		return domain.Account{}, ErrEmailTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		log.Error("failed to check email availability", slog.Any("error", err))
		return domain.Account{}, err
	}

	// 4. Hash the password using Argon2id.
	passwordHash, err := cryptox.HashPassword(password)
	if err != nil {
		log.Error("failed to hash password", slog.Any("error", err))
		return domain.Account{}, err
	}

	// 5. Build the account from the invitation.
	now := time.Now().UTC()
	account := domain.Account{
		ID:           idx.New().String(),
		Email:        inv.Email,
		DisplayName:  displayName,
		PasswordHash: passwordHash,
		Role:         inv.Role,
		InvitedBy:    inv.InvitedBy,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	switch inv.Role {
	case domain.RoleStudent:
		account.Status = domain.StatusActive
		account.AgentID = inv.AgentID
	default:
		account.Status = domain.StatusPending
	}

	// 6. Consume the token and create the account atomically. The accept
	// is a conditional write guarded on pending status; losing that race
	// means another redemption already consumed the token.
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		accepted, err := tx.Invitations().Accept(ctx, inv.ID, account.ID)
		if err != nil {
			log.Error("failed to accept invitation",
				slog.String("invitation_id", inv.ID),
				slog.Any("error", err),
			)
			return err
		}
		if !accepted {
			log.Warn("invitation lost redemption race",
				slog.String("invitation_id", inv.ID),
			)
			return ErrInviteAlreadyUsed
		}

		if err := tx.Accounts().Create(ctx, account); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrEmailTaken
			}
			log.Error("failed to create account",
				slog.String("account_id", account.ID),
				slog.Any("error", err),
			)
			return err
		}
		return nil
	})
	if err != nil {
		return domain.Account{}, err
	}

	log.Info("invitation redeemed",
		slog.String("account_id", account.ID),
		slog.String("invitation_id", inv.ID),
		slog.String("role", string(account.Role)),
		slog.String("status", string(account.Status)),
	)

	if account.Status == domain.StatusPending {
		s.Feed.Notify()
	}
	return account, nil
}

// Register creates an account without an invitation. Self-registered
// accounts always start pending regardless of role, and the admin role is
// not self-assignable.
func (s *AccountService) Register(
	ctx context.Context,
	email string,
	displayName string,
	password string,
	role domain.Role,
) (domain.Account, error) {
	log := slogx.FromContext(ctx)

	// 1. Validate input.
	if _, err := mail.ParseAddress(email); err != nil {
		return domain.Account{}, ErrInvalidRegistration
	}
	if displayName == "" || !role.Valid() || role == domain.RoleAdmin {
		return domain.Account{}, ErrInvalidRegistration
	}
	if len(password) < MinPasswordLength {
		return domain.Account{}, ErrWeakPassword
	}

	// 2. Hash the password.
	passwordHash, err := cryptox.HashPassword(password)
	if err != nil {
		log.Error("failed to hash password", slog.Any("error", err))
		return domain.Account{}, err
	}

	now := time.Now().UTC()
	account := domain.Account{
		ID:           idx.New().String(),
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: passwordHash,
		Role:         role,
		Status:       domain.StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// 3. Create. The unique index on email is the arbiter for duplicate
	// registrations.
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Accounts().Create(ctx, account); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				log.Warn("registration attempted with taken email")
				return ErrEmailTaken
			}
			log.Error("failed to create account", slog.Any("error", err))
			return err
		}
		return nil
	})
	if err != nil {
		return domain.Account{}, err
	}

	log.Info("account registered",
		slog.String("account_id", account.ID),
		slog.String("role", string(role)),
	)

	s.Feed.Notify()
	return account, nil
}

// Approve moves a pending account to active. Only active admins may
// approve. Approving an already-active account succeeds without touching
// it, so two admins working the same queue never see a spurious failure.
func (s *AccountService) Approve(
	ctx context.Context,
	approver domain.Account,
	accountID string,
) (domain.Account, error) {
	log := slogx.FromContext(ctx)

	// 1. Authorize against the live approver record, not a stale token.
	if approver.Role != domain.RoleAdmin || approver.Status != domain.StatusActive {
		log.Warn("approval attempted by non-admin",
			slog.String("approver_id", approver.ID),
			slog.String("account_id", accountID),
		)
		return domain.Account{}, ErrApproveForbidden
	}

	var approved domain.Account
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		account, err := tx.Accounts().GetByID(ctx, accountID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrAccountNotFound
			}
			log.Error("failed to fetch account", slog.Any("error", err))
			return err
		}

		switch account.Status {
		case domain.StatusActive:
			// Already approved, possibly by a concurrent admin.
			approved = account
			return nil
		case domain.StatusSuspended:
			return ErrNotApprovable
		}

		now := time.Now().UTC()
		changed, err := tx.Accounts().ApprovePending(ctx, accountID, now)
		if err != nil {
			log.Error("failed to approve account",
				slog.String("account_id", accountID),
				slog.Any("error", err),
			)
			return err
		}
		if !changed {
			// Raced with another approval inside the read-modify window.
			approved, err = tx.Accounts().GetByID(ctx, accountID)
			return err
		}

		account.Status = domain.StatusActive
		account.ApprovedAt = &now
		account.UpdatedAt = now
		approved = account
		return nil
	})
	if err != nil {
		return domain.Account{}, err
	}

	log.Info("account approved",
		slog.String("account_id", approved.ID),
		slog.String("approver_id", approver.ID),
	)

	s.Feed.Notify()
	return approved, nil
}

// ListPending returns the approval queue, newest first.
func (s *AccountService) ListPending(ctx context.Context) ([]domain.Account, error) {
	return s.Store.Accounts().ListPending(ctx)
}

// Get returns an account by id.
func (s *AccountService) Get(ctx context.Context, id string) (domain.Account, error) {
	account, err := s.Store.Accounts().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Account{}, ErrAccountNotFound
		}
		return domain.Account{}, err
	}
	return account, nil
}
