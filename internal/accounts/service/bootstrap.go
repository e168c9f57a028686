package service

import (
	"context"
	"crypto/subtle"
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

var (
	ErrBootstrapAlready      = errors.New("system already bootstrapped")
	ErrBootstrapUnauthorized = errors.New("unauthorized bootstrap attempt")
)

// BootstrapService seeds the first admin account. Every other admin is a
// pending account approved by an existing one; the very first has no
// approver, so it is created directly active by whoever holds the
// pre-configured bootstrap token.
type BootstrapService struct {
	Store store.Store
	Token string // Pre-configured bootstrap token
}

func (s *BootstrapService) IsBootstrapped(ctx context.Context) (bool, error) {
	empty, err := s.Store.Accounts().IsEmpty(ctx)
	if err != nil {
		return false, err
	}
	return !empty, nil
}

func (s *BootstrapService) Bootstrap(
	ctx context.Context,
	token string,
	email string,
	displayName string,
	password string,
) (domain.Account, error) {
	l := slogx.FromContext(ctx)

	// 1. Check if already bootstrapped.
	if bootstrapped, _ := s.IsBootstrapped(ctx); bootstrapped {
		l.Warn("attempted bootstrap on already-bootstrapped system")
		return domain.Account{}, ErrBootstrapAlready
	}

	// 2. Validate provided token.
	if s.Token == "" || subtle.ConstantTimeCompare([]byte(token), []byte(s.Token)) != 1 {
		l.Warn("unauthorized bootstrap attempt")
		return domain.Account{}, ErrBootstrapUnauthorized
	}

	// 3. Validate admin details.
	if _, err := mail.ParseAddress(email); err != nil || displayName == "" {
		return domain.Account{}, ErrInvalidRegistration
	}
	if len(password) < MinPasswordLength {
		return domain.Account{}, ErrWeakPassword
	}

	// 4. Hash password.
	passHash, err := cryptox.HashPassword(password)
	if err != nil {
		l.Error("failed to hash admin password", slog.Any("error", err))
		return domain.Account{}, err
	}

	now := time.Now().UTC()
	admin := domain.Account{
		ID:           idx.New().String(),
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: passHash,
		Role:         domain.RoleAdmin,
		Status:       domain.StatusActive,
		ApprovedAt:   &now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// 5. Create the admin inside a transaction. The emptiness check runs
	// again under the tx so two racing bootstrap calls cannot both seed.
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		empty, err := tx.Accounts().IsEmpty(ctx)
		if err != nil {
			return err
		}
		if !empty {
			return ErrBootstrapAlready
		}
		return tx.Accounts().Create(ctx, admin)
	})
	if err != nil {
		if !errors.Is(err, ErrBootstrapAlready) {
			l.Error("failed to create admin account", slog.Any("error", err))
		}
		return domain.Account{}, err
	}

	l.Info("successfully bootstrapped system",
		slog.String("admin_account_id", admin.ID),
	)
	return admin, nil
}
