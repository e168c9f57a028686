package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/studyconnect/accounts/internal/accounts/domain"
	"github.com/studyconnect/accounts/internal/accounts/store"
	"github.com/studyconnect/accounts/pkg/cryptox"
	"github.com/studyconnect/accounts/pkg/idx"
	"github.com/studyconnect/accounts/pkg/jwtx"
	"github.com/studyconnect/accounts/pkg/slogx"
)

var (
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrInvalidRefreshToken = errors.New("refresh token is invalid, expired, or revoked")
)

// TokenPair is what a successful login or refresh returns.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64 // access token lifetime in seconds
}

// AuthService issues access tokens for accounts. Any account can log in
// regardless of status; pending and suspended accounts simply receive a
// token whose scopes only allow reading their own profile, which is enough
// to land on the holding screen.
type AuthService struct {
	Store  store.Store
	Signer *jwtx.Signer

	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

func (s *AuthService) accessTTL() time.Duration {
	if s.AccessTTL > 0 {
		return s.AccessTTL
	}
	return jwtx.DefaultAccessTokenTTL
}

func (s *AuthService) refreshTTL() time.Duration {
	if s.RefreshTTL > 0 {
		return s.RefreshTTL
	}
	return jwtx.DefaultRefreshTokenTTL
}

// Login verifies credentials and opens a new session.
func (s *AuthService) Login(ctx context.Context, email, password string) (TokenPair, domain.Account, error) {
	log := slogx.FromContext(ctx)

	// 1. Look up the account. Unknown email and wrong password are
	// indistinguishable to the caller.
	account, err := s.Store.Accounts().GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("login attempted with unknown email")
			return TokenPair{}, domain.Account{}, ErrInvalidCredentials
		}
		log.Error("failed to fetch account", slog.Any("error", err))
		return TokenPair{}, domain.Account{}, err
	}

	// 2. Verify the password.
	if err := cryptox.VerifyPassword(password, account.PasswordHash); err != nil {
		log.Warn("login attempted with wrong password",
			slog.String("account_id", account.ID),
		)
		return TokenPair{}, domain.Account{}, ErrInvalidCredentials
	}

	// 3. Open a session backed by an opaque refresh token.
	pair, err := s.openSession(ctx, account)
	if err != nil {
		return TokenPair{}, domain.Account{}, err
	}

	// 4. Stamp last login. Failure here is not worth failing the login.
	now := time.Now().UTC()
	if err := s.Store.Accounts().UpdateLastLogin(ctx, account.ID, now); err != nil {
		log.Warn("failed to stamp last login",
			slog.String("account_id", account.ID),
			slog.Any("error", err),
		)
	}
	account.LastLoginAt = &now

	log.Info("login succeeded",
		slog.String("account_id", account.ID),
		slog.String("status", string(account.Status)),
	)
	return pair, account, nil
}

// Refresh rotates a refresh token and mints a fresh access token. The old
// session is revoked in the same transaction that creates its replacement;
// presenting a token that was already rotated fails, which also catches
// token replay after theft.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (TokenPair, domain.Account, error) {
	log := slogx.FromContext(ctx)

	// 1. Resolve the session by fingerprint.
	fingerprint := cryptox.FingerprintToken(refreshToken)
	session, err := s.Store.Sessions().GetByTokenHash(ctx, fingerprint)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return TokenPair{}, domain.Account{}, ErrInvalidRefreshToken
		}
		log.Error("failed to fetch session", slog.Any("error", err))
		return TokenPair{}, domain.Account{}, err
	}
	if session.Revoked || time.Now().UTC().After(session.ExpiresAt) {
		return TokenPair{}, domain.Account{}, ErrInvalidRefreshToken
	}

	// 2. Re-read the account so rotated tokens always reflect the current
	// status and scopes (an approval or suspension takes effect here).
	account, err := s.Store.Accounts().GetByID(ctx, session.AccountID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return TokenPair{}, domain.Account{}, ErrInvalidRefreshToken
		}
		log.Error("failed to fetch account", slog.Any("error", err))
		return TokenPair{}, domain.Account{}, err
	}

	// 3. Rotate: revoke the old session and create the new one atomically.
	newRefresh, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		log.Error("failed to generate refresh token", slog.Any("error", err))
		return TokenPair{}, domain.Account{}, err
	}

	now := time.Now().UTC()
	newSession := domain.Session{
		ID:        idx.New().String(),
		AccountID: account.ID,
		TokenHash: cryptox.FingerprintToken(newRefresh),
		ExpiresAt: now.Add(s.refreshTTL()),
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		revoked, err := tx.Sessions().Revoke(ctx, session.ID)
		if err != nil {
			return err
		}
		if !revoked {
			// A concurrent refresh already rotated this session.
			return ErrInvalidRefreshToken
		}
		return tx.Sessions().Create(ctx, newSession)
	})
	if err != nil {
		if !errors.Is(err, ErrInvalidRefreshToken) {
			log.Error("failed to rotate session", slog.Any("error", err))
		}
		return TokenPair{}, domain.Account{}, err
	}

	access, err := s.mintAccessToken(account, newSession.ID)
	if err != nil {
		log.Error("failed to sign access token", slog.Any("error", err))
		return TokenPair{}, domain.Account{}, err
	}

	log.Debug("session rotated",
		slog.String("account_id", account.ID),
		slog.String("session_id", newSession.ID),
	)
	return TokenPair{
		AccessToken:  access,
		RefreshToken: newRefresh,
		ExpiresIn:    int64(s.accessTTL().Seconds()),
	}, account, nil
}

// Logout revokes the session behind a refresh token. Revoking an unknown or
// already-revoked token is not an error; logout is idempotent.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	log := slogx.FromContext(ctx)

	fingerprint := cryptox.FingerprintToken(refreshToken)
	session, err := s.Store.Sessions().GetByTokenHash(ctx, fingerprint)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		log.Error("failed to fetch session", slog.Any("error", err))
		return err
	}

	if _, err := s.Store.Sessions().Revoke(ctx, session.ID); err != nil {
		log.Error("failed to revoke session",
			slog.String("session_id", session.ID),
			slog.Any("error", err),
		)
		return err
	}

	log.Info("session revoked", slog.String("session_id", session.ID))
	return nil
}

func (s *AuthService) openSession(ctx context.Context, account domain.Account) (TokenPair, error) {
	refresh, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return TokenPair{}, err
	}

	now := time.Now().UTC()
	session := domain.Session{
		ID:        idx.New().String(),
		AccountID: account.ID,
		TokenHash: cryptox.FingerprintToken(refresh),
		ExpiresAt: now.Add(s.refreshTTL()),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Store.Sessions().Create(ctx, session); err != nil {
		return TokenPair{}, err
	}

	access, err := s.mintAccessToken(account, session.ID)
	if err != nil {
		return TokenPair{}, err
	}

	return TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.accessTTL().Seconds()),
	}, nil
}

func (s *AuthService) mintAccessToken(account domain.Account, sessionID string) (string, error) {
	claims := jwtx.NewAccessClaims(
		account.ID, sessionID,
		account.TokenScopes(),
		string(account.Role), string(account.Status),
		s.accessTTL(),
		s.Issuer,
		account.Email, account.DisplayName,
		time.Now().UTC(),
	)
	return s.Signer.Sign(claims)
}
