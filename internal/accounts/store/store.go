package store

import (
	"context"
	"errors"
	"time"

	"github.com/studyconnect/accounts/internal/accounts/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite today)
// implement this. Sub-repositories keep concerns tidy and make transaction
// scoping explicit.
type Store interface {
	Accounts() Accounts
	Invitations() Invitations
	Sessions() Sessions

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed. This is the
	// recommended way to run multi-step operations that must be atomic
	// (e.g. redeem invitation + create account).
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It carries the same repos plus
// Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Accounts interface {
	// GetByID returns an account by id.
	GetByID(ctx context.Context, id string) (domain.Account, error)

	// GetByEmail is used during login and to detect duplicate
	// registrations.
	GetByEmail(ctx context.Context, email string) (domain.Account, error)

	// Create inserts a new account (id is provided by the app via ULID).
	// Returns ErrAlreadyExists when the email is taken.
	Create(ctx context.Context, a domain.Account) error

	// ListPending returns all pending accounts ordered by creation time
	// descending. Ordering is established here, not assumed by callers.
	ListPending(ctx context.Context) ([]domain.Account, error)

	// ApprovePending flips a pending account to active and stamps
	// approved_at, as a conditional write guarded on status = pending.
	// Returns false when the account was not pending (already active or
	// suspended), without touching the row.
	ApprovePending(ctx context.Context, accountID string, approvedAt time.Time) (bool, error)

	// UpdateLastLogin stamps last_login_at.
	UpdateLastLogin(ctx context.Context, accountID string, at time.Time) error

	// IsEmpty reports whether no accounts exist (bootstrap gate).
	IsEmpty(ctx context.Context) (bool, error)
}

type Invitations interface {
	// Create writes a new invitation (token_hash is the SHA-256
	// fingerprint of the opaque capability token). Returns
	// ErrAlreadyExists on a token_hash collision.
	Create(ctx context.Context, inv domain.Invitation) error

	// GetByTokenHash returns the invitation regardless of status or
	// expiry; the service layer decides which failure the caller sees.
	GetByTokenHash(ctx context.Context, hash string) (domain.Invitation, error)

	// Accept marks the invitation accepted by the given account, as a
	// conditional write guarded on status = pending. Returns false when
	// the invitation was no longer pending, which is how a lost
	// redemption race surfaces.
	Accept(ctx context.Context, invitationID, acceptedBy string) (bool, error)

	// MarkExpired stamps the advisory expired status on pending
	// invitations past their expiry. Redemption never trusts this field.
	MarkExpired(ctx context.Context, now time.Time) (int64, error)
}

type Sessions interface {
	// Create stores a new session record.
	Create(ctx context.Context, s domain.Session) error

	// GetByTokenHash returns the session for a refresh token fingerprint.
	GetByTokenHash(ctx context.Context, hash string) (domain.Session, error)

	// Revoke flips revoked on, guarded on revoked = 0. Returns false when
	// the session was already revoked.
	Revoke(ctx context.Context, sessionID string) (bool, error)

	// DeleteExpired removes sessions past expiry or revoked
	// (housekeeping).
	DeleteExpired(ctx context.Context, now time.Time) error
}
