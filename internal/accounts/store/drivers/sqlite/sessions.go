package sqlite

import (
	"context"
	"time"

	"github.com/studyconnect/accounts/internal/accounts/domain"
)

type sessionsRepo struct {
	db dbtx
}

func (r *sessionsRepo) Create(ctx context.Context, s domain.Session) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sessions (id, account_id, token_hash, expires_at, revoked, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.AccountID, s.TokenHash, s.ExpiresAt, s.Revoked, s.CreatedAt, s.UpdatedAt,
	)
	return mapConflict(err)
}

func (r *sessionsRepo) GetByTokenHash(ctx context.Context, hash string) (domain.Session, error) {
	var s domain.Session
	err := r.db.QueryRowContext(ctx, `
		SELECT id, account_id, token_hash, expires_at, revoked, created_at, updated_at
		FROM sessions WHERE token_hash = ?`, hash,
	).Scan(&s.ID, &s.AccountID, &s.TokenHash, &s.ExpiresAt, &s.Revoked, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return domain.Session{}, mapNotFound(err)
	}
	return s, nil
}

// Revoke is guarded on revoked = 0 so a replayed logout or a rotation race
// reports false instead of silently succeeding twice.
func (r *sessionsRepo) Revoke(ctx context.Context, sessionID string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE sessions
		SET revoked = 1, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND revoked = 0`,
		sessionID,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *sessionsRepo) DeleteExpired(ctx context.Context, now time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE expires_at <= ? OR revoked = 1`, now)
	return err
}
