package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/studyconnect/accounts/internal/accounts/domain"
)

type accountsRepo struct {
	db dbtx
}

const accountColumns = `id, email, display_name, password_hash, role, status,
	invited_by, agent_id, approved_at, last_login_at, created_at, updated_at`

func scanAccount(row interface{ Scan(...any) error }) (domain.Account, error) {
	var (
		a          domain.Account
		role       string
		status     string
		approvedAt sql.NullTime
		lastLogin  sql.NullTime
	)
	err := row.Scan(
		&a.ID, &a.Email, &a.DisplayName, &a.PasswordHash, &role, &status,
		&a.InvitedBy, &a.AgentID, &approvedAt, &lastLogin, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return domain.Account{}, err
	}
	a.Role = domain.Role(role)
	a.Status = domain.Status(status)
	a.ApprovedAt = mapNullTimePtr(approvedAt)
	a.LastLoginAt = mapNullTimePtr(lastLogin)
	return a, nil
}

func (r *accountsRepo) GetByID(ctx context.Context, id string) (domain.Account, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id)
	a, err := scanAccount(row)
	if err != nil {
		return domain.Account{}, mapNotFound(err)
	}
	return a, nil
}

func (r *accountsRepo) GetByEmail(ctx context.Context, email string) (domain.Account, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE email = ?`, email)
	a, err := scanAccount(row)
	if err != nil {
		return domain.Account{}, mapNotFound(err)
	}
	return a, nil
}

func (r *accountsRepo) Create(ctx context.Context, a domain.Account) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO accounts (
			id, email, display_name, password_hash, role, status,
			invited_by, agent_id, approved_at, last_login_at, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Email, a.DisplayName, a.PasswordHash, string(a.Role), string(a.Status),
		a.InvitedBy, a.AgentID, mapOptionalTime(a.ApprovedAt), mapOptionalTime(a.LastLoginAt),
		a.CreatedAt, a.UpdatedAt,
	)
	return mapConflict(err)
}

func (r *accountsRepo) ListPending(ctx context.Context) ([]domain.Account, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+accountColumns+` FROM accounts
		 WHERE status = 'pending'
		 ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// ApprovePending is a conditional write: only a pending account transitions.
// Zero rows affected means the account was already active or suspended.
func (r *accountsRepo) ApprovePending(ctx context.Context, accountID string, approvedAt time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE accounts
		SET status = 'active', approved_at = ?, updated_at = ?
		WHERE id = ? AND status = 'pending'`,
		approvedAt, approvedAt, accountID,
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

func (r *accountsRepo) UpdateLastLogin(ctx context.Context, accountID string, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE accounts SET last_login_at = ?, updated_at = ? WHERE id = ?`,
		at, at, accountID)
	return err
}

func (r *accountsRepo) IsEmpty(ctx context.Context) (bool, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM accounts`).Scan(&n)
	if err != nil {
		return false, err
	}
	return n == 0, nil
}
