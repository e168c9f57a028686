package sqlite

import (
	"context"
	"time"

	"github.com/studyconnect/accounts/internal/accounts/domain"
)

type invitationsRepo struct {
	db dbtx
}

const invitationColumns = `id, token_hash, email, role, invited_by, invited_by_name,
	agent_id, status, accepted_by, expires_at, created_at, updated_at`

func scanInvitation(row interface{ Scan(...any) error }) (domain.Invitation, error) {
	var (
		inv    domain.Invitation
		role   string
		status string
	)
	err := row.Scan(
		&inv.ID, &inv.TokenHash, &inv.Email, &role, &inv.InvitedBy, &inv.InvitedByName,
		&inv.AgentID, &status, &inv.AcceptedBy, &inv.ExpiresAt, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return domain.Invitation{}, err
	}
	inv.Role = domain.Role(role)
	inv.Status = domain.InvitationStatus(status)
	return inv, nil
}

func (r *invitationsRepo) Create(ctx context.Context, inv domain.Invitation) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO invitations (
			id, token_hash, email, role, invited_by, invited_by_name,
			agent_id, status, accepted_by, expires_at, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		inv.ID, inv.TokenHash, inv.Email, string(inv.Role), inv.InvitedBy, inv.InvitedByName,
		inv.AgentID, string(inv.Status), inv.AcceptedBy, inv.ExpiresAt, inv.CreatedAt, inv.UpdatedAt,
	)
	return mapConflict(err)
}

func (r *invitationsRepo) GetByTokenHash(ctx context.Context, hash string) (domain.Invitation, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+invitationColumns+` FROM invitations WHERE token_hash = ?`, hash)
	inv, err := scanInvitation(row)
	if err != nil {
		return domain.Invitation{}, mapNotFound(err)
	}
	return inv, nil
}

// Accept is a conditional write guarded on status = 'pending'. Zero rows
// affected means a concurrent redemption won the race (or the invitation was
// already stamped expired).
func (r *invitationsRepo) Accept(ctx context.Context, invitationID, acceptedBy string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE invitations
		SET status = 'accepted', accepted_by = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND status = 'pending'`,
		acceptedBy, invitationID,
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

func (r *invitationsRepo) MarkExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE invitations
		SET status = 'expired', updated_at = CURRENT_TIMESTAMP
		WHERE status = 'pending' AND expires_at <= ?`,
		now,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
