package service

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"time"

	"github.com/studyconnect/accounts/internal/accounts/domain"
	"github.com/studyconnect/accounts/internal/accounts/notify"
	"github.com/studyconnect/accounts/internal/accounts/store"
	"github.com/studyconnect/accounts/pkg/cryptox"
	"github.com/studyconnect/accounts/pkg/idx"
	"github.com/studyconnect/accounts/pkg/slogx"
)

var (
	ErrInvalidInviteRequest = errors.New("invalid invite request")
	ErrInviteRoleNotAllowed = errors.New("role cannot be granted by invitation")
	ErrInviteForbidden      = errors.New("issuer may not invite this role")
	ErrInviteNotFound       = errors.New("invitation not found")
	ErrInviteAlreadyUsed    = errors.New("invitation has already been used")
	ErrInviteExpired        = errors.New("invitation has expired")
)

type InviteService struct {
	Store  store.Store
	Sender notify.Sender

	// BaseURL is the public origin used when building invitation links,
	// e.g. https://accounts.example.com.
	BaseURL string
}

// CreateInvitation mints a single-use invitation token binding an email to a
// role. Returns the raw token; only its fingerprint is stored.
func (s *InviteService) CreateInvitation(
	ctx context.Context,
	issuer domain.Account,
	email string,
	role domain.Role,
	agentID string,
) (string, domain.Invitation, error) {
	log := slogx.FromContext(ctx)

	// 1. Validate input.
	if _, err := mail.ParseAddress(email); err != nil {
		log.Warn("invite requested with invalid email")
		return "", domain.Invitation{}, ErrInvalidInviteRequest
	}
	if !role.Valid() {
		return "", domain.Invitation{}, ErrInvalidInviteRequest
	}

	// 2. Admin accounts are never created by invitation.
	if role == domain.RoleAdmin {
		log.Warn("attempted to mint admin invitation",
			slog.String("issuer_id", issuer.ID),
		)
		return "", domain.Invitation{}, ErrInviteRoleNotAllowed
	}

	// 3. Authorize the issuer. Only active admins and agents mint
	// invitations, and agents only for students.
	if issuer.Status != domain.StatusActive {
		return "", domain.Invitation{}, ErrInviteForbidden
	}
	switch issuer.Role {
	case domain.RoleAdmin:
		// admins may invite agents and students
	case domain.RoleAgent:
		if role != domain.RoleStudent {
			log.Warn("agent attempted to invite a non-student",
				slog.String("issuer_id", issuer.ID),
				slog.String("role", string(role)),
			)
			return "", domain.Invitation{}, ErrInviteForbidden
		}
	default:
		return "", domain.Invitation{}, ErrInviteForbidden
	}

	// 4. Default the agent binding: a student invited by an agent belongs
	// to that agent unless the issuer says otherwise.
	if role == domain.RoleStudent && agentID == "" && issuer.Role == domain.RoleAgent {
		agentID = issuer.ID
	}
	if role != domain.RoleStudent {
		agentID = ""
	}

	// 5. Generate the capability token and fingerprint it.
	token, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		log.Error("failed to generate invitation token", slog.Any("error", err))
		return "", domain.Invitation{}, err
	}
	fingerprint := cryptox.FingerprintToken(token)

	now := time.Now().UTC()
	inv := domain.Invitation{
		ID:            idx.New().String(),
		TokenHash:     fingerprint,
		Email:         email,
		Role:          role,
		InvitedBy:     issuer.ID,
		InvitedByName: issuer.DisplayName,
		AgentID:       agentID,
		Status:        domain.InvitationPending,
		ExpiresAt:     now.Add(domain.InvitationValidity),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	// 6. Persist.
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Invitations().Create(ctx, inv); err != nil {
			log.Error("failed to create invitation",
				slog.String("invitation_id", inv.ID),
				slog.Any("error", err),
			)
			return err
		}
		return nil
	})
	if err != nil {
		return "", domain.Invitation{}, err
	}

	log.Info("invitation created",
		slog.String("invitation_id", inv.ID),
		slog.String("issuer_id", issuer.ID),
		slog.String("role", string(role)),
		slog.Time("expires_at", inv.ExpiresAt),
	)

	// 7. Deliver the link out of band. Best effort: the invitation exists
	// whether or not the send succeeds, and the issuer gets the token back
	// either way.
	if s.Sender != nil {
		link := s.BaseURL + "/register?invite=" + token
		go func() {
			sendCtx := slogx.WithContext(context.Background(), log)
			if err := s.Sender.SendInvitationLink(sendCtx, inv, link); err != nil {
				log.Warn("failed to deliver invitation link",
					slog.String("invitation_id", inv.ID),
					slog.Any("error", err),
				)
			}
		}()
	}

	// 8. Return the raw token (not the fingerprint).
	return token, inv, nil
}

// ValidateToken resolves an invitation token to its invitation without
// consuming it. Failure precedence is fixed: unknown before used before
// expired, so probing a consumed token never reveals whether it also
// expired.
func (s *InviteService) ValidateToken(ctx context.Context, token string) (domain.Invitation, error) {
	log := slogx.FromContext(ctx)

	if token == "" {
		return domain.Invitation{}, ErrInviteNotFound
	}

	fingerprint := cryptox.FingerprintToken(token)
	inv, err := s.Store.Invitations().GetByTokenHash(ctx, fingerprint)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("validation attempted with unknown invitation token")
			return domain.Invitation{}, ErrInviteNotFound
		}
		log.Error("failed to fetch invitation", slog.Any("error", err))
		return domain.Invitation{}, err
	}

	if inv.Status == domain.InvitationAccepted {
		return domain.Invitation{}, ErrInviteAlreadyUsed
	}

	// The expired status stamp is advisory; the clock decides.
	if inv.Expired(time.Now().UTC()) || inv.Status == domain.InvitationExpired {
		return domain.Invitation{}, ErrInviteExpired
	}

	return inv, nil
}
