package notify

import (
	"context"
	"log/slog"

	"github.com/studyconnect/accounts/internal/accounts/domain"
	"github.com/studyconnect/accounts/pkg/slogx"
)

// ConsoleSender logs invitation links instead of emailing them. This is the
// default sender for development and for deployments that copy links out of
// the operator console.
type ConsoleSender struct{}

func (ConsoleSender) SendInvitationLink(ctx context.Context, inv domain.Invitation, link string) error {
	slogx.FromContext(ctx).Info("invitation link issued",
		slog.String("invitation_id", inv.ID),
		slog.String("email", inv.Email),
		slog.String("role", string(inv.Role)),
		slog.String("link", link),
		slog.Time("expires_at", inv.ExpiresAt),
	)
	return nil
}

// NoopSender discards invitation links. Used in tests.
type NoopSender struct{}

func (NoopSender) SendInvitationLink(context.Context, domain.Invitation, string) error {
	return nil
}
