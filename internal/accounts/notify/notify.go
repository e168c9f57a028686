package notify

import (
	"context"

	"github.com/studyconnect/accounts/internal/accounts/domain"
)

// Sender delivers invitation links out of band. Delivery is best effort:
// the invitation is already persisted when a Sender runs, and a failed send
// never unwinds it.
type Sender interface {
	SendInvitationLink(ctx context.Context, inv domain.Invitation, link string) error
}
