package http

import (
	"encoding/json"
	"net/http"

	"github.com/studyconnect/accounts/internal/accounts/domain"
	"github.com/studyconnect/accounts/internal/accounts/service"
	"github.com/studyconnect/accounts/pkg/accountsdk"
	"github.com/studyconnect/accounts/pkg/httpx"
	"github.com/studyconnect/accounts/pkg/slogx"
)

type InviteCreateHandler struct {
	InviteService  *service.InviteService
	AccountService *service.AccountService
}

// ServeHTTP godoc
//
//	@Summary		Create Invitation Endpoint
//	@Description	Mints a single-use invitation token binding an email to a role. Admins may invite agents and students; agents may only invite students, and a student invited by an agent is bound to that agent unless agent_id says otherwise.
//	@Description	The raw token appears only in this response; the service stores its fingerprint.
//	@Tags			Invitations
//	@Accept			json
//	@Produce		json
//	@Param			request	body		accountsdk.InviteRequest	true	"Invite request"
//	@Success		201		{object}	accountsdk.InviteResponse	"invite_token, invitation_id, email, role, expires_at"
//	@Failure		400		{object}	accountsdk.ErrorResponse	"error, error_description"
//	@Failure		401		{object}	accountsdk.ErrorResponse	"error, error_description"
//	@Failure		403		{object}	accountsdk.ErrorResponse	"error, error_description"
//	@Security		BearerAuth
//	@Router			/v1/invitations [post].
func (h *InviteCreateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req accountsdk.InviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		accountsdk.ErrInvalidRequest.WriteError(w)
		return
	}
	if req.Email == "" || req.Role == "" {
		accountsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	// Authorize against the live issuer record, not the token claims. A
	// suspension that happened after login takes effect immediately.
	issuerID := httpx.AccountIDFromContext(ctx)
	issuer, err := h.AccountService.Get(ctx, issuerID)
	if err != nil {
		mapServiceError(err).WriteError(w)
		return
	}

	token, inv, err := h.InviteService.CreateInvitation(ctx, issuer, req.Email, domain.Role(req.Role), req.AgentID)
	if err != nil {
		log.Warn("invitation mint refused", "err", err)
		mapServiceError(err).WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, accountsdk.InviteResponse{
		InviteToken:  token,
		InvitationID: inv.ID,
		Email:        inv.Email,
		Role:         string(inv.Role),
		ExpiresAt:    inv.ExpiresAt.Unix(),
	})
}
