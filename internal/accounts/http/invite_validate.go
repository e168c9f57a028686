package http

import (
	"net/http"

	"github.com/studyconnect/accounts/internal/accounts/service"
	"github.com/studyconnect/accounts/pkg/accountsdk"
	"github.com/studyconnect/accounts/pkg/httpx"
)

type InviteValidateHandler struct {
	InviteService *service.InviteService
}

// ServeHTTP godoc
//
//	@Summary		Validate Invitation Endpoint
//	@Description	Previews an invitation without consuming it, so a registration form can show who invited whom into which role. Unknown tokens return 404, consumed ones 409, expired ones 410.
//	@Tags			Invitations
//	@Produce		json
//	@Param			token	path		string							true	"Raw invitation token"
//	@Success		200		{object}	accountsdk.InvitationPreview	"email, role, invited_by_name, expires_at"
//	@Failure		404		{object}	accountsdk.ErrorResponse		"error, error_description"
//	@Failure		409		{object}	accountsdk.ErrorResponse		"error, error_description"
//	@Failure		410		{object}	accountsdk.ErrorResponse		"error, error_description"
//	@Router			/v1/invitations/{token} [get].
func (h *InviteValidateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	inv, err := h.InviteService.ValidateToken(ctx, r.PathValue("token"))
	if err != nil {
		mapServiceError(err).WriteError(w)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, accountsdk.InvitationPreview{
		Email:         inv.Email,
		Role:          string(inv.Role),
		InvitedByName: inv.InvitedByName,
		ExpiresAt:     inv.ExpiresAt.Unix(),
	})
}
