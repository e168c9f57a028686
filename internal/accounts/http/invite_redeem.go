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

type InviteRedeemHandler struct {
	AccountService *service.AccountService
}

// ServeHTTP godoc
//
//	@Summary		Redeem Invitation Endpoint
//	@Description	Consumes an invitation token and creates the account it describes. Students activate immediately and land on the dashboard; agents are created pending and land on the pending screen.
//	@Description	A token can be redeemed exactly once: concurrent redemptions produce one account and one 409.
//	@Tags			Invitations
//	@Accept			json
//	@Produce		json
//	@Param			request	body		accountsdk.RedeemRequest	true	"Redemption request"
//	@Success		201		{object}	accountsdk.RedeemResponse	"account, landing"
//	@Failure		400		{object}	accountsdk.ErrorResponse	"error, error_description"
//	@Failure		404		{object}	accountsdk.ErrorResponse	"error, error_description"
//	@Failure		409		{object}	accountsdk.ErrorResponse	"error, error_description"
//	@Failure		410		{object}	accountsdk.ErrorResponse	"error, error_description"
//	@Router			/v1/invitations/redeem [post].
func (h *InviteRedeemHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req accountsdk.RedeemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		accountsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	account, err := h.AccountService.RedeemInvitation(ctx, req.Token, req.DisplayName, req.Password)
	if err != nil {
		log.Warn("invitation redemption refused", "err", err)
		mapServiceError(err).WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, accountsdk.RedeemResponse{
		Account: toSDKAccount(account),
		Landing: string(domain.ResolveLandingState(&account)),
	})
}
