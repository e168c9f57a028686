package http

import (
	"net/http"

	"github.com/studyconnect/accounts/internal/accounts/domain"
	"github.com/studyconnect/accounts/internal/accounts/service"
	"github.com/studyconnect/accounts/pkg/accountsdk"
	"github.com/studyconnect/accounts/pkg/httpx"
)

type MeHandler struct {
	AccountService *service.AccountService
}

// ServeHTTP godoc
//
//	@Summary		Current Account Endpoint
//	@Description	Returns the caller's account and the landing state the client should navigate to. The account is re-read from the store, so an approval that happened after the token was minted is visible here.
//	@Tags			Accounts
//	@Produce		json
//	@Success		200	{object}	accountsdk.MeResponse		"account, landing"
//	@Failure		401	{object}	accountsdk.ErrorResponse	"error, error_description"
//	@Security		BearerAuth
//	@Router			/v1/me [get].
func (h *MeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	accountID := httpx.AccountIDFromContext(ctx)
	if accountID == "" {
		accountsdk.ErrInvalidToken.WriteError(w)
		return
	}

	account, err := h.AccountService.Get(ctx, accountID)
	if err != nil {
		mapServiceError(err).WriteError(w)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, accountsdk.MeResponse{
		Account: toSDKAccount(account),
		Landing: string(domain.ResolveLandingState(&account)),
	})
}
