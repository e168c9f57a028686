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

type RegisterHandler struct {
	AccountService *service.AccountService
}

// ServeHTTP godoc
//
//	@Summary		Self Registration Endpoint
//	@Description	Creates an account without an invitation. The account starts pending regardless of role and waits in the admin approval queue; the admin role is not self-assignable.
//	@Tags			Accounts
//	@Accept			json
//	@Produce		json
//	@Param			request	body		accountsdk.RegisterRequest	true	"Registration request"
//	@Success		201		{object}	accountsdk.Account			"the pending account"
//	@Failure		400		{object}	accountsdk.ErrorResponse	"error, error_description"
//	@Failure		409		{object}	accountsdk.ErrorResponse	"error, error_description"
//	@Router			/v1/register [post].
func (h *RegisterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req accountsdk.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		accountsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	account, err := h.AccountService.Register(ctx, req.Email, req.DisplayName, req.Password, domain.Role(req.Role))
	if err != nil {
		log.Warn("registration refused", "err", err)
		mapServiceError(err).WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toSDKAccount(account))
}
