package http

import (
	"net/http"

	"github.com/studyconnect/accounts/internal/accounts/service"
	"github.com/studyconnect/accounts/pkg/httpx"
	"github.com/studyconnect/accounts/pkg/slogx"
)

type ApproveHandler struct {
	AccountService *service.AccountService
}

// ServeHTTP godoc
//
//	@Summary		Approve Account Endpoint
//	@Description	Activates a pending account. Admin only; the approver is re-read from the store so a revoked admin cannot approve with a stale token. Approving an already-active account succeeds without changes.
//	@Tags			Accounts
//	@Produce		json
//	@Param			id	path		string						true	"Account id"
//	@Success		200	{object}	accountsdk.Account			"the approved account"
//	@Failure		401	{object}	accountsdk.ErrorResponse	"error, error_description"
//	@Failure		403	{object}	accountsdk.ErrorResponse	"error, error_description"
//	@Failure		404	{object}	accountsdk.ErrorResponse	"error, error_description"
//	@Failure		409	{object}	accountsdk.ErrorResponse	"error, error_description"
//	@Security		BearerAuth
//	@Router			/v1/accounts/{id}/approve [post].
func (h *ApproveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	approverID := httpx.AccountIDFromContext(ctx)
	approver, err := h.AccountService.Get(ctx, approverID)
	if err != nil {
		mapServiceError(err).WriteError(w)
		return
	}

	account, err := h.AccountService.Approve(ctx, approver, r.PathValue("id"))
	if err != nil {
		log.Warn("approval refused", "err", err)
		mapServiceError(err).WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toSDKAccount(account))
}
