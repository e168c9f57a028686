package http

import (
	"encoding/json"
	"net/http"

	"github.com/studyconnect/accounts/internal/accounts/service"
	"github.com/studyconnect/accounts/pkg/accountsdk"
	"github.com/studyconnect/accounts/pkg/httpx"
	"github.com/studyconnect/accounts/pkg/slogx"
)

type BootstrapHandler struct {
	BootstrapService *service.BootstrapService
}

// ServeHTTP godoc
//
//	@Summary		Bootstrap Endpoint
//	@Description	One-time setup that seeds the first admin account. Requires the pre-configured bootstrap token and fails once any account exists.
//	@Tags			System
//	@Accept			json
//	@Produce		json
//	@Param			request	body		accountsdk.BootstrapRequest		true	"Bootstrap request"
//	@Success		201		{object}	accountsdk.BootstrapResponse	"account_id"
//	@Failure		400		{object}	accountsdk.ErrorResponse		"error, error_description"
//	@Failure		403		{object}	accountsdk.ErrorResponse		"error, error_description"
//	@Failure		409		{object}	accountsdk.ErrorResponse		"error, error_description"
//	@Router			/v1/bootstrap [post].
func (h *BootstrapHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req accountsdk.BootstrapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		accountsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	admin, err := h.BootstrapService.Bootstrap(ctx, req.Token, req.Email, req.DisplayName, req.Password)
	if err != nil {
		log.Warn("bootstrap failed", "err", err)
		mapServiceError(err).WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, accountsdk.BootstrapResponse{
		AccountID: admin.ID,
	})
}
