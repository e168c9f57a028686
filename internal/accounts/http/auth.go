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

type LoginHandler struct {
	AuthService *service.AuthService
}

// ServeHTTP godoc
//
//	@Summary		Login Endpoint
//	@Description	Authenticates with email and password, returning an access token, refresh token, the account, and the landing state the client should navigate to.
//	@Description	Pending and suspended accounts can still log in; their tokens only allow reading their own profile.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		accountsdk.LoginRequest		true	"Credentials"
//	@Success		200		{object}	accountsdk.LoginResponse	"tokens, account, landing"
//	@Failure		400		{object}	accountsdk.ErrorResponse	"error, error_description"
//	@Failure		401		{object}	accountsdk.ErrorResponse	"error, error_description"
//	@Router			/v1/auth/login [post].
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req accountsdk.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		accountsdk.ErrInvalidRequest.WriteError(w)
		return
	}
	if req.Email == "" || req.Password == "" {
		accountsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	pair, account, err := h.AuthService.Login(ctx, req.Email, req.Password)
	if err != nil {
		mapServiceError(err).WriteError(w)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, loginResponse(pair, account))
}

type RefreshHandler struct {
	AuthService *service.AuthService
}

// ServeHTTP godoc
//
//	@Summary		Token Refresh Endpoint
//	@Description	Rotates a refresh token and mints a fresh access token reflecting the account's current status and scopes. The presented refresh token is revoked; the response carries its replacement.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		accountsdk.RefreshRequest	true	"Refresh token"
//	@Success		200		{object}	accountsdk.LoginResponse	"tokens, account, landing"
//	@Failure		400		{object}	accountsdk.ErrorResponse	"error, error_description"
//	@Failure		401		{object}	accountsdk.ErrorResponse	"error, error_description"
//	@Router			/v1/auth/refresh [post].
func (h *RefreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req accountsdk.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		accountsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	pair, account, err := h.AuthService.Refresh(ctx, req.RefreshToken)
	if err != nil {
		mapServiceError(err).WriteError(w)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, loginResponse(pair, account))
}

type LogoutHandler struct {
	AuthService *service.AuthService
}

// ServeHTTP godoc
//
//	@Summary		Logout Endpoint
//	@Description	Revokes the session behind a refresh token. Revoking an unknown or already-revoked token still returns 204.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body	accountsdk.LogoutRequest	true	"Refresh token"
//	@Success		204		"session revoked"
//	@Failure		400		{object}	accountsdk.ErrorResponse	"error, error_description"
//	@Router			/v1/auth/logout [post].
func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req accountsdk.LogoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		accountsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	if err := h.AuthService.Logout(ctx, req.RefreshToken); err != nil {
		log.Error("logout failed", "err", err)
		mapServiceError(err).WriteError(w)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func loginResponse(pair service.TokenPair, account domain.Account) accountsdk.LoginResponse {
	return accountsdk.LoginResponse{
		TokenResponse: accountsdk.TokenResponse{
			AccessToken:  pair.AccessToken,
			RefreshToken: pair.RefreshToken,
			TokenType:    "Bearer",
			ExpiresIn:    int(pair.ExpiresIn),
		},
		Account: toSDKAccount(account),
		Landing: string(domain.ResolveLandingState(&account)),
	}
}
