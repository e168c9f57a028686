package http

import (
	"errors"
	"net/http"

	"github.com/studyconnect/accounts/internal/accounts/domain"
	"github.com/studyconnect/accounts/internal/accounts/service"
	"github.com/studyconnect/accounts/pkg/accountsdk"
)

// toSDKAccount converts a domain account to its wire representation. The
// password hash never leaves the service.
func toSDKAccount(a domain.Account) accountsdk.Account {
	out := accountsdk.Account{
		ID:          a.ID,
		Email:       a.Email,
		DisplayName: a.DisplayName,
		Role:        string(a.Role),
		Status:      string(a.Status),
		InvitedBy:   a.InvitedBy,
		AgentID:     a.AgentID,
		CreatedAt:   a.CreatedAt.Unix(),
	}
	if a.ApprovedAt != nil {
		out.ApprovedAt = a.ApprovedAt.Unix()
	}
	if a.LastLoginAt != nil {
		out.LastLoginAt = a.LastLoginAt.Unix()
	}
	return out
}

// mapServiceError translates service sentinel errors to wire errors.
// Anything unmapped is treated as the store being unreachable, which gets a
// 503 so clients know to retry rather than a 4xx they would surface to the
// user.
func mapServiceError(err error) *accountsdk.APIError {
	switch {
	case errors.Is(err, service.ErrInvalidInviteRequest),
		errors.Is(err, service.ErrInvalidRegistration):
		return accountsdk.ErrInvalidRequest
	case errors.Is(err, service.ErrWeakPassword):
		return accountsdk.NewAPIError(http.StatusBadRequest,
			accountsdk.ErrorCodeInvalidRequest,
			"password must be at least 8 characters")
	case errors.Is(err, service.ErrInviteRoleNotAllowed):
		return accountsdk.NewAPIError(http.StatusBadRequest,
			accountsdk.ErrorCodeInvalidRequest,
			"admin accounts cannot be created by invitation")
	case errors.Is(err, service.ErrInviteForbidden),
		errors.Is(err, service.ErrApproveForbidden),
		errors.Is(err, service.ErrBootstrapUnauthorized):
		return accountsdk.ErrAccessDenied
	case errors.Is(err, service.ErrInviteNotFound):
		return accountsdk.NewAPIError(http.StatusNotFound,
			accountsdk.ErrorCodeNotFound,
			"invitation not found")
	case errors.Is(err, service.ErrInviteAlreadyUsed):
		return accountsdk.NewAPIError(http.StatusConflict,
			accountsdk.ErrorCodeInviteUsed,
			"invitation has already been used")
	case errors.Is(err, service.ErrInviteExpired):
		return accountsdk.NewAPIError(http.StatusGone,
			accountsdk.ErrorCodeInviteExpired,
			"invitation has expired")
	case errors.Is(err, service.ErrEmailTaken):
		return accountsdk.NewAPIError(http.StatusConflict,
			accountsdk.ErrorCodeConflict,
			"email is already registered")
	case errors.Is(err, service.ErrAccountNotFound):
		return accountsdk.NewAPIError(http.StatusNotFound,
			accountsdk.ErrorCodeNotFound,
			"account not found")
	case errors.Is(err, service.ErrNotApprovable):
		return accountsdk.NewAPIError(http.StatusConflict,
			accountsdk.ErrorCodeConflict,
			"account cannot be approved from its current status")
	case errors.Is(err, service.ErrBootstrapAlready):
		return accountsdk.NewAPIError(http.StatusConflict,
			accountsdk.ErrorCodeConflict,
			"system already bootstrapped")
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidRefreshToken):
		return accountsdk.ErrInvalidGrant
	default:
		return accountsdk.ErrBackendUnavailable
	}
}
