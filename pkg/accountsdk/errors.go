package accountsdk

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/studyconnect/accounts/pkg/httpx"
)

// Error codes used across the accounts service.
const (
	ErrorCodeInvalidRequest     = "invalid_request"
	ErrorCodeInvalidGrant       = "invalid_grant"
	ErrorCodeInvalidToken       = "invalid_token"
	ErrorCodeInsufficientScope  = "insufficient_scope"
	ErrorCodeAccessDenied       = "access_denied"
	ErrorCodeNotFound           = "not_found"
	ErrorCodeConflict           = "conflict"
	ErrorCodeInviteExpired      = "invite_expired"
	ErrorCodeInviteUsed         = "invite_used"
	ErrorCodeServerError        = "server_error"
	ErrorCodeBackendUnavailable = "backend_unavailable"
)

// APIError is the typed error the accounts service returns. It implements
// the error interface and is used both by handlers (to write responses) and
// by the SDK client (to represent failures).
type APIError struct {
	// StatusCode is the HTTP status code for this error
	StatusCode int `json:"-"`

	// Code is the machine-readable error code
	Code string `json:"error"`

	// Description is a human-readable description of the error
	Description string `json:"error_description"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// WriteError writes this APIError to an HTTP response writer.
func (e *APIError) WriteError(w http.ResponseWriter) {
	httpx.NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.StatusCode)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":             e.Code,
		"error_description": e.Description,
	})
}

var (
	// ErrInvalidRequest is returned when the request is malformed or
	// missing required parameters.
	ErrInvalidRequest = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidRequest,
		Description: "the request is malformed or missing required parameters",
	}

	// ErrInvalidGrant is returned for bad credentials or a dead refresh
	// token.
	ErrInvalidGrant = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeInvalidGrant,
		Description: "invalid credentials",
	}

	// ErrInvalidToken is returned when the access token is missing,
	// invalid, expired or revoked.
	ErrInvalidToken = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeInvalidToken,
		Description: "the access token is missing, invalid, expired or revoked",
	}

	// ErrAccessDenied is returned when the caller's role or status does
	// not permit the operation.
	ErrAccessDenied = &APIError{
		StatusCode:  http.StatusForbidden,
		Code:        ErrorCodeAccessDenied,
		Description: "access denied",
	}

	// ErrServerError is the catch-all for unexpected failures.
	ErrServerError = &APIError{
		StatusCode:  http.StatusInternalServerError,
		Code:        ErrorCodeServerError,
		Description: "internal server error",
	}

	// ErrBackendUnavailable is returned when the datastore cannot be
	// reached, distinct from domain failures so clients can retry.
	ErrBackendUnavailable = &APIError{
		StatusCode:  http.StatusServiceUnavailable,
		Code:        ErrorCodeBackendUnavailable,
		Description: "the backing store is unavailable, try again",
	}
)

// NewAPIError creates an APIError with the given status code, error code,
// and description.
func NewAPIError(statusCode int, code, description string) *APIError {
	return &APIError{
		StatusCode:  statusCode,
		Code:        code,
		Description: description,
	}
}

// parseErrorResponse turns a non-2xx HTTP response into a typed error.
// Returns nil for success responses.
func parseErrorResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		return &APIError{
			StatusCode:  resp.StatusCode,
			Code:        errResp.Error,
			Description: errResp.ErrorDescription,
		}
	}

	return &APIError{
		StatusCode:  resp.StatusCode,
		Code:        ErrorCodeServerError,
		Description: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
	}
}
