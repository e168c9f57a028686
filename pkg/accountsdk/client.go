package accountsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client talks to the accounts service. It covers the unauthenticated
// surface directly and hands out Sessions for the authenticated one.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates an accounts service client.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *Client) url(path string) string {
	return c.BaseURL + path
}

// doJSON performs a request with an optional JSON body and decodes a JSON
// response into out (when out is non-nil). Non-2xx responses come back as
// *APIError.
func (c *Client) doJSON(ctx context.Context, method, path string, in, out any, headers map[string]string) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path), body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if err := parseErrorResponse(resp, respBody); err != nil {
		return err
	}
	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// Bootstrap seeds the first admin account. One-time setup.
func (c *Client) Bootstrap(ctx context.Context, req BootstrapRequest) (*BootstrapResponse, error) {
	var out BootstrapResponse
	if err := c.doJSON(ctx, http.MethodPost, "/v1/bootstrap", req, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login authenticates with email and password and returns an authenticated
// Session alongside the raw response.
func (c *Client) Login(ctx context.Context, email, password string) (*Session, *LoginResponse, error) {
	var out LoginResponse
	err := c.doJSON(ctx, http.MethodPost, "/v1/auth/login", LoginRequest{
		Email:    email,
		Password: password,
	}, &out, nil)
	if err != nil {
		return nil, nil, err
	}
	return newSession(c, out.TokenResponse), &out, nil
}

// Refresh rotates a refresh token without an existing Session.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*Session, *LoginResponse, error) {
	var out LoginResponse
	err := c.doJSON(ctx, http.MethodPost, "/v1/auth/refresh", RefreshRequest{
		RefreshToken: refreshToken,
	}, &out, nil)
	if err != nil {
		return nil, nil, err
	}
	return newSession(c, out.TokenResponse), &out, nil
}

// Logout revokes the session behind a refresh token.
func (c *Client) Logout(ctx context.Context, refreshToken string) error {
	return c.doJSON(ctx, http.MethodPost, "/v1/auth/logout", LogoutRequest{
		RefreshToken: refreshToken,
	}, nil, nil)
}

// ValidateInvitation previews an invitation without consuming it.
func (c *Client) ValidateInvitation(ctx context.Context, token string) (*InvitationPreview, error) {
	var out InvitationPreview
	path := "/v1/invitations/" + url.PathEscape(token)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

// RedeemInvitation consumes an invitation token and creates the account.
func (c *Client) RedeemInvitation(ctx context.Context, req RedeemRequest) (*RedeemResponse, error) {
	var out RedeemResponse
	if err := c.doJSON(ctx, http.MethodPost, "/v1/invitations/redeem", req, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates a pending account without an invitation.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*Account, error) {
	var out Account
	if err := c.doJSON(ctx, http.MethodPost, "/v1/register", req, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetLiveness checks the liveness endpoint.
func (c *Client) GetLiveness(ctx context.Context) (*HealthResponse, error) {
	var out HealthResponse
	if err := c.doJSON(ctx, http.MethodGet, "/livez", nil, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetReadiness checks the readiness endpoint.
func (c *Client) GetReadiness(ctx context.Context) (*HealthResponse, error) {
	var out HealthResponse
	if err := c.doJSON(ctx, http.MethodGet, "/readyz", nil, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetJWKS fetches the public signing keys.
func (c *Client) GetJWKS(ctx context.Context) (*JWKSResponse, error) {
	var out JWKSResponse
	if err := c.doJSON(ctx, http.MethodGet, "/.well-known/jwks.json", nil, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}
