package accountsdk

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"time"
)

// Session is an authenticated client. It refreshes its access token
// transparently when it expires and is safe for concurrent use.
type Session struct {
	client *Client

	mu           sync.RWMutex
	accessToken  string
	refreshToken string
	expiresAt    time.Time
}

func newSession(c *Client, tokens TokenResponse) *Session {
	s := &Session{client: c}
	s.setTokens(tokens)
	return s
}

func (s *Session) setTokens(tokens TokenResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.accessToken = tokens.AccessToken
	s.refreshToken = tokens.RefreshToken
	// 30 second buffer so a token never expires mid-flight.
	s.expiresAt = time.Now().Add(time.Duration(tokens.ExpiresIn) * time.Second).Add(-30 * time.Second)
}

// RefreshToken returns the current refresh token, e.g. for persisting a
// session across restarts.
func (s *Session) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshToken
}

// getValidToken returns a live access token, rotating via the refresh token
// when the current one has expired.
func (s *Session) getValidToken(ctx context.Context) (string, error) {
	s.mu.RLock()
	token, expiresAt := s.accessToken, s.expiresAt
	s.mu.RUnlock()

	if time.Now().Before(expiresAt) {
		return token, nil
	}

	_, resp, err := s.client.Refresh(ctx, s.RefreshToken())
	if err != nil {
		return "", err
	}
	s.setTokens(resp.TokenResponse)
	return resp.AccessToken, nil
}

func (s *Session) doAuthJSON(ctx context.Context, method, path string, in, out any) error {
	token, err := s.getValidToken(ctx)
	if err != nil {
		return err
	}
	return s.client.doJSON(ctx, method, path, in, out, map[string]string{
		"Authorization": "Bearer " + token,
	})
}

// Me returns the caller's account and landing state.
func (s *Session) Me(ctx context.Context) (*MeResponse, error) {
	var out MeResponse
	if err := s.doAuthJSON(ctx, http.MethodGet, "/v1/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateInvitation mints a new invitation. Requires invites:write.
func (s *Session) CreateInvitation(ctx context.Context, req InviteRequest) (*InviteResponse, error) {
	var out InviteResponse
	if err := s.doAuthJSON(ctx, http.MethodPost, "/v1/invitations", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ApproveAccount activates a pending account. Requires accounts:write.
func (s *Session) ApproveAccount(ctx context.Context, accountID string) (*Account, error) {
	var out Account
	path := "/v1/accounts/" + url.PathEscape(accountID) + "/approve"
	if err := s.doAuthJSON(ctx, http.MethodPost, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListPending returns the approval queue, newest first. Requires
// accounts:read.
func (s *Session) ListPending(ctx context.Context) (*PendingListResponse, error) {
	var out PendingListResponse
	if err := s.doAuthJSON(ctx, http.MethodGet, "/v1/accounts/pending", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout revokes this session on the server and clears the local tokens.
func (s *Session) Logout(ctx context.Context) error {
	if err := s.client.Logout(ctx, s.RefreshToken()); err != nil {
		return err
	}

	s.mu.Lock()
	s.accessToken, s.refreshToken = "", ""
	s.expiresAt = time.Time{}
	s.mu.Unlock()
	return nil
}
