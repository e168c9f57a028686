package accounts_test

import (
	"net/http"
	"testing"

	"github.com/studyconnect/accounts/pkg/accountsdk"
	"github.com/stretchr/testify/require"
)

// TestRefreshRotation verifies refresh tokens rotate on use and the replaced
// token dies immediately.
func TestRefreshRotation(t *testing.T) {
	baseURL, cleanup := setupAccountsContainer(t)
	defer cleanup()

	client := accountsdk.NewClient(baseURL)
	bootstrapService(t, client)

	_, login, err := client.Login(t.Context(), adminEmail, adminPassword)
	require.NoError(t, err)
	firstRefresh := login.RefreshToken

	// Rotate once.
	_, rotated, err := client.Refresh(t.Context(), firstRefresh)
	require.NoError(t, err)
	assertTokenResponse(t, &rotated.TokenResponse)
	require.NotEqual(t, firstRefresh, rotated.RefreshToken, "Refresh token should rotate on use")
	require.Equal(t, "admin-console", rotated.Landing)

	t.Logf("Refresh rotated successfully")

	// The replaced token is dead.
	_, _, err = client.Refresh(t.Context(), firstRefresh)
	assertAPIError(t, err, http.StatusUnauthorized, accountsdk.ErrorCodeInvalidGrant)

	t.Logf("Replaced refresh token correctly rejected")

	// The rotated token keeps working.
	session, _, err := client.Refresh(t.Context(), rotated.RefreshToken)
	require.NoError(t, err)

	me, err := session.Me(t.Context())
	require.NoError(t, err)
	require.Equal(t, adminEmail, me.Account.Email)
}

// TestLogout verifies logout revokes the session and is idempotent.
func TestLogout(t *testing.T) {
	baseURL, cleanup := setupAccountsContainer(t)
	defer cleanup()

	client := accountsdk.NewClient(baseURL)
	bootstrapService(t, client)

	session, login, err := client.Login(t.Context(), adminEmail, adminPassword)
	require.NoError(t, err)
	refreshToken := login.RefreshToken

	require.NoError(t, session.Logout(t.Context()))

	t.Logf("Logout successful")

	// The refresh token no longer works.
	_, _, err = client.Refresh(t.Context(), refreshToken)
	assertAPIError(t, err, http.StatusUnauthorized, accountsdk.ErrorCodeInvalidGrant)

	// Logging out the same token again is a no-op, not an error.
	require.NoError(t, client.Logout(t.Context(), refreshToken))

	t.Logf("Second logout is a no-op")
}

// TestTokenReflectsApproval verifies that refreshing after an approval picks
// up the new status and scopes without a fresh login.
func TestTokenReflectsApproval(t *testing.T) {
	baseURL, cleanup := setupAccountsContainer(t)
	defer cleanup()

	client := accountsdk.NewClient(baseURL)
	bootstrapService(t, client)
	adminSession := loginAdmin(t, client)

	account, err := client.Register(t.Context(), accountsdk.RegisterRequest{
		Email:       "latecomer@studyconnect.test",
		DisplayName: "Late Comer",
		Password:    "Late123!pass",
		Role:        "agent",
	})
	require.NoError(t, err)

	_, pendingLogin, err := client.Login(t.Context(), "latecomer@studyconnect.test", "Late123!pass")
	require.NoError(t, err)
	require.Equal(t, "pending", pendingLogin.Landing)

	_, err = adminSession.ApproveAccount(t.Context(), account.ID)
	require.NoError(t, err)

	_, refreshed, err := client.Refresh(t.Context(), pendingLogin.RefreshToken)
	require.NoError(t, err)
	require.Equal(t, "active", refreshed.Account.Status)
	require.Equal(t, "dashboard", refreshed.Landing, "Refresh should pick up the approval")

	t.Logf("Refresh after approval lands on dashboard")
}
