package accounts_test

import (
	"net/http"
	"testing"

	"github.com/studyconnect/accounts/pkg/accountsdk"
	"github.com/stretchr/testify/require"
)

// TestBootstrapAndLogin tests first-run setup:
// 1. Bootstrap the service with the configured token
// 2. Login as the new admin
// 3. Fetch /v1/me and confirm the admin-console landing
func TestBootstrapAndLogin(t *testing.T) {
	baseURL, cleanup := setupAccountsContainer(t)
	defer cleanup()

	client := accountsdk.NewClient(baseURL)

	// Bootstrap
	adminID := bootstrapService(t, client)

	t.Logf("Bootstrap successful")
	t.Logf("Admin Account ID: %s", adminID)

	// Login
	session, login, err := client.Login(t.Context(), adminEmail, adminPassword)
	require.NoError(t, err)
	assertTokenResponse(t, &login.TokenResponse)
	require.Equal(t, adminID, login.Account.ID)
	require.Equal(t, "admin", login.Account.Role)
	require.Equal(t, "active", login.Account.Status)
	require.Equal(t, "admin-console", login.Landing)

	t.Logf("Admin login successful")

	// Who am I
	me, err := session.Me(t.Context())
	require.NoError(t, err)
	require.Equal(t, adminID, me.Account.ID)
	require.Equal(t, adminEmail, me.Account.Email)
	require.Equal(t, "admin-console", me.Landing)

	t.Logf("Me endpoint returned admin-console landing")
}

// TestBootstrapRejections verifies bootstrap can only happen once and only
// with the configured token.
func TestBootstrapRejections(t *testing.T) {
	baseURL, cleanup := setupAccountsContainer(t)
	defer cleanup()

	client := accountsdk.NewClient(baseURL)

	t.Run("WrongToken", func(t *testing.T) {
		_, err := client.Bootstrap(t.Context(), accountsdk.BootstrapRequest{
			Token:       "not-the-token",
			Email:       adminEmail,
			DisplayName: adminDisplayName,
			Password:    adminPassword,
		})

		assertAPIError(t, err, http.StatusForbidden, accountsdk.ErrorCodeAccessDenied)

		t.Logf("Wrong bootstrap token correctly rejected")
	})

	bootstrapService(t, client)

	t.Run("SecondBootstrap", func(t *testing.T) {
		_, err := client.Bootstrap(t.Context(), accountsdk.BootstrapRequest{
			Token:       bootstrapToken,
			Email:       "second@studyconnect.test",
			DisplayName: "Second Admin",
			Password:    "Second123!pass",
		})

		assertAPIError(t, err, http.StatusConflict, accountsdk.ErrorCodeConflict)

		t.Logf("Second bootstrap correctly rejected")
	})
}

// TestLoginFailures verifies unknown emails and wrong passwords both come
// back as invalid_grant with no hint which one was wrong.
func TestLoginFailures(t *testing.T) {
	baseURL, cleanup := setupAccountsContainer(t)
	defer cleanup()

	client := accountsdk.NewClient(baseURL)
	bootstrapService(t, client)

	t.Run("UnknownEmail", func(t *testing.T) {
		_, _, err := client.Login(t.Context(), "nobody@studyconnect.test", adminPassword)
		assertAPIError(t, err, http.StatusUnauthorized, accountsdk.ErrorCodeInvalidGrant)
	})

	t.Run("WrongPassword", func(t *testing.T) {
		_, _, err := client.Login(t.Context(), adminEmail, "wrong-password")
		assertAPIError(t, err, http.StatusUnauthorized, accountsdk.ErrorCodeInvalidGrant)
	})
}
