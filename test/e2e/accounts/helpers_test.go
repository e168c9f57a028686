package accounts_test

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/studyconnect/accounts/pkg/accountsdk"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

/*
 * Common constants and helper functions for accounts service end-to-end
 * tests. This includes container setup, service operations, and assertions.
 */

const (
	testImageName = "studyconnect-accounts-test:latest"

	bootstrapToken   = "test-bootstrap-token-12345"
	adminEmail       = "admin@studyconnect.test"
	adminDisplayName = "Administrator"
	adminPassword    = "Admin123!pass"
)

// TestMain manages the test lifecycle, builds the Docker image once before
// all tests and cleans it up after all tests complete.
func TestMain(m *testing.M) {
	fmt.Fprintf(os.Stdout, "Building Accounts Service Docker image...")

	if err := buildDockerImage(); err != nil {
		fmt.Fprintf(os.Stderr, "\nFailed to build Docker image: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stdout, " done\n")

	exitCode := m.Run()

	fmt.Fprintf(os.Stdout, "Cleaning up Accounts Service Docker image...")
	cleanupDockerImage()
	fmt.Fprintf(os.Stdout, " done\n")

	os.Exit(exitCode)
}

func buildDockerImage() error {
	ctx := context.Background()
	cmd := exec.CommandContext(ctx, "docker", "build",
		"-t", testImageName,
		"-f", "../../../cmd/accounts/Dockerfile",
		"../../../")
	cmd.Dir = "."
	cmd.Stdout = os.Stdout
	cmd.Stderr = nil

	return cmd.Run()
}

func cleanupDockerImage() {
	ctx := context.Background()
	cmd := exec.CommandContext(ctx, "docker", "rmi", "-f", testImageName)
	_ = cmd.Run() // Ignore errors - image might not exist
}

// setupAccountsContainer starts the accounts service in a container and
// returns the base URL. Rate limits are raised so rapid test requests never
// trip the production defaults.
func setupAccountsContainer(t *testing.T) (string, func()) {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        testImageName,
		ExposedPorts: []string{"8080/tcp"},
		Env: map[string]string{
			"BOOTSTRAP_TOKEN":            bootstrapToken,
			"ACCOUNTS_DATABASE_FILE":     "/accounts.db",
			"ACCOUNTS_PEPPER_FILE":       "/pepper",
			"ACCOUNTS_SIGNING_KEY_FILE":  "/signing.pem",
			"ACCOUNTS_ISSUER":            "studyconnect-accounts",
			"ENV":                        "test",
			"LOG_LEVEL":                  "info",
			"LOG_FORMAT":                 "json",
			"RATELIMIT_STRICT_REQUESTS":  "1000",
			"RATELIMIT_STRICT_WINDOW_SEC": "60",
			"RATELIMIT_STRICT_BURST":      "1000",
			"RATELIMIT_MODERATE_REQUESTS": "1000",
			"RATELIMIT_MODERATE_BURST":    "1000",
		},
		WaitingFor: wait.ForHTTP("/livez").
			WithPort("8080/tcp").
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	mappedPort, err := container.MappedPort(ctx, "8080")
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	baseURL := fmt.Sprintf("http://%s:%s", host, mappedPort.Port())

	cleanup := func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}

	return baseURL, cleanup
}

// bootstrapService seeds the first admin and returns its account id.
func bootstrapService(t *testing.T, client *accountsdk.Client) string {
	t.Helper()

	resp, err := client.Bootstrap(context.Background(), accountsdk.BootstrapRequest{
		Token:       bootstrapToken,
		Email:       adminEmail,
		DisplayName: adminDisplayName,
		Password:    adminPassword,
	})
	require.NoError(t, err, "Bootstrap should succeed")
	require.NotEmpty(t, resp.AccountID, "Admin account ID should not be empty")

	return resp.AccountID
}

// loginAdmin logs in as the bootstrap admin and returns the session.
func loginAdmin(t *testing.T, client *accountsdk.Client) *accountsdk.Session {
	t.Helper()

	session, login, err := client.Login(context.Background(), adminEmail, adminPassword)
	require.NoError(t, err, "Admin login should succeed")
	require.Equal(t, "admin-console", login.Landing)

	return session
}

// assertTokenResponse verifies a token response has all required fields.
func assertTokenResponse(t *testing.T, resp *accountsdk.TokenResponse) {
	t.Helper()
	require.NotNil(t, resp)
	require.NotEmpty(t, resp.AccessToken, "Access token should not be empty")
	require.NotEmpty(t, resp.RefreshToken, "Refresh token should not be empty")
	require.Equal(t, "Bearer", resp.TokenType, "Token type should be Bearer")
}

// assertAPIError checks that err is an APIError with the given status and code.
func assertAPIError(t *testing.T, err error, statusCode int, code string) {
	t.Helper()
	require.Error(t, err)

	apiErr, ok := err.(*accountsdk.APIError)
	require.True(t, ok, "expected *accountsdk.APIError, got %T: %v", err, err)
	require.Equal(t, statusCode, apiErr.StatusCode)
	require.Equal(t, code, apiErr.Code)
}
