package accounts_test

import (
	"encoding/json"
	"testing"

	"github.com/studyconnect/accounts/pkg/accountsdk"
	"github.com/stretchr/testify/require"
)

// TestLivezEndpoint verifies the liveness check endpoint works before bootstrap.
func TestLivezEndpoint(t *testing.T) {
	baseURL, cleanup := setupAccountsContainer(t)
	defer cleanup()

	client := accountsdk.NewClient(baseURL)

	health, err := client.GetLiveness(t.Context())
	require.NoError(t, err)
	require.Equal(t, "ok", health.Status)
	require.NotEmpty(t, health.Version)

	t.Logf("Livez endpoint is healthy")
}

// TestReadyzEndpoint verifies readiness reports its dependency checks before
// bootstrap.
func TestReadyzEndpoint(t *testing.T) {
	baseURL, cleanup := setupAccountsContainer(t)
	defer cleanup()

	client := accountsdk.NewClient(baseURL)

	health, err := client.GetReadiness(t.Context())
	require.NoError(t, err)
	require.Equal(t, "ok", health.Status)
	require.NotNil(t, health.Checks)
	require.Equal(t, "ok", health.Checks.Database)
	require.Equal(t, "ok", health.Checks.Signer)

	t.Logf("Readyz endpoint is healthy")
}

// TestJWKSEndpoint verifies public keys are available before bootstrap.
func TestJWKSEndpoint(t *testing.T) {
	baseURL, cleanup := setupAccountsContainer(t)
	defer cleanup()

	client := accountsdk.NewClient(baseURL)

	jwks, err := client.GetJWKS(t.Context())

	require.NoError(t, err)
	require.NotNil(t, jwks)
	require.NotEmpty(t, jwks.Keys, "JWKS should contain at least one key")

	t.Logf("JWKS endpoint returned %d key(s)", len(jwks.Keys))

	for _, key := range jwks.Keys {
		t.Logf("Key ID: %s, Algorithm: %s, Use: %s", key.Kid, key.Alg, key.Use)
		keyJSON, _ := json.Marshal(key)
		t.Logf("Key JSON: %s", keyJSON)
	}
}
