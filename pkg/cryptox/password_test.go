package cryptox

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	// Use a throwaway pepper so tests never touch a real pepper file.
	pepperFile = filepath.Join("testdata", "does-not-exist")
	pepper = "unit-test-pepper"
	m.Run()
}

func TestHashAndVerifyPassword(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(hash, "$argon2id$v=19$"))

	require.NoError(t, VerifyPassword("correct horse battery staple", hash))
	require.Error(t, VerifyPassword("wrong password", hash))
}

func TestHashPasswordSaltsEveryCall(t *testing.T) {
	t.Parallel()

	first, err := HashPassword("abcdef")
	require.NoError(t, err)
	second, err := HashPassword("abcdef")
	require.NoError(t, err)
	require.NotEqual(t, first, second)
}

func TestVerifyPasswordRejectsMalformedHashes(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		hash string
	}{
		{"empty", ""},
		{"wrong part count", "$argon2id$v=19$m=19456,t=2,p=1$salt"},
		{"wrong algorithm", "$bcrypt$v=19$m=19456,t=2,p=1$c2FsdA$aGFzaA"},
		{"wrong version", "$argon2id$v=18$m=19456,t=2,p=1$c2FsdA$aGFzaA"},
		{"bad salt encoding", "$argon2id$v=19$m=19456,t=2,p=1$!!$aGFzaA"},
		{"bad hash encoding", "$argon2id$v=19$m=19456,t=2,p=1$c2FsdA$!!"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Error(t, VerifyPassword("whatever", tc.hash))
		})
	}
}

func TestVerifyPasswordHonoursStoredParameters(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("abcdef")
	require.NoError(t, err)

	// Hashes verify with the parameters embedded in the PHC string, so a
	// future tuning change must not break existing rows.
	require.Contains(t, hash, "m=19456,t=2,p=1")
	require.NoError(t, VerifyPassword("abcdef", hash))
}
