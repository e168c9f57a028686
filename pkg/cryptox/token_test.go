package cryptox

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	t.Parallel()

	t.Run("rejects non-positive sizes", func(t *testing.T) {
		_, err := GenerateToken(0)
		require.Error(t, err)
		_, err = GenerateToken(-1)
		require.Error(t, err)
	})

	t.Run("produces expected encoded length", func(t *testing.T) {
		token, err := GenerateToken(TokenSize256)
		require.NoError(t, err)
		require.Len(t, token, 43) // 32 bytes base64url, no padding
	})

	t.Run("produces unique tokens", func(t *testing.T) {
		seen := make(map[string]struct{}, 100)
		for range 100 {
			token, err := GenerateToken(TokenSize128)
			require.NoError(t, err)
			_, dup := seen[token]
			require.False(t, dup, "token collision")
			seen[token] = struct{}{}
		}
	})
}

func TestFingerprintToken(t *testing.T) {
	t.Parallel()

	t.Run("is deterministic", func(t *testing.T) {
		require.Equal(t, FingerprintToken("abc"), FingerprintToken("abc"))
	})

	t.Run("differs per input", func(t *testing.T) {
		require.NotEqual(t, FingerprintToken("abc"), FingerprintToken("abd"))
	})

	t.Run("never echoes the token", func(t *testing.T) {
		token, err := GenerateToken(TokenSize256)
		require.NoError(t, err)
		require.NotContains(t, FingerprintToken(token), token[:10])
	})
}
