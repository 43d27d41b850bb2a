package cryptox

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	tests := []struct {
		name string
		size int
	}{
		{"128-bit token", TokenSize128},
		{"256-bit token", TokenSize256},
		{"512-bit token", TokenSize512},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := GenerateToken(tt.size)
			require.NoError(t, err)

			raw, err := base64.RawURLEncoding.DecodeString(token)
			require.NoError(t, err)
			require.Len(t, raw, tt.size)
		})
	}
}

func TestGenerateToken_RejectsBadSize(t *testing.T) {
	for _, size := range []int{0, -1, -32} {
		_, err := GenerateToken(size)
		require.Error(t, err)
	}
}

func TestGenerateToken_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		token, err := GenerateToken(TokenSize256)
		require.NoError(t, err)
		require.False(t, seen[token], "duplicate token generated")
		seen[token] = true
	}
}

func TestMustGenerateToken_Panics(t *testing.T) {
	require.Panics(t, func() {
		MustGenerateToken(0)
	})
}

func TestFingerprintToken(t *testing.T) {
	token := MustGenerateToken(TokenSize256)

	fp1 := FingerprintToken(token)
	fp2 := FingerprintToken(token)
	require.Equal(t, fp1, fp2, "fingerprint should be deterministic")
	require.NotEqual(t, token, fp1)

	// SHA-256 digest is 32 bytes, 43 chars base64url
	require.Len(t, fp1, 43)

	other := FingerprintToken(token + "x")
	require.NotEqual(t, fp1, other)
}
