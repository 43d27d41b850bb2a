package cryptox

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"testing"

	"github.com/stretchr/testify/require"
)

func parsePKCS8(t *testing.T, pemBytes []byte) any {
	t.Helper()

	block, rest := pem.Decode(pemBytes)
	require.NotNil(t, block)
	require.Empty(t, rest)
	require.Equal(t, "PRIVATE KEY", block.Type)

	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	require.NoError(t, err)
	return key
}

func TestGenerateRSAKey(t *testing.T) {
	pemBytes, err := GenerateRSAKey(2048)
	require.NoError(t, err)

	key, ok := parsePKCS8(t, pemBytes).(*rsa.PrivateKey)
	require.True(t, ok)
	require.Equal(t, 2048, key.N.BitLen())
}

func TestGenerateRSAKey_RejectsTooSmall(t *testing.T) {
	_, err := GenerateRSAKey(1024)
	require.Error(t, err)
}

func TestGenerateES256Key(t *testing.T) {
	pemBytes, err := GenerateES256Key()
	require.NoError(t, err)

	key, ok := parsePKCS8(t, pemBytes).(*ecdsa.PrivateKey)
	require.True(t, ok)
	require.Equal(t, elliptic.P256(), key.Curve)
}

func TestGenerateEd25519Key(t *testing.T) {
	pemBytes, err := GenerateEd25519Key()
	require.NoError(t, err)

	_, ok := parsePKCS8(t, pemBytes).(ed25519.PrivateKey)
	require.True(t, ok)
}
