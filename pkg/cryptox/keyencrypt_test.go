package cryptox

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncryptDecryptPrivateKey(t *testing.T) {
	t.Setenv("MERIDIAN_MASTER_KEY", "unit-test-master-key")
	ResetMasterKeyForTesting()
	t.Cleanup(ResetMasterKeyForTesting)

	pemData, err := GenerateEd25519Key()
	require.NoError(t, err)

	encrypted, err := EncryptPrivateKey(pemData)
	require.NoError(t, err)
	require.NotEqual(t, pemData, encrypted)

	decrypted, err := DecryptPrivateKey(encrypted)
	require.NoError(t, err)
	require.Equal(t, pemData, decrypted)
}

func TestEncryptPrivateKey_NonceVaries(t *testing.T) {
	t.Setenv("MERIDIAN_MASTER_KEY", "unit-test-master-key")
	ResetMasterKeyForTesting()
	t.Cleanup(ResetMasterKeyForTesting)

	plaintext := []byte("same plaintext")

	a, err := EncryptPrivateKey(plaintext)
	require.NoError(t, err)
	b, err := EncryptPrivateKey(plaintext)
	require.NoError(t, err)

	require.NotEqual(t, a, b, "each encryption should use a fresh nonce")
}

func TestDecryptPrivateKey_Tampered(t *testing.T) {
	t.Setenv("MERIDIAN_MASTER_KEY", "unit-test-master-key")
	ResetMasterKeyForTesting()
	t.Cleanup(ResetMasterKeyForTesting)

	encrypted, err := EncryptPrivateKey([]byte("secret key material"))
	require.NoError(t, err)

	encrypted[len(encrypted)-1] ^= 0xFF

	_, err = DecryptPrivateKey(encrypted)
	require.Error(t, err, "tampered ciphertext must fail authentication")
}

func TestDecryptPrivateKey_TooShort(t *testing.T) {
	t.Setenv("MERIDIAN_MASTER_KEY", "unit-test-master-key")
	ResetMasterKeyForTesting()
	t.Cleanup(ResetMasterKeyForTesting)

	_, err := DecryptPrivateKey([]byte{0x01, 0x02})
	require.Error(t, err)
}

func TestMasterKeyFromFile(t *testing.T) {
	keyFile := filepath.Join(t.TempDir(), "master.key")
	require.NoError(t, os.WriteFile(keyFile, []byte("file-based-master-key"), 0600))

	SetMasterKeyPath(keyFile)
	ResetMasterKeyForTesting()
	t.Cleanup(func() {
		SetMasterKeyPath("")
		ResetMasterKeyForTesting()
	})

	encrypted, err := EncryptPrivateKey([]byte("payload"))
	require.NoError(t, err)

	decrypted, err := DecryptPrivateKey(encrypted)
	require.NoError(t, err)
	require.Equal(t, []byte("payload"), decrypted)
}
