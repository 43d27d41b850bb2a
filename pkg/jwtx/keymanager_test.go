package jwtx_test

import (
	"context"
	"testing"
	"time"

	"github.com/meridiantours/meridian/pkg/cryptox"
	"github.com/meridiantours/meridian/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestNewEphemeralKeyManager_AllAlgorithms(t *testing.T) {
	tests := []struct {
		name      string
		algorithm string
		rsaBits   int
	}{
		{"RS256 with 2048 bits", jwtx.AlgorithmRS256, 2048},
		{"ES256", jwtx.AlgorithmES256, 0},
		{"EdDSA", jwtx.AlgorithmEdDSA, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			km, err := jwtx.NewEphemeralKeyManager(jwtx.KeyManagerOptions{
				Algorithm: tt.algorithm,
				Issuer:    exampleIssuer,
				Audience:  []string{"admin-api"},
				RSABits:   tt.rsaBits,
				NumKeys:   1,
			})

			require.NoError(t, err)
			require.NotNil(t, km.Verifier)
			require.NotNil(t, km.KeySet)
			require.Equal(t, tt.algorithm, km.Algorithm())
			require.True(t, km.IsReady())
			require.Equal(t, 1, km.NumSigners())
			require.NotNil(t, km.GetSigner())
		})
	}
}

func TestNewEphemeralKeyManager_Validation(t *testing.T) {
	t.Run("requires issuer", func(t *testing.T) {
		_, err := jwtx.NewEphemeralKeyManager(jwtx.KeyManagerOptions{
			Algorithm: jwtx.AlgorithmEdDSA,
		})
		require.Error(t, err)
	})

	t.Run("rejects unsupported algorithm", func(t *testing.T) {
		_, err := jwtx.NewEphemeralKeyManager(jwtx.KeyManagerOptions{
			Algorithm: "HS256",
			Issuer:    exampleIssuer,
		})
		require.Error(t, err)
	})

	t.Run("defaults key count", func(t *testing.T) {
		km, err := jwtx.NewEphemeralKeyManager(jwtx.KeyManagerOptions{
			Algorithm: jwtx.AlgorithmEdDSA,
			Issuer:    exampleIssuer,
		})
		require.NoError(t, err)
		require.Equal(t, 3, km.NumSigners())
	})
}

func TestKeyManager_SignVerifyRoundTrip(t *testing.T) {
	km, err := jwtx.NewEphemeralKeyManager(jwtx.KeyManagerOptions{
		Algorithm: jwtx.AlgorithmEdDSA,
		Issuer:    exampleIssuer,
		Audience:  []string{"admin-api"},
		NumKeys:   3,
	})
	require.NoError(t, err)

	// Tokens signed by any of the keys must verify against the shared set
	for i := 0; i < 10; i++ {
		signer := km.GetSigner()
		require.NotNil(t, signer)

		token, err := signer.Sign(testClaims(time.Now().UTC()))
		require.NoError(t, err)

		claims, err := km.Verifier.Verify(token)
		require.NoError(t, err)
		require.Equal(t, "user-123", claims.Subject)
	}
}

func TestKeyManager_AddAndRetireSigner(t *testing.T) {
	km, err := jwtx.NewEphemeralKeyManager(jwtx.KeyManagerOptions{
		Algorithm: jwtx.AlgorithmEdDSA,
		Issuer:    exampleIssuer,
		NumKeys:   2,
	})
	require.NoError(t, err)
	require.Equal(t, 2, km.NumSigners())

	extra := newTestSigner(t, jwtx.AlgorithmEdDSA, "rotation-key")
	require.NoError(t, km.AddSigner(extra))
	require.Equal(t, 3, km.NumSigners())

	// A token from the retiring key keeps verifying through the KeySet
	token, err := extra.Sign(testClaims(time.Now().UTC()))
	require.NoError(t, err)

	require.NoError(t, km.RetireSignerByKid("rotation-key"))
	require.Equal(t, 2, km.NumSigners())

	_, err = km.Verifier.Verify(token)
	require.NoError(t, err)

	for _, s := range km.GetSigners() {
		require.NotEqual(t, "rotation-key", s.KID())
	}
}

func TestKeyManager_RetireValidation(t *testing.T) {
	km, err := jwtx.NewEphemeralKeyManager(jwtx.KeyManagerOptions{
		Algorithm: jwtx.AlgorithmEdDSA,
		Issuer:    exampleIssuer,
		NumKeys:   1,
	})
	require.NoError(t, err)

	t.Run("cannot retire last key", func(t *testing.T) {
		err := km.RetireSignerByKid(km.GetSigner().KID())
		require.Error(t, err)
	})

	t.Run("unknown kid", func(t *testing.T) {
		require.NoError(t, km.AddSigner(newTestSigner(t, jwtx.AlgorithmEdDSA, "second")))
		err := km.RetireSignerByKid("missing")
		require.Error(t, err)
	})
}

// fakeKeyStore is an in-memory KeyStore for persistent manager tests.
type fakeKeyStore struct {
	records []jwtx.SigningKeyRecord
}

func (f *fakeKeyStore) ListAllSigningKeys(_ context.Context) ([]jwtx.SigningKeyRecord, error) {
	return f.records, nil
}

func (f *fakeKeyStore) ListActiveSigningKeys(_ context.Context) ([]jwtx.SigningKeyRecord, error) {
	var active []jwtx.SigningKeyRecord
	for _, r := range f.records {
		if r.RetiredAt == nil {
			active = append(active, r)
		}
	}
	return active, nil
}

func (f *fakeKeyStore) CreateSigningKey(_ context.Context, key jwtx.SigningKeyRecord) error {
	f.records = append(f.records, key)
	return nil
}

func TestNewPersistentKeyManager(t *testing.T) {
	t.Setenv("MERIDIAN_MASTER_KEY", "keymanager-test-master")
	cryptox.ResetMasterKeyForTesting()
	t.Cleanup(cryptox.ResetMasterKeyForTesting)

	store := &fakeKeyStore{}
	ctx := context.Background()

	km, err := jwtx.NewPersistentKeyManager(ctx, jwtx.PersistentKeyManagerOptions{
		Store:     store,
		Algorithm: jwtx.AlgorithmEdDSA,
		Issuer:    exampleIssuer,
		NumKeys:   2,
	})
	require.NoError(t, err)
	require.Equal(t, 2, km.NumSigners())
	require.Len(t, store.records, 2, "generated keys must be persisted")

	token, err := km.GetSigner().Sign(testClaims(time.Now().UTC()))
	require.NoError(t, err)

	// A second manager built from the same store must verify tokens the
	// first one signed.
	km2, err := jwtx.NewPersistentKeyManager(ctx, jwtx.PersistentKeyManagerOptions{
		Store:     store,
		Algorithm: jwtx.AlgorithmEdDSA,
		Issuer:    exampleIssuer,
		NumKeys:   2,
	})
	require.NoError(t, err)
	require.Len(t, store.records, 2, "no extra keys generated on reload")

	claims, err := km2.Verifier.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "user-123", claims.Subject)
}

func TestNewPersistentKeyManager_RetiredKeysStillVerify(t *testing.T) {
	t.Setenv("MERIDIAN_MASTER_KEY", "keymanager-test-master")
	cryptox.ResetMasterKeyForTesting()
	t.Cleanup(cryptox.ResetMasterKeyForTesting)

	store := &fakeKeyStore{}
	ctx := context.Background()

	km, err := jwtx.NewPersistentKeyManager(ctx, jwtx.PersistentKeyManagerOptions{
		Store:     store,
		Algorithm: jwtx.AlgorithmEdDSA,
		Issuer:    exampleIssuer,
		NumKeys:   1,
	})
	require.NoError(t, err)

	token, err := km.GetSigner().Sign(testClaims(time.Now().UTC()))
	require.NoError(t, err)

	// Retire the stored key; the reloaded manager mints a replacement but
	// must still verify the old token within the grace period.
	retired := time.Now()
	store.records[0].RetiredAt = &retired

	km2, err := jwtx.NewPersistentKeyManager(ctx, jwtx.PersistentKeyManagerOptions{
		Store:     store,
		Algorithm: jwtx.AlgorithmEdDSA,
		Issuer:    exampleIssuer,
		NumKeys:   1,
	})
	require.NoError(t, err)
	require.Equal(t, 1, km2.NumSigners())
	require.Len(t, store.records, 2)

	_, err = km2.Verifier.Verify(token)
	require.NoError(t, err)
}
