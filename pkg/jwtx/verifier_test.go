package jwtx_test

import (
	"strings"
	"testing"
	"time"

	"github.com/meridiantours/meridian/pkg/cryptox"
	"github.com/meridiantours/meridian/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func generateTestKey(t *testing.T, alg string) []byte {
	t.Helper()

	var pemKey []byte
	var err error
	switch alg {
	case jwtx.AlgorithmRS256:
		pemKey, err = cryptox.GenerateRSAKey(2048)
	case jwtx.AlgorithmES256:
		pemKey, err = cryptox.GenerateES256Key()
	case jwtx.AlgorithmEdDSA:
		pemKey, err = cryptox.GenerateEd25519Key()
	default:
		t.Fatalf("unknown alg %q", alg)
	}
	require.NoError(t, err)
	return pemKey
}

func newTestSigner(t *testing.T, alg, kid string) jwtx.Signer {
	t.Helper()

	pemKey := generateTestKey(t, alg)

	var signer jwtx.Signer
	var err error
	switch alg {
	case jwtx.AlgorithmRS256:
		signer, err = jwtx.NewSignerRS256(kid, pemKey)
	case jwtx.AlgorithmES256:
		signer, err = jwtx.NewSignerES256(kid, pemKey)
	case jwtx.AlgorithmEdDSA:
		signer, err = jwtx.NewSignerEdDSA(kid, pemKey)
	}
	require.NoError(t, err)
	require.NoError(t, signer.Validate())
	return signer
}

func testClaims(now time.Time) jwtx.Claims {
	return jwtx.NewAccessClaims(
		"user-123",
		"session-abc",
		"admin",
		[]string{jwtx.AMRPassword, jwtx.AMRMFA},
		10*time.Minute,
		exampleIssuer,
		[]string{"admin-api"},
		"jdoe",
		"Jane Doe",
		now,
	)
}

func TestSignAndVerify_AllAlgorithms(t *testing.T) {
	for _, alg := range []string{jwtx.AlgorithmRS256, jwtx.AlgorithmES256, jwtx.AlgorithmEdDSA} {
		t.Run(alg, func(t *testing.T) {
			signer := newTestSigner(t, alg, "test-key-"+alg)
			require.Equal(t, alg, signer.Alg())

			token, err := signer.Sign(testClaims(time.Now().UTC()))
			require.NoError(t, err)
			require.NotEmpty(t, token)

			keyset := jwtx.NewKeySet()
			require.NoError(t, keyset.AddSigner(signer))

			verifier, err := jwtx.NewVerifier(alg, keyset, exampleIssuer, []string{"admin-api"})
			require.NoError(t, err)

			claims, err := verifier.Verify(token)
			require.NoError(t, err)
			require.Equal(t, "user-123", claims.Subject)
			require.Equal(t, "admin", claims.Role)
			require.Equal(t, "session-abc", claims.SID)
			require.True(t, claims.HasAMR(jwtx.AMRMFA))
		})
	}
}

func TestVerify_TamperedToken(t *testing.T) {
	signer := newTestSigner(t, jwtx.AlgorithmEdDSA, "tamper-key")

	token, err := signer.Sign(testClaims(time.Now().UTC()))
	require.NoError(t, err)

	keyset := jwtx.NewKeySet()
	require.NoError(t, keyset.AddSigner(signer))
	verifier, err := jwtx.NewVerifier(jwtx.AlgorithmEdDSA, keyset, exampleIssuer, nil)
	require.NoError(t, err)

	// Flip a character in the payload segment
	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	payload := []byte(parts[1])
	if payload[0] == 'A' {
		payload[0] = 'B'
	} else {
		payload[0] = 'A'
	}
	tampered := parts[0] + "." + string(payload) + "." + parts[2]

	_, err = verifier.Verify(tampered)
	require.Error(t, err)
}

func TestVerify_UnknownKid(t *testing.T) {
	signer := newTestSigner(t, jwtx.AlgorithmES256, "known-kid")
	stranger := newTestSigner(t, jwtx.AlgorithmES256, "stranger-kid")

	token, err := stranger.Sign(testClaims(time.Now().UTC()))
	require.NoError(t, err)

	keyset := jwtx.NewKeySet()
	require.NoError(t, keyset.AddSigner(signer))
	verifier, err := jwtx.NewVerifier(jwtx.AlgorithmES256, keyset, exampleIssuer, nil)
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown kid")
}

func TestVerify_AlgorithmConfusion(t *testing.T) {
	// A token signed with EdDSA must not pass an RS256-only verifier.
	edSigner := newTestSigner(t, jwtx.AlgorithmEdDSA, "ed-key")

	token, err := edSigner.Sign(testClaims(time.Now().UTC()))
	require.NoError(t, err)

	keyset := jwtx.NewKeySet()
	require.NoError(t, keyset.AddSigner(edSigner))
	verifier, err := jwtx.NewVerifier(jwtx.AlgorithmRS256, keyset, exampleIssuer, nil)
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	require.Error(t, err)
}

func TestVerify_WrongIssuerAndAudience(t *testing.T) {
	signer := newTestSigner(t, jwtx.AlgorithmEdDSA, "iss-key")

	token, err := signer.Sign(testClaims(time.Now().UTC()))
	require.NoError(t, err)

	keyset := jwtx.NewKeySet()
	require.NoError(t, keyset.AddSigner(signer))

	t.Run("issuer mismatch", func(t *testing.T) {
		verifier, err := jwtx.NewVerifier(jwtx.AlgorithmEdDSA, keyset, "someone-else", nil)
		require.NoError(t, err)

		_, err = verifier.Verify(token)
		require.ErrorIs(t, err, jwtx.ErrIssuer)
	})

	t.Run("audience mismatch", func(t *testing.T) {
		verifier, err := jwtx.NewVerifier(jwtx.AlgorithmEdDSA, keyset, exampleIssuer, []string{"billing"})
		require.NoError(t, err)

		_, err = verifier.Verify(token)
		require.ErrorIs(t, err, jwtx.ErrAudience)
	})
}

func TestVerify_ExpiredToken(t *testing.T) {
	signer := newTestSigner(t, jwtx.AlgorithmEdDSA, "expired-key")

	// Issued an hour ago with a one-minute TTL
	past := time.Now().UTC().Add(-time.Hour)
	claims := jwtx.NewAccessClaims(
		"user-123", "sid", "viewer", []string{jwtx.AMRPassword},
		time.Minute, exampleIssuer, nil, "jdoe", "Jane Doe", past,
	)

	token, err := signer.Sign(claims)
	require.NoError(t, err)

	keyset := jwtx.NewKeySet()
	require.NoError(t, keyset.AddSigner(signer))
	verifier, err := jwtx.NewVerifier(jwtx.AlgorithmEdDSA, keyset, exampleIssuer, nil)
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	require.Error(t, err)
}

func TestNewVerifier_UnsupportedAlgorithm(t *testing.T) {
	_, err := jwtx.NewVerifier("HS256", jwtx.NewKeySet(), exampleIssuer, nil)
	require.Error(t, err)
}
