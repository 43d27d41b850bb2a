package jwtx

import (
	"context"
	"fmt"
	"time"

	"github.com/meridiantours/meridian/pkg/cryptox"
	"github.com/meridiantours/meridian/pkg/idx"
)

// SigningKeyRecord is a signing key as stored at rest. Private key material
// is always encrypted before it reaches a store.
type SigningKeyRecord struct {
	ID                  string
	Kid                 string
	Algorithm           string
	PrivateKeyEncrypted []byte
	CreatedAt           time.Time
	RetiredAt           *time.Time
	ExpiresAt           time.Time
}

// KeyStore is the minimal persistence interface for signing keys, defined
// here so the store package can satisfy it without a dependency cycle.
type KeyStore interface {
	// ListAllSigningKeys returns every key including retired ones, which
	// still verify tokens during their grace period.
	ListAllSigningKeys(ctx context.Context) ([]SigningKeyRecord, error)

	// ListActiveSigningKeys returns only keys eligible for signing.
	ListActiveSigningKeys(ctx context.Context) ([]SigningKeyRecord, error)

	// CreateSigningKey stores a new key with encrypted private material.
	CreateSigningKey(ctx context.Context, key SigningKeyRecord) error
}

// PersistentKeyManagerOptions configures a KeyManager backed by a KeyStore.
type PersistentKeyManagerOptions struct {
	Store KeyStore

	// Algorithm used for newly generated keys. Loaded keys keep their
	// stored algorithm.
	Algorithm string

	// Issuer is the iss claim validated in tokens.
	Issuer string

	// Audience values validated in tokens. Empty means no validation.
	Audience []string

	// RSABits for new RS256 keys. Defaults to 4096.
	RSABits int

	// NumKeys is the target number of active signing keys. Missing keys
	// are generated on startup. Defaults to 3.
	NumKeys int

	// GracePeriod is how long a retired key keeps verifying tokens.
	// Defaults to 30 days.
	GracePeriod time.Duration
}

// NewPersistentKeyManager loads signing keys from the store, tops the
// active set up to NumKeys, and returns a manager whose keys survive
// restarts. Retired keys are loaded for verification only.
func NewPersistentKeyManager(ctx context.Context, opts PersistentKeyManagerOptions) (*KeyManager, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("jwtx: Store is required for persistent key manager")
	}
	if opts.Issuer == "" {
		return nil, fmt.Errorf("jwtx: Issuer is required")
	}

	opts.NumKeys = clampNumKeys(opts.NumKeys)
	if opts.GracePeriod <= 0 {
		opts.GracePeriod = 30 * 24 * time.Hour
	}

	allKeys, err := opts.Store.ListAllSigningKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("jwtx: failed to load keys from store: %w", err)
	}
	activeKeys, err := opts.Store.ListActiveSigningKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("jwtx: failed to load active keys: %w", err)
	}

	// Every stored key goes into the KeySet so old tokens keep verifying.
	keyset := NewKeySet()
	for _, record := range allKeys {
		signer, err := signerFromRecord(record)
		if err != nil {
			return nil, err
		}
		if err := keyset.AddSigner(signer); err != nil {
			return nil, fmt.Errorf("jwtx: failed to add key %s to keyset: %w", record.Kid, err)
		}
	}

	// Only active keys sign new tokens.
	activeSigners := make([]Signer, 0, len(activeKeys))
	for _, record := range activeKeys {
		signer, err := signerFromRecord(record)
		if err != nil {
			return nil, err
		}
		activeSigners = append(activeSigners, signer)
	}

	// Top up to the target key count, persisting each new key.
	now := time.Now()
	for len(activeSigners) < opts.NumKeys {
		kid, err := generateRandomKeyID()
		if err != nil {
			return nil, fmt.Errorf("jwtx: failed to generate key ID: %w", err)
		}

		pemData, signer, err := generateNewKeyAndSigner(opts.Algorithm, kid, opts.RSABits)
		if err != nil {
			return nil, fmt.Errorf("jwtx: failed to generate new key: %w", err)
		}

		encrypted, err := cryptox.EncryptPrivateKey(pemData)
		if err != nil {
			return nil, fmt.Errorf("jwtx: failed to encrypt new key: %w", err)
		}

		record := SigningKeyRecord{
			ID:                  idx.New().String(),
			Kid:                 kid,
			Algorithm:           opts.Algorithm,
			PrivateKeyEncrypted: encrypted,
			CreatedAt:           now,
			RetiredAt:           nil,
			ExpiresAt:           now.Add(opts.GracePeriod), // extended when retired
		}
		if err := opts.Store.CreateSigningKey(ctx, record); err != nil {
			return nil, fmt.Errorf("jwtx: failed to store new key: %w", err)
		}

		activeSigners = append(activeSigners, signer)
		if err := keyset.AddSigner(signer); err != nil {
			return nil, fmt.Errorf("jwtx: failed to add new key to keyset: %w", err)
		}
	}

	verifier, err := NewVerifier(opts.Algorithm, keyset, opts.Issuer, opts.Audience)
	if err != nil {
		return nil, err
	}

	return &KeyManager{
		Verifier:  verifier,
		KeySet:    keyset,
		algorithm: opts.Algorithm,
		signers:   activeSigners,
	}, nil
}

// signerFromRecord decrypts a stored key and rebuilds its signer.
func signerFromRecord(record SigningKeyRecord) (Signer, error) {
	pemData, err := cryptox.DecryptPrivateKey(record.PrivateKeyEncrypted)
	if err != nil {
		return nil, fmt.Errorf("jwtx: failed to decrypt key %s: %w", record.Kid, err)
	}

	signer, err := createSignerFromPEM(record.Algorithm, record.Kid, pemData)
	if err != nil {
		return nil, fmt.Errorf("jwtx: failed to create signer for key %s: %w", record.Kid, err)
	}
	return signer, nil
}

// createSignerFromPEM creates a signer from PEM private key data.
func createSignerFromPEM(algorithm, kid string, pemData []byte) (Signer, error) {
	switch algorithm {
	case AlgorithmRS256:
		return NewSignerRS256(kid, pemData)
	case AlgorithmES256:
		return NewSignerES256(kid, pemData)
	case AlgorithmEdDSA:
		return NewSignerEdDSA(kid, pemData)
	default:
		return nil, fmt.Errorf("unsupported algorithm %q", algorithm)
	}
}

// generateNewKeyAndSigner generates a keypair and returns both the PEM data
// for storage and the ready signer.
func generateNewKeyAndSigner(algorithm, kid string, rsaBits int) ([]byte, Signer, error) {
	var pemData []byte
	var err error

	switch algorithm {
	case AlgorithmRS256:
		if rsaBits == 0 {
			rsaBits = 4096
		}
		pemData, err = cryptox.GenerateRSAKey(rsaBits)
	case AlgorithmES256:
		pemData, err = cryptox.GenerateES256Key()
	case AlgorithmEdDSA:
		pemData, err = cryptox.GenerateEd25519Key()
	default:
		return nil, nil, fmt.Errorf("unsupported algorithm %q", algorithm)
	}
	if err != nil {
		return nil, nil, err
	}

	signer, err := createSignerFromPEM(algorithm, kid, pemData)
	if err != nil {
		return nil, nil, err
	}
	return pemData, signer, nil
}
