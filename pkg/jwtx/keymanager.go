package jwtx

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/meridiantours/meridian/pkg/cryptox"
)

// Supported JWT signing algorithms
const (
	AlgorithmRS256 = "RS256"
	AlgorithmES256 = "ES256"
	AlgorithmEdDSA = "EdDSA"
)

var (
	// ErrSignerNotFound reports a kid with no matching active signer.
	ErrSignerNotFound = errors.New("signer not found")

	// ErrLastSigner reports an attempt to retire the only active signer.
	ErrLastSigner = errors.New("cannot retire the last signing key")
)

// KeyManager holds the signing keys, the verifier and the public KeySet for
// one service instance. Multiple signing keys are kept live at once so a
// rotation can retire a key without interrupting token issuance.
type KeyManager struct {
	Verifier  Verifier
	KeySet    *KeySet
	algorithm string

	mu      sync.RWMutex
	signers []Signer
}

// KeyManagerOptions configures a KeyManager.
type KeyManagerOptions struct {
	// Algorithm selects the signing algorithm: "RS256", "ES256" or "EdDSA".
	Algorithm string

	// Issuer is the iss claim validated in tokens.
	Issuer string

	// Audience is the list of aud values validated in tokens. Empty means
	// no audience validation.
	Audience []string

	// RSABits sets the RSA key size for RS256. Defaults to 4096 and must
	// be at least 2048.
	RSABits int

	// NumKeys is how many signing keys to keep active. Defaults to 3,
	// capped at 10.
	NumKeys int
}

// NewEphemeralKeyManager generates in-memory signing keys that are never
// persisted. Every token becomes invalid on restart, which suits dev and
// test setups.
func NewEphemeralKeyManager(opts KeyManagerOptions) (*KeyManager, error) {
	if opts.Issuer == "" {
		return nil, fmt.Errorf("jwtx: Issuer is required")
	}

	numKeys := clampNumKeys(opts.NumKeys)
	keyset := NewKeySet()
	signers := make([]Signer, 0, numKeys)

	for i := 0; i < numKeys; i++ {
		keyID, err := generateRandomKeyID()
		if err != nil {
			return nil, fmt.Errorf("jwtx: failed to generate key ID: %w", err)
		}

		signer, err := generateSigner(opts.Algorithm, keyID, opts.RSABits)
		if err != nil {
			return nil, fmt.Errorf("jwtx: failed to generate signer %d: %w", i+1, err)
		}

		signers = append(signers, signer)
		if err := keyset.AddSigner(signer); err != nil {
			return nil, fmt.Errorf("jwtx: failed to add signer %d to keyset: %w", i+1, err)
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
		signers:   signers,
	}, nil
}

func clampNumKeys(n int) int {
	if n <= 0 {
		return 3
	}
	if n > 10 {
		return 10
	}
	return n
}

// generateSigner creates a fresh keypair and signer for the algorithm.
func generateSigner(algorithm, keyID string, rsaBits int) (Signer, error) {
	switch algorithm {
	case AlgorithmRS256:
		bits := rsaBits
		if bits == 0 {
			bits = 4096
		}
		pemBytes, err := cryptox.GenerateRSAKey(bits)
		if err != nil {
			return nil, fmt.Errorf("failed to generate RS256 key: %w", err)
		}
		return NewSignerRS256(keyID, pemBytes)

	case AlgorithmES256:
		pemBytes, err := cryptox.GenerateES256Key()
		if err != nil {
			return nil, fmt.Errorf("failed to generate ES256 key: %w", err)
		}
		return NewSignerES256(keyID, pemBytes)

	case AlgorithmEdDSA:
		pemBytes, err := cryptox.GenerateEd25519Key()
		if err != nil {
			return nil, fmt.Errorf("failed to generate EdDSA key: %w", err)
		}
		return NewSignerEdDSA(keyID, pemBytes)

	default:
		return nil, fmt.Errorf("unsupported algorithm %q", algorithm)
	}
}

// Algorithm returns the signing algorithm in use.
func (km *KeyManager) Algorithm() string {
	return km.algorithm
}

// IsReady reports whether the manager has verification keys loaded.
func (km *KeyManager) IsReady() bool {
	return km.KeySet.IsReady()
}

// GetSigner returns a randomly selected active signer, spreading signing
// load and key exposure across the set.
func (km *KeyManager) GetSigner() Signer {
	km.mu.RLock()
	defer km.mu.RUnlock()

	switch len(km.signers) {
	case 0:
		return nil
	case 1:
		return km.signers[0]
	default:
		return km.signers[rand.IntN(len(km.signers))]
	}
}

// NumSigners returns the number of active signing keys.
func (km *KeyManager) NumSigners() int {
	km.mu.RLock()
	defer km.mu.RUnlock()
	return len(km.signers)
}

// GetSigners returns a copy of the active signing keys.
func (km *KeyManager) GetSigners() []Signer {
	km.mu.RLock()
	defer km.mu.RUnlock()

	signers := make([]Signer, len(km.signers))
	copy(signers, km.signers)
	return signers
}

// AddSigner adds a new signing key to both the active set and the KeySet.
// Used for runtime key rotation.
func (km *KeyManager) AddSigner(signer Signer) error {
	if signer == nil {
		return fmt.Errorf("signer cannot be nil")
	}

	km.mu.Lock()
	defer km.mu.Unlock()

	if err := km.KeySet.AddSigner(signer); err != nil {
		return fmt.Errorf("failed to add signer to keyset: %w", err)
	}

	km.signers = append(km.signers, signer)
	return nil
}

// RetireSignerByKid removes a key from active signing. The key stays in the
// KeySet so tokens it already signed keep verifying through the grace
// period. The last active key cannot be retired.
func (km *KeyManager) RetireSignerByKid(kid string) error {
	km.mu.Lock()
	defer km.mu.Unlock()

	if len(km.signers) <= 1 {
		return ErrLastSigner
	}

	found := false
	remaining := make([]Signer, 0, len(km.signers)-1)
	for _, signer := range km.signers {
		if signer.KID() == kid {
			found = true
			continue
		}
		remaining = append(remaining, signer)
	}

	if !found {
		return fmt.Errorf("%w: %s", ErrSignerNotFound, kid)
	}

	km.signers = remaining
	return nil
}

// generateRandomKeyID creates a "meridian-{token}" key identifier with
// 128 bits of entropy.
func generateRandomKeyID() (string, error) {
	token, err := cryptox.GenerateToken(cryptox.TokenSize128)
	if err != nil {
		return "", fmt.Errorf("failed to generate random key ID: %w", err)
	}
	return fmt.Sprintf("meridian-%s", token), nil
}
