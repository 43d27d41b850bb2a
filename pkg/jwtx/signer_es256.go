package jwtx

import (
	"crypto/ecdsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// ES256Signer signs JWTs with ECDSA P-256 and SHA-256.
type ES256Signer struct {
	kid string
	key *ecdsa.PrivateKey
	pub *ecdsa.PublicKey
}

// newES256Signer loads an ECDSA private key from PKCS8 PEM bytes.
func newES256Signer(kid string, pemKey []byte) (*ES256Signer, error) {
	block, _ := pem.Decode(pemKey)
	if block == nil {
		return nil, errors.New("jwtx: invalid PEM for ES256 key")
	}
	if block.Type != "PRIVATE KEY" {
		return nil, fmt.Errorf("jwtx: expected PRIVATE KEY, got %q (ES256 requires PKCS8)", block.Type)
	}

	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("jwtx: parse PKCS8: %w", err)
	}
	key, ok := parsed.(*ecdsa.PrivateKey)
	if !ok {
		return nil, errors.New("jwtx: not ECDSA private key")
	}

	return &ES256Signer{kid: kid, key: key, pub: &key.PublicKey}, nil
}

func (s *ES256Signer) Alg() string { return jwt.SigningMethodES256.Alg() }
func (s *ES256Signer) KID() string { return s.kid }

// Sign turns the claims into a signed compact JWT.
func (s *ES256Signer) Sign(claims Claims) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodES256, claims)
	t.Header["kid"] = s.kid
	return t.SignedString(s.key)
}

// PublicJWK returns the public half for JWKS publishing.
func (s *ES256Signer) PublicJWK() JWK {
	return NewES256JWK(s.kid, "sig", s.Alg(), s.pub)
}

// Validate sanity-checks the key and that it sits on P-256.
func (s *ES256Signer) Validate() error {
	if s.key == nil || s.pub == nil {
		return errors.New("jwtx: nil ECDSA key")
	}
	if s.key.Curve.Params().Name != "P-256" {
		return fmt.Errorf("jwtx: expected P-256 curve, got %s", s.key.Curve.Params().Name)
	}
	return nil
}
