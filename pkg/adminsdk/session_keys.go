package adminsdk

import (
	"context"
	"fmt"
	"net/http"
)

// ============================================================================
// Signing Key Operations
// ============================================================================

// RotateKey rotates the JWT signing keys by generating a new key.
// Requires: keys:write capability.
func (s *Session) RotateKey(ctx context.Context, req RotateKeyRequest) (*RotateKeyResponse, error) {
	var rotateResp RotateKeyResponse
	err := s.doAuthJSON(ctx, http.MethodPost, "/v1/keys/rotate", req, &rotateResp, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &rotateResp, nil
}

// ListKeys returns all signing keys with their status.
// Requires: keys:read capability.
func (s *Session) ListKeys(ctx context.Context) (*ListKeysResponse, error) {
	var list ListKeysResponse
	err := s.doAuthJSON(ctx, http.MethodGet, "/v1/keys", nil, &list, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &list, nil
}

// RetireKey retires a specific signing key by its key ID (kid). Retired
// keys keep verifying existing tokens until their grace period lapses.
// Requires: keys:write capability.
func (s *Session) RetireKey(ctx context.Context, kid string) error {
	path := fmt.Sprintf("/v1/keys/%s/retire", kid)
	return s.doAuthJSON(ctx, http.MethodPost, path, nil, nil, http.StatusNoContent)
}
