package adminsdk

import (
	"context"
	"net/http"
)

// GetJWKS retrieves the JSON Web Key Set for token verification.
func (c *SDKClient) GetJWKS(ctx context.Context) (*JWKSResponse, error) {
	var jwks JWKSResponse
	err := c.doJSON(ctx, http.MethodGet, "/.well-known/jwks.json", nil, &jwks, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &jwks, nil
}
