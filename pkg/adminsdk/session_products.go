package adminsdk

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// ============================================================================
// Product Operations
// ============================================================================

// ListProductsOptions filters the admin catalogue listing. Zero values are
// omitted from the query.
type ListProductsOptions struct {
	Type   string // esim, service, physical
	Limit  int
	Offset int
}

func (o ListProductsOptions) query() string {
	q := url.Values{}
	if o.Type != "" {
		q.Set("type", o.Type)
	}
	if o.Limit > 0 {
		q.Set("limit", strconv.Itoa(o.Limit))
	}
	if o.Offset > 0 {
		q.Set("offset", strconv.Itoa(o.Offset))
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

// CreateProduct adds a catalogue item. SKU must be unique.
// Requires: products:write capability.
func (s *Session) CreateProduct(ctx context.Context, req ProductPayload) (*ProductInfo, error) {
	var info ProductInfo
	err := s.doAuthJSON(ctx, http.MethodPost, "/v1/products", req, &info, http.StatusCreated)
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// GetProduct returns a product whether or not it is active.
// Requires: products:read capability.
func (s *Session) GetProduct(ctx context.Context, id string) (*ProductInfo, error) {
	var info ProductInfo
	err := s.doAuthJSON(ctx, http.MethodGet, "/v1/products/"+id, nil, &info, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// ListProducts returns a filtered page of the catalogue, active or not.
// Requires: products:read capability.
func (s *Session) ListProducts(ctx context.Context, opts ListProductsOptions) (*ListProductsResponse, error) {
	var list ListProductsResponse
	err := s.doAuthJSON(ctx, http.MethodGet, "/v1/products"+opts.query(), nil, &list, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &list, nil
}

// UpdateProduct replaces a product's mutable fields.
// Requires: products:write capability.
func (s *Session) UpdateProduct(ctx context.Context, id string, req ProductPayload) (*ProductInfo, error) {
	var info ProductInfo
	err := s.doAuthJSON(ctx, http.MethodPut, "/v1/products/"+id, req, &info, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// DeleteProduct removes a product. Refused once the product appears in any
// order, so order history keeps its references.
// Requires: products:delete capability.
func (s *Session) DeleteProduct(ctx context.Context, id string) error {
	return s.doAuthJSON(ctx, http.MethodDelete, "/v1/products/"+id, nil, nil, http.StatusNoContent)
}
