package adminsdk

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// ============================================================================
// Public (unauthenticated) Operations
// ============================================================================

// Track returns the public status view for a tracking reference. The view
// carries no client identity and no internal notes.
func (c *SDKClient) Track(ctx context.Context, trackingID string) (*TrackingResponse, error) {
	var view TrackingResponse
	err := c.doJSON(ctx, http.MethodGet, "/v1/track/"+trackingID, nil, &view, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// PublicListOptions pages the public listings. Zero values are omitted.
type PublicListOptions struct {
	Category string // posts only
	Limit    int
	Offset   int
}

func (o PublicListOptions) query() string {
	q := url.Values{}
	if o.Category != "" {
		q.Set("category", o.Category)
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

// ListPublishedPosts returns the published blog posts, newest first.
func (c *SDKClient) ListPublishedPosts(ctx context.Context, opts PublicListOptions) (*ListPostsResponse, error) {
	var list ListPostsResponse
	err := c.doJSON(ctx, http.MethodGet, "/v1/public/posts"+opts.query(), nil, &list, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &list, nil
}

// GetPublishedPost returns one published post by slug. Drafts and archived
// posts are not found here.
func (c *SDKClient) GetPublishedPost(ctx context.Context, slug string) (*PostInfo, error) {
	var info PostInfo
	err := c.doJSON(ctx, http.MethodGet, "/v1/public/posts/"+slug, nil, &info, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// ListPublicPackages returns the active travel packages, featured first.
func (c *SDKClient) ListPublicPackages(ctx context.Context, opts PublicListOptions) (*ListPackagesResponse, error) {
	var list ListPackagesResponse
	err := c.doJSON(ctx, http.MethodGet, "/v1/public/packages"+opts.query(), nil, &list, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &list, nil
}

// ListPublicProducts returns the active catalogue items.
func (c *SDKClient) ListPublicProducts(ctx context.Context, opts PublicListOptions) (*ListProductsResponse, error) {
	var list ListProductsResponse
	err := c.doJSON(ctx, http.MethodGet, "/v1/public/products"+opts.query(), nil, &list, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &list, nil
}

// PlaceOrder places an order for a registered client, identified by email.
// Prices come from the catalogue, never from the request.
func (c *SDKClient) PlaceOrder(ctx context.Context, req CreateOrderRequest) (*OrderInfo, error) {
	var info OrderInfo
	err := c.doJSON(ctx, http.MethodPost, "/v1/orders", req, &info, http.StatusCreated)
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// ============================================================================
// Health Operations
// ============================================================================

// GetLiveness checks if the service is alive.
func (c *SDKClient) GetLiveness(ctx context.Context) (*HealthResponse, error) {
	var health HealthResponse
	err := c.doJSON(ctx, http.MethodGet, "/livez", nil, &health, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &health, nil
}

// GetReadiness checks if the service is ready.
func (c *SDKClient) GetReadiness(ctx context.Context) (*HealthResponse, error) {
	var health HealthResponse
	err := c.doJSON(ctx, http.MethodGet, "/readyz", nil, &health, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &health, nil
}
