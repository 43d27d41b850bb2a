package adminsdk

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// ============================================================================
// Blog Post Operations
// ============================================================================

// ListPostsOptions filters the admin post listing. Zero values are omitted
// from the query.
type ListPostsOptions struct {
	Status   string // draft, published, archived
	Category string
	Limit    int
	Offset   int
}

func (o ListPostsOptions) query() string {
	q := url.Values{}
	if o.Status != "" {
		q.Set("status", o.Status)
	}
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

// CreatePost writes a new blog post authored by the session's principal.
// Requires: content:write capability.
func (s *Session) CreatePost(ctx context.Context, req PostPayload) (*PostInfo, error) {
	var info PostInfo
	err := s.doAuthJSON(ctx, http.MethodPost, "/v1/posts", req, &info, http.StatusCreated)
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// GetPost returns a post in any status.
// Requires: content:read capability.
func (s *Session) GetPost(ctx context.Context, id string) (*PostInfo, error) {
	var info PostInfo
	err := s.doAuthJSON(ctx, http.MethodGet, "/v1/posts/"+id, nil, &info, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// ListPosts returns a filtered page of posts in any status.
// Requires: content:read capability.
func (s *Session) ListPosts(ctx context.Context, opts ListPostsOptions) (*ListPostsResponse, error) {
	var list ListPostsResponse
	err := s.doAuthJSON(ctx, http.MethodGet, "/v1/posts"+opts.query(), nil, &list, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &list, nil
}

// UpdatePost replaces a post's mutable fields. The slug only changes when
// the payload names a new one.
// Requires: content:write capability.
func (s *Session) UpdatePost(ctx context.Context, id string, req PostPayload) (*PostInfo, error) {
	var info PostInfo
	err := s.doAuthJSON(ctx, http.MethodPut, "/v1/posts/"+id, req, &info, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// DeletePost removes a post.
// Requires: content:delete capability.
func (s *Session) DeletePost(ctx context.Context, id string) error {
	return s.doAuthJSON(ctx, http.MethodDelete, "/v1/posts/"+id, nil, nil, http.StatusNoContent)
}

// ============================================================================
// Travel Package Operations
// ============================================================================

// ListPackagesOptions filters the admin package listing. Zero values are
// omitted from the query.
type ListPackagesOptions struct {
	Destination string
	Limit       int
	Offset      int
}

func (o ListPackagesOptions) query() string {
	q := url.Values{}
	if o.Destination != "" {
		q.Set("destination", o.Destination)
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

// CreatePackage writes a new travel package.
// Requires: content:write capability.
func (s *Session) CreatePackage(ctx context.Context, req PackagePayload) (*PackageInfo, error) {
	var info PackageInfo
	err := s.doAuthJSON(ctx, http.MethodPost, "/v1/packages", req, &info, http.StatusCreated)
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// GetPackage returns a package whether or not it is active.
// Requires: content:read capability.
func (s *Session) GetPackage(ctx context.Context, id string) (*PackageInfo, error) {
	var info PackageInfo
	err := s.doAuthJSON(ctx, http.MethodGet, "/v1/packages/"+id, nil, &info, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// ListPackages returns a filtered page of packages, active or not.
// Requires: content:read capability.
func (s *Session) ListPackages(ctx context.Context, opts ListPackagesOptions) (*ListPackagesResponse, error) {
	var list ListPackagesResponse
	err := s.doAuthJSON(ctx, http.MethodGet, "/v1/packages"+opts.query(), nil, &list, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &list, nil
}

// UpdatePackage replaces a package's mutable fields.
// Requires: content:write capability.
func (s *Session) UpdatePackage(ctx context.Context, id string, req PackagePayload) (*PackageInfo, error) {
	var info PackageInfo
	err := s.doAuthJSON(ctx, http.MethodPut, "/v1/packages/"+id, req, &info, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// DeletePackage removes a package.
// Requires: content:delete capability.
func (s *Session) DeletePackage(ctx context.Context, id string) error {
	return s.doAuthJSON(ctx, http.MethodDelete, "/v1/packages/"+id, nil, nil, http.StatusNoContent)
}
