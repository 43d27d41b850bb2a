package adminsdk

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// ============================================================================
// Client (CRM) Operations
// ============================================================================

// ListClientsOptions filters the client book listing. Zero values are
// omitted from the query.
type ListClientsOptions struct {
	Search      string // matches full name, email or phone
	Nationality string
	Limit       int
	Offset      int
}

func (o ListClientsOptions) query() string {
	q := url.Values{}
	if o.Search != "" {
		q.Set("search", o.Search)
	}
	if o.Nationality != "" {
		q.Set("nationality", o.Nationality)
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

// CreateClient registers a new CRM client.
// Requires: clients:write capability.
func (s *Session) CreateClient(ctx context.Context, req ClientPayload) (*ClientInfo, error) {
	var info ClientInfo
	err := s.doAuthJSON(ctx, http.MethodPost, "/v1/clients", req, &info, http.StatusCreated)
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// GetClient returns a client together with every application filed for them.
// Requires: clients:read capability.
func (s *Session) GetClient(ctx context.Context, id string) (*ClientDetailResponse, error) {
	var detail ClientDetailResponse
	err := s.doAuthJSON(ctx, http.MethodGet, "/v1/clients/"+id, nil, &detail, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &detail, nil
}

// ListClients returns a filtered page of the client book.
// Requires: clients:read capability.
func (s *Session) ListClients(ctx context.Context, opts ListClientsOptions) (*ListClientsResponse, error) {
	var list ListClientsResponse
	err := s.doAuthJSON(ctx, http.MethodGet, "/v1/clients"+opts.query(), nil, &list, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &list, nil
}

// UpdateClient replaces a client's mutable fields.
// Requires: clients:write capability.
func (s *Session) UpdateClient(ctx context.Context, id string, req ClientPayload) (*ClientInfo, error) {
	var info ClientInfo
	err := s.doAuthJSON(ctx, http.MethodPut, "/v1/clients/"+id, req, &info, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// DeleteClient removes a client. Refused while the client has applications
// still in flight.
// Requires: clients:delete capability.
func (s *Session) DeleteClient(ctx context.Context, id string) error {
	return s.doAuthJSON(ctx, http.MethodDelete, "/v1/clients/"+id, nil, nil, http.StatusNoContent)
}
