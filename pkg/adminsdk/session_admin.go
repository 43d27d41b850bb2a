package adminsdk

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// ============================================================================
// Dashboard & Staff Account Operations
// ============================================================================

// Stats returns the aggregate dashboard snapshot.
// Requires: admin:read capability.
func (s *Session) Stats(ctx context.Context) (*StatsResponse, error) {
	var stats StatsResponse
	err := s.doAuthJSON(ctx, http.MethodGet, "/v1/admin/stats", nil, &stats, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// CreateUser registers a new staff account.
// Requires: admin:write capability.
func (s *Session) CreateUser(ctx context.Context, req CreateUserRequest) (*UserInfo, error) {
	var info UserInfo
	err := s.doAuthJSON(ctx, http.MethodPost, "/v1/admin/users", req, &info, http.StatusCreated)
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// GetUser returns one staff account.
// Requires: admin:read capability.
func (s *Session) GetUser(ctx context.Context, id string) (*UserInfo, error) {
	var info UserInfo
	err := s.doAuthJSON(ctx, http.MethodGet, "/v1/admin/users/"+id, nil, &info, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// ListUsers returns every staff account.
// Requires: admin:read capability.
func (s *Session) ListUsers(ctx context.Context) (*ListUsersResponse, error) {
	var list ListUsersResponse
	err := s.doAuthJSON(ctx, http.MethodGet, "/v1/admin/users", nil, &list, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &list, nil
}

// UpdateUser changes a staff account's profile, role, active state or
// password. Setting a password revokes that account's sessions.
// Requires: admin:write capability.
func (s *Session) UpdateUser(ctx context.Context, id string, req UpdateUserRequest) (*UserInfo, error) {
	var info UserInfo
	err := s.doAuthJSON(ctx, http.MethodPut, "/v1/admin/users/"+id, req, &info, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// DeactivateUser disables a staff account and ends its sessions. Accounts
// are never hard-deleted; the audit trail keeps referring to them.
// Requires: admin:write capability.
func (s *Session) DeactivateUser(ctx context.Context, id string) error {
	return s.doAuthJSON(ctx, http.MethodDelete, "/v1/admin/users/"+id, nil, nil, http.StatusNoContent)
}

// ListRoles returns the static role and capability matrix.
// Requires: admin:read capability.
func (s *Session) ListRoles(ctx context.Context) (*ListRolesResponse, error) {
	var list ListRolesResponse
	err := s.doAuthJSON(ctx, http.MethodGet, "/v1/admin/roles", nil, &list, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &list, nil
}

// ============================================================================
// Audit Trail Operations
// ============================================================================

// ListAuditLogsOptions filters the audit trail. Zero values are omitted
// from the query.
type ListAuditLogsOptions struct {
	ActorID      string
	Action       string
	ResourceType string
	ResourceID   string
	Limit        int
	Offset       int
}

func (o ListAuditLogsOptions) query() string {
	q := url.Values{}
	if o.ActorID != "" {
		q.Set("actor_id", o.ActorID)
	}
	if o.Action != "" {
		q.Set("action", o.Action)
	}
	if o.ResourceType != "" {
		q.Set("resource_type", o.ResourceType)
	}
	if o.ResourceID != "" {
		q.Set("resource_id", o.ResourceID)
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

// ListAuditLogs returns a filtered page of the audit trail, newest first.
// Requires: audit:read capability.
func (s *Session) ListAuditLogs(ctx context.Context, opts ListAuditLogsOptions) (*ListAuditLogsResponse, error) {
	var list ListAuditLogsResponse
	err := s.doAuthJSON(ctx, http.MethodGet, "/v1/admin/audit-logs"+opts.query(), nil, &list, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &list, nil
}
