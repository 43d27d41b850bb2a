package adminsdk

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// ============================================================================
// Application Operations
// ============================================================================

// ListApplicationsOptions filters the application listing. Zero values are
// omitted from the query.
type ListApplicationsOptions struct {
	ClientID string
	Type     string // visa, business_license, company_incorporation
	Status   string // submitted, under_review, approved, rejected, info_requested, cancelled
	Priority string // standard, urgent
	Limit    int
	Offset   int
}

func (o ListApplicationsOptions) query() string {
	q := url.Values{}
	if o.ClientID != "" {
		q.Set("client_id", o.ClientID)
	}
	if o.Type != "" {
		q.Set("type", o.Type)
	}
	if o.Status != "" {
		q.Set("status", o.Status)
	}
	if o.Priority != "" {
		q.Set("priority", o.Priority)
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

// CreateApplication files a new application for the given client.
// Requires: applications:write capability.
func (s *Session) CreateApplication(
	ctx context.Context,
	clientID string,
	req CreateApplicationRequest,
) (*ApplicationInfo, error) {
	var info ApplicationInfo
	err := s.doAuthJSON(ctx, http.MethodPost, "/v1/clients/"+clientID+"/applications", req, &info, http.StatusCreated)
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// GetApplication returns an application with its full status history.
// Requires: applications:read capability.
func (s *Session) GetApplication(ctx context.Context, id string) (*ApplicationDetailResponse, error) {
	var detail ApplicationDetailResponse
	err := s.doAuthJSON(ctx, http.MethodGet, "/v1/applications/"+id, nil, &detail, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &detail, nil
}

// ListApplications returns a filtered page of applications.
// Requires: applications:read capability.
func (s *Session) ListApplications(
	ctx context.Context,
	opts ListApplicationsOptions,
) (*ListApplicationsResponse, error) {
	var list ListApplicationsResponse
	err := s.doAuthJSON(ctx, http.MethodGet, "/v1/applications"+opts.query(), nil, &list, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &list, nil
}

// TransitionApplication moves an application to a new lifecycle status. The
// move must follow a legal edge of the status state machine.
// Requires: applications:write capability.
func (s *Session) TransitionApplication(
	ctx context.Context,
	id string,
	req TransitionRequest,
) (*ApplicationInfo, error) {
	var info ApplicationInfo
	err := s.doAuthJSON(ctx, http.MethodPost, "/v1/applications/"+id+"/transition", req, &info, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &info, nil
}
