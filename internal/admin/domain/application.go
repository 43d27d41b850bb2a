package domain

import (
	"encoding/json"
	"time"
)

// ApplicationType identifies which kind of filing an application is.
type ApplicationType string

const (
	TypeVisa                 ApplicationType = "visa"
	TypeBusinessLicense      ApplicationType = "business_license"
	TypeCompanyIncorporation ApplicationType = "company_incorporation"
)

// IsValid reports whether t is one of the known application types.
func (t ApplicationType) IsValid() bool {
	switch t {
	case TypeVisa, TypeBusinessLicense, TypeCompanyIncorporation:
		return true
	}
	return false
}

// ApplicationStatus is a state in the application lifecycle. Every change
// of status must follow an edge of the transition table below.
type ApplicationStatus string

const (
	StatusSubmitted     ApplicationStatus = "submitted"
	StatusUnderReview   ApplicationStatus = "under_review"
	StatusApproved      ApplicationStatus = "approved"
	StatusRejected      ApplicationStatus = "rejected"
	StatusInfoRequested ApplicationStatus = "info_requested"
	StatusCancelled     ApplicationStatus = "cancelled"
)

// statusTransitions lists the forward edges of the lifecycle. Cancellation
// is not listed: any non-terminal status may move to cancelled.
var statusTransitions = map[ApplicationStatus][]ApplicationStatus{
	StatusSubmitted:     {StatusUnderReview},
	StatusUnderReview:   {StatusApproved, StatusRejected, StatusInfoRequested},
	StatusInfoRequested: {StatusUnderReview},
}

// IsValid reports whether s is one of the known statuses.
func (s ApplicationStatus) IsValid() bool {
	switch s {
	case StatusSubmitted, StatusUnderReview, StatusApproved,
		StatusRejected, StatusInfoRequested, StatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether s admits no further transitions.
func (s ApplicationStatus) IsTerminal() bool {
	switch s {
	case StatusApproved, StatusRejected, StatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether moving from s to next is a legal edge.
// Self-transitions are not legal.
func (s ApplicationStatus) CanTransitionTo(next ApplicationStatus) bool {
	if !s.IsValid() || !next.IsValid() || s.IsTerminal() {
		return false
	}
	if next == StatusCancelled {
		return true
	}
	for _, allowed := range statusTransitions[s] {
		if next == allowed {
			return true
		}
	}
	return false
}

// NextStatuses returns the statuses s may legally move to. Terminal and
// unknown statuses return nil.
func (s ApplicationStatus) NextStatuses() []ApplicationStatus {
	if !s.IsValid() || s.IsTerminal() {
		return nil
	}
	next := append([]ApplicationStatus{}, statusTransitions[s]...)
	return append(next, StatusCancelled)
}

// Application priorities.
const (
	PriorityStandard = "standard"
	PriorityUrgent   = "urgent"
)

// ValidPriority reports whether p is a known priority label.
func ValidPriority(p string) bool {
	return p == PriorityStandard || p == PriorityUrgent
}

// Application is one filing for a client: a visa, a business licence or a
// company incorporation. The tracking ID is the only identifier ever shown
// outside the admin backend.
type Application struct {
	ID          string
	TrackingID  string // public reference, e.g. "TR20250817A3F29B1C"
	ClientID    string
	Type        ApplicationType
	Status      ApplicationStatus
	Priority    string
	Data        json.RawMessage // per-type form payload
	SubmittedAt time.Time
	UpdatedAt   time.Time
}

// StatusChange is one audit row in an application's status history.
type StatusChange struct {
	ID            string
	ApplicationID string
	From          ApplicationStatus // empty for the initial submission row
	To            ApplicationStatus
	ChangedBy     string // principal ID
	Note          string
	ChangedAt     time.Time
}

// NewTrackingID builds a fresh public tracking reference for an application
// submitted at the given time.
func NewTrackingID(now time.Time) string {
	return newReference("TR", now)
}

// TrackingView is the public projection of an application returned by the
// unauthenticated tracking endpoint. It carries no client identity and no
// internal notes.
type TrackingView struct {
	TrackingID  string            `json:"tracking_id"`
	Type        ApplicationType   `json:"application_type"`
	Status      ApplicationStatus `json:"status"`
	SubmittedAt time.Time         `json:"submitted_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
	Timeline    []TrackingEvent   `json:"timeline"`
}

// TrackingEvent is one step of the public status timeline.
type TrackingEvent struct {
	Status     ApplicationStatus `json:"status"`
	OccurredAt time.Time         `json:"occurred_at"`
}
