package admin_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/meridiantours/meridian/pkg/adminsdk"
	"github.com/stretchr/testify/require"
)

// TestApplicationIntake verifies filing a new application:
// 1. The application starts in "submitted"
// 2. It gets a TR-prefixed tracking reference
// 3. The form payload is stored as submitted
// 4. The intake appears in the status history
func TestApplicationIntake(t *testing.T) {
	baseURL, cleanup := setupAdminContainer(t)
	defer cleanup()

	client := adminsdk.NewSDKClient(baseURL)
	bootstrapService(t, client)
	session := loginAdmin(t, client)
	ctx := t.Context()

	record := createTestClient(t, session, "Visa Applicant", "visa@example.com")

	formData := json.RawMessage(`{"destination":"Vietnam","entries":"multiple","duration_days":90}`)
	app, err := session.CreateApplication(ctx, record.ID, adminsdk.CreateApplicationRequest{
		Type:     "visa",
		Priority: "urgent",
		Data:     formData,
	})
	require.NoError(t, err)
	require.Equal(t, "submitted", app.Status)
	require.Equal(t, "urgent", app.Priority)
	require.True(t, strings.HasPrefix(app.TrackingID, "TR"), "Tracking reference should be TR-prefixed, got %s", app.TrackingID)
	require.JSONEq(t, string(formData), string(app.Data), "Form payload should be stored as submitted")
	t.Logf("Filed application %s with tracking reference %s", app.ID, app.TrackingID)

	detail, err := session.GetApplication(ctx, app.ID)
	require.NoError(t, err)
	require.Equal(t, app.ID, detail.Application.ID)
	require.Len(t, detail.History, 1, "Intake should be the first history row")
	require.Empty(t, detail.History[0].From)
	require.Equal(t, "submitted", detail.History[0].To)
	require.NotEmpty(t, detail.History[0].ChangedBy)

	t.Logf("Intake recorded in status history")
}

// TestApplicationUnknownType verifies type validation on intake.
func TestApplicationUnknownType(t *testing.T) {
	baseURL, cleanup := setupAdminContainer(t)
	defer cleanup()

	client := adminsdk.NewSDKClient(baseURL)
	bootstrapService(t, client)
	session := loginAdmin(t, client)

	record := createTestClient(t, session, "Applicant", "applicant@example.com")

	_, err := session.CreateApplication(t.Context(), record.ID, adminsdk.CreateApplicationRequest{
		Type: "passport_renewal",
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "validation", "Unknown type should fail validation")

	// Unknown client is a 404, not a validation error
	_, err = session.CreateApplication(t.Context(), "01JUNKJUNKJUNKJUNKJUNKJUNK", adminsdk.CreateApplicationRequest{
		Type: "visa",
	})
	assertNotFound(t, err, "Intake for unknown client")

	t.Logf("Intake validation verified")
}

// TestApplicationStatusFlow drives an application along the longest legal
// path of the state machine and verifies the history reads in order:
// submitted -> under_review -> info_requested -> under_review -> approved
func TestApplicationStatusFlow(t *testing.T) {
	baseURL, cleanup := setupAdminContainer(t)
	defer cleanup()

	client := adminsdk.NewSDKClient(baseURL)
	bootstrapService(t, client)
	session := loginAdmin(t, client)
	ctx := t.Context()

	record := createTestClient(t, session, "Licence Applicant", "licence@example.com")
	app := fileApplication(t, session, record.ID, "business_license")

	steps := []struct {
		status string
		note   string
	}{
		{"under_review", "assigned to case officer"},
		{"info_requested", "missing notarised lease agreement"},
		{"under_review", "documents received"},
		{"approved", "licence issued"},
	}

	for _, step := range steps {
		updated, err := session.TransitionApplication(ctx, app.ID, adminsdk.TransitionRequest{
			Status: step.status,
			Note:   step.note,
		})
		require.NoError(t, err, "Transition to %s should be legal", step.status)
		require.Equal(t, step.status, updated.Status)
	}
	t.Logf("Walked application through %d transitions to approval", len(steps))

	detail, err := session.GetApplication(ctx, app.ID)
	require.NoError(t, err)
	require.Equal(t, "approved", detail.Application.Status)
	require.Len(t, detail.History, len(steps)+1, "History should hold the intake plus every transition")

	// History reads oldest first, each row chaining from the previous status
	require.Equal(t, "submitted", detail.History[0].To)
	for i, step := range steps {
		row := detail.History[i+1]
		require.Equal(t, detail.History[i].To, row.From, "Row %d should chain from the previous status", i+1)
		require.Equal(t, step.status, row.To)
		require.Equal(t, step.note, row.Note)
	}

	t.Logf("Status history chains correctly through %d rows", len(detail.History))
}

// TestApplicationIllegalTransitions verifies illegal edges are rejected with
// the transition error and leave no trace in the history.
func TestApplicationIllegalTransitions(t *testing.T) {
	baseURL, cleanup := setupAdminContainer(t)
	defer cleanup()

	client := adminsdk.NewSDKClient(baseURL)
	bootstrapService(t, client)
	session := loginAdmin(t, client)
	ctx := t.Context()

	record := createTestClient(t, session, "Applicant", "illegal@example.com")
	app := fileApplication(t, session, record.ID, "company_incorporation")

	// submitted can only move to under_review or cancelled
	for _, target := range []string{"approved", "rejected", "info_requested", "submitted"} {
		_, err := session.TransitionApplication(ctx, app.ID, adminsdk.TransitionRequest{Status: target})
		require.Error(t, err, "submitted -> %s should be illegal", target)
		require.Contains(t, err.Error(), "invalid_transition")
	}
	t.Logf("Illegal edges from submitted rejected")

	// The rejections must not have written history
	detail, err := session.GetApplication(ctx, app.ID)
	require.NoError(t, err)
	require.Equal(t, "submitted", detail.Application.Status)
	require.Len(t, detail.History, 1, "Failed transitions should leave no history")

	// Unknown status names are validation failures, not transition errors
	_, err = session.TransitionApplication(ctx, app.ID, adminsdk.TransitionRequest{Status: "on_hold"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "validation")

	t.Logf("Failed transitions left no trace")
}

// TestApplicationTerminalStates verifies terminal applications accept no
// further transitions, including cancellation.
func TestApplicationTerminalStates(t *testing.T) {
	baseURL, cleanup := setupAdminContainer(t)
	defer cleanup()

	client := adminsdk.NewSDKClient(baseURL)
	bootstrapService(t, client)
	session := loginAdmin(t, client)
	ctx := t.Context()

	record := createTestClient(t, session, "Applicant", "terminal@example.com")

	// Drive one application to rejected
	rejected := fileApplication(t, session, record.ID, "visa")
	_, err := session.TransitionApplication(ctx, rejected.ID, adminsdk.TransitionRequest{Status: "under_review"})
	require.NoError(t, err)
	_, err = session.TransitionApplication(ctx, rejected.ID, adminsdk.TransitionRequest{Status: "rejected", Note: "incomplete"})
	require.NoError(t, err)

	// Cancel another directly from submitted
	cancelled := fileApplication(t, session, record.ID, "visa")
	_, err = session.TransitionApplication(ctx, cancelled.ID, adminsdk.TransitionRequest{Status: "cancelled"})
	require.NoError(t, err, "Any non-terminal status should allow cancellation")

	// Neither accepts any further movement
	for _, app := range []*adminsdk.ApplicationInfo{rejected, cancelled} {
		for _, target := range []string{"under_review", "approved", "cancelled"} {
			_, err := session.TransitionApplication(ctx, app.ID, adminsdk.TransitionRequest{Status: target})
			require.Error(t, err, "Terminal application should reject move to %s", target)
			require.Contains(t, err.Error(), "invalid_transition")
		}
	}

	t.Logf("Terminal states are immutable")
}

// TestApplicationListFilters verifies the application listing filters and
// its newest-first ordering.
func TestApplicationListFilters(t *testing.T) {
	baseURL, cleanup := setupAdminContainer(t)
	defer cleanup()

	client := adminsdk.NewSDKClient(baseURL)
	bootstrapService(t, client)
	session := loginAdmin(t, client)
	ctx := t.Context()

	alice := createTestClient(t, session, "Alice", "alice-apps@example.com")
	bob := createTestClient(t, session, "Bob", "bob-apps@example.com")

	visa := fileApplication(t, session, alice.ID, "visa")
	licence := fileApplication(t, session, bob.ID, "business_license")
	incorporation := fileApplication(t, session, bob.ID, "company_incorporation")

	_, err := session.TransitionApplication(ctx, visa.ID, adminsdk.TransitionRequest{Status: "under_review"})
	require.NoError(t, err)

	// By client
	byClient, err := session.ListApplications(ctx, adminsdk.ListApplicationsOptions{ClientID: bob.ID})
	require.NoError(t, err)
	require.Equal(t, int64(2), byClient.Total)

	// By type
	byType, err := session.ListApplications(ctx, adminsdk.ListApplicationsOptions{Type: "business_license"})
	require.NoError(t, err)
	require.Equal(t, int64(1), byType.Total)
	require.Equal(t, licence.ID, byType.Applications[0].ID)

	// By status
	byStatus, err := session.ListApplications(ctx, adminsdk.ListApplicationsOptions{Status: "under_review"})
	require.NoError(t, err)
	require.Equal(t, int64(1), byStatus.Total)
	require.Equal(t, visa.ID, byStatus.Applications[0].ID)

	// Unfiltered list is newest first
	all, err := session.ListApplications(ctx, adminsdk.ListApplicationsOptions{})
	require.NoError(t, err)
	require.Equal(t, int64(3), all.Total)
	require.Equal(t, incorporation.ID, all.Applications[0].ID, "Newest filing should lead the list")

	t.Logf("Application list filters verified over %d filings", all.Total)
}
