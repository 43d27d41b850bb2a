/*
Package adminsdk provides a client SDK for the Meridian admin backend.

# Overview

The adminsdk package implements a typed client for the Meridian tours admin
API. It covers both the unauthenticated endpoints (via SDKClient) and the
authenticated admin surface (via Session) with automatic token refresh. The
request and response types in this package are also the wire types the
server handlers marshal, so the two sides cannot drift apart.

# SDKClient vs Session

The package is organized around two main types:

  - SDKClient: unauthenticated operations, and the entry point that creates
    authenticated sessions
  - Session: authenticated operations with automatic token refresh

Create an SDKClient to interact with public endpoints and to log in:

	client := adminsdk.NewSDKClient("https://admin.example.com")

	// Check service health
	health, err := client.GetLiveness(ctx)

	// Track an application by its public reference
	view, err := client.Track(ctx, "TR20250817A3F29B1C")

	// Authenticate to create a session
	session, err := client.AuthenticateWithPassword(ctx, username, password)

Use a Session for the admin surface. Sessions rotate the refresh token
transparently when the access token expires:

	// Register a client and file an application for them
	c, err := session.CreateClient(ctx, adminsdk.ClientPayload{...})
	app, err := session.CreateApplication(ctx, c.ID, adminsdk.CreateApplicationRequest{Type: "visa"})

	// Move it through the lifecycle
	app, err = session.TransitionApplication(ctx, app.ID, adminsdk.TransitionRequest{Status: "under_review"})

	// Inspect the audit trail
	logs, err := session.ListAuditLogs(ctx, adminsdk.ListAuditLogsOptions{ResourceType: "application"})

# Authentication Flows

Password login, with the MFA step-up when the account has a second factor
enrolled:

	session, err := client.AuthenticateWithPassword(ctx, username, password)
	var mfaErr *adminsdk.MFARequiredError
	if errors.As(err, &mfaErr) {
		session, err = client.AuthenticateWithMFA(ctx, mfaErr, "totp", otpCode)
	}

Resuming from a stored refresh token:

	session, err := client.AuthenticateWithRefreshToken(ctx, refreshToken)

Ending a session revokes the refresh token and denylists the access token:

	err = session.Logout(ctx)

# Error Handling

Endpoints fail with typed errors that carry the server's error envelope:

	_, err := session.GetClient(ctx, id)
	var apiErr *adminsdk.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
		// no such client
	}

The predefined values (ErrInvalidRequest, ErrInvalidCredentials, ...) are
what the server handlers write; resource-specific failures use codes like
"client_not_found" and "slug_taken" in the same envelope.
*/
package adminsdk
