package adminsdk

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// SDKClient is a client for the Meridian admin backend. It provides access
// to the unauthenticated endpoints and creates authenticated Sessions.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewSDKClient creates a new admin backend client.
func NewSDKClient(baseURL string) *SDKClient {
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// AuthenticateWithPassword logs in with username and password and returns an
// authenticated session.
//
// When the account has a second factor enrolled the error is an
// *MFARequiredError carrying the challenge token; complete the login with
// AuthenticateWithMFA.
func (c *SDKClient) AuthenticateWithPassword(
	ctx context.Context,
	username, password string,
) (*Session, error) {
	tokenResp, err := c.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}

	return newSession(c, tokenResp), nil
}

// AuthenticateWithMFA completes a challenged login with a TOTP code or a
// backup code. Method is "totp" or "backup_codes".
func (c *SDKClient) AuthenticateWithMFA(
	ctx context.Context,
	challenge *MFARequiredError,
	method, code string,
) (*Session, error) {
	tokenResp, err := c.CompleteMFA(ctx, challenge.MFAToken, method, code)
	if err != nil {
		return nil, err
	}

	return newSession(c, tokenResp), nil
}

// AuthenticateWithRefreshToken creates an authenticated session from an
// existing refresh token.
func (c *SDKClient) AuthenticateWithRefreshToken(
	ctx context.Context,
	refreshToken string,
) (*Session, error) {
	tokenResp, err := c.Refresh(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	return newSession(c, tokenResp), nil
}

// NewSessionFromTokens creates an authenticated session from existing
// tokens, e.g. ones stored in a config file from a previous login. The
// session still refreshes automatically when the access token expires.
func (c *SDKClient) NewSessionFromTokens(accessToken, refreshToken string, expiresIn int) *Session {
	expiresAt := time.Now().Add(time.Duration(expiresIn) * time.Second)
	expiresAt = expiresAt.Add(-30 * time.Second) // 30 second buffer

	return &Session{
		client:       c,
		accessToken:  accessToken,
		refreshToken: refreshToken,
		expiresAt:    expiresAt,
	}
}

// Login performs the raw password login call. Most callers want
// AuthenticateWithPassword, which wraps the response in a Session.
func (c *SDKClient) Login(ctx context.Context, username, password string) (*TokenResponse, error) {
	var tokenResp TokenResponse
	err := c.doJSON(ctx, http.MethodPost, "/v1/auth/login", LoginRequest{
		Username: username,
		Password: password,
	}, &tokenResp, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &tokenResp, nil
}

// CompleteMFA performs the raw MFA completion call.
func (c *SDKClient) CompleteMFA(ctx context.Context, mfaToken, method, code string) (*TokenResponse, error) {
	var tokenResp TokenResponse
	err := c.doJSON(ctx, http.MethodPost, "/v1/auth/mfa", MFACompleteRequest{
		MFAToken: mfaToken,
		Method:   method,
		Code:     code,
	}, &tokenResp, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &tokenResp, nil
}

// Refresh performs the raw refresh call, rotating the refresh token.
func (c *SDKClient) Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	var tokenResp TokenResponse
	err := c.doJSON(ctx, http.MethodPost, "/v1/auth/refresh", RefreshRequest{
		RefreshToken: refreshToken,
	}, &tokenResp, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &tokenResp, nil
}
