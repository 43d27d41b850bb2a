package adminsdk

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// Session is an authenticated session with automatic token refresh. All
// Session methods transparently rotate the refresh token when the access
// token expires.
type Session struct {
	client *SDKClient

	mu           sync.RWMutex
	accessToken  string
	refreshToken string
	expiresAt    time.Time
}

// newSession creates a new authenticated session from a token response.
func newSession(client *SDKClient, tokenResp *TokenResponse) *Session {
	expiresAt := time.Now().Add(time.Duration(tokenResp.ExpiresIn) * time.Second)

	// Subtract 30 seconds buffer to refresh before actual expiry
	expiresAt = expiresAt.Add(-30 * time.Second)

	return &Session{
		client:       client,
		accessToken:  tokenResp.AccessToken,
		refreshToken: tokenResp.RefreshToken,
		expiresAt:    expiresAt,
	}
}

// getValidToken returns a valid access token, automatically refreshing if expired.
func (s *Session) getValidToken(ctx context.Context) (string, error) {
	s.mu.RLock()
	if time.Now().Before(s.expiresAt) {
		token := s.accessToken
		s.mu.RUnlock()
		return token, nil
	}
	s.mu.RUnlock()

	// Token expired, need to refresh
	s.mu.Lock()
	defer s.mu.Unlock()

	// Double-check after acquiring write lock (another goroutine may have refreshed)
	if time.Now().Before(s.expiresAt) {
		return s.accessToken, nil
	}

	if s.refreshToken == "" {
		return "", fmt.Errorf("access token expired and no refresh token available")
	}

	tokenResp, err := s.client.Refresh(ctx, s.refreshToken)
	if err != nil {
		return "", fmt.Errorf("failed to refresh token: %w", err)
	}

	s.accessToken = tokenResp.AccessToken
	s.refreshToken = tokenResp.RefreshToken
	s.expiresAt = time.Now().Add(time.Duration(tokenResp.ExpiresIn)*time.Second - 30*time.Second)

	return s.accessToken, nil
}

// Logout revokes the session's refresh token and denylists the current
// access token. The session is unusable afterwards.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.RLock()
	refreshToken := s.refreshToken
	s.mu.RUnlock()

	if refreshToken == "" {
		return fmt.Errorf("no refresh token to revoke")
	}

	return s.doAuthJSON(ctx, http.MethodPost, "/v1/auth/logout", LogoutRequest{
		RefreshToken: refreshToken,
	}, nil, http.StatusNoContent)
}

// Me returns the authenticated principal's profile and capabilities.
func (s *Session) Me(ctx context.Context) (*MeResponse, error) {
	var me MeResponse
	if err := s.doAuthJSON(ctx, http.MethodGet, "/v1/auth/me", nil, &me, http.StatusOK); err != nil {
		return nil, err
	}
	return &me, nil
}

// AccessToken returns the current access token without checking expiration.
// For most use cases, prefer the Session methods which refresh automatically.
func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

// RefreshToken returns the current refresh token.
func (s *Session) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshToken
}

// ExpiresAt returns when the session stops using the current access token,
// already shifted by the refresh buffer. Callers persisting tokens across
// processes can store this alongside them.
func (s *Session) ExpiresAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.expiresAt
}
