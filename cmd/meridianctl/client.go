package main

import (
	"fmt"
	"os"
	"time"

	"github.com/meridiantours/meridian/pkg/adminsdk"
)

// newClient creates an API client from the current config. MERIDIAN_ADDR
// overrides the configured address.
func newClient() *adminsdk.SDKClient {
	addr := cfg.Address
	if v := os.Getenv("MERIDIAN_ADDR"); v != "" {
		addr = v
	}
	return adminsdk.NewSDKClient(addr)
}

// newSession builds an authenticated session from the stored tokens.
// MERIDIAN_TOKEN overrides the stored tokens; it comes without a refresh
// token and is used as-is until the server rejects it.
func newSession() (*adminsdk.Session, error) {
	client := newClient()

	if v := os.Getenv("MERIDIAN_TOKEN"); v != "" {
		return client.NewSessionFromTokens(v, "", 3600), nil
	}

	if cfg.Token == "" {
		return nil, fmt.Errorf("not logged in, run: meridianctl login")
	}

	expiresIn := 0
	if cfg.ExpiresAt != "" {
		if t, err := time.Parse(time.RFC3339, cfg.ExpiresAt); err == nil {
			expiresIn = int(time.Until(t).Seconds())
		}
	}
	return client.NewSessionFromTokens(cfg.Token, cfg.RefreshToken, expiresIn), nil
}

// persistSession writes rotated tokens back to the config file. Refresh
// tokens are single use: a session that refreshed mid-command must be saved
// or the next invocation cannot refresh again.
func persistSession(sess *adminsdk.Session) {
	if os.Getenv("MERIDIAN_TOKEN") != "" {
		return
	}
	if sess.AccessToken() == cfg.Token && sess.RefreshToken() == cfg.RefreshToken {
		return
	}
	cfg.Token = sess.AccessToken()
	cfg.RefreshToken = sess.RefreshToken()
	cfg.ExpiresAt = sess.ExpiresAt().Format(time.RFC3339)
	if err := saveConfig(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not save rotated tokens: %v\n", err)
	}
}
