package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/meridiantours/meridian/internal/admin/store"
)

// HousekeepingService periodically cleans up expired database records
// to prevent unbounded growth of refresh_tokens, revoked_tokens,
// mfa_challenges, and signing_keys.
type HousekeepingService struct {
	Store    store.Store
	Logger   *slog.Logger
	Interval time.Duration

	// Internal channels for lifecycle management
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a new housekeeping service with the given interval.
// If interval is 0 or negative, defaults to 1 hour.
func NewHousekeepingService(store store.Store, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}

	return &HousekeepingService{
		Store:    store,
		Logger:   logger,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background worker that periodically runs cleanup.
// This is non-blocking and should be called after the database is ready.
// Call Stop() to gracefully shutdown the worker.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop gracefully shuts down the background worker.
// Blocks until the worker has finished any in-progress cleanup.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

// run is the main background worker loop.
func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Run cleanup immediately on startup
	s.cleanup()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stopCh:
			return
		}
	}
}

// cleanup performs the actual deletion of expired records.
// Each deletion is independent - failures in one won't stop the others.
func (s *HousekeepingService) cleanup() {
	ctx := context.Background()
	s.Logger.Info("starting housekeeping cleanup")

	var successful int

	// Clean expired refresh tokens
	if err := s.Store.RefreshTokens().DeleteExpiredRefreshTokens(ctx); err != nil {
		s.Logger.Error("failed to delete expired refresh tokens", "error", err)
	} else {
		s.Logger.Debug("deleted expired refresh tokens")
		successful++
	}

	// Clean denylist entries whose access token has expired anyway
	if err := s.Store.RevokedTokens().DeleteExpiredRevokedTokens(ctx); err != nil {
		s.Logger.Error("failed to delete expired revoked tokens", "error", err)
	} else {
		s.Logger.Debug("deleted expired revoked tokens")
		successful++
	}

	// Clean expired MFA challenges
	if err := s.Store.MFAChallenges().DeleteExpiredMFAChallenges(ctx); err != nil {
		s.Logger.Error("failed to delete expired MFA challenges", "error", err)
	} else {
		s.Logger.Debug("deleted expired MFA challenges")
		successful++
	}

	// Clean expired signing keys (for persistent key mode)
	if err := s.Store.SigningKeys().DeleteExpiredSigningKeys(ctx); err != nil {
		s.Logger.Error("failed to delete expired signing keys", "error", err)
	} else {
		s.Logger.Debug("deleted expired signing keys")
		successful++
	}

	s.Logger.Info("housekeeping cleanup completed", "successful_cleanups", successful)
}
