package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/meridiantours/meridian/internal/admin/audit"
	"github.com/meridiantours/meridian/internal/admin/domain"
	"github.com/meridiantours/meridian/internal/admin/rbac"
	"github.com/meridiantours/meridian/internal/admin/store"
	"github.com/meridiantours/meridian/pkg/cryptox"
	"github.com/meridiantours/meridian/pkg/idx"
	"github.com/meridiantours/meridian/pkg/slogx"
)

var (
	ErrBootstrapAlready             = errors.New("system already bootstrapped")
	ErrBootstrapUnauthorized        = errors.New("unauthorized bootstrap attempt")
	ErrBootstrapFailedToCreateAdmin = errors.New("failed to create admin account")
)

type BootstrapService struct {
	Store store.Store
	Audit *audit.Recorder
	Token string // Pre-configured bootstrap token
}

func (s *BootstrapService) IsBootstrapped(ctx context.Context) (bool, error) {
	empty, err := s.Store.Principals().IsEmpty(ctx)
	if err != nil {
		return false, err
	}
	return !empty, nil
}

// Bootstrap performs the one-time first-run setup: it creates the initial
// super_admin principal. It refuses once any principal exists or when the
// provided token does not match the configured one.
func (s *BootstrapService) Bootstrap(ctx context.Context, token string, req domain.BootstrapData) (string, error) {
	l := slogx.FromContext(ctx)

	// 1. Check if already bootstrapped
	if bootstrapped, _ := s.IsBootstrapped(ctx); bootstrapped {
		l.Warn("attempted bootstrap on already-bootstrapped system")
		return "", ErrBootstrapAlready
	}

	// 2. Validate provided token
	if token == "" || token != s.Token {
		l.Warn("unauthorized bootstrap attempt")
		return "", ErrBootstrapUnauthorized
	}

	// 3. Validate the seed account
	if req.AdminUsername == "" || req.AdminEmail == "" || req.AdminPassword == "" {
		return "", validationf("admin username, email and password are required")
	}

	// 4. Hash password
	passHash, err := cryptox.HashPassword(req.AdminPassword)
	if err != nil {
		l.Error("failed to hash admin password", slog.Any("error", err))
		return "", ErrBootstrapFailedToCreateAdmin
	}

	// 5. Create the super_admin and its audit entry in a transaction
	now := time.Now().UTC()
	adminID := idx.New().String()
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		err := tx.Principals().CreatePrincipal(ctx, domain.Principal{
			ID:           adminID,
			Username:     req.AdminUsername,
			Email:        req.AdminEmail,
			FullName:     req.AdminFullName,
			PasswordHash: passHash,
			Role:         rbac.RoleSuperAdmin,
			Active:       true,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
		if err != nil {
			l.Error("failed to create admin account",
				slog.String("admin_id", adminID),
				slog.Any("error", err),
			)
			return ErrBootstrapFailedToCreateAdmin
		}

		return s.Audit.Record(ctx, tx, audit.Event{
			Meta:         audit.Meta{ActorID: adminID},
			Action:       "admin.bootstrap",
			ResourceType: "principal",
			ResourceID:   adminID,
			Detail:       map[string]any{"username": req.AdminUsername},
		})
	})
	if err != nil {
		return "", err
	}

	l.Info("successfully bootstrapped system", slog.String("admin_id", adminID))
	return adminID, nil
}
