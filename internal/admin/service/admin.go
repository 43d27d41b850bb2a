package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
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
	ErrPrincipalNotFound = errors.New("principal_not_found")
	ErrUsernameTaken     = errors.New("username_taken")
	ErrCannotDisableSelf = errors.New("cannot_disable_self")
)

// minPasswordLength is the floor for new and reset passwords.
const minPasswordLength = 8

// AdminService manages the staff accounts themselves.
type AdminService struct {
	Store store.Store
	Audit *audit.Recorder
}

// CreatePrincipalRequest is the payload for a new staff account.
type CreatePrincipalRequest struct {
	Username string
	Email    string
	FullName string
	Password string
	Role     string
}

// CreatePrincipal registers a new staff account with a role from the static
// matrix.
func (s *AdminService) CreatePrincipal(ctx context.Context, meta audit.Meta, req CreatePrincipalRequest) (domain.Principal, error) {
	l := slogx.FromContext(ctx)

	if strings.TrimSpace(req.Username) == "" {
		return domain.Principal{}, validationf("username is required")
	}
	if strings.TrimSpace(req.Email) == "" {
		return domain.Principal{}, validationf("email is required")
	}
	if len(req.Password) < minPasswordLength {
		return domain.Principal{}, validationf("password must be at least %d characters", minPasswordLength)
	}
	if !rbac.IsValidRole(req.Role) {
		return domain.Principal{}, validationf("unknown role %q", req.Role)
	}

	hash, err := cryptox.HashPassword(req.Password)
	if err != nil {
		return domain.Principal{}, err
	}

	now := time.Now().UTC()
	p := domain.Principal{
		ID:           idx.New().String(),
		Username:     strings.TrimSpace(req.Username),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		FullName:     req.FullName,
		PasswordHash: hash,
		Role:         req.Role,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Principals().CreatePrincipal(ctx, p); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrUsernameTaken
			}
			return err
		}
		return s.Audit.Record(ctx, tx, audit.Event{
			Meta:         meta,
			Action:       "admin.create",
			ResourceType: "principal",
			ResourceID:   p.ID,
			Detail:       map[string]any{"username": p.Username, "role": p.Role},
		})
	})
	if err != nil {
		return domain.Principal{}, err
	}

	l.Info("principal created", slog.String("principal_id", p.ID), slog.String("role", p.Role))
	return p, nil
}

// GetPrincipal returns one staff account.
func (s *AdminService) GetPrincipal(ctx context.Context, id string) (domain.Principal, error) {
	p, err := s.Store.Principals().GetPrincipalByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Principal{}, ErrPrincipalNotFound
		}
		return domain.Principal{}, err
	}
	return p, nil
}

// ListPrincipals returns every staff account, newest first.
func (s *AdminService) ListPrincipals(ctx context.Context) ([]domain.Principal, error) {
	return s.Store.Principals().ListPrincipals(ctx)
}

// UpdatePrincipal rewrites email, full name and role.
func (s *AdminService) UpdatePrincipal(ctx context.Context, meta audit.Meta, id, email, fullName, role string) (domain.Principal, error) {
	l := slogx.FromContext(ctx)

	if strings.TrimSpace(email) == "" {
		return domain.Principal{}, validationf("email is required")
	}
	if !rbac.IsValidRole(role) {
		return domain.Principal{}, validationf("unknown role %q", role)
	}

	p, err := s.Store.Principals().GetPrincipalByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Principal{}, ErrPrincipalNotFound
		}
		return domain.Principal{}, err
	}

	email = strings.ToLower(strings.TrimSpace(email))
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Principals().UpdatePrincipal(ctx, id, email, fullName, role); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrUsernameTaken
			}
			return err
		}
		return s.Audit.Record(ctx, tx, audit.Event{
			Meta:         meta,
			Action:       "admin.update",
			ResourceType: "principal",
			ResourceID:   id,
			Detail:       map[string]any{"role": role},
		})
	})
	if err != nil {
		return domain.Principal{}, err
	}

	p.Email = email
	p.FullName = fullName
	p.Role = role
	p.UpdatedAt = time.Now().UTC()

	l.Info("principal updated", slog.String("principal_id", id), slog.String("role", role))
	return p, nil
}

// SetActive enables or disables an account. Disabling is soft so audit
// references stay intact, revokes every live session of the account, and is
// refused when a principal aims it at itself.
func (s *AdminService) SetActive(ctx context.Context, meta audit.Meta, id string, active bool) error {
	l := slogx.FromContext(ctx)

	if !active && id == meta.ActorID {
		return ErrCannotDisableSelf
	}

	if _, err := s.Store.Principals().GetPrincipalByID(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrPrincipalNotFound
		}
		return err
	}

	action := "admin.enable"
	if !active {
		action = "admin.disable"
	}

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Principals().SetPrincipalActive(ctx, id, active); err != nil {
			return err
		}
		if !active {
			if err := tx.RefreshTokens().RevokePrincipalRefreshTokens(ctx, id); err != nil {
				return err
			}
		}
		return s.Audit.Record(ctx, tx, audit.Event{
			Meta:         meta,
			Action:       action,
			ResourceType: "principal",
			ResourceID:   id,
		})
	})
	if err != nil {
		return err
	}

	l.Info("principal active flag set", slog.String("principal_id", id), slog.Bool("active", active))
	return nil
}

// ResetPassword re-hashes the account password and revokes every live
// session so the old credential stops working everywhere at once.
func (s *AdminService) ResetPassword(ctx context.Context, meta audit.Meta, id, newPassword string) error {
	l := slogx.FromContext(ctx)

	if len(newPassword) < minPasswordLength {
		return validationf("password must be at least %d characters", minPasswordLength)
	}

	if _, err := s.Store.Principals().GetPrincipalByID(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrPrincipalNotFound
		}
		return err
	}

	hash, err := cryptox.HashPassword(newPassword)
	if err != nil {
		return err
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Principals().UpdatePasswordHash(ctx, id, hash); err != nil {
			return err
		}
		if err := tx.RefreshTokens().RevokePrincipalRefreshTokens(ctx, id); err != nil {
			return err
		}
		return s.Audit.Record(ctx, tx, audit.Event{
			Meta:         meta,
			Action:       "admin.password_reset",
			ResourceType: "principal",
			ResourceID:   id,
		})
	})
	if err != nil {
		return err
	}

	l.Info("principal password reset", slog.String("principal_id", id))
	return nil
}
