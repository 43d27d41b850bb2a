package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/meridiantours/meridian/internal/admin/audit"
	"github.com/meridiantours/meridian/internal/admin/domain"
	"github.com/meridiantours/meridian/internal/admin/store"
	"github.com/meridiantours/meridian/pkg/idx"
	"github.com/meridiantours/meridian/pkg/slogx"
)

var (
	ErrClientNotFound            = errors.New("client_not_found")
	ErrClientEmailTaken          = errors.New("client_email_taken")
	ErrClientHasOpenApplications = errors.New("client_has_open_applications")
)

// ClientsService is the CRM book: the people and companies the agency files
// applications and takes orders for.
type ClientsService struct {
	Store store.Store
	Audit *audit.Recorder
}

// ClientInput carries the mutable client fields for create and update.
type ClientInput struct {
	FullName       string
	Email          string
	Phone          string
	Nationality    string
	PassportNumber string
	Company        string
	Address        string
	Notes          string
	Active         *bool // nil keeps the current value (create defaults to true)
}

func (in ClientInput) validate() error {
	if strings.TrimSpace(in.FullName) == "" {
		return validationf("full_name is required")
	}
	email := strings.TrimSpace(in.Email)
	if email == "" {
		return validationf("email is required")
	}
	if !strings.Contains(email, "@") {
		return validationf("email %q is not an address", email)
	}
	return nil
}

// Create registers a new client. Email must be unique across the book.
func (s *ClientsService) Create(ctx context.Context, meta audit.Meta, in ClientInput) (domain.Client, error) {
	l := slogx.FromContext(ctx)

	if err := in.validate(); err != nil {
		return domain.Client{}, err
	}

	now := time.Now().UTC()
	c := domain.Client{
		ID:             idx.New().String(),
		FullName:       in.FullName,
		Email:          strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:          in.Phone,
		Nationality:    in.Nationality,
		PassportNumber: in.PassportNumber,
		Company:        in.Company,
		Address:        in.Address,
		Notes:          in.Notes,
		Active:         true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if in.Active != nil {
		c.Active = *in.Active
	}

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Clients().CreateClient(ctx, c); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrClientEmailTaken
			}
			return err
		}
		return s.Audit.Record(ctx, tx, audit.Event{
			Meta:         meta,
			Action:       "client.create",
			ResourceType: "client",
			ResourceID:   c.ID,
			Detail:       map[string]any{"email": c.Email},
		})
	})
	if err != nil {
		return domain.Client{}, err
	}

	l.Info("client created", slog.String("client_id", c.ID))
	return c, nil
}

// Get returns a client together with all of its applications, newest first.
func (s *ClientsService) Get(ctx context.Context, id string) (domain.Client, []domain.Application, error) {
	c, err := s.Store.Clients().GetClientByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Client{}, nil, ErrClientNotFound
		}
		return domain.Client{}, nil, err
	}

	apps, err := s.Store.Applications().ListApplications(ctx, store.ApplicationFilter{ClientID: id})
	if err != nil {
		return domain.Client{}, nil, err
	}
	return c, apps, nil
}

// List returns a filtered page of clients plus the total match count.
func (s *ClientsService) List(ctx context.Context, f store.ClientFilter) ([]domain.Client, int64, error) {
	clients, err := s.Store.Clients().ListClients(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.Store.Clients().CountClients(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	return clients, total, nil
}

// Update rewrites a client's mutable fields.
func (s *ClientsService) Update(ctx context.Context, meta audit.Meta, id string, in ClientInput) (domain.Client, error) {
	l := slogx.FromContext(ctx)

	if err := in.validate(); err != nil {
		return domain.Client{}, err
	}

	c, err := s.Store.Clients().GetClientByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Client{}, ErrClientNotFound
		}
		return domain.Client{}, err
	}

	c.FullName = in.FullName
	c.Email = strings.ToLower(strings.TrimSpace(in.Email))
	c.Phone = in.Phone
	c.Nationality = in.Nationality
	c.PassportNumber = in.PassportNumber
	c.Company = in.Company
	c.Address = in.Address
	c.Notes = in.Notes
	if in.Active != nil {
		c.Active = *in.Active
	}
	c.UpdatedAt = time.Now().UTC()

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Clients().UpdateClient(ctx, c); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrClientEmailTaken
			}
			return err
		}
		return s.Audit.Record(ctx, tx, audit.Event{
			Meta:         meta,
			Action:       "client.update",
			ResourceType: "client",
			ResourceID:   c.ID,
		})
	})
	if err != nil {
		return domain.Client{}, err
	}

	l.Info("client updated", slog.String("client_id", c.ID))
	return c, nil
}

// Delete removes a client. It is refused while the client still has
// applications in a non-terminal status, so the deletion never orphans an
// in-flight filing.
func (s *ClientsService) Delete(ctx context.Context, meta audit.Meta, id string) error {
	l := slogx.FromContext(ctx)

	c, err := s.Store.Clients().GetClientByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrClientNotFound
		}
		return err
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		open, err := tx.Applications().CountActiveApplicationsForClient(ctx, id)
		if err != nil {
			return err
		}
		if open > 0 {
			return ErrClientHasOpenApplications
		}

		if err := tx.Clients().DeleteClient(ctx, id); err != nil {
			return err
		}
		return s.Audit.Record(ctx, tx, audit.Event{
			Meta:         meta,
			Action:       "client.delete",
			ResourceType: "client",
			ResourceID:   id,
			Detail:       map[string]any{"email": c.Email},
		})
	})
	if err != nil {
		return err
	}

	l.Info("client deleted", slog.String("client_id", id))
	return nil
}
