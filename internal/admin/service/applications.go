package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/meridiantours/meridian/internal/admin/audit"
	"github.com/meridiantours/meridian/internal/admin/domain"
	"github.com/meridiantours/meridian/internal/admin/store"
	"github.com/meridiantours/meridian/pkg/idx"
	"github.com/meridiantours/meridian/pkg/slogx"
)

var (
	ErrApplicationNotFound = errors.New("application_not_found")
	ErrInvalidTransition   = errors.New("invalid_transition")
)

// trackingIDAttempts bounds the retries after a tracking reference collision.
// The hex suffix makes a collision vanishingly rare, the unique index makes
// it harmless.
const trackingIDAttempts = 3

// ApplicationsService owns the application lifecycle: intake, the status
// state machine, and the public tracking view.
type ApplicationsService struct {
	Store store.Store
	Audit *audit.Recorder
}

// CreateApplicationRequest is the intake payload for a new filing.
type CreateApplicationRequest struct {
	ClientID string
	Type     domain.ApplicationType
	Priority string
	Data     json.RawMessage
}

// Create files a new application for a client. The application starts in
// "submitted" with a freshly generated tracking reference, and the intake is
// recorded as both the first status-history row and an audit entry.
func (s *ApplicationsService) Create(ctx context.Context, meta audit.Meta, req CreateApplicationRequest) (domain.Application, error) {
	l := slogx.FromContext(ctx)

	if !req.Type.IsValid() {
		return domain.Application{}, validationf("unknown application type %q", req.Type)
	}
	priority := req.Priority
	if priority == "" {
		priority = domain.PriorityStandard
	}
	if !domain.ValidPriority(priority) {
		return domain.Application{}, validationf("unknown priority %q", priority)
	}

	if _, err := s.Store.Clients().GetClientByID(ctx, req.ClientID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Application{}, ErrClientNotFound
		}
		return domain.Application{}, err
	}

	now := time.Now().UTC()
	app := domain.Application{
		ID:          idx.New().String(),
		ClientID:    req.ClientID,
		Type:        req.Type,
		Status:      domain.StatusSubmitted,
		Priority:    priority,
		Data:        req.Data,
		SubmittedAt: now,
		UpdatedAt:   now,
	}

	// The tracking reference carries a random suffix, so a duplicate insert
	// means we lost a coin toss against another intake. Reroll and retry.
	var err error
	for attempt := 1; attempt <= trackingIDAttempts; attempt++ {
		app.TrackingID = domain.NewTrackingID(now)

		err = s.Store.WithTx(ctx, func(tx store.Tx) error {
			if err := tx.Applications().CreateApplication(ctx, app); err != nil {
				return err
			}
			if err := tx.Applications().AppendStatusChange(ctx, domain.StatusChange{
				ID:            idx.New().String(),
				ApplicationID: app.ID,
				To:            domain.StatusSubmitted,
				ChangedBy:     meta.ActorID,
				ChangedAt:     now,
			}); err != nil {
				return err
			}
			return s.Audit.Record(ctx, tx, audit.Event{
				Meta:         meta,
				Action:       "application.create",
				ResourceType: "application",
				ResourceID:   app.ID,
				Detail: map[string]any{
					"tracking_id": app.TrackingID,
					"type":        app.Type,
					"priority":    app.Priority,
				},
			})
		})
		if !errors.Is(err, store.ErrAlreadyExists) {
			break
		}
	}
	if err != nil {
		return domain.Application{}, err
	}

	l.Info("application created",
		slog.String("application_id", app.ID),
		slog.String("tracking_id", app.TrackingID),
		slog.String("type", string(app.Type)),
	)
	return app, nil
}

// Get returns an application together with its status history, oldest first.
func (s *ApplicationsService) Get(ctx context.Context, id string) (domain.Application, []domain.StatusChange, error) {
	app, err := s.Store.Applications().GetApplicationByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Application{}, nil, ErrApplicationNotFound
		}
		return domain.Application{}, nil, err
	}

	history, err := s.Store.Applications().ListStatusChanges(ctx, id)
	if err != nil {
		return domain.Application{}, nil, err
	}
	return app, history, nil
}

// List returns a filtered page of applications plus the total match count.
func (s *ApplicationsService) List(ctx context.Context, f store.ApplicationFilter) ([]domain.Application, int64, error) {
	apps, err := s.Store.Applications().ListApplications(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.Store.Applications().CountApplications(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	return apps, total, nil
}

// Transition moves an application along one edge of the status state machine.
//
// An illegal edge fails with ErrInvalidTransition and leaves the row
// untouched. A legal edge updates the status, appends the status-history
// event and writes exactly one audit entry, all in one transaction.
func (s *ApplicationsService) Transition(
	ctx context.Context,
	meta audit.Meta,
	id string,
	target domain.ApplicationStatus,
	note string,
) (domain.Application, error) {
	l := slogx.FromContext(ctx)

	if !target.IsValid() {
		return domain.Application{}, validationf("unknown status %q", target)
	}

	now := time.Now().UTC()
	var app domain.Application

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		var err error
		app, err = tx.Applications().GetApplicationByID(ctx, id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrApplicationNotFound
			}
			return err
		}

		if !app.Status.CanTransitionTo(target) {
			return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, app.Status, target)
		}

		if err := tx.Applications().UpdateApplicationStatus(ctx, id, target); err != nil {
			return err
		}

		if err := tx.Applications().AppendStatusChange(ctx, domain.StatusChange{
			ID:            idx.New().String(),
			ApplicationID: id,
			From:          app.Status,
			To:            target,
			ChangedBy:     meta.ActorID,
			Note:          note,
			ChangedAt:     now,
		}); err != nil {
			return err
		}

		return s.Audit.Record(ctx, tx, audit.Event{
			Meta:         meta,
			Action:       "application.transition",
			ResourceType: "application",
			ResourceID:   id,
			Detail: map[string]any{
				"tracking_id": app.TrackingID,
				"from":        app.Status,
				"to":          target,
			},
		})
	})
	if err != nil {
		return domain.Application{}, err
	}

	l.Info("application transitioned",
		slog.String("application_id", id),
		slog.String("from", string(app.Status)),
		slog.String("to", string(target)),
	)

	app.Status = target
	app.UpdatedAt = now
	return app, nil
}

// TrackByTrackingID serves the public, unauthenticated progress lookup. The
// view carries the status timeline but no client identity and no notes.
func (s *ApplicationsService) TrackByTrackingID(ctx context.Context, trackingID string) (domain.TrackingView, error) {
	app, err := s.Store.Applications().GetApplicationByTrackingID(ctx, trackingID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.TrackingView{}, ErrApplicationNotFound
		}
		return domain.TrackingView{}, err
	}

	history, err := s.Store.Applications().ListStatusChanges(ctx, app.ID)
	if err != nil {
		return domain.TrackingView{}, err
	}

	timeline := make([]domain.TrackingEvent, len(history))
	for i, change := range history {
		timeline[i] = domain.TrackingEvent{
			Status:     change.To,
			OccurredAt: change.ChangedAt,
		}
	}

	return domain.TrackingView{
		TrackingID:  app.TrackingID,
		Type:        app.Type,
		Status:      app.Status,
		SubmittedAt: app.SubmittedAt,
		UpdatedAt:   app.UpdatedAt,
		Timeline:    timeline,
	}, nil
}
