// Package audit appends the immutable trail of admin mutations. Entries are
// written through the same store transaction as the change they describe, so
// a mutation and its audit row commit or roll back together. There is no
// update and no delete path.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/meridiantours/meridian/internal/admin/domain"
	"github.com/meridiantours/meridian/internal/admin/store"
	"github.com/meridiantours/meridian/pkg/idx"
)

// Meta identifies who performed a mutation and from where. The HTTP layer
// fills it from the authenticated claims and the connection; background jobs
// and unauthenticated flows leave ActorID empty and are recorded as the
// system actor.
type Meta struct {
	ActorID   string
	OriginIP  string
	UserAgent string
}

// Event is one mutation to record. Detail is marshalled to JSON when set.
type Event struct {
	Meta         Meta
	Action       string // e.g. "client.create", "application.transition"
	ResourceType string // e.g. "client", "application"
	ResourceID   string
	Detail       any
}

// Recorder writes audit entries and serves the compliance queries.
type Recorder struct {
	Store store.Store
}

// Record appends one entry through the given store handle. Callers inside a
// mutation pass their Tx so the entry shares its fate; a failed append must
// abort the surrounding transaction. A nil handle writes through the
// recorder's own store, for mutations that have no transaction.
func (r *Recorder) Record(ctx context.Context, s store.Store, ev Event) error {
	if s == nil {
		s = r.Store
	}
	var detail json.RawMessage
	if ev.Detail != nil {
		b, err := json.Marshal(ev.Detail)
		if err != nil {
			return fmt.Errorf("failed to marshal audit detail: %w", err)
		}
		detail = b
	}

	actor := ev.Meta.ActorID
	if actor == "" {
		actor = domain.SystemActor
	}

	return s.AuditEntries().AppendAuditEntry(ctx, domain.AuditEntry{
		ID:           idx.New().String(),
		ActorID:      actor,
		Action:       ev.Action,
		ResourceType: ev.ResourceType,
		ResourceID:   ev.ResourceID,
		Detail:       detail,
		OriginIP:     ev.Meta.OriginIP,
		UserAgent:    ev.Meta.UserAgent,
		CreatedAt:    time.Now().UTC(),
	})
}

// Query returns a filtered page of entries, newest first, together with the
// total number of rows the filter matches.
func (r *Recorder) Query(ctx context.Context, f store.AuditFilter) ([]domain.AuditEntry, int64, error) {
	entries, err := r.Store.AuditEntries().ListAuditEntries(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	total, err := r.Store.AuditEntries().CountAuditEntries(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}
