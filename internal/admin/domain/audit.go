package domain

import (
	"encoding/json"
	"time"
)

// AuditEntry is one append-only record of a mutation. Entries are written
// in the same store transaction as the change they describe and are never
// updated or deleted.
type AuditEntry struct {
	ID           string
	ActorID      string // principal ID, or "system" for background jobs
	Action       string // e.g. "client.create", "application.transition"
	ResourceType string // e.g. "client", "application", "post"
	ResourceID   string
	Detail       json.RawMessage // optional structured context
	OriginIP     string
	UserAgent    string
	CreatedAt    time.Time
}

// SystemActor is the ActorID recorded for mutations no principal initiated.
const SystemActor = "system"
