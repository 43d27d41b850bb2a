package http

import (
	"net/http"
	"time"

	"github.com/meridiantours/meridian/internal/admin/audit"
	"github.com/meridiantours/meridian/internal/admin/store"
	"github.com/meridiantours/meridian/pkg/adminsdk"
	"github.com/meridiantours/meridian/pkg/httpx"
	"github.com/meridiantours/meridian/pkg/slogx"
)

// AuditLogHandler handles the read side of the audit trail. There is no
// write side over HTTP; entries are recorded by the services.
type AuditLogHandler struct {
	Audit *audit.Recorder
}

// HandleList handles GET /v1/admin/audit-logs
//
//	@Summary		Query the audit trail
//	@Description	Returns a filtered page of audit entries, newest first. Entries are append-only; nothing here mutates.
//	@Tags			Admin
//	@Produce		json
//	@Security		BearerAuth
//	@Param			actor_id		query		string	false	"Filter by acting principal"
//	@Param			action			query		string	false	"Filter by action, e.g. client.create"
//	@Param			resource_type	query		string	false	"Filter by resource type, e.g. application"
//	@Param			resource_id		query		string	false	"Filter by resource ID"
//	@Param			from			query		string	false	"Earliest entry to include (RFC3339)"
//	@Param			to				query		string	false	"Latest entry to include (RFC3339)"
//	@Param			limit			query		int		false	"Page size (default 50, max 200)"
//	@Param			offset			query		int		false	"Page offset"
//	@Success		200				{object}	adminsdk.ListAuditLogsResponse	"Entries and total"
//	@Failure		401				{object}	adminsdk.ErrorResponse			"error, error_description"
//	@Failure		403				{object}	adminsdk.ErrorResponse			"error, error_description"
//	@Failure		500				{object}	adminsdk.ErrorResponse			"error, error_description"
//	@Router			/v1/admin/audit-logs [get].
func (h *AuditLogHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	q := r.URL.Query()
	filter := store.AuditFilter{
		ActorID:      q.Get("actor_id"),
		Action:       q.Get("action"),
		ResourceType: q.Get("resource_type"),
		ResourceID:   q.Get("resource_id"),
		Limit:        queryInt(r, "limit"),
		Offset:       queryInt(r, "offset"),
	}
	if v := q.Get("from"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			filter.From = t
		}
	}
	if v := q.Get("to"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			filter.To = t
		}
	}

	entries, total, err := h.Audit.Query(ctx, filter)
	if err != nil {
		log.Error("failed to query audit trail", "error", err)
		adminsdk.ErrServerError.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, adminsdk.ListAuditLogsResponse{
		Entries: toAuditEntryInfos(entries),
		Total:   total,
	})
}
