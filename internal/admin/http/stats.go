package http

import (
	"net/http"

	"github.com/meridiantours/meridian/internal/admin/service"
	"github.com/meridiantours/meridian/pkg/adminsdk"
	"github.com/meridiantours/meridian/pkg/httpx"
	"github.com/meridiantours/meridian/pkg/slogx"
)

// StatsHandler handles the dashboard aggregate endpoint.
type StatsHandler struct {
	DashboardService *service.DashboardService
}

// HandleStats handles GET /v1/admin/stats
//
//	@Summary		Dashboard snapshot
//	@Description	Returns entity counts, applications grouped by status, new-client counts for the last week and month, the latest applications and the latest audit entries.
//	@Tags			Admin
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	adminsdk.StatsResponse	"Aggregate snapshot"
//	@Failure		401	{object}	adminsdk.ErrorResponse	"error, error_description"
//	@Failure		403	{object}	adminsdk.ErrorResponse	"error, error_description"
//	@Failure		500	{object}	adminsdk.ErrorResponse	"error, error_description"
//	@Router			/v1/admin/stats [get].
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	stats, err := h.DashboardService.Stats(ctx)
	if err != nil {
		log.Error("failed to build dashboard stats", "error", err)
		adminsdk.ErrServerError.WriteError(w)
		return
	}

	byStatus := make(map[string]int64, len(stats.ApplicationsByState))
	for status, n := range stats.ApplicationsByState {
		byStatus[string(status)] = n
	}

	httpx.WriteJSON(w, http.StatusOK, adminsdk.StatsResponse{
		Clients:             stats.Clients,
		Applications:        stats.Applications,
		Posts:               stats.Posts,
		Packages:            stats.Packages,
		Products:            stats.Products,
		Orders:              stats.Orders,
		ApplicationsByState: byStatus,
		NewClientsThisWeek:  stats.NewClientsThisWeek,
		NewClientsThisMonth: stats.NewClientsThisMonth,
		RecentApplications:  toApplicationInfos(stats.RecentApplications),
		RecentAuditEntries:  toAuditEntryInfos(stats.RecentAuditEntries),
	})
}
