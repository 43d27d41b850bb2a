package http

import (
	"errors"
	"net/http"

	"github.com/meridiantours/meridian/internal/admin/service"
	"github.com/meridiantours/meridian/pkg/adminsdk"
	"github.com/meridiantours/meridian/pkg/httpx"
	"github.com/meridiantours/meridian/pkg/slogx"
)

// TrackHandler serves the public, unauthenticated application status lookup.
type TrackHandler struct {
	ApplicationsService *service.ApplicationsService
}

// HandleTrack handles GET /v1/track/{trackingID}
//
//	@Summary		Track an application
//	@Description	Returns the status timeline for a tracking reference. The projection carries no client identity and no reviewer notes. Unknown and known-but-foreign references are indistinguishable.
//	@Tags			Tracking
//	@Produce		json
//	@Param			trackingID	path		string						true	"Public tracking reference (e.g. TR20260815A3F29B1C)"
//	@Success		200			{object}	adminsdk.TrackingResponse	"Status timeline"
//	@Failure		404			{object}	adminsdk.ErrorResponse		"error, error_description"
//	@Failure		500			{object}	adminsdk.ErrorResponse		"error, error_description"
//	@Router			/v1/track/{trackingID} [get].
func (h *TrackHandler) HandleTrack(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	trackingID := r.PathValue("trackingID")

	view, err := h.ApplicationsService.TrackByTrackingID(ctx, trackingID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrApplicationNotFound):
			adminsdk.NotFoundError("application").WriteError(w)
		default:
			log.Error("tracking lookup failed", "error", err)
			adminsdk.ErrServerError.WriteError(w)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toTrackingResponse(view))
}
