package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/meridiantours/meridian/internal/admin/service"
	"github.com/meridiantours/meridian/internal/admin/store"
	"github.com/meridiantours/meridian/pkg/adminsdk"
	"github.com/meridiantours/meridian/pkg/httpx"
	"github.com/meridiantours/meridian/pkg/slogx"
)

// PackagesHandler handles the authenticated travel package endpoints.
type PackagesHandler struct {
	ContentService *service.ContentService
}

func packageInputFromPayload(p adminsdk.PackagePayload) service.PackageInput {
	return service.PackageInput{
		Name:         p.Name,
		Slug:         p.Slug,
		Destination:  p.Destination,
		Description:  p.Description,
		DurationDays: p.DurationDays,
		PriceCents:   p.PriceCents,
		Currency:     p.Currency,
		Inclusions:   p.Inclusions,
		Exclusions:   p.Exclusions,
		IsFeatured:   p.IsFeatured,
		Active:       p.Active,
	}
}

// HandleCreate handles POST /v1/packages
//
//	@Summary		Create a travel package
//	@Description	Adds a package to the catalogue. The slug derives from the name unless given, de-duplicated with a numeric suffix.
//	@Tags			Content
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		adminsdk.PackagePayload	true	"Package fields"
//	@Success		201		{object}	adminsdk.PackageInfo	"Created package"
//	@Failure		400		{object}	adminsdk.ErrorResponse	"error, error_description"
//	@Failure		401		{object}	adminsdk.ErrorResponse	"error, error_description"
//	@Failure		403		{object}	adminsdk.ErrorResponse	"error, error_description"
//	@Failure		409		{object}	adminsdk.ErrorResponse	"Slug already in use"
//	@Failure		500		{object}	adminsdk.ErrorResponse	"error, error_description"
//	@Router			/v1/packages [post].
func (h *PackagesHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req adminsdk.PackagePayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		adminsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	pkg, err := h.ContentService.CreatePackage(ctx, requestMeta(r), packageInputFromPayload(req))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			adminsdk.ValidationError(validationDetail(err)).WriteError(w)
		case errors.Is(err, service.ErrSlugTaken):
			adminsdk.ConflictError("slug_taken", "Slug is already in use").WriteError(w)
		default:
			log.Error("failed to create package", "error", err)
			adminsdk.ErrServerError.WriteError(w)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toPackageInfo(pkg))
}

// HandleList handles GET /v1/packages
//
//	@Summary		List travel packages
//	@Description	Returns a filtered page of the package catalogue, active and inactive.
//	@Tags			Content
//	@Produce		json
//	@Security		BearerAuth
//	@Param			destination	query		string	false	"Filter by destination"
//	@Param			limit		query		int		false	"Page size (default 50, max 200)"
//	@Param			offset		query		int		false	"Page offset"
//	@Success		200			{object}	adminsdk.ListPackagesResponse	"Packages and total"
//	@Failure		401			{object}	adminsdk.ErrorResponse			"error, error_description"
//	@Failure		403			{object}	adminsdk.ErrorResponse			"error, error_description"
//	@Failure		500			{object}	adminsdk.ErrorResponse			"error, error_description"
//	@Router			/v1/packages [get].
func (h *PackagesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	filter := store.PackageFilter{
		Destination: r.URL.Query().Get("destination"),
		Limit:       queryInt(r, "limit"),
		Offset:      queryInt(r, "offset"),
	}

	packages, total, err := h.ContentService.ListPackages(ctx, filter)
	if err != nil {
		log.Error("failed to list packages", "error", err)
		adminsdk.ErrServerError.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, adminsdk.ListPackagesResponse{
		Packages: toPackageInfos(packages),
		Total:    total,
	})
}

// HandleGet handles GET /v1/packages/{id}
//
//	@Summary		Get a travel package
//	@Description	Returns one package, active or not.
//	@Tags			Content
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string					true	"Package ID (ULID)"
//	@Success		200	{object}	adminsdk.PackageInfo	"Package"
//	@Failure		401	{object}	adminsdk.ErrorResponse	"error, error_description"
//	@Failure		403	{object}	adminsdk.ErrorResponse	"error, error_description"
//	@Failure		404	{object}	adminsdk.ErrorResponse	"error, error_description"
//	@Failure		500	{object}	adminsdk.ErrorResponse	"error, error_description"
//	@Router			/v1/packages/{id} [get].
func (h *PackagesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	id := r.PathValue("id")

	pkg, err := h.ContentService.GetPackage(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPackageNotFound):
			adminsdk.NotFoundError("package").WriteError(w)
		default:
			log.Error("failed to load package", "error", err, "package_id", id)
			adminsdk.ErrServerError.WriteError(w)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toPackageInfo(pkg))
}

// HandleUpdate handles PUT /v1/packages/{id}
//
//	@Summary		Update a travel package
//	@Description	Replaces the package's mutable fields. The slug never changes after creation.
//	@Tags			Content
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string					true	"Package ID (ULID)"
//	@Param			request	body		adminsdk.PackagePayload	true	"Package fields"
//	@Success		200		{object}	adminsdk.PackageInfo	"Updated package"
//	@Failure		400		{object}	adminsdk.ErrorResponse	"error, error_description"
//	@Failure		401		{object}	adminsdk.ErrorResponse	"error, error_description"
//	@Failure		403		{object}	adminsdk.ErrorResponse	"error, error_description"
//	@Failure		404		{object}	adminsdk.ErrorResponse	"error, error_description"
//	@Failure		500		{object}	adminsdk.ErrorResponse	"error, error_description"
//	@Router			/v1/packages/{id} [put].
func (h *PackagesHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	id := r.PathValue("id")

	var req adminsdk.PackagePayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		adminsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	pkg, err := h.ContentService.UpdatePackage(ctx, requestMeta(r), id, packageInputFromPayload(req))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			adminsdk.ValidationError(validationDetail(err)).WriteError(w)
		case errors.Is(err, service.ErrPackageNotFound):
			adminsdk.NotFoundError("package").WriteError(w)
		default:
			log.Error("failed to update package", "error", err, "package_id", id)
			adminsdk.ErrServerError.WriteError(w)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toPackageInfo(pkg))
}

// HandleDelete handles DELETE /v1/packages/{id}
//
//	@Summary		Delete a travel package
//	@Description	Removes a package from the catalogue permanently. Deactivating via update is the recoverable alternative.
//	@Tags			Content
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path	string	true	"Package ID (ULID)"
//	@Success		204	"Package deleted"
//	@Failure		401	{object}	adminsdk.ErrorResponse	"error, error_description"
//	@Failure		403	{object}	adminsdk.ErrorResponse	"error, error_description"
//	@Failure		404	{object}	adminsdk.ErrorResponse	"error, error_description"
//	@Failure		500	{object}	adminsdk.ErrorResponse	"error, error_description"
//	@Router			/v1/packages/{id} [delete].
func (h *PackagesHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	id := r.PathValue("id")

	if err := h.ContentService.DeletePackage(ctx, requestMeta(r), id); err != nil {
		switch {
		case errors.Is(err, service.ErrPackageNotFound):
			adminsdk.NotFoundError("package").WriteError(w)
		default:
			log.Error("failed to delete package", "error", err, "package_id", id)
			adminsdk.ErrServerError.WriteError(w)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
