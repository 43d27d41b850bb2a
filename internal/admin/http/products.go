package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/meridiantours/meridian/internal/admin/domain"
	"github.com/meridiantours/meridian/internal/admin/service"
	"github.com/meridiantours/meridian/internal/admin/store"
	"github.com/meridiantours/meridian/pkg/adminsdk"
	"github.com/meridiantours/meridian/pkg/httpx"
	"github.com/meridiantours/meridian/pkg/slogx"
)

// ProductsHandler handles the authenticated product catalogue endpoints.
type ProductsHandler struct {
	ProductsService *service.ProductsService
}

func productInputFromPayload(p adminsdk.ProductPayload) service.ProductInput {
	return service.ProductInput{
		Name:          p.Name,
		SKU:           p.SKU,
		Type:          domain.ProductType(p.Type),
		Description:   p.Description,
		PriceCents:    p.PriceCents,
		Currency:      p.Currency,
		StockQuantity: p.StockQuantity,
		Active:        p.Active,
	}
}

// HandleCreate handles POST /v1/products
//
//	@Summary		Create a product
//	@Description	Adds an eSIM, service or physical product to the catalogue. SKU must be unique.
//	@Tags			Products
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		adminsdk.ProductPayload	true	"Product fields"
//	@Success		201		{object}	adminsdk.ProductInfo	"Created product"
//	@Failure		400		{object}	adminsdk.ErrorResponse	"error, error_description"
//	@Failure		401		{object}	adminsdk.ErrorResponse	"error, error_description"
//	@Failure		403		{object}	adminsdk.ErrorResponse	"error, error_description"
//	@Failure		409		{object}	adminsdk.ErrorResponse	"SKU already in use"
//	@Failure		500		{object}	adminsdk.ErrorResponse	"error, error_description"
//	@Router			/v1/products [post].
func (h *ProductsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req adminsdk.ProductPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		adminsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	product, err := h.ProductsService.Create(ctx, requestMeta(r), productInputFromPayload(req))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			adminsdk.ValidationError(validationDetail(err)).WriteError(w)
		case errors.Is(err, service.ErrProductSKUTaken):
			adminsdk.ConflictError("sku_taken", "SKU is already in use").WriteError(w)
		default:
			log.Error("failed to create product", "error", err)
			adminsdk.ErrServerError.WriteError(w)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toProductInfo(product))
}

// HandleList handles GET /v1/products
//
//	@Summary		List products
//	@Description	Returns a filtered page of the catalogue, active and inactive.
//	@Tags			Products
//	@Produce		json
//	@Security		BearerAuth
//	@Param			type	query		string	false	"esim, service or physical"
//	@Param			limit	query		int		false	"Page size (default 50, max 200)"
//	@Param			offset	query		int		false	"Page offset"
//	@Success		200		{object}	adminsdk.ListProductsResponse	"Products and total"
//	@Failure		401		{object}	adminsdk.ErrorResponse			"error, error_description"
//	@Failure		403		{object}	adminsdk.ErrorResponse			"error, error_description"
//	@Failure		500		{object}	adminsdk.ErrorResponse			"error, error_description"
//	@Router			/v1/products [get].
func (h *ProductsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	filter := store.ProductFilter{
		Type:   domain.ProductType(r.URL.Query().Get("type")),
		Limit:  queryInt(r, "limit"),
		Offset: queryInt(r, "offset"),
	}

	products, total, err := h.ProductsService.List(ctx, filter)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			adminsdk.ValidationError(validationDetail(err)).WriteError(w)
		default:
			log.Error("failed to list products", "error", err)
			adminsdk.ErrServerError.WriteError(w)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, adminsdk.ListProductsResponse{
		Products: toProductInfos(products),
		Total:    total,
	})
}

// HandleGet handles GET /v1/products/{id}
//
//	@Summary		Get a product
//	@Description	Returns one catalogue item, active or not.
//	@Tags			Products
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string					true	"Product ID (ULID)"
//	@Success		200	{object}	adminsdk.ProductInfo	"Product"
//	@Failure		401	{object}	adminsdk.ErrorResponse	"error, error_description"
//	@Failure		403	{object}	adminsdk.ErrorResponse	"error, error_description"
//	@Failure		404	{object}	adminsdk.ErrorResponse	"error, error_description"
//	@Failure		500	{object}	adminsdk.ErrorResponse	"error, error_description"
//	@Router			/v1/products/{id} [get].
func (h *ProductsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	id := r.PathValue("id")

	product, err := h.ProductsService.Get(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProductNotFound):
			adminsdk.NotFoundError("product").WriteError(w)
		default:
			log.Error("failed to load product", "error", err, "product_id", id)
			adminsdk.ErrServerError.WriteError(w)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toProductInfo(product))
}

// HandleUpdate handles PUT /v1/products/{id}
//
//	@Summary		Update a product
//	@Description	Replaces the product's mutable fields. SKU stays unique across the catalogue.
//	@Tags			Products
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string					true	"Product ID (ULID)"
//	@Param			request	body		adminsdk.ProductPayload	true	"Product fields"
//	@Success		200		{object}	adminsdk.ProductInfo	"Updated product"
//	@Failure		400		{object}	adminsdk.ErrorResponse	"error, error_description"
//	@Failure		401		{object}	adminsdk.ErrorResponse	"error, error_description"
//	@Failure		403		{object}	adminsdk.ErrorResponse	"error, error_description"
//	@Failure		404		{object}	adminsdk.ErrorResponse	"error, error_description"
//	@Failure		409		{object}	adminsdk.ErrorResponse	"SKU already in use"
//	@Failure		500		{object}	adminsdk.ErrorResponse	"error, error_description"
//	@Router			/v1/products/{id} [put].
func (h *ProductsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	id := r.PathValue("id")

	var req adminsdk.ProductPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		adminsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	product, err := h.ProductsService.Update(ctx, requestMeta(r), id, productInputFromPayload(req))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			adminsdk.ValidationError(validationDetail(err)).WriteError(w)
		case errors.Is(err, service.ErrProductNotFound):
			adminsdk.NotFoundError("product").WriteError(w)
		case errors.Is(err, service.ErrProductSKUTaken):
			adminsdk.ConflictError("sku_taken", "SKU is already in use").WriteError(w)
		default:
			log.Error("failed to update product", "error", err, "product_id", id)
			adminsdk.ErrServerError.WriteError(w)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toProductInfo(product))
}

// HandleDelete handles DELETE /v1/products/{id}
//
//	@Summary		Delete a product
//	@Description	Removes a product from the catalogue. Refused while any order line references it; deactivate instead.
//	@Tags			Products
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path	string	true	"Product ID (ULID)"
//	@Success		204	"Product deleted"
//	@Failure		401	{object}	adminsdk.ErrorResponse	"error, error_description"
//	@Failure		403	{object}	adminsdk.ErrorResponse	"error, error_description"
//	@Failure		404	{object}	adminsdk.ErrorResponse	"error, error_description"
//	@Failure		409	{object}	adminsdk.ErrorResponse	"Product referenced by orders"
//	@Failure		500	{object}	adminsdk.ErrorResponse	"error, error_description"
//	@Router			/v1/products/{id} [delete].
func (h *ProductsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	id := r.PathValue("id")

	if err := h.ProductsService.Delete(ctx, requestMeta(r), id); err != nil {
		switch {
		case errors.Is(err, service.ErrProductNotFound):
			adminsdk.NotFoundError("product").WriteError(w)
		case errors.Is(err, service.ErrProductInUse):
			adminsdk.ConflictError("product_in_use",
				"Product is referenced by existing orders").WriteError(w)
		default:
			log.Error("failed to delete product", "error", err, "product_id", id)
			adminsdk.ErrServerError.WriteError(w)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
