package http

import (
	"errors"
	"net/http"

	"github.com/meridiantours/meridian/internal/admin/domain"
	"github.com/meridiantours/meridian/internal/admin/service"
	"github.com/meridiantours/meridian/internal/admin/store"
	"github.com/meridiantours/meridian/pkg/adminsdk"
	"github.com/meridiantours/meridian/pkg/httpx"
	"github.com/meridiantours/meridian/pkg/slogx"
)

// PublicHandler serves the unauthenticated website surface: published blog
// posts, active travel packages and the active product catalogue.
type PublicHandler struct {
	ContentService  *service.ContentService
	ProductsService *service.ProductsService
}

// HandleListPosts handles GET /v1/public/posts
//
//	@Summary		List published blog posts
//	@Description	Returns published posts only, newest first. Drafts and archived posts never appear.
//	@Tags			Public
//	@Produce		json
//	@Param			category	query		string	false	"Filter by category"
//	@Param			limit		query		int		false	"Page size (default 50, max 200)"
//	@Param			offset		query		int		false	"Page offset"
//	@Success		200			{object}	adminsdk.ListPostsResponse	"Posts and total"
//	@Failure		500			{object}	adminsdk.ErrorResponse		"error, error_description"
//	@Router			/v1/public/posts [get].
func (h *PublicHandler) HandleListPosts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	posts, total, err := h.ContentService.ListPublishedPosts(ctx,
		r.URL.Query().Get("category"), queryInt(r, "limit"), queryInt(r, "offset"))
	if err != nil {
		log.Error("failed to list published posts", "error", err)
		adminsdk.ErrServerError.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, adminsdk.ListPostsResponse{
		Posts: toPostInfos(posts),
		Total: total,
	})
}

// HandleGetPost handles GET /v1/public/posts/{slug}
//
//	@Summary		Read a published blog post
//	@Description	Returns one published post by slug. Drafts and archived posts answer 404.
//	@Tags			Public
//	@Produce		json
//	@Param			slug	path		string					true	"Post slug"
//	@Success		200		{object}	adminsdk.PostInfo		"Post"
//	@Failure		404		{object}	adminsdk.ErrorResponse	"error, error_description"
//	@Failure		500		{object}	adminsdk.ErrorResponse	"error, error_description"
//	@Router			/v1/public/posts/{slug} [get].
func (h *PublicHandler) HandleGetPost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	slug := r.PathValue("slug")

	post, err := h.ContentService.GetPublishedPostBySlug(ctx, slug)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPostNotFound):
			adminsdk.NotFoundError("post").WriteError(w)
		default:
			log.Error("failed to load published post", "error", err, "slug", slug)
			adminsdk.ErrServerError.WriteError(w)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toPostInfo(post))
}

// HandleListPackages handles GET /v1/public/packages
//
//	@Summary		List travel packages
//	@Description	Returns active packages only, featured first then newest. Supports destination and price range filters.
//	@Tags			Public
//	@Produce		json
//	@Param			destination		query		string	false	"Filter by destination"
//	@Param			min_price_cents	query		int		false	"Lowest price to include"
//	@Param			max_price_cents	query		int		false	"Highest price to include"
//	@Param			limit			query		int		false	"Page size (default 50, max 200)"
//	@Param			offset			query		int		false	"Page offset"
//	@Success		200				{object}	adminsdk.ListPackagesResponse	"Packages and total"
//	@Failure		500				{object}	adminsdk.ErrorResponse			"error, error_description"
//	@Router			/v1/public/packages [get].
func (h *PublicHandler) HandleListPackages(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	filter := store.PackageFilter{
		Destination:   r.URL.Query().Get("destination"),
		MinPriceCents: int64(queryInt(r, "min_price_cents")),
		MaxPriceCents: int64(queryInt(r, "max_price_cents")),
		Limit:         queryInt(r, "limit"),
		Offset:        queryInt(r, "offset"),
	}

	packages, total, err := h.ContentService.ListPublicPackages(ctx, filter)
	if err != nil {
		log.Error("failed to list public packages", "error", err)
		adminsdk.ErrServerError.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, adminsdk.ListPackagesResponse{
		Packages: toPackageInfos(packages),
		Total:    total,
	})
}

// HandleListProducts handles GET /v1/public/products
//
//	@Summary		List products
//	@Description	Returns active catalogue items only.
//	@Tags			Public
//	@Produce		json
//	@Param			type	query		string	false	"esim, service or physical"
//	@Param			limit	query		int		false	"Page size (default 50, max 200)"
//	@Param			offset	query		int		false	"Page offset"
//	@Success		200		{object}	adminsdk.ListProductsResponse	"Products and total"
//	@Failure		500		{object}	adminsdk.ErrorResponse			"error, error_description"
//	@Router			/v1/public/products [get].
func (h *PublicHandler) HandleListProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	filter := store.ProductFilter{
		Type:   domain.ProductType(r.URL.Query().Get("type")),
		Limit:  queryInt(r, "limit"),
		Offset: queryInt(r, "offset"),
	}

	products, total, err := h.ProductsService.ListPublic(ctx, filter)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			adminsdk.ValidationError(validationDetail(err)).WriteError(w)
		default:
			log.Error("failed to list public products", "error", err)
			adminsdk.ErrServerError.WriteError(w)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, adminsdk.ListProductsResponse{
		Products: toProductInfos(products),
		Total:    total,
	})
}
