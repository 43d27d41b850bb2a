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

// PostsHandler handles the authenticated blog post endpoints.
type PostsHandler struct {
	ContentService *service.ContentService
}

func postInputFromPayload(p adminsdk.PostPayload) service.PostInput {
	return service.PostInput{
		Title:      p.Title,
		Slug:       p.Slug,
		Body:       p.Body,
		Excerpt:    p.Excerpt,
		CoverImage: p.CoverImage,
		Category:   p.Category,
		Tags:       p.Tags,
		Status:     domain.PostStatus(p.Status),
	}
}

// HandleCreate handles POST /v1/posts
//
//	@Summary		Create a blog post
//	@Description	Writes a new post authored by the caller. The slug derives from the title unless given, de-duplicated with a numeric suffix.
//	@Tags			Content
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		adminsdk.PostPayload	true	"Post fields"
//	@Success		201		{object}	adminsdk.PostInfo		"Created post"
//	@Failure		400		{object}	adminsdk.ErrorResponse	"error, error_description"
//	@Failure		401		{object}	adminsdk.ErrorResponse	"error, error_description"
//	@Failure		403		{object}	adminsdk.ErrorResponse	"error, error_description"
//	@Failure		409		{object}	adminsdk.ErrorResponse	"Slug already in use"
//	@Failure		500		{object}	adminsdk.ErrorResponse	"error, error_description"
//	@Router			/v1/posts [post].
func (h *PostsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req adminsdk.PostPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		adminsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	post, err := h.ContentService.CreatePost(ctx, requestMeta(r), postInputFromPayload(req))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			adminsdk.ValidationError(validationDetail(err)).WriteError(w)
		case errors.Is(err, service.ErrSlugTaken):
			adminsdk.ConflictError("slug_taken", "Slug is already in use").WriteError(w)
		default:
			log.Error("failed to create post", "error", err)
			adminsdk.ErrServerError.WriteError(w)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toPostInfo(post))
}

// HandleList handles GET /v1/posts
//
//	@Summary		List blog posts
//	@Description	Returns a filtered page of posts in every status, newest first.
//	@Tags			Content
//	@Produce		json
//	@Security		BearerAuth
//	@Param			status		query		string	false	"draft, published or archived"
//	@Param			category	query		string	false	"Filter by category"
//	@Param			limit		query		int		false	"Page size (default 50, max 200)"
//	@Param			offset		query		int		false	"Page offset"
//	@Success		200			{object}	adminsdk.ListPostsResponse	"Posts and total"
//	@Failure		401			{object}	adminsdk.ErrorResponse		"error, error_description"
//	@Failure		403			{object}	adminsdk.ErrorResponse		"error, error_description"
//	@Failure		500			{object}	adminsdk.ErrorResponse		"error, error_description"
//	@Router			/v1/posts [get].
func (h *PostsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	filter := store.PostFilter{
		Status:   domain.PostStatus(r.URL.Query().Get("status")),
		Category: r.URL.Query().Get("category"),
		Limit:    queryInt(r, "limit"),
		Offset:   queryInt(r, "offset"),
	}

	posts, total, err := h.ContentService.ListPosts(ctx, filter)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			adminsdk.ValidationError(validationDetail(err)).WriteError(w)
		default:
			log.Error("failed to list posts", "error", err)
			adminsdk.ErrServerError.WriteError(w)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, adminsdk.ListPostsResponse{
		Posts: toPostInfos(posts),
		Total: total,
	})
}

// HandleGet handles GET /v1/posts/{id}
//
//	@Summary		Get a blog post
//	@Description	Returns one post in any status, including drafts.
//	@Tags			Content
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string					true	"Post ID (ULID)"
//	@Success		200	{object}	adminsdk.PostInfo		"Post"
//	@Failure		401	{object}	adminsdk.ErrorResponse	"error, error_description"
//	@Failure		403	{object}	adminsdk.ErrorResponse	"error, error_description"
//	@Failure		404	{object}	adminsdk.ErrorResponse	"error, error_description"
//	@Failure		500	{object}	adminsdk.ErrorResponse	"error, error_description"
//	@Router			/v1/posts/{id} [get].
func (h *PostsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	id := r.PathValue("id")

	post, err := h.ContentService.GetPost(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPostNotFound):
			adminsdk.NotFoundError("post").WriteError(w)
		default:
			log.Error("failed to load post", "error", err, "post_id", id)
			adminsdk.ErrServerError.WriteError(w)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toPostInfo(post))
}

// HandleUpdate handles PUT /v1/posts/{id}
//
//	@Summary		Update a blog post
//	@Description	Replaces the post's mutable fields. Publishing sets published_at once; re-publishing keeps the original timestamp.
//	@Tags			Content
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string					true	"Post ID (ULID)"
//	@Param			request	body		adminsdk.PostPayload	true	"Post fields"
//	@Success		200		{object}	adminsdk.PostInfo		"Updated post"
//	@Failure		400		{object}	adminsdk.ErrorResponse	"error, error_description"
//	@Failure		401		{object}	adminsdk.ErrorResponse	"error, error_description"
//	@Failure		403		{object}	adminsdk.ErrorResponse	"error, error_description"
//	@Failure		404		{object}	adminsdk.ErrorResponse	"error, error_description"
//	@Failure		409		{object}	adminsdk.ErrorResponse	"Slug already in use"
//	@Failure		500		{object}	adminsdk.ErrorResponse	"error, error_description"
//	@Router			/v1/posts/{id} [put].
func (h *PostsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	id := r.PathValue("id")

	var req adminsdk.PostPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		adminsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	post, err := h.ContentService.UpdatePost(ctx, requestMeta(r), id, postInputFromPayload(req))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			adminsdk.ValidationError(validationDetail(err)).WriteError(w)
		case errors.Is(err, service.ErrPostNotFound):
			adminsdk.NotFoundError("post").WriteError(w)
		case errors.Is(err, service.ErrSlugTaken):
			adminsdk.ConflictError("slug_taken", "Slug is already in use").WriteError(w)
		default:
			log.Error("failed to update post", "error", err, "post_id", id)
			adminsdk.ErrServerError.WriteError(w)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toPostInfo(post))
}

// HandleDelete handles DELETE /v1/posts/{id}
//
//	@Summary		Delete a blog post
//	@Description	Removes a post permanently. Archiving via update is the recoverable alternative.
//	@Tags			Content
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path	string	true	"Post ID (ULID)"
//	@Success		204	"Post deleted"
//	@Failure		401	{object}	adminsdk.ErrorResponse	"error, error_description"
//	@Failure		403	{object}	adminsdk.ErrorResponse	"error, error_description"
//	@Failure		404	{object}	adminsdk.ErrorResponse	"error, error_description"
//	@Failure		500	{object}	adminsdk.ErrorResponse	"error, error_description"
//	@Router			/v1/posts/{id} [delete].
func (h *PostsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	id := r.PathValue("id")

	if err := h.ContentService.DeletePost(ctx, requestMeta(r), id); err != nil {
		switch {
		case errors.Is(err, service.ErrPostNotFound):
			adminsdk.NotFoundError("post").WriteError(w)
		default:
			log.Error("failed to delete post", "error", err, "post_id", id)
			adminsdk.ErrServerError.WriteError(w)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
