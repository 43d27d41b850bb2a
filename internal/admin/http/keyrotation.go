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

// KeyRotationHandler handles signing key rotation for both ephemeral and
// persistent modes.
type KeyRotationHandler struct {
	KeyRotationService *service.KeyRotationService
}

// HandleRotate handles POST /v1/keys/rotate
//
//	@Summary		Rotate signing keys
//	@Description	Generates a new signing key and optionally retires the existing active keys. Retired keys keep verifying until their grace period lapses.
//	@Tags			Keys
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		adminsdk.RotateKeyRequest	true	"Rotation options"
//	@Success		200		{object}	adminsdk.RotateKeyResponse	"New key and rotation outcome"
//	@Failure		400		{object}	adminsdk.ErrorResponse		"error, error_description"
//	@Failure		401		{object}	adminsdk.ErrorResponse		"error, error_description"
//	@Failure		403		{object}	adminsdk.ErrorResponse		"error, error_description"
//	@Failure		500		{object}	adminsdk.ErrorResponse		"error, error_description"
//	@Router			/v1/keys/rotate [post].
func (h *KeyRotationHandler) HandleRotate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req adminsdk.RotateKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		adminsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	resp, err := h.KeyRotationService.RotateKey(ctx, requestMeta(r), service.RotateKeyRequest{
		RetireExisting: req.RetireExisting,
	})
	if err != nil {
		log.Error("failed to rotate signing keys", "error", err)
		adminsdk.ErrServerError.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, adminsdk.RotateKeyResponse{
		NewKey:      toSigningKeyInfo(resp.NewKey),
		RetiredKeys: toSigningKeyInfos(resp.RetiredKeys),
		ActiveKeys:  resp.ActiveKeys,
	})
}

// HandleListKeys handles GET /v1/keys
//
//	@Summary		List signing keys
//	@Description	Lists every signing key with creation, retirement and expiry timestamps.
//	@Tags			Keys
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	adminsdk.ListKeysResponse	"Keys"
//	@Failure		401	{object}	adminsdk.ErrorResponse		"error, error_description"
//	@Failure		403	{object}	adminsdk.ErrorResponse		"error, error_description"
//	@Failure		500	{object}	adminsdk.ErrorResponse		"error, error_description"
//	@Router			/v1/keys [get].
func (h *KeyRotationHandler) HandleListKeys(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	keys, err := h.KeyRotationService.ListSigningKeys(ctx)
	if err != nil {
		log.Error("failed to list signing keys", "error", err)
		adminsdk.ErrServerError.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, adminsdk.ListKeysResponse{
		Keys: toSigningKeyInfos(keys),
	})
}

// HandleRetireKey handles POST /v1/keys/{kid}/retire
//
//	@Summary		Retire a signing key
//	@Description	Marks one key as retired without generating a replacement. At least one active key must remain for token issuance.
//	@Tags			Keys
//	@Produce		json
//	@Security		BearerAuth
//	@Param			kid	path	string	true	"Key ID to retire"
//	@Success		204	"Key retired"
//	@Failure		400	{object}	adminsdk.ErrorResponse	"error, error_description"
//	@Failure		401	{object}	adminsdk.ErrorResponse	"error, error_description"
//	@Failure		403	{object}	adminsdk.ErrorResponse	"error, error_description"
//	@Failure		404	{object}	adminsdk.ErrorResponse	"error, error_description"
//	@Failure		500	{object}	adminsdk.ErrorResponse	"error, error_description"
//	@Router			/v1/keys/{kid}/retire [post].
func (h *KeyRotationHandler) HandleRetireKey(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	kid := r.PathValue("kid")
	if kid == "" {
		adminsdk.NewAPIError(http.StatusBadRequest, adminsdk.ErrorCodeInvalidRequest,
			"kid is required").WriteError(w)
		return
	}

	if err := h.KeyRotationService.RetireKey(ctx, requestMeta(r), kid); err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			adminsdk.ValidationError(validationDetail(err)).WriteError(w)
		case errors.Is(err, store.ErrNotFound):
			adminsdk.NotFoundError("key").WriteError(w)
		default:
			log.Error("failed to retire signing key", "error", err, "kid", kid)
			adminsdk.ErrServerError.WriteError(w)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
