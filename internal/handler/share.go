package handler

import (
	"net/http"

	"github.com/orbitdrive/orbitdrive/internal/ctxkeys"
	"github.com/orbitdrive/orbitdrive/internal/service"
)

type ShareHandler struct {
	shares *service.ShareService
}

func NewShareHandler(shares *service.ShareService) *ShareHandler {
	return &ShareHandler{shares: shares}
}

func (h *ShareHandler) Create(w http.ResponseWriter, r *http.Request) {
	callerID := ctxkeys.UserID(r.Context())

	var body struct {
		FileID       *string `json:"file_id"`
		FolderID     *string `json:"folder_id"`
		Permission   string  `json:"permission"`
		Password     string  `json:"password"`
		ExpiresAt    *string `json:"expires_at"`
		MaxDownloads *int    `json:"max_downloads"`
	}
	if err := decodeBody(r, &body); err != nil {
		respondValidation(w, err)
		return
	}

	expiresAt, err := parseOptionalTime(body.ExpiresAt)
	if err != nil {
		respondValidation(w, err)
		return
	}

	share, err := h.shares.Create(callerID, service.CreateShareParams{
		FileID:       body.FileID,
		FolderID:     body.FolderID,
		Permission:   body.Permission,
		Password:     body.Password,
		ExpiresAt:    expiresAt,
		MaxDownloads: body.MaxDownloads,
	})
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, share)
}

func (h *ShareHandler) List(w http.ResponseWriter, r *http.Request) {
	callerID := ctxkeys.UserID(r.Context())

	shares, err := h.shares.ByCreator(callerID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, shares)
}

// Resolve is the public entry for a share link. No auth: the token is
// the credential, an optional password rides in a header.
func (h *ShareHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	share, err := h.shares.Resolve(r.PathValue("token"), r.Header.Get("X-Share-Password"))
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, share)
}

// Download returns a signed URL for a shared file. Public, like Resolve.
func (h *ShareHandler) Download(w http.ResponseWriter, r *http.Request) {
	url, err := h.shares.Download(r.Context(), r.PathValue("token"), r.Header.Get("X-Share-Password"))
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"url": url})
}

func (h *ShareHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	callerID := ctxkeys.UserID(r.Context())

	err := h.shares.Revoke(callerID, r.PathValue("token"))
	if err != nil {
		respondError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
