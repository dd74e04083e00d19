package handler

import (
	"net/http"

	"github.com/orbitdrive/orbitdrive/internal/ctxkeys"
	"github.com/orbitdrive/orbitdrive/internal/service"
)

type FolderHandler struct {
	navigator   *service.NavigatorService
	folders     *service.FolderService
	permissions *service.PermissionService
}

func NewFolderHandler(navigator *service.NavigatorService, folders *service.FolderService, permissions *service.PermissionService) *FolderHandler {
	return &FolderHandler{
		navigator:   navigator,
		folders:     folders,
		permissions: permissions,
	}
}

// Browse lists a folder's children and breadcrumb trail. Without an id
// it lists the caller's root folders.
func (h *FolderHandler) Browse(w http.ResponseWriter, r *http.Request) {
	callerID := ctxkeys.UserID(r.Context())

	view, err := h.navigator.Browse(callerID, optionalID(r.URL.Query().Get("folder_id")))
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, view)
}

func (h *FolderHandler) Create(w http.ResponseWriter, r *http.Request) {
	callerID := ctxkeys.UserID(r.Context())

	var body struct {
		Name       string  `json:"name"`
		FolderType string  `json:"folder_type"`
		ParentID   *string `json:"parent_id"`
	}
	if err := decodeBody(r, &body); err != nil {
		respondValidation(w, err)
		return
	}

	folder, err := h.folders.Create(callerID, body.Name, body.FolderType, body.ParentID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, folder)
}

func (h *FolderHandler) Rename(w http.ResponseWriter, r *http.Request) {
	callerID := ctxkeys.UserID(r.Context())
	folderID := r.PathValue("id")

	var body struct {
		Name string `json:"name"`
	}
	if err := decodeBody(r, &body); err != nil {
		respondValidation(w, err)
		return
	}

	folder, err := h.folders.Rename(callerID, folderID, body.Name)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, folder)
}

func (h *FolderHandler) Move(w http.ResponseWriter, r *http.Request) {
	callerID := ctxkeys.UserID(r.Context())
	folderID := r.PathValue("id")

	var body struct {
		ParentID *string `json:"parent_id"`
	}
	if err := decodeBody(r, &body); err != nil {
		respondValidation(w, err)
		return
	}

	folder, err := h.folders.Move(callerID, folderID, body.ParentID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, folder)
}

// Delete removes the folder and its whole subtree.
func (h *FolderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	callerID := ctxkeys.UserID(r.Context())
	folderID := r.PathValue("id")

	err := h.folders.Delete(r.Context(), callerID, folderID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Permissions lists the grants on a folder.
func (h *FolderHandler) Permissions(w http.ResponseWriter, r *http.Request) {
	callerID := ctxkeys.UserID(r.Context())
	folderID := r.PathValue("id")

	perms, err := h.permissions.ForFolder(callerID, folderID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, perms)
}

func (h *FolderHandler) Grant(w http.ResponseWriter, r *http.Request) {
	callerID := ctxkeys.UserID(r.Context())
	folderID := r.PathValue("id")

	var body struct {
		UserID     string  `json:"user_id"`
		Permission string  `json:"permission"`
		ExpiresAt  *string `json:"expires_at"`
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

	perm, err := h.permissions.Grant(callerID, folderID, body.UserID, body.Permission, expiresAt)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, perm)
}

func (h *FolderHandler) RevokeGrant(w http.ResponseWriter, r *http.Request) {
	callerID := ctxkeys.UserID(r.Context())
	folderID := r.PathValue("id")
	userID := r.PathValue("userId")

	err := h.permissions.Revoke(callerID, folderID, userID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "revoked"})
}
