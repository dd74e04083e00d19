package handler

import (
	"net/http"

	"github.com/orbitdrive/orbitdrive/internal/ctxkeys"
	"github.com/orbitdrive/orbitdrive/internal/service"
)

type TrashHandler struct {
	trash *service.TrashService
}

func NewTrashHandler(trash *service.TrashService) *TrashHandler {
	return &TrashHandler{trash: trash}
}

func (h *TrashHandler) List(w http.ResponseWriter, r *http.Request) {
	callerID := ctxkeys.UserID(r.Context())

	files, err := h.trash.List(callerID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, files)
}

func (h *TrashHandler) Trash(w http.ResponseWriter, r *http.Request) {
	callerID := ctxkeys.UserID(r.Context())

	err := h.trash.Trash(callerID, r.PathValue("id"))
	if err != nil {
		respondError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *TrashHandler) Restore(w http.ResponseWriter, r *http.Request) {
	callerID := ctxkeys.UserID(r.Context())

	err := h.trash.Restore(callerID, r.PathValue("id"))
	if err != nil {
		respondError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *TrashHandler) Purge(w http.ResponseWriter, r *http.Request) {
	callerID := ctxkeys.UserID(r.Context())

	err := h.trash.Purge(r.Context(), callerID, r.PathValue("id"))
	if err != nil {
		respondError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *TrashHandler) Empty(w http.ResponseWriter, r *http.Request) {
	callerID := ctxkeys.UserID(r.Context())

	count, err := h.trash.EmptyTrash(r.Context(), callerID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]int{"deleted": count})
}
