package handler

import (
	"net/http"

	"github.com/orbitdrive/orbitdrive/internal/ctxkeys"
	"github.com/orbitdrive/orbitdrive/internal/service"
)

type BulkHandler struct {
	bulk *service.BulkService
}

func NewBulkHandler(bulk *service.BulkService) *BulkHandler {
	return &BulkHandler{bulk: bulk}
}

func (h *BulkHandler) Move(w http.ResponseWriter, r *http.Request) {
	callerID := ctxkeys.UserID(r.Context())

	var body struct {
		Items    []service.BulkItem `json:"items"`
		FolderID *string            `json:"folder_id"`
	}
	if err := decodeBody(r, &body); err != nil {
		respondValidation(w, err)
		return
	}
	if len(body.Items) == 0 {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "no items provided"})
		return
	}

	result := h.bulk.Move(r.Context(), callerID, body.Items, body.FolderID)
	respondJSON(w, http.StatusOK, result)
}

func (h *BulkHandler) Delete(w http.ResponseWriter, r *http.Request) {
	callerID := ctxkeys.UserID(r.Context())

	var body struct {
		Items []service.BulkItem `json:"items"`
	}
	if err := decodeBody(r, &body); err != nil {
		respondValidation(w, err)
		return
	}
	if len(body.Items) == 0 {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "no items provided"})
		return
	}

	result := h.bulk.Delete(r.Context(), callerID, body.Items)
	respondJSON(w, http.StatusOK, result)
}

func (h *BulkHandler) DownloadURLs(w http.ResponseWriter, r *http.Request) {
	callerID := ctxkeys.UserID(r.Context())

	var body struct {
		FileIDs []string `json:"file_ids"`
	}
	if err := decodeBody(r, &body); err != nil {
		respondValidation(w, err)
		return
	}
	if len(body.FileIDs) == 0 {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "no files provided"})
		return
	}

	downloads := h.bulk.DownloadURLs(r.Context(), callerID, body.FileIDs)
	respondJSON(w, http.StatusOK, map[string]any{"downloads": downloads})
}
