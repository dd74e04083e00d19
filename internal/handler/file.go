package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/orbitdrive/orbitdrive/internal/ctxkeys"
	"github.com/orbitdrive/orbitdrive/internal/repository"
	"github.com/orbitdrive/orbitdrive/internal/service"
)

type FileHandler struct {
	files    *service.FileService
	versions *service.VersionService
	activity *service.ActivityService
}

func NewFileHandler(files *service.FileService, versions *service.VersionService, activity *service.ActivityService) *FileHandler {
	return &FileHandler{
		files:    files,
		versions: versions,
		activity: activity,
	}
}

func (h *FileHandler) Get(w http.ResponseWriter, r *http.Request) {
	callerID := ctxkeys.UserID(r.Context())

	file, err := h.files.ByID(callerID, r.PathValue("id"))
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, file)
}

func (h *FileHandler) Rename(w http.ResponseWriter, r *http.Request) {
	callerID := ctxkeys.UserID(r.Context())

	var body struct {
		Name string `json:"name"`
	}
	if err := decodeBody(r, &body); err != nil {
		respondValidation(w, err)
		return
	}

	file, err := h.files.Rename(callerID, r.PathValue("id"), body.Name)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, file)
}

func (h *FileHandler) Move(w http.ResponseWriter, r *http.Request) {
	callerID := ctxkeys.UserID(r.Context())

	var body struct {
		FolderID *string `json:"folder_id"`
	}
	if err := decodeBody(r, &body); err != nil {
		respondValidation(w, err)
		return
	}

	file, err := h.files.Move(callerID, r.PathValue("id"), body.FolderID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, file)
}

func (h *FileHandler) Star(w http.ResponseWriter, r *http.Request) {
	callerID := ctxkeys.UserID(r.Context())

	var body struct {
		Starred bool `json:"starred"`
	}
	if err := decodeBody(r, &body); err != nil {
		respondValidation(w, err)
		return
	}

	file, err := h.files.SetStarred(callerID, r.PathValue("id"), body.Starred)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, file)
}

// Download responds with a signed URL for the file's current content.
func (h *FileHandler) Download(w http.ResponseWriter, r *http.Request) {
	callerID := ctxkeys.UserID(r.Context())

	url, err := h.files.DownloadURL(r.Context(), callerID, r.PathValue("id"))
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"url": url})
}

// Search matches files by name substring plus optional filters.
func (h *FileHandler) Search(w http.ResponseWriter, r *http.Request) {
	callerID := ctxkeys.UserID(r.Context())
	q := r.URL.Query()

	files, err := h.files.Search(callerID, repository.SearchParams{
		Name:     q.Get("q"),
		MimeType: q.Get("mime_type"),
		FolderID: q.Get("folder_id"),
		Starred:  q.Get("starred") == "true",
	})
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, files)
}

// Versions lists the file's history, oldest first.
func (h *FileHandler) Versions(w http.ResponseWriter, r *http.Request) {
	callerID := ctxkeys.UserID(r.Context())

	versions, err := h.versions.Versions(callerID, r.PathValue("id"))
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, versions)
}

// RestoreVersion appends a new version that points at a copy of the
// selected one.
func (h *FileHandler) RestoreVersion(w http.ResponseWriter, r *http.Request) {
	callerID := ctxkeys.UserID(r.Context())

	file, err := h.versions.RestoreVersion(r.Context(), callerID, r.PathValue("id"), r.PathValue("versionId"))
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, file)
}

// Activity lists the file's audit trail, newest first.
func (h *FileHandler) Activity(w http.ResponseWriter, r *http.Request) {
	callerID := ctxkeys.UserID(r.Context())
	fileID := r.PathValue("id")

	// Access check through the file service
	_, err := h.files.ByID(callerID, fileID)
	if err != nil {
		respondError(w, err)
		return
	}

	activities, err := h.activity.ForFile(fileID, 50)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, activities)
}

// parseOptionalTime parses an RFC3339 timestamp field, nil when absent.
func parseOptionalTime(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, *s)
	if err != nil {
		return nil, fmt.Errorf("invalid timestamp %q: %w", *s, err)
	}
	return &t, nil
}
