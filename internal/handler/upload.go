package handler

import (
	"mime/multipart"
	"net/http"

	"github.com/orbitdrive/orbitdrive/internal/ctxkeys"
	"github.com/orbitdrive/orbitdrive/internal/model"
	"github.com/orbitdrive/orbitdrive/internal/service"
	"github.com/orbitdrive/orbitdrive/internal/validation"
)

type UploadHandler struct {
	uploads *service.UploadService
}

func NewUploadHandler(uploads *service.UploadService) *UploadHandler {
	return &UploadHandler{uploads: uploads}
}

// uploadItemResult reports the outcome for one file in a batch.
type uploadItemResult struct {
	Name  string      `json:"name"`
	State string      `json:"state"`
	File  *model.File `json:"file,omitempty"`
	Error string      `json:"error,omitempty"`
}

// Upload accepts one or more files as multipart form parts named
// "files". Items are processed sequentially so a single oversized batch
// cannot starve other requests, and each item succeeds or fails on its
// own.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	callerID := ctxkeys.UserID(r.Context())

	err := r.ParseMultipartForm(32 << 20)
	if err != nil {
		respondValidation(w, err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	parts := r.MultipartForm.File["files"]
	if len(parts) == 0 {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "no files provided"})
		return
	}

	folderID := optionalID(r.FormValue("folder_id"))

	results := make([]uploadItemResult, 0, len(parts))
	for _, part := range parts {
		if err := r.Context().Err(); err != nil {
			return
		}
		results = append(results, h.uploadOne(r, callerID, folderID, part))
	}

	status := http.StatusCreated
	for _, res := range results {
		if res.State == service.UploadStateError {
			status = http.StatusMultiStatus
			break
		}
	}

	respondJSON(w, status, map[string]any{"results": results})
}

func (h *UploadHandler) uploadOne(r *http.Request, callerID string, folderID *string, part *multipart.FileHeader) uploadItemResult {
	result := uploadItemResult{Name: part.Filename, State: service.UploadStateUploading}

	err := validation.ValidateUpload(part)
	if err != nil {
		result.State = service.UploadStateError
		result.Error = err.Error()
		return result
	}

	body, err := part.Open()
	if err != nil {
		result.State = service.UploadStateError
		result.Error = err.Error()
		return result
	}
	defer body.Close()

	mimeType, err := validation.DetectMimeType(body, part)
	if err != nil {
		mimeType = "application/octet-stream"
	}

	file, err := h.uploads.Upload(r.Context(), callerID, service.UploadRequest{
		Name:     part.Filename,
		FolderID: folderID,
		MimeType: mimeType,
		Size:     part.Size,
		Body:     body,
	})
	if err != nil {
		result.State = service.UploadStateError
		result.Error = err.Error()
		return result
	}

	result.State = service.UploadStateComplete
	result.File = file
	return result
}
