package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/orbitdrive/orbitdrive/internal/repository"
	"github.com/orbitdrive/orbitdrive/internal/service"
)

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	err := json.NewEncoder(w).Encode(payload)
	if err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, repository.ErrFolderNotFound),
		errors.Is(err, repository.ErrFileNotFound),
		errors.Is(err, repository.ErrVersionNotFound),
		errors.Is(err, repository.ErrShareNotFound),
		errors.Is(err, repository.ErrQuotaNotFound),
		errors.Is(err, repository.ErrPermissionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrUnauthorized),
		errors.Is(err, service.ErrSharePassword):
		status = http.StatusForbidden
	case errors.Is(err, service.ErrQuotaExceeded):
		status = http.StatusRequestEntityTooLarge
	case errors.Is(err, service.ErrCyclicMove),
		errors.Is(err, service.ErrInvalidMoveTarget),
		errors.Is(err, service.ErrNotTrashed):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrShareInactive):
		status = http.StatusGone
	}

	if status == http.StatusInternalServerError {
		slog.Error("request failed", "error", err)
	}

	respondJSON(w, status, map[string]string{"error": err.Error()})
}

func respondValidation(w http.ResponseWriter, err error) {
	respondJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
}

func decodeBody(r *http.Request, dst any) error {
	return json.NewDecoder(r.Body).Decode(dst)
}

// optionalID reads a nullable id from a request field: empty means nil.
func optionalID(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
