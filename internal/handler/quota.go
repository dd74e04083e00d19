package handler

import (
	"net/http"

	"github.com/orbitdrive/orbitdrive/internal/ctxkeys"
	"github.com/orbitdrive/orbitdrive/internal/service"
)

type QuotaHandler struct {
	quota *service.QuotaService
}

func NewQuotaHandler(quota *service.QuotaService) *QuotaHandler {
	return &QuotaHandler{quota: quota}
}

func (h *QuotaHandler) Usage(w http.ResponseWriter, r *http.Request) {
	callerID := ctxkeys.UserID(r.Context())

	quota, err := h.quota.Usage(callerID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"quota":        quota,
		"percent_used": quota.PercentUsed(),
		"remaining":    quota.RemainingBytes(),
	})
}

// Recalculate rebuilds the caller's usage counters from the files table.
func (h *QuotaHandler) Recalculate(w http.ResponseWriter, r *http.Request) {
	callerID := ctxkeys.UserID(r.Context())

	quota, err := h.quota.Recalculate(callerID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, quota)
}
