package handler

import (
	"net/http"
)

// GetStats retrieves mapping usage statistics
// @Summary Get usage stats
// @Description Snapshot of mapping call counters, cache hits, per-field mapping counts and today's token spend
// @Tags stats
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{} "Usage statistics"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /stats [get]
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	counters, err := h.Store.StatsSnapshot()
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := map[string]interface{}{
		"counters": counters,
	}
	if h.Budget != nil {
		resp["tokens_used_today"] = h.Budget.Used()
	}

	writeJSON(w, http.StatusOK, resp)
}
