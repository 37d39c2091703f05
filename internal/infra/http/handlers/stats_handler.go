package handlers

import (
	"net/http"
	"strconv"

	"github.com/xavierca1/frontdesk/internal/usecase"
)

type StatsHandler struct {
	Stats *usecase.StatsUseCase
}

func NewStatsHandler(stats *usecase.StatsUseCase) *StatsHandler {
	return &StatsHandler{Stats: stats}
}

func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	days, ok := queryInt(w, q.Get("days"), "days")
	if !ok {
		return
	}

	stats, err := h.Stats.Compute(r.Context(), actor, q.Get("chiropractor"), days)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// queryInt parses an optional non-negative integer parameter; empty means 0.
func queryInt(w http.ResponseWriter, raw, name string) (int, bool) {
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		writeErrorCode(w, http.StatusBadRequest, "validation_error", name+" must be a non-negative integer")
		return 0, false
	}
	return n, true
}
