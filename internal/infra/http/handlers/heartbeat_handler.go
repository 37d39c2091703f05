package handlers

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/xavierca1/frontdesk/internal/logger"
)

type Heartbeater interface {
	Heartbeat(ctx context.Context) (time.Time, error)
}

// HeartbeatHandler is pinged by an external cron so the hosted database
// never goes idle.
type HeartbeatHandler struct {
	DB Heartbeater
}

func NewHeartbeatHandler(db Heartbeater) *HeartbeatHandler {
	return &HeartbeatHandler{DB: db}
}

func (h *HeartbeatHandler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	dbTime, err := h.DB.Heartbeat(ctx)
	if err != nil {
		logger.FromContext(r.Context()).Error("heartbeat failed", zap.Error(err))
		writeErrorCode(w, http.StatusServiceUnavailable, "database_unavailable", "database did not answer")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"databaseAt": dbTime.UTC(),
	})
}
