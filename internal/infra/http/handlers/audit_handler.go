package handlers

import (
	"net/http"

	"github.com/xavierca1/frontdesk/internal/usecase"
)

type AuditHandler struct {
	Audit *usecase.AuditTrail
}

func NewAuditHandler(audit *usecase.AuditTrail) *AuditHandler {
	return &AuditHandler{Audit: audit}
}

// List (GET /api/audit-logs?limit=&offset=)
func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	limit, ok := queryInt(w, q.Get("limit"), "limit")
	if !ok {
		return
	}
	offset, ok := queryInt(w, q.Get("offset"), "offset")
	if !ok {
		return
	}

	page, err := h.Audit.List(r.Context(), actor, q.Get("chiropractor"), limit, offset)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}
