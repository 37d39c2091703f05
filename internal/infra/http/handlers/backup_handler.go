package handlers

import (
	"net/http"

	"github.com/xavierca1/frontdesk/internal/usecase"
)

type BackupHandler struct {
	Backup *usecase.BackupUseCase
}

func NewBackupHandler(backup *usecase.BackupUseCase) *BackupHandler {
	return &BackupHandler{Backup: backup}
}

// Export (GET /api/backup?format=json|csv). Staff export their own partition;
// admins export everything unless they name a chiropractor.
func (h *BackupHandler) Export(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()

	scope := actor.Chiropractor
	if actor.IsAdmin() {
		scope = q.Get("chiropractor")
	}
	format := q.Get("format")
	if format == "" {
		format = usecase.BackupJSON
	}

	file, err := h.Backup.Export(r.Context(), scope, format)
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+file.Filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(file.Data)
}
