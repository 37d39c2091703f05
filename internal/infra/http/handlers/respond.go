package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/xavierca1/frontdesk/internal/infra/http/middleware"
	"github.com/xavierca1/frontdesk/internal/logger"
	"github.com/xavierca1/frontdesk/internal/usecase"
)

const maxBodyBytes = 1 << 20

// ErrorResponse is the body of every 4xx/5xx answer.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeErrorCode(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: code, Message: message})
}

// writeError maps use case errors onto HTTP statuses. Technical errors are
// logged and hidden behind a generic message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var de *usecase.DomainError
	if errors.As(err, &de) {
		writeErrorCode(w, domainStatus(de.Code), strings.ToLower(de.Code), de.Message)
		return
	}

	log := logger.FromContext(r.Context())
	var te *usecase.TechnicalError
	if errors.As(err, &te) {
		log.Error(te.Message, zap.String("code", te.Code), zap.Error(te.Err))
		status := http.StatusInternalServerError
		if te.Code == usecase.CodeIntegration {
			status = http.StatusBadGateway
		}
		writeErrorCode(w, status, strings.ToLower(te.Code), te.Message)
		return
	}

	log.Error("unhandled error", zap.Error(err))
	writeErrorCode(w, http.StatusInternalServerError, "internal_error", "internal server error")
}

func domainStatus(code string) int {
	switch code {
	case usecase.CodeValidation:
		return http.StatusBadRequest
	case usecase.CodeNotFound:
		return http.StatusNotFound
	case usecase.CodeSlotTaken, usecase.CodeConflict:
		return http.StatusConflict
	case usecase.CodeUnauthorized:
		return http.StatusUnauthorized
	case usecase.CodeForbidden:
		return http.StatusForbidden
	default:
		return http.StatusBadRequest
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			writeErrorCode(w, http.StatusBadRequest, "invalid_json", "request body is empty")
			return false
		}
		writeErrorCode(w, http.StatusBadRequest, "invalid_json", "invalid JSON body")
		return false
	}
	return true
}

// actorFrom returns the session actor. Routes behind RequireSession always
// have one; anything else is answered with 401.
func actorFrom(w http.ResponseWriter, r *http.Request) (usecase.Actor, bool) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		writeErrorCode(w, http.StatusUnauthorized, "unauthorized", "missing session")
	}
	return actor, ok
}

// parseSince accepts RFC3339 timestamps or plain dates.
func parseSince(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
