package handlers

import (
	"context"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/xavierca1/frontdesk/internal/entity"
	"github.com/xavierca1/frontdesk/internal/logger"
	"github.com/xavierca1/frontdesk/internal/usecase"
)

type OAuthFlow interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, chiropractor, code string) (*entity.CalendarToken, error)
}

type StateSigner interface {
	SignState(username, chiropractor string) (string, error)
	VerifyState(state string) (username, chiropractor string, err error)
}

// GoogleHandler runs the Google Calendar consent flow. The OAuth state is a
// signed token naming the staff member, so the public callback needs no session.
type GoogleHandler struct {
	Sync      *usecase.CalendarSyncUseCase
	OAuth     OAuthFlow
	States    StateSigner
	ReturnURL string
}

func NewGoogleHandler(sync *usecase.CalendarSyncUseCase, oauth OAuthFlow, states StateSigner, returnURL string) *GoogleHandler {
	return &GoogleHandler{Sync: sync, OAuth: oauth, States: states, ReturnURL: returnURL}
}

// Connect (GET /api/google/connect) returns the consent URL for the caller's partition.
func (h *GoogleHandler) Connect(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	if h.OAuth == nil {
		writeErrorCode(w, http.StatusServiceUnavailable, "google_disabled", "google calendar integration is not configured")
		return
	}

	state, err := h.States.SignState(actor.Username, actor.Scope(r.URL.Query().Get("chiropractor")))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": h.OAuth.AuthCodeURL(state)})
}

// Callback (GET /api/google/callback?code=&state=)
func (h *GoogleHandler) Callback(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	if h.OAuth == nil {
		writeErrorCode(w, http.StatusServiceUnavailable, "google_disabled", "google calendar integration is not configured")
		return
	}

	q := r.URL.Query()
	if reason := q.Get("error"); reason != "" {
		log.Warn("google consent denied", zap.String("reason", reason))
		h.finish(w, r, "denied", http.StatusBadRequest, "consent was not granted")
		return
	}

	username, chiropractor, err := h.States.VerifyState(q.Get("state"))
	if err != nil {
		log.Warn("invalid oauth state", zap.Error(err))
		h.finish(w, r, "invalid_state", http.StatusBadRequest, "invalid or expired state")
		return
	}
	code := q.Get("code")
	if code == "" {
		h.finish(w, r, "missing_code", http.StatusBadRequest, "code is required")
		return
	}

	token, err := h.OAuth.Exchange(r.Context(), chiropractor, code)
	if err != nil {
		log.Error("google code exchange failed", zap.String("chiropractor", chiropractor), zap.Error(err))
		h.finish(w, r, "exchange_failed", http.StatusBadGateway, "could not exchange authorization code")
		return
	}

	actor := usecase.Actor{Username: username, Chiropractor: chiropractor, Role: entity.RoleStaff}
	if err := h.Sync.Connect(r.Context(), actor, token); err != nil {
		writeError(w, r, err)
		return
	}
	log.Info("google calendar connected", zap.String("chiropractor", chiropractor))
	h.finish(w, r, "connected", http.StatusOK, "google calendar connected")
}

// finish redirects the browser back to the app when a return URL is set,
// and answers with JSON otherwise.
func (h *GoogleHandler) finish(w http.ResponseWriter, r *http.Request, result string, status int, message string) {
	if h.ReturnURL != "" {
		u, err := url.Parse(h.ReturnURL)
		if err == nil {
			q := u.Query()
			q.Set("google", result)
			u.RawQuery = q.Encode()
			http.Redirect(w, r, u.String(), http.StatusFound)
			return
		}
	}
	if status >= 400 {
		writeErrorCode(w, status, result, message)
		return
	}
	writeJSON(w, status, map[string]string{"status": result})
}

func (h *GoogleHandler) Status(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	connected, err := h.Sync.Connected(r.Context(), actor, r.URL.Query().Get("chiropractor"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"enabled": h.OAuth != nil, "connected": connected})
}

func (h *GoogleHandler) Disconnect(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	if err := h.Sync.Disconnect(r.Context(), actor, r.URL.Query().Get("chiropractor")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
