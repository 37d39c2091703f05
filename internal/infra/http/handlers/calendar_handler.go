package handlers

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/xavierca1/frontdesk/internal/infra/ical"
	"github.com/xavierca1/frontdesk/internal/usecase"
)

// FeedSigner issues and checks the tokens carried by calendar subscription URLs.
type FeedSigner interface {
	SignFeed(chiropractor string) (string, error)
	VerifyFeed(token string) (chiropractor string, err error)
}

type CalendarHandler struct {
	Calendar *usecase.CalendarUseCase
	Feeds    FeedSigner
	BaseURL  string
}

func NewCalendarHandler(calendar *usecase.CalendarUseCase, feeds FeedSigner, baseURL string) *CalendarHandler {
	return &CalendarHandler{Calendar: calendar, Feeds: feeds, BaseURL: strings.TrimSuffix(baseURL, "/")}
}

// Week (GET /api/calendar/week?date=) returns the Monday-based grid holding date.
func (h *CalendarHandler) Week(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	week, err := h.Calendar.Week(r.Context(), actor, q.Get("chiropractor"), q.Get("date"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, week)
}

func (h *CalendarHandler) Day(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	day, err := h.Calendar.Day(r.Context(), actor, q.Get("chiropractor"), q.Get("date"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, day)
}

// FeedURL (GET /api/calendar/feed-url) returns the subscription URL for the
// caller's partition.
func (h *CalendarHandler) FeedURL(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	if h.Feeds == nil {
		writeErrorCode(w, http.StatusServiceUnavailable, "feed_disabled", "calendar feed is not configured")
		return
	}
	token, err := h.Feeds.SignFeed(actor.Scope(r.URL.Query().Get("chiropractor")))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"url": h.BaseURL + "/api/calendar/feed.ics?token=" + url.QueryEscape(token),
	})
}

// Feed (GET /api/calendar/feed.ics?token=) serves the iCalendar feed. It is
// authenticated by the signed token alone so calendar apps can subscribe.
func (h *CalendarHandler) Feed(w http.ResponseWriter, r *http.Request) {
	if h.Feeds == nil {
		writeErrorCode(w, http.StatusServiceUnavailable, "feed_disabled", "calendar feed is not configured")
		return
	}
	chiropractor, err := h.Feeds.VerifyFeed(r.URL.Query().Get("token"))
	if err != nil {
		writeErrorCode(w, http.StatusUnauthorized, "invalid_feed_token", "feed link is invalid or expired")
		return
	}

	bookings, err := h.Calendar.Upcoming(r.Context(), usecase.SystemActor("calendar-feed", chiropractor), "")
	if err != nil {
		writeError(w, r, err)
		return
	}

	data, err := ical.Feed(chiropractor, bookings, h.Calendar.Location, h.Calendar.Now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `inline; filename="bookings.ics"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
