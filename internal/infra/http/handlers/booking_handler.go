package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/xavierca1/frontdesk/internal/usecase"
)

type BookingHandler struct {
	Bookings *usecase.BookingUseCase
}

func NewBookingHandler(bookings *usecase.BookingUseCase) *BookingHandler {
	return &BookingHandler{Bookings: bookings}
}

// List (GET /api/bookings?from=&to=&since=&leadId=&chiropractor=)
func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	since, err := parseSince(q.Get("since"))
	if err != nil {
		writeErrorCode(w, http.StatusBadRequest, "validation_error", "since must be RFC3339 or YYYY-MM-DD")
		return
	}

	bookings, err := h.Bookings.List(r.Context(), actor, usecase.ListBookingsInput{
		Chiropractor: q.Get("chiropractor"),
		From:         q.Get("from"),
		To:           q.Get("to"),
		LeadID:       q.Get("leadId"),
		Since:        since,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bookings)
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	var input usecase.CreateBookingInput
	if !decodeJSON(w, r, &input) {
		return
	}

	booking, err := h.Bookings.Create(r.Context(), actor, input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, booking)
}

func (h *BookingHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	var input usecase.UpdateBookingInput
	if !decodeJSON(w, r, &input) {
		return
	}

	booking, err := h.Bookings.Update(r.Context(), actor, r.URL.Query().Get("chiropractor"), chi.URLParam(r, "id"), input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (h *BookingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	if err := h.Bookings.Delete(r.Context(), actor, r.URL.Query().Get("chiropractor"), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// BookLead (POST /api/leads/{id}/book)
func (h *BookingHandler) BookLead(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	var input usecase.BookLeadInput
	if !decodeJSON(w, r, &input) {
		return
	}

	out, err := h.Bookings.BookLead(r.Context(), actor, r.URL.Query().Get("chiropractor"), chi.URLParam(r, "id"), input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}
