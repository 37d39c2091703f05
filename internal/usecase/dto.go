package usecase

import (
	"time"

	"github.com/xavierca1/frontdesk/internal/entity"
)

// Actor is the authenticated caller of a use case.
type Actor struct {
	Username     string
	Chiropractor string
	Role         entity.Role
}

// SystemActor is used for writes that no staff member initiated.
func SystemActor(name, chiropractor string) Actor {
	return Actor{Username: name, Chiropractor: chiropractor, Role: entity.RoleStaff}
}

func (a Actor) IsAdmin() bool {
	return a.Role == entity.RoleAdmin
}

// Scope picks the partition a request works in. Admins may ask for another
// chiropractor; everyone else is pinned to their own.
func (a Actor) Scope(requested string) string {
	if requested != "" && a.IsAdmin() {
		return requested
	}
	return a.Chiropractor
}

type CreateLeadInput struct {
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Email        string `json:"email"`
	Description  string `json:"description"`
	Notes        string `json:"notes"`
	Chiropractor string `json:"chiropractor"`
	Source       string `json:"-"`
}

type UpdateLeadInput struct {
	Name        *string `json:"name"`
	Phone       *string `json:"phone"`
	Email       *string `json:"email"`
	Description *string `json:"description"`
	Notes       *string `json:"notes"`
}

type UpdateLeadStatusInput struct {
	Status entity.LeadStatus `json:"status"`
}

type ListLeadsInput struct {
	Chiropractor string
	Status       entity.LeadStatus
	Since        *time.Time
}

type CreateBookingInput struct {
	LeadID       string `json:"leadId"`
	Date         string `json:"date"`
	TimeFrom     string `json:"timeFrom"`
	TimeTo       string `json:"timeTo"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	Chiropractor string `json:"chiropractor"`
}

type UpdateBookingInput struct {
	Date        *string               `json:"date"`
	TimeFrom    *string               `json:"timeFrom"`
	TimeTo      *string               `json:"timeTo"`
	Name        *string               `json:"name"`
	Description *string               `json:"description"`
	Status      *entity.BookingStatus `json:"status"`
}

type BookLeadInput struct {
	Date        string `json:"date"`
	TimeFrom    string `json:"timeFrom"`
	TimeTo      string `json:"timeTo"`
	Description string `json:"description"`
}

type ListBookingsInput struct {
	Chiropractor string
	From         string
	To           string
	LeadID       string
	Since        *time.Time
}

type BookLeadOutput struct {
	Lead    *entity.Lead    `json:"lead"`
	Booking *entity.Booking `json:"booking"`
}

type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginOutput struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *entity.User `json:"user"`
}

type AuditLogPage struct {
	Items  []*entity.AuditLog `json:"items"`
	Total  int                `json:"total"`
	Limit  int                `json:"limit"`
	Offset int                `json:"offset"`
}
