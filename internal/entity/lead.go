package entity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

type LeadStatus string

const (
	LeadStatusNew         LeadStatus = "Nowy kontakt"
	LeadStatusBooked      LeadStatus = "Umówiony"
	LeadStatusNoAnswer    LeadStatus = "Nie odebrał"
	LeadStatusCallLater   LeadStatus = "Zadzwoń później"
	LeadStatusSelfContact LeadStatus = "Sam się skontaktuje"
)

const (
	LeadSourceForm    = "form"
	LeadSourceWebhook = "webhook"
)

// AllLeadStatuses returns the statuses in board column order.
func AllLeadStatuses() []LeadStatus {
	return []LeadStatus{
		LeadStatusNew,
		LeadStatusBooked,
		LeadStatusNoAnswer,
		LeadStatusCallLater,
		LeadStatusSelfContact,
	}
}

func (s LeadStatus) Valid() bool {
	for _, known := range AllLeadStatuses() {
		if s == known {
			return true
		}
	}
	return false
}

// Lead is a prospective patient contact.
type Lead struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Phone        string     `json:"phone"`
	Email        string     `json:"email,omitempty"`
	Description  string     `json:"description"`
	Notes        string     `json:"notes"`
	Status       LeadStatus `json:"status"`
	Chiropractor string     `json:"chiropractor"`
	Source       string     `json:"source"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

func NewLead(name, phone, email, description, chiropractor, source string) (*Lead, error) {
	if source == "" {
		source = LeadSourceForm
	}
	now := time.Now()
	lead := &Lead{
		ID:           uuid.New().String(),
		Name:         strings.TrimSpace(name),
		Phone:        strings.TrimSpace(phone),
		Email:        strings.TrimSpace(email),
		Description:  description,
		Status:       LeadStatusNew,
		Chiropractor: strings.TrimSpace(chiropractor),
		Source:       source,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := lead.Validate(); err != nil {
		return nil, err
	}
	return lead, nil
}

func (l *Lead) Validate() error {
	if l.Name == "" {
		return errors.New("name is required")
	}
	if l.Phone == "" {
		return errors.New("phone is required")
	}
	if l.Chiropractor == "" {
		return errors.New("chiropractor is required")
	}
	if !l.Status.Valid() {
		return errors.New("status is invalid")
	}
	return nil
}

type LeadFilter struct {
	Chiropractor string
	Status       LeadStatus
	Since        *time.Time
}

type LeadRepositoryInterface interface {
	Create(ctx context.Context, lead *Lead) error
	FindByID(ctx context.Context, chiropractor, id string) (*Lead, error)
	List(ctx context.Context, filter LeadFilter) ([]*Lead, error)
	Update(ctx context.Context, lead *Lead) error
	UpdateStatus(ctx context.Context, chiropractor, id string, status LeadStatus) error
	Delete(ctx context.Context, chiropractor, id string) error
}
