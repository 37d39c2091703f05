package entity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingScheduled BookingStatus = "scheduled"
	BookingCompleted BookingStatus = "completed"
)

func (s BookingStatus) Valid() bool {
	return s == BookingScheduled || s == BookingCompleted
}

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

// Booking is an appointment slot, optionally linked to a Lead.
type Booking struct {
	ID            string        `json:"id"`
	LeadID        string        `json:"leadId,omitempty"`
	Date          string        `json:"date"`
	TimeFrom      string        `json:"timeFrom"`
	TimeTo        string        `json:"timeTo"`
	Name          string        `json:"name"`
	Description   string        `json:"description"`
	Status        BookingStatus `json:"status"`
	Chiropractor  string        `json:"chiropractor"`
	GoogleEventID string        `json:"googleEventId,omitempty"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

func NewBooking(leadID, date, timeFrom, timeTo, name, description, chiropractor string) (*Booking, error) {
	now := time.Now()
	b := &Booking{
		ID:           uuid.New().String(),
		LeadID:       strings.TrimSpace(leadID),
		Date:         strings.TrimSpace(date),
		TimeFrom:     NormalizeClock(timeFrom),
		TimeTo:       NormalizeClock(timeTo),
		Name:         strings.TrimSpace(name),
		Description:  description,
		Status:       BookingScheduled,
		Chiropractor: strings.TrimSpace(chiropractor),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Booking) Validate() error {
	if b.Name == "" {
		return errors.New("name is required")
	}
	if b.Chiropractor == "" {
		return errors.New("chiropractor is required")
	}
	if _, err := time.Parse(DateLayout, b.Date); err != nil {
		return errors.New("date must be YYYY-MM-DD")
	}
	from, err := ParseClock(b.TimeFrom)
	if err != nil {
		return fmt.Errorf("timeFrom: %w", err)
	}
	to, err := ParseClock(b.TimeTo)
	if err != nil {
		return fmt.Errorf("timeTo: %w", err)
	}
	if from >= to {
		return errors.New("timeFrom must be before timeTo")
	}
	if !b.Status.Valid() {
		return errors.New("status is invalid")
	}
	return nil
}

// ParseClock converts "HH:MM" into minutes since midnight.
func ParseClock(s string) (int, error) {
	t, err := time.Parse(ClockLayout, strings.TrimSpace(s))
	if err != nil {
		return 0, errors.New("time must be HH:MM")
	}
	return t.Hour()*60 + t.Minute(), nil
}

// NormalizeClock rewrites a parseable time as zero-padded HH:MM, so "9:00"
// becomes "09:00". Anything else is returned trimmed for Validate to reject.
func NormalizeClock(s string) string {
	minutes, err := ParseClock(s)
	if err != nil {
		return strings.TrimSpace(s)
	}
	return FormatClock(minutes)
}

// FormatClock is the inverse of ParseClock.
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// Range returns the booking's [from, to) interval in minutes since midnight.
// ok is false when either bound does not parse.
func (b *Booking) Range() (from, to int, ok bool) {
	from, err := ParseClock(b.TimeFrom)
	if err != nil {
		return 0, 0, false
	}
	to, err = ParseClock(b.TimeTo)
	if err != nil {
		return 0, 0, false
	}
	return from, to, true
}

// Overlaps reports whether two bookings on the same date share any minute.
func (b *Booking) Overlaps(other *Booking) bool {
	if b.Date != other.Date {
		return false
	}
	aFrom, aTo, ok := b.Range()
	if !ok {
		return false
	}
	bFrom, bTo, ok := other.Range()
	if !ok {
		return false
	}
	return aFrom < bTo && bFrom < aTo
}

// ShouldAutoComplete reports whether a scheduled booking is over: its date is
// before today, or it is today and the current hour is past the start hour.
// now must already be in the clinic's time zone.
func (b *Booking) ShouldAutoComplete(now time.Time) bool {
	if b.Status != BookingScheduled {
		return false
	}
	today := now.Format(DateLayout)
	if b.Date < today {
		return true
	}
	if b.Date > today {
		return false
	}
	from, err := ParseClock(b.TimeFrom)
	if err != nil {
		return false
	}
	return now.Hour() > from/60
}

// StartTime resolves the booking start in loc.
func (b *Booking) StartTime(loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout+" "+ClockLayout, b.Date+" "+b.TimeFrom, loc)
}

// EndTime resolves the booking end in loc.
func (b *Booking) EndTime(loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout+" "+ClockLayout, b.Date+" "+b.TimeTo, loc)
}

type BookingFilter struct {
	Chiropractor string
	From         string
	To           string
	LeadID       string
	Since        *time.Time
}

type BookingRepositoryInterface interface {
	Create(ctx context.Context, b *Booking) error
	FindByID(ctx context.Context, chiropractor, id string) (*Booking, error)
	List(ctx context.Context, filter BookingFilter) ([]*Booking, error)
	Update(ctx context.Context, b *Booking) error
	SetGoogleEventID(ctx context.Context, id, eventID string) error
	Delete(ctx context.Context, chiropractor, id string) error
	ListScheduledUntil(ctx context.Context, date string) ([]*Booking, error)
	MarkCompleted(ctx context.Context, ids []string) (int64, error)
}
