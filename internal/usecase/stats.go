package usecase

import (
	"context"
	"time"

	"github.com/xavierca1/frontdesk/internal/entity"
)

type DayCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type WeekdayCount struct {
	Weekday string `json:"weekday"`
	Count   int    `json:"count"`
}

type Stats struct {
	Chiropractor       string         `json:"chiropractor"`
	TotalLeads         int            `json:"totalLeads"`
	LeadsByStatus      map[string]int `json:"leadsByStatus"`
	TotalBookings      int            `json:"totalBookings"`
	BookingsByStatus   map[string]int `json:"bookingsByStatus"`
	ConversionRate     float64        `json:"conversionRate"`
	LeadsPerDay        []DayCount     `json:"leadsPerDay"`
	BookingsPerWeekday []WeekdayCount `json:"bookingsPerWeekday"`
}

type StatsUseCase struct {
	Leads    entity.LeadRepositoryInterface
	Bookings entity.BookingRepositoryInterface
	Location *time.Location
	Now      func() time.Time
}

func NewStatsUseCase(leads entity.LeadRepositoryInterface, bookings entity.BookingRepositoryInterface, loc *time.Location) *StatsUseCase {
	if loc == nil {
		loc = time.UTC
	}
	return &StatsUseCase{Leads: leads, Bookings: bookings, Location: loc, Now: time.Now}
}

// Compute summarises one partition. days bounds the leads-per-day series.
func (uc *StatsUseCase) Compute(ctx context.Context, actor Actor, chiropractor string, days int) (*Stats, error) {
	if days <= 0 || days > 365 {
		days = 30
	}
	scope := actor.Scope(chiropractor)

	leads, err := uc.Leads.List(ctx, entity.LeadFilter{Chiropractor: scope})
	if err != nil {
		return nil, databaseError("failed to list leads", err)
	}
	bookings, err := uc.Bookings.List(ctx, entity.BookingFilter{Chiropractor: scope})
	if err != nil {
		return nil, databaseError("failed to list bookings", err)
	}

	return summarise(scope, leads, bookings, uc.Now().In(uc.Location), days), nil
}

func summarise(chiropractor string, leads []*entity.Lead, bookings []*entity.Booking, now time.Time, days int) *Stats {
	s := &Stats{
		Chiropractor:     chiropractor,
		TotalLeads:       len(leads),
		TotalBookings:    len(bookings),
		LeadsByStatus:    make(map[string]int),
		BookingsByStatus: make(map[string]int),
	}
	for _, st := range entity.AllLeadStatuses() {
		s.LeadsByStatus[string(st)] = 0
	}
	s.BookingsByStatus[string(entity.BookingScheduled)] = 0
	s.BookingsByStatus[string(entity.BookingCompleted)] = 0

	perDay := make(map[string]int, days)
	loc := now.Location()
	for _, l := range leads {
		s.LeadsByStatus[string(l.Status)]++
		perDay[l.CreatedAt.In(loc).Format(entity.DateLayout)]++
	}

	booked := make(map[string]bool)
	weekday := make([]int, 7)
	for _, b := range bookings {
		s.BookingsByStatus[string(b.Status)]++
		if b.LeadID != "" {
			booked[b.LeadID] = true
		}
		if t, err := parseDate(b.Date); err == nil {
			weekday[(int(t.Weekday())+6)%7]++
		}
	}

	converted := 0
	for _, l := range leads {
		if booked[l.ID] {
			converted++
		}
	}
	if len(leads) > 0 {
		s.ConversionRate = float64(converted) / float64(len(leads))
	}

	start := now.AddDate(0, 0, -(days - 1))
	for i := 0; i < days; i++ {
		d := start.AddDate(0, 0, i).Format(entity.DateLayout)
		s.LeadsPerDay = append(s.LeadsPerDay, DayCount{Date: d, Count: perDay[d]})
	}

	monday := WeekStart(now)
	for i := 0; i < 7; i++ {
		s.BookingsPerWeekday = append(s.BookingsPerWeekday, WeekdayCount{
			Weekday: weekdayNames[monday.AddDate(0, 0, i).Weekday()],
			Count:   weekday[i],
		})
	}
	return s
}
