package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/frontdesk/internal/entity"
	"github.com/xavierca1/frontdesk/internal/mocks"
	"github.com/xavierca1/frontdesk/internal/usecase"
)

func TestStatsCompute(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, warsaw)
	leads := new(mocks.LeadRepository)
	bookings := new(mocks.BookingRepository)

	leads.On("List", mock.Anything, entity.LeadFilter{Chiropractor: "anna"}).Return([]*entity.Lead{
		{ID: "l1", Status: entity.LeadStatusBooked, CreatedAt: now.Add(-time.Hour)},
		{ID: "l2", Status: entity.LeadStatusNew, CreatedAt: now.AddDate(0, 0, -1)},
		{ID: "l3", Status: entity.LeadStatusNoAnswer, CreatedAt: now.AddDate(0, 0, -1)},
		{ID: "l4", Status: entity.LeadStatusNew, CreatedAt: now.AddDate(0, 0, -40)},
	}, nil)
	bookings.On("List", mock.Anything, entity.BookingFilter{Chiropractor: "anna"}).Return([]*entity.Booking{
		{ID: "b1", LeadID: "l1", Date: "2026-10-19", Status: entity.BookingScheduled},
		{ID: "b2", LeadID: "l1", Date: "2026-10-14", Status: entity.BookingCompleted},
		{ID: "b3", Date: "2026-10-18", Status: entity.BookingCompleted},
	}, nil)

	uc := usecase.NewStatsUseCase(leads, bookings, warsaw)
	uc.Now = func() time.Time { return now }

	s, err := uc.Compute(context.Background(), staff, "", 7)
	require.NoError(t, err)

	assert.Equal(t, 4, s.TotalLeads)
	assert.Equal(t, 2, s.LeadsByStatus[string(entity.LeadStatusNew)])
	assert.Equal(t, 0, s.LeadsByStatus[string(entity.LeadStatusSelfContact)])
	assert.Equal(t, 3, s.TotalBookings)
	assert.Equal(t, 2, s.BookingsByStatus[string(entity.BookingCompleted)])
	assert.InDelta(t, 0.25, s.ConversionRate, 1e-9)

	require.Len(t, s.LeadsPerDay, 7)
	assert.Equal(t, "2026-10-19", s.LeadsPerDay[6].Date)
	assert.Equal(t, 1, s.LeadsPerDay[6].Count)
	assert.Equal(t, 2, s.LeadsPerDay[5].Count)

	require.Len(t, s.BookingsPerWeekday, 7)
	assert.Equal(t, "Poniedziałek", s.BookingsPerWeekday[0].Weekday)
	assert.Equal(t, 1, s.BookingsPerWeekday[0].Count)
	assert.Equal(t, 1, s.BookingsPerWeekday[2].Count)
	assert.Equal(t, 1, s.BookingsPerWeekday[6].Count)
}

func TestStatsEmptyPartition(t *testing.T) {
	leads := new(mocks.LeadRepository)
	bookings := new(mocks.BookingRepository)
	leads.On("List", mock.Anything, mock.Anything).Return([]*entity.Lead{}, nil)
	bookings.On("List", mock.Anything, mock.Anything).Return([]*entity.Booking{}, nil)

	s, err := usecase.NewStatsUseCase(leads, bookings, nil).Compute(context.Background(), staff, "", 0)

	require.NoError(t, err)
	assert.Zero(t, s.ConversionRate)
	assert.Len(t, s.LeadsPerDay, 30)
}
