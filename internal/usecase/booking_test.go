package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/frontdesk/internal/entity"
	"github.com/xavierca1/frontdesk/internal/infra/queue"
	"github.com/xavierca1/frontdesk/internal/mocks"
	"github.com/xavierca1/frontdesk/internal/usecase"
)

var warsaw = time.FixedZone("CEST", 2*60*60)

type bookingFixture struct {
	bookings *mocks.BookingRepository
	leads    *mocks.LeadRepository
	sync     *mocks.SyncPublisher
	audit    *mocks.AuditLogRepository
	uc       *usecase.BookingUseCase
}

func newBookingFixture(now time.Time) *bookingFixture {
	f := &bookingFixture{
		bookings: new(mocks.BookingRepository),
		leads:    new(mocks.LeadRepository),
		sync:     new(mocks.SyncPublisher),
	}
	var audit *usecase.AuditTrail
	audit, f.audit = newAudit()
	f.uc = usecase.NewBookingUseCase(f.bookings, f.leads, f.sync, audit, nil, warsaw)
	f.uc.Now = func() time.Time { return now }
	return f
}

func sameDay(date string) entity.BookingFilter {
	return entity.BookingFilter{Chiropractor: "anna", From: date, To: date}
}

func TestCreateBookingSuccess(t *testing.T) {
	f := newBookingFixture(time.Date(2026, 10, 19, 9, 0, 0, 0, warsaw))
	f.bookings.On("List", mock.Anything, sameDay("2026-10-20")).Return([]*entity.Booking{
		{ID: "b0", Date: "2026-10-20", TimeFrom: "10:00", TimeTo: "10:30", Chiropractor: "anna"},
	}, nil)
	f.bookings.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.sync.On("PublishCalendarSync", mock.Anything, mock.MatchedBy(func(j queue.CalendarSyncJob) bool {
		return j.Action == queue.SyncUpsert && j.Chiropractor == "anna"
	})).Return(nil)

	b, err := f.uc.Create(context.Background(), staff, usecase.CreateBookingInput{
		Date: "2026-10-20", TimeFrom: "10:30", TimeTo: "11:00", Name: "Ewa",
	})

	require.NoError(t, err)
	assert.Equal(t, entity.BookingScheduled, b.Status)
	f.bookings.AssertExpectations(t)
	f.sync.AssertExpectations(t)
}

func TestCreateBookingRejectsOverlap(t *testing.T) {
	f := newBookingFixture(time.Date(2026, 10, 19, 9, 0, 0, 0, warsaw))
	f.bookings.On("List", mock.Anything, sameDay("2026-10-20")).Return([]*entity.Booking{
		{ID: "b0", Name: "Jan", Date: "2026-10-20", TimeFrom: "10:00", TimeTo: "11:00", Chiropractor: "anna"},
	}, nil)

	_, err := f.uc.Create(context.Background(), staff, usecase.CreateBookingInput{
		Date: "2026-10-20", TimeFrom: "10:30", TimeTo: "11:30", Name: "Ewa",
	})

	var de *usecase.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, usecase.CodeSlotTaken, de.Code)
	f.bookings.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateBookingInPastIsCompleted(t *testing.T) {
	f := newBookingFixture(time.Date(2026, 10, 19, 9, 0, 0, 0, warsaw))
	f.bookings.On("List", mock.Anything, sameDay("2026-10-18")).Return([]*entity.Booking{}, nil)
	f.bookings.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.sync.On("PublishCalendarSync", mock.Anything, mock.Anything).Return(nil)

	b, err := f.uc.Create(context.Background(), staff, usecase.CreateBookingInput{
		Date: "2026-10-18", TimeFrom: "10:00", TimeTo: "10:30", Name: "Ewa",
	})

	require.NoError(t, err)
	assert.Equal(t, entity.BookingCompleted, b.Status)
}

func TestCreateBookingForLeadReconcilesStatus(t *testing.T) {
	f := newBookingFixture(time.Date(2026, 10, 19, 9, 0, 0, 0, warsaw))
	lead := &entity.Lead{ID: leadID, Name: "Ewa", Chiropractor: "anna", Status: entity.LeadStatusCallLater}

	f.leads.On("FindByID", mock.Anything, "anna", leadID).Return(lead, nil)
	f.bookings.On("List", mock.Anything, sameDay("2026-10-21")).Return([]*entity.Booking{}, nil)
	f.bookings.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.bookings.On("List", mock.Anything, entity.BookingFilter{Chiropractor: "anna", LeadID: leadID}).Return([]*entity.Booking{
		{ID: "new", LeadID: leadID, Status: entity.BookingScheduled},
	}, nil)
	f.leads.On("UpdateStatus", mock.Anything, "anna", leadID, entity.LeadStatusBooked).Return(nil)
	f.sync.On("PublishCalendarSync", mock.Anything, mock.Anything).Return(nil)

	_, err := f.uc.Create(context.Background(), staff, usecase.CreateBookingInput{
		LeadID: leadID, Date: "2026-10-21", TimeFrom: "12:00", TimeTo: "13:00", Name: "Ewa",
	})

	require.NoError(t, err)
	f.leads.AssertExpectations(t)
}

func TestBookLeadRollsBackBookingWhenLeadUpdateFails(t *testing.T) {
	f := newBookingFixture(time.Date(2026, 10, 19, 9, 0, 0, 0, warsaw))
	lead := &entity.Lead{ID: leadID, Name: "Ewa", Chiropractor: "anna", Status: entity.LeadStatusNew}

	f.leads.On("FindByID", mock.Anything, "anna", leadID).Return(lead, nil)
	f.bookings.On("List", mock.Anything, sameDay("2026-10-21")).Return([]*entity.Booking{}, nil)
	f.bookings.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.leads.On("UpdateStatus", mock.Anything, "anna", leadID, entity.LeadStatusBooked).Return(errors.New("timeout"))
	f.bookings.On("Delete", mock.Anything, "anna", mock.AnythingOfType("string")).Return(nil)

	_, err := f.uc.BookLead(context.Background(), staff, "", leadID, usecase.BookLeadInput{
		Date: "2026-10-21", TimeFrom: "12:00", TimeTo: "13:00",
	})

	require.Error(t, err)
	assert.True(t, usecase.IsTechnicalError(err))
	f.bookings.AssertCalled(t, "Delete", mock.Anything, "anna", mock.AnythingOfType("string"))
	f.sync.AssertNotCalled(t, "PublishCalendarSync", mock.Anything, mock.Anything)
}

func TestBookLeadSuccess(t *testing.T) {
	f := newBookingFixture(time.Date(2026, 10, 19, 9, 0, 0, 0, warsaw))
	lead := &entity.Lead{ID: leadID, Name: "Ewa", Description: "rwa kulszowa", Chiropractor: "anna", Status: entity.LeadStatusNew}

	f.leads.On("FindByID", mock.Anything, "anna", leadID).Return(lead, nil)
	f.bookings.On("List", mock.Anything, sameDay("2026-10-21")).Return([]*entity.Booking{}, nil)
	f.bookings.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.leads.On("UpdateStatus", mock.Anything, "anna", leadID, entity.LeadStatusBooked).Return(nil)
	f.sync.On("PublishCalendarSync", mock.Anything, mock.Anything).Return(nil)

	out, err := f.uc.BookLead(context.Background(), staff, "", leadID, usecase.BookLeadInput{
		Date: "2026-10-21", TimeFrom: "12:00", TimeTo: "13:00",
	})

	require.NoError(t, err)
	assert.Equal(t, entity.LeadStatusBooked, out.Lead.Status)
	assert.Equal(t, leadID, out.Booking.LeadID)
	assert.Equal(t, "Ewa", out.Booking.Name)
	assert.Equal(t, "rwa kulszowa", out.Booking.Description)
}

func TestDeleteBookingRevertsLeadAndRemovesMirror(t *testing.T) {
	f := newBookingFixture(time.Date(2026, 10, 19, 9, 0, 0, 0, warsaw))
	booking := &entity.Booking{ID: bookingID, LeadID: leadID, Chiropractor: "anna", Date: "2026-10-21", TimeFrom: "12:00", TimeTo: "13:00", Status: entity.BookingScheduled, GoogleEventID: "evt1"}
	lead := &entity.Lead{ID: leadID, Chiropractor: "anna", Status: entity.LeadStatusBooked}

	f.bookings.On("FindByID", mock.Anything, "anna", bookingID).Return(booking, nil)
	f.bookings.On("Delete", mock.Anything, "anna", bookingID).Return(nil)
	f.leads.On("FindByID", mock.Anything, "anna", leadID).Return(lead, nil)
	f.bookings.On("List", mock.Anything, entity.BookingFilter{Chiropractor: "anna", LeadID: leadID}).Return([]*entity.Booking{}, nil)
	f.leads.On("UpdateStatus", mock.Anything, "anna", leadID, entity.LeadStatusNew).Return(nil)
	f.sync.On("PublishCalendarSync", mock.Anything, queue.CalendarSyncJob{
		Action: queue.SyncDelete, BookingID: bookingID, Chiropractor: "anna", EventID: "evt1",
	}).Return(errors.New("broker down"))

	err := f.uc.Delete(context.Background(), staff, "", bookingID)

	require.NoError(t, err, "mirror failures never fail the delete")
	f.leads.AssertExpectations(t)
	f.sync.AssertExpectations(t)
}

func TestUpdateBookingChecksOverlapExcludingItself(t *testing.T) {
	f := newBookingFixture(time.Date(2026, 10, 19, 9, 0, 0, 0, warsaw))
	booking := &entity.Booking{ID: bookingID, Name: "Ewa", Chiropractor: "anna", Date: "2026-10-21", TimeFrom: "12:00", TimeTo: "13:00", Status: entity.BookingScheduled}

	f.bookings.On("FindByID", mock.Anything, "anna", bookingID).Return(booking, nil)
	f.bookings.On("List", mock.Anything, sameDay("2026-10-21")).Return([]*entity.Booking{
		{ID: bookingID, Date: "2026-10-21", TimeFrom: "12:00", TimeTo: "13:00"},
	}, nil)
	f.bookings.On("Update", mock.Anything, booking).Return(nil)
	f.sync.On("PublishCalendarSync", mock.Anything, mock.Anything).Return(nil)

	to := "13:30"
	b, err := f.uc.Update(context.Background(), staff, "", bookingID, usecase.UpdateBookingInput{TimeTo: &to})

	require.NoError(t, err)
	assert.Equal(t, "13:30", b.TimeTo)
}

func TestCompleteDue(t *testing.T) {
	now := time.Date(2026, 10, 19, 11, 10, 0, 0, warsaw)
	f := newBookingFixture(now)
	f.bookings.On("ListScheduledUntil", mock.Anything, "2026-10-19").Return([]*entity.Booking{
		{ID: "yesterday", Date: "2026-10-18", TimeFrom: "15:00", TimeTo: "16:00", Status: entity.BookingScheduled},
		{ID: "ten", Date: "2026-10-19", TimeFrom: "10:30", TimeTo: "11:00", Status: entity.BookingScheduled},
		{ID: "eleven", Date: "2026-10-19", TimeFrom: "11:00", TimeTo: "11:30", Status: entity.BookingScheduled},
	}, nil)
	f.bookings.On("MarkCompleted", mock.Anything, []string{"yesterday", "ten"}).Return(int64(2), nil)

	n, err := f.uc.CompleteDue(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, n)
	f.bookings.AssertExpectations(t)
}

func TestCompleteDueNothingToDo(t *testing.T) {
	f := newBookingFixture(time.Date(2026, 10, 19, 8, 0, 0, 0, warsaw))
	f.bookings.On("ListScheduledUntil", mock.Anything, "2026-10-19").Return([]*entity.Booking{}, nil)

	n, err := f.uc.CompleteDue(context.Background())

	require.NoError(t, err)
	assert.Zero(t, n)
	f.bookings.AssertNotCalled(t, "MarkCompleted", mock.Anything, mock.Anything)
}

func TestCompleteDuePublishesMirrorUpdates(t *testing.T) {
	now := time.Date(2026, 10, 19, 11, 10, 0, 0, warsaw)
	f := newBookingFixture(now)
	f.bookings.On("ListScheduledUntil", mock.Anything, "2026-10-19").Return([]*entity.Booking{
		{ID: "mirrored", Date: "2026-10-19", TimeFrom: "09:00", TimeTo: "09:30", Status: entity.BookingScheduled, Chiropractor: "anna", GoogleEventID: "evt"},
		{ID: "local", Date: "2026-10-19", TimeFrom: "09:30", TimeTo: "10:00", Status: entity.BookingScheduled, Chiropractor: "anna"},
	}, nil)
	f.bookings.On("MarkCompleted", mock.Anything, []string{"mirrored", "local"}).Return(int64(2), nil)
	f.sync.On("PublishCalendarSync", mock.Anything, queue.CalendarSyncJob{
		Action: queue.SyncUpsert, BookingID: "mirrored", Chiropractor: "anna", EventID: "evt",
	}).Return(nil).Once()

	n, err := f.uc.CompleteDue(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, n)
	f.sync.AssertExpectations(t)
	f.sync.AssertNumberOfCalls(t, "PublishCalendarSync", 1)
}

func TestUpdateBookingPadsSubmittedTimes(t *testing.T) {
	f := newBookingFixture(time.Date(2026, 10, 19, 7, 0, 0, 0, warsaw))
	booking := &entity.Booking{ID: bookingID, Name: "Ewa", Chiropractor: "anna", Date: "2026-10-21", TimeFrom: "08:00", TimeTo: "09:00", Status: entity.BookingScheduled}

	f.bookings.On("FindByID", mock.Anything, "anna", bookingID).Return(booking, nil)
	f.bookings.On("List", mock.Anything, sameDay("2026-10-21")).Return([]*entity.Booking{}, nil)
	f.bookings.On("Update", mock.Anything, booking).Return(nil)
	f.sync.On("PublishCalendarSync", mock.Anything, mock.Anything).Return(nil)

	from, to := "8:00", "9:30"
	b, err := f.uc.Update(context.Background(), staff, "", bookingID, usecase.UpdateBookingInput{TimeFrom: &from, TimeTo: &to})

	require.NoError(t, err)
	assert.Equal(t, "08:00", b.TimeFrom)
	assert.Equal(t, "09:30", b.TimeTo)
	f.audit.AssertCalled(t, "Create", mock.Anything, mock.MatchedBy(func(a *entity.AuditLog) bool {
		_, fromChanged := a.Details["timeFrom"]
		return a.Action == entity.AuditActionUpdate && !fromChanged && a.Details["timeTo"] == "09:30"
	}))
}

func TestBookingRejectsMalformedIDs(t *testing.T) {
	f := newBookingFixture(time.Date(2026, 10, 19, 9, 0, 0, 0, warsaw))
	ctx := context.Background()
	codeOf := func(err error) string {
		var de *usecase.DomainError
		require.ErrorAs(t, err, &de)
		return de.Code
	}

	_, err := f.uc.Get(ctx, staff, "", "abc")
	assert.Equal(t, usecase.CodeNotFound, codeOf(err))

	err = f.uc.Delete(ctx, staff, "", "abc")
	assert.Equal(t, usecase.CodeNotFound, codeOf(err))

	_, err = f.uc.BookLead(ctx, staff, "", "abc", usecase.BookLeadInput{Date: "2026-10-21", TimeFrom: "12:00", TimeTo: "13:00"})
	assert.Equal(t, usecase.CodeNotFound, codeOf(err))

	_, err = f.uc.List(ctx, staff, usecase.ListBookingsInput{LeadID: "abc"})
	assert.Equal(t, usecase.CodeValidation, codeOf(err))

	_, err = f.uc.Create(ctx, staff, usecase.CreateBookingInput{LeadID: "abc", Date: "2026-10-21", TimeFrom: "12:00", TimeTo: "13:00", Name: "Ewa"})
	assert.Equal(t, usecase.CodeValidation, codeOf(err))

	f.bookings.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything, mock.Anything)
	f.leads.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything, mock.Anything)
}
