package usecase

import (
	"context"
	"time"

	"github.com/xavierca1/frontdesk/internal/entity"
)

// CalendarUseCase serves the week and day views.
type CalendarUseCase struct {
	Bookings entity.BookingRepositoryInterface
	Grid     GridConfig
	Location *time.Location
	Now      func() time.Time
}

func NewCalendarUseCase(bookings entity.BookingRepositoryInterface, grid GridConfig, loc *time.Location) *CalendarUseCase {
	if loc == nil {
		loc = time.UTC
	}
	return &CalendarUseCase{Bookings: bookings, Grid: grid, Location: loc, Now: time.Now}
}

func (uc *CalendarUseCase) today() string {
	return uc.Now().In(uc.Location).Format(entity.DateLayout)
}

func (uc *CalendarUseCase) Week(ctx context.Context, actor Actor, chiropractor, date string) (*WeekGrid, error) {
	if date == "" {
		date = uc.today()
	}
	from, to, err := WeekRange(date)
	if err != nil {
		return nil, &DomainError{Code: CodeValidation, Message: "date must be YYYY-MM-DD"}
	}
	bookings, err := uc.Bookings.List(ctx, entity.BookingFilter{Chiropractor: actor.Scope(chiropractor), From: from, To: to})
	if err != nil {
		return nil, databaseError("failed to list bookings", err)
	}
	week, err := BuildWeek(date, bookings, uc.Grid)
	if err != nil {
		return nil, validationError(err)
	}
	return &week, nil
}

func (uc *CalendarUseCase) Day(ctx context.Context, actor Actor, chiropractor, date string) (*DayGrid, error) {
	if date == "" {
		date = uc.today()
	}
	if !isValidDate(date) {
		return nil, &DomainError{Code: CodeValidation, Message: "date must be YYYY-MM-DD"}
	}
	bookings, err := uc.Bookings.List(ctx, entity.BookingFilter{Chiropractor: actor.Scope(chiropractor), From: date, To: date})
	if err != nil {
		return nil, databaseError("failed to list bookings", err)
	}
	day := BuildDay(date, bookings, uc.Grid)
	return &day, nil
}

// Upcoming returns bookings from 30 days back to a year ahead, for feeds.
func (uc *CalendarUseCase) Upcoming(ctx context.Context, actor Actor, chiropractor string) ([]*entity.Booking, error) {
	now := uc.Now().In(uc.Location)
	bookings, err := uc.Bookings.List(ctx, entity.BookingFilter{
		Chiropractor: actor.Scope(chiropractor),
		From:         now.AddDate(0, 0, -30).Format(entity.DateLayout),
		To:           now.AddDate(1, 0, 0).Format(entity.DateLayout),
	})
	if err != nil {
		return nil, databaseError("failed to list bookings", err)
	}
	return bookings, nil
}
