package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/xavierca1/frontdesk/internal/entity"
)

const bookingColumns = `id, lead_id, to_char(date, 'YYYY-MM-DD'), to_char(time_from, 'HH24:MI'), to_char(time_to, 'HH24:MI'),
	name, description, status, chiropractor, google_event_id, created_at, updated_at`

type BookingRepository struct {
	DB *sql.DB
}

func NewBookingRepository(db *sql.DB) *BookingRepository {
	return &BookingRepository{DB: db}
}

func (r *BookingRepository) Create(ctx context.Context, b *entity.Booking) error {
	query := `
		INSERT INTO bookings (id, lead_id, date, time_from, time_to, name, description, status, chiropractor, google_event_id, created_at, updated_at)
		VALUES ($1, $2, $3::date, $4::time, $5::time, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := r.DB.ExecContext(ctx, query,
		b.ID,
		nullString(b.LeadID),
		b.Date,
		b.TimeFrom,
		b.TimeTo,
		b.Name,
		b.Description,
		string(b.Status),
		b.Chiropractor,
		nullString(b.GoogleEventID),
		b.CreatedAt,
		b.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}
	return nil
}

func (r *BookingRepository) FindByID(ctx context.Context, chiropractor, id string) (*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1 AND chiropractor = $2`

	b, err := scanBooking(r.DB.QueryRowContext(ctx, query, id, chiropractor))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entity.ErrBookingNotFound
		}
		return nil, fmt.Errorf("find booking: %w", err)
	}
	return b, nil
}

func (r *BookingRepository) List(ctx context.Context, filter entity.BookingFilter) ([]*entity.Booking, error) {
	query, args := bookingListQuery(filter)
	return r.query(ctx, query, args...)
}

// ListScheduledUntil returns scheduled bookings dated on or before date,
// across every partition.
func (r *BookingRepository) ListScheduledUntil(ctx context.Context, date string) ([]*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE status = 'scheduled' AND date <= $1::date ORDER BY date, time_from`
	return r.query(ctx, query, date)
}

func (r *BookingRepository) query(ctx context.Context, query string, args ...any) ([]*entity.Booking, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*entity.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

func (r *BookingRepository) Update(ctx context.Context, b *entity.Booking) error {
	query := `
		UPDATE bookings
		SET date = $3::date, time_from = $4::time, time_to = $5::time, name = $6, description = $7, status = $8, updated_at = $9
		WHERE id = $1 AND chiropractor = $2
	`
	res, err := r.DB.ExecContext(ctx, query,
		b.ID,
		b.Chiropractor,
		b.Date,
		b.TimeFrom,
		b.TimeTo,
		b.Name,
		b.Description,
		string(b.Status),
		b.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update booking: %w", err)
	}
	return expectOne(res, entity.ErrBookingNotFound)
}

func (r *BookingRepository) SetGoogleEventID(ctx context.Context, id, eventID string) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE bookings SET google_event_id = $2 WHERE id = $1`, id, nullString(eventID))
	if err != nil {
		return fmt.Errorf("set google event id: %w", err)
	}
	return expectOne(res, entity.ErrBookingNotFound)
}

func (r *BookingRepository) Delete(ctx context.Context, chiropractor, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM bookings WHERE id = $1 AND chiropractor = $2`, id, chiropractor)
	if err != nil {
		return fmt.Errorf("delete booking: %w", err)
	}
	return expectOne(res, entity.ErrBookingNotFound)
}

// MarkCompleted flips the given scheduled bookings to completed in one statement.
func (r *BookingRepository) MarkCompleted(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	query := `
		UPDATE bookings
		SET status = 'completed', updated_at = NOW()
		WHERE status = 'scheduled' AND id = ANY($1::uuid[])
	`
	res, err := r.DB.ExecContext(ctx, query, ids)
	if err != nil {
		return 0, fmt.Errorf("complete bookings: %w", err)
	}
	return res.RowsAffected()
}

func scanBooking(s scanner) (*entity.Booking, error) {
	var (
		b       entity.Booking
		leadID  sql.NullString
		eventID sql.NullString
		status  string
	)
	err := s.Scan(
		&b.ID,
		&leadID,
		&b.Date,
		&b.TimeFrom,
		&b.TimeTo,
		&b.Name,
		&b.Description,
		&status,
		&b.Chiropractor,
		&eventID,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	b.LeadID = fromNull(leadID)
	b.GoogleEventID = fromNull(eventID)
	b.Status = entity.BookingStatus(status)
	return &b, nil
}
