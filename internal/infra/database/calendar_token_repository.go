package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/xavierca1/frontdesk/internal/entity"
)

type CalendarTokenRepository struct {
	DB *sql.DB
}

func NewCalendarTokenRepository(db *sql.DB) *CalendarTokenRepository {
	return &CalendarTokenRepository{DB: db}
}

func (r *CalendarTokenRepository) Save(ctx context.Context, t *entity.CalendarToken) error {
	query := `
		INSERT INTO google_calendar_tokens (chiropractor, access_token, refresh_token, token_type, expiry, calendar_id, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (chiropractor)
		DO UPDATE SET
			access_token = EXCLUDED.access_token,
			refresh_token = COALESCE(NULLIF(EXCLUDED.refresh_token, ''), google_calendar_tokens.refresh_token),
			token_type = EXCLUDED.token_type,
			expiry = EXCLUDED.expiry,
			calendar_id = EXCLUDED.calendar_id,
			updated_at = EXCLUDED.updated_at
	`
	var expiry any
	if !t.Expiry.IsZero() {
		expiry = t.Expiry
	}
	_, err := r.DB.ExecContext(ctx, query,
		t.Chiropractor,
		t.AccessToken,
		t.RefreshToken,
		t.TokenType,
		expiry,
		t.CalendarID,
		t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save calendar token: %w", err)
	}
	return nil
}

func (r *CalendarTokenRepository) FindByChiropractor(ctx context.Context, chiropractor string) (*entity.CalendarToken, error) {
	query := `
		SELECT chiropractor, access_token, refresh_token, token_type, expiry, calendar_id, updated_at
		FROM google_calendar_tokens WHERE chiropractor = $1
	`
	var (
		t      entity.CalendarToken
		expiry sql.NullTime
	)
	err := r.DB.QueryRowContext(ctx, query, chiropractor).Scan(
		&t.Chiropractor,
		&t.AccessToken,
		&t.RefreshToken,
		&t.TokenType,
		&expiry,
		&t.CalendarID,
		&t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entity.ErrTokenNotFound
		}
		return nil, fmt.Errorf("find calendar token: %w", err)
	}
	if expiry.Valid {
		t.Expiry = expiry.Time
	}
	return &t, nil
}

func (r *CalendarTokenRepository) Delete(ctx context.Context, chiropractor string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM google_calendar_tokens WHERE chiropractor = $1`, chiropractor)
	if err != nil {
		return fmt.Errorf("delete calendar token: %w", err)
	}
	return expectOne(res, entity.ErrTokenNotFound)
}
