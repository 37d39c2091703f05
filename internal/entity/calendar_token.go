package entity

import (
	"context"
	"time"
)

// CalendarToken is the Google OAuth grant stored per chiropractor.
type CalendarToken struct {
	Chiropractor string
	AccessToken  string
	RefreshToken string
	TokenType    string
	Expiry       time.Time
	CalendarID   string
	UpdatedAt    time.Time
}

type CalendarTokenRepositoryInterface interface {
	Save(ctx context.Context, token *CalendarToken) error
	FindByChiropractor(ctx context.Context, chiropractor string) (*CalendarToken, error)
	Delete(ctx context.Context, chiropractor string) error
}
