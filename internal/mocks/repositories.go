// Package mocks holds testify mocks shared by the package tests.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/xavierca1/frontdesk/internal/entity"
)

type LeadRepository struct {
	mock.Mock
}

func (m *LeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	args := m.Called(ctx, lead)
	return args.Error(0)
}

func (m *LeadRepository) FindByID(ctx context.Context, chiropractor, id string) (*entity.Lead, error) {
	args := m.Called(ctx, chiropractor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Lead), args.Error(1)
}

func (m *LeadRepository) List(ctx context.Context, filter entity.LeadFilter) ([]*entity.Lead, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Lead), args.Error(1)
}

func (m *LeadRepository) Update(ctx context.Context, lead *entity.Lead) error {
	args := m.Called(ctx, lead)
	return args.Error(0)
}

func (m *LeadRepository) UpdateStatus(ctx context.Context, chiropractor, id string, status entity.LeadStatus) error {
	args := m.Called(ctx, chiropractor, id, status)
	return args.Error(0)
}

func (m *LeadRepository) Delete(ctx context.Context, chiropractor, id string) error {
	args := m.Called(ctx, chiropractor, id)
	return args.Error(0)
}

type BookingRepository struct {
	mock.Mock
}

func (m *BookingRepository) Create(ctx context.Context, b *entity.Booking) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *BookingRepository) FindByID(ctx context.Context, chiropractor, id string) (*entity.Booking, error) {
	args := m.Called(ctx, chiropractor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Booking), args.Error(1)
}

func (m *BookingRepository) List(ctx context.Context, filter entity.BookingFilter) ([]*entity.Booking, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Booking), args.Error(1)
}

func (m *BookingRepository) Update(ctx context.Context, b *entity.Booking) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *BookingRepository) SetGoogleEventID(ctx context.Context, id, eventID string) error {
	args := m.Called(ctx, id, eventID)
	return args.Error(0)
}

func (m *BookingRepository) Delete(ctx context.Context, chiropractor, id string) error {
	args := m.Called(ctx, chiropractor, id)
	return args.Error(0)
}

func (m *BookingRepository) ListScheduledUntil(ctx context.Context, date string) ([]*entity.Booking, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Booking), args.Error(1)
}

func (m *BookingRepository) MarkCompleted(ctx context.Context, ids []string) (int64, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(int64), args.Error(1)
}

type UserRepository struct {
	mock.Mock
}

func (m *UserRepository) Create(ctx context.Context, u *entity.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *UserRepository) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

type AuditLogRepository struct {
	mock.Mock
}

func (m *AuditLogRepository) Create(ctx context.Context, entry *entity.AuditLog) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *AuditLogRepository) List(ctx context.Context, chiropractor string, limit, offset int) ([]*entity.AuditLog, int, error) {
	args := m.Called(ctx, chiropractor, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*entity.AuditLog), args.Int(1), args.Error(2)
}

type CalendarTokenRepository struct {
	mock.Mock
}

func (m *CalendarTokenRepository) Save(ctx context.Context, token *entity.CalendarToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *CalendarTokenRepository) FindByChiropractor(ctx context.Context, chiropractor string) (*entity.CalendarToken, error) {
	args := m.Called(ctx, chiropractor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.CalendarToken), args.Error(1)
}

func (m *CalendarTokenRepository) Delete(ctx context.Context, chiropractor string) error {
	args := m.Called(ctx, chiropractor)
	return args.Error(0)
}
