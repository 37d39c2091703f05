package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/xavierca1/frontdesk/internal/entity"
	"github.com/xavierca1/frontdesk/internal/infra/queue"
)

type SyncPublisher struct {
	mock.Mock
}

func (m *SyncPublisher) PublishCalendarSync(ctx context.Context, job queue.CalendarSyncJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

type CalendarGateway struct {
	mock.Mock
}

func (m *CalendarGateway) InsertEvent(ctx context.Context, token *entity.CalendarToken, b *entity.Booking) (string, error) {
	args := m.Called(ctx, token, b)
	return args.String(0), args.Error(1)
}

func (m *CalendarGateway) UpdateEvent(ctx context.Context, token *entity.CalendarToken, eventID string, b *entity.Booking) error {
	args := m.Called(ctx, token, eventID, b)
	return args.Error(0)
}

func (m *CalendarGateway) DeleteEvent(ctx context.Context, token *entity.CalendarToken, eventID string) error {
	args := m.Called(ctx, token, eventID)
	return args.Error(0)
}

type LeadNotifier struct {
	mock.Mock
}

func (m *LeadNotifier) NotifyNewLead(lead *entity.Lead) error {
	args := m.Called(lead)
	return args.Error(0)
}

type BackupMailer struct {
	mock.Mock
}

func (m *BackupMailer) SendBackup(to, filename string, data []byte) error {
	args := m.Called(to, filename, data)
	return args.Error(0)
}

type TokenIssuer struct {
	mock.Mock
}

func (m *TokenIssuer) Issue(u *entity.User) (string, time.Time, error) {
	args := m.Called(u)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

type TableCounter struct {
	mock.Mock
}

func (m *TableCounter) CountRows(ctx context.Context) (map[string]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int64), args.Error(1)
}
