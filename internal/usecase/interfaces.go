package usecase

import (
	"context"
	"time"

	"github.com/xavierca1/frontdesk/internal/entity"
	"github.com/xavierca1/frontdesk/internal/infra/queue"
)

type CalendarSyncPublisher interface {
	PublishCalendarSync(ctx context.Context, job queue.CalendarSyncJob) error
}

// CalendarEventGateway writes booking mirrors into a connected Google calendar.
type CalendarEventGateway interface {
	InsertEvent(ctx context.Context, token *entity.CalendarToken, b *entity.Booking) (string, error)
	UpdateEvent(ctx context.Context, token *entity.CalendarToken, eventID string, b *entity.Booking) error
	DeleteEvent(ctx context.Context, token *entity.CalendarToken, eventID string) error
}

type LeadNotifier interface {
	NotifyNewLead(lead *entity.Lead) error
}

type BackupMailer interface {
	SendBackup(to, filename string, data []byte) error
}

type TokenIssuer interface {
	Issue(u *entity.User) (string, time.Time, error)
}

// TableCounter reports row counts per table for backup manifests.
type TableCounter interface {
	CountRows(ctx context.Context) (map[string]int64, error)
}

type MetricsRecorder interface {
	LeadCreated(source string)
	BookingsCompleted(n int)
	CalendarSyncFailed(action string)
}

type noopMetrics struct{}

func (noopMetrics) LeadCreated(string)        {}
func (noopMetrics) BookingsCompleted(int)     {}
func (noopMetrics) CalendarSyncFailed(string) {}

func metricsOrNoop(m MetricsRecorder) MetricsRecorder {
	if m == nil {
		return noopMetrics{}
	}
	return m
}
