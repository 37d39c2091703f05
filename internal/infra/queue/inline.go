package queue

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/xavierca1/frontdesk/internal/logger"
)

// InlinePublisher applies jobs in a background goroutine. It stands in for
// RabbitMQ when RABBITMQ_URL is not configured.
type InlinePublisher struct {
	Handler JobHandler
	Timeout time.Duration
}

func NewInlinePublisher(handler JobHandler) *InlinePublisher {
	return &InlinePublisher{Handler: handler, Timeout: 30 * time.Second}
}

func (p *InlinePublisher) PublishCalendarSync(ctx context.Context, job CalendarSyncJob) error {
	log := logger.FromContext(ctx)
	go func() {
		jobCtx, cancel := context.WithTimeout(logger.WithContext(context.Background(), log), p.Timeout)
		defer cancel()
		if err := p.Handler.Apply(jobCtx, job); err != nil {
			log.Error("calendar sync failed",
				zap.String("action", job.Action),
				zap.String("booking_id", job.BookingID),
				zap.Error(err),
			)
		}
	}()
	return nil
}
