package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/xavierca1/frontdesk/internal/logger"
)

// JobHandler applies a calendar sync job. The use case layer implements it.
type JobHandler interface {
	Apply(ctx context.Context, job CalendarSyncJob) error
}

type consumerChannel interface {
	Qos(prefetchCount, prefetchSize int, global bool) error
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

type Worker struct {
	Channel    consumerChannel
	Handler    JobHandler
	JobTimeout time.Duration
}

func NewWorker(ch *amqp.Channel, handler JobHandler) *Worker {
	return &Worker{
		Channel:    ch,
		Handler:    handler,
		JobTimeout: 30 * time.Second,
	}
}

// Start consumes queueName until ctx is cancelled or the channel closes.
func (w *Worker) Start(ctx context.Context, queueName string) error {
	if err := w.Channel.Qos(5, 0, false); err != nil {
		return fmt.Errorf("set qos: %w", err)
	}

	msgs, err := w.Channel.Consume(queueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("register consumer: %w", err)
	}

	log := logger.L().With(zap.String("queue", queueName))
	log.Info("calendar sync worker started")

	for {
		select {
		case <-ctx.Done():
			log.Info("calendar sync worker stopped")
			return nil
		case d, ok := <-msgs:
			if !ok {
				log.Warn("delivery channel closed")
				return nil
			}
			w.handle(ctx, d)
		}
	}
}

func (w *Worker) handle(ctx context.Context, d amqp.Delivery) {
	var job CalendarSyncJob
	if err := json.Unmarshal(d.Body, &job); err != nil {
		logger.L().Error("malformed calendar sync job", zap.Error(err))
		_ = d.Nack(false, false)
		return
	}

	log := logger.L().With(
		zap.String("action", job.Action),
		zap.String("booking_id", job.BookingID),
		zap.String("chiropractor", job.Chiropractor),
	)

	jobCtx, cancel := context.WithTimeout(logger.WithContext(ctx, log), w.timeout())
	defer cancel()

	if err := w.Handler.Apply(jobCtx, job); err != nil {
		// Redelivered jobs go to the DLQ instead of looping.
		requeue := !d.Redelivered
		log.Error("calendar sync failed", zap.Error(err), zap.Bool("requeue", requeue))
		_ = d.Nack(false, requeue)
		return
	}

	log.Debug("calendar sync applied")
	_ = d.Ack(false)
}

func (w *Worker) timeout() time.Duration {
	if w.JobTimeout > 0 {
		return w.JobTimeout
	}
	return 30 * time.Second
}
