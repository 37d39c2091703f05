package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	SyncUpsert = "upsert"
	SyncDelete = "delete"
)

// CalendarSyncJob asks the consumer to mirror one booking change to Google Calendar.
type CalendarSyncJob struct {
	Action       string `json:"action"`
	BookingID    string `json:"booking_id"`
	Chiropractor string `json:"chiropractor"`
	EventID      string `json:"event_id,omitempty"`
}

type CalendarSyncPublisher interface {
	PublishCalendarSync(ctx context.Context, job CalendarSyncJob) error
}

type publisherChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type RabbitMQProducer struct {
	Ch publisherChannel
}

func NewProducer(ch *amqp.Channel) *RabbitMQProducer {
	return &RabbitMQProducer{Ch: ch}
}

func (p *RabbitMQProducer) PublishCalendarSync(ctx context.Context, job CalendarSyncJob) error {
	body, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal calendar sync job: %w", err)
	}

	err = p.Ch.PublishWithContext(ctx,
		ExchangeName,
		RoutingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("publish calendar sync job: %w", err)
	}
	return nil
}
