package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/xavierca1/frontdesk/internal/logger"
)

type Completer interface {
	CompleteDue(ctx context.Context) (int, error)
}

// BookingCompletionWorker marks scheduled bookings whose start hour has
// passed as completed.
type BookingCompletionWorker struct {
	completer    Completer
	tickInterval time.Duration
}

func NewBookingCompletionWorker(completer Completer, interval time.Duration) *BookingCompletionWorker {
	if interval <= 0 {
		interval = time.Minute
	}
	return &BookingCompletionWorker{
		completer:    completer,
		tickInterval: interval,
	}
}

func (w *BookingCompletionWorker) Start(ctx context.Context) {
	log := logger.L().With(zap.String("worker", "booking_completion"))
	log.Info("booking completion worker started", zap.Duration("interval", w.tickInterval))

	ticker := time.NewTicker(w.tickInterval)
	defer ticker.Stop()

	w.RunOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Info("booking completion worker stopped")
			return
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single completion pass and returns how many bookings changed.
func (w *BookingCompletionWorker) RunOnce(ctx context.Context) int {
	n, err := w.completer.CompleteDue(ctx)
	if err != nil {
		logger.L().Error("complete due bookings failed", zap.Error(err))
		return 0
	}
	if n > 0 {
		logger.L().Info("bookings marked completed", zap.Int("count", n))
	}
	return n
}
