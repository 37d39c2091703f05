package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/xavierca1/frontdesk/internal/logger"
)

type BackupSender interface {
	SendBackup(ctx context.Context, to string) error
}

// BackupWorker mails a full export on a fixed interval. Unlike the completion
// worker it waits one interval before the first run.
type BackupWorker struct {
	sender       BackupSender
	to           string
	tickInterval time.Duration
}

func NewBackupWorker(sender BackupSender, to string, interval time.Duration) *BackupWorker {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &BackupWorker{sender: sender, to: to, tickInterval: interval}
}

func (w *BackupWorker) Start(ctx context.Context) {
	log := logger.L().With(zap.String("worker", "backup"))
	if w.to == "" {
		log.Info("backup worker disabled, no recipient configured")
		return
	}
	log.Info("backup worker started", zap.Duration("interval", w.tickInterval))

	ticker := time.NewTicker(w.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("backup worker stopped")
			return
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

func (w *BackupWorker) RunOnce(ctx context.Context) bool {
	if err := w.sender.SendBackup(ctx, w.to); err != nil {
		logger.L().Error("scheduled backup failed", zap.String("to", w.to), zap.Error(err))
		return false
	}
	logger.L().Info("scheduled backup sent", zap.String("to", w.to))
	return true
}
