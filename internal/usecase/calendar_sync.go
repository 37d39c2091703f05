package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/xavierca1/frontdesk/internal/entity"
	"github.com/xavierca1/frontdesk/internal/infra/queue"
	"github.com/xavierca1/frontdesk/internal/logger"
)

// CalendarSyncUseCase applies booking changes to the chiropractor's Google
// calendar and manages the stored OAuth grant.
type CalendarSyncUseCase struct {
	Bookings entity.BookingRepositoryInterface
	Tokens   entity.CalendarTokenRepositoryInterface
	Gateway  CalendarEventGateway
	Audit    *AuditTrail
	Metrics  MetricsRecorder
}

func NewCalendarSyncUseCase(
	bookings entity.BookingRepositoryInterface,
	tokens entity.CalendarTokenRepositoryInterface,
	gateway CalendarEventGateway,
	audit *AuditTrail,
	metrics MetricsRecorder,
) *CalendarSyncUseCase {
	return &CalendarSyncUseCase{
		Bookings: bookings,
		Tokens:   tokens,
		Gateway:  gateway,
		Audit:    audit,
		Metrics:  metricsOrNoop(metrics),
	}
}

// Apply handles one sync job. Chiropractors without a connected calendar and
// bookings deleted since the job was queued are skipped without error.
func (uc *CalendarSyncUseCase) Apply(ctx context.Context, job queue.CalendarSyncJob) error {
	log := logger.FromContext(ctx).With(
		zap.String("booking_id", job.BookingID),
		zap.String("action", job.Action),
	)

	token, err := uc.Tokens.FindByChiropractor(ctx, job.Chiropractor)
	if err != nil {
		if errors.Is(err, entity.ErrTokenNotFound) {
			log.Debug("calendar not connected, skipping sync")
			return nil
		}
		return fmt.Errorf("load calendar token: %w", err)
	}

	switch job.Action {
	case queue.SyncUpsert:
		err = uc.upsert(ctx, token, job)
	case queue.SyncDelete:
		if job.EventID == "" {
			return nil
		}
		err = uc.Gateway.DeleteEvent(ctx, token, job.EventID)
	default:
		log.Warn("unknown calendar sync action, dropping job")
		return nil
	}

	if err != nil {
		uc.Metrics.CalendarSyncFailed(job.Action)
		return err
	}
	log.Debug("calendar sync applied")
	return nil
}

func (uc *CalendarSyncUseCase) upsert(ctx context.Context, token *entity.CalendarToken, job queue.CalendarSyncJob) error {
	booking, err := uc.Bookings.FindByID(ctx, job.Chiropractor, job.BookingID)
	if err != nil {
		if errors.Is(err, entity.ErrBookingNotFound) {
			return nil
		}
		return fmt.Errorf("load booking: %w", err)
	}

	if booking.GoogleEventID != "" {
		return uc.Gateway.UpdateEvent(ctx, token, booking.GoogleEventID, booking)
	}

	eventID, err := uc.Gateway.InsertEvent(ctx, token, booking)
	if err != nil {
		return err
	}
	if err := uc.Bookings.SetGoogleEventID(ctx, booking.ID, eventID); err != nil {
		return fmt.Errorf("store google event id: %w", err)
	}
	return nil
}

// Connect stores the grant returned by the OAuth callback.
func (uc *CalendarSyncUseCase) Connect(ctx context.Context, actor Actor, token *entity.CalendarToken) error {
	if token.RefreshToken == "" {
		if existing, err := uc.Tokens.FindByChiropractor(ctx, token.Chiropractor); err == nil {
			token.RefreshToken = existing.RefreshToken
		}
	}
	if token.CalendarID == "" {
		token.CalendarID = "primary"
	}
	token.UpdatedAt = time.Now()

	if err := uc.Tokens.Save(ctx, token); err != nil {
		return databaseError("failed to save calendar token", err)
	}
	uc.Audit.Record(ctx, actor, token.Chiropractor, entity.AuditActionUpdate, "google_calendar", token.Chiropractor, map[string]any{
		"connected": true,
	})
	return nil
}

func (uc *CalendarSyncUseCase) Disconnect(ctx context.Context, actor Actor, chiropractor string) error {
	scope := actor.Scope(chiropractor)
	if err := uc.Tokens.Delete(ctx, scope); err != nil && !errors.Is(err, entity.ErrTokenNotFound) {
		return databaseError("failed to delete calendar token", err)
	}
	uc.Audit.Record(ctx, actor, scope, entity.AuditActionDelete, "google_calendar", scope, nil)
	return nil
}

func (uc *CalendarSyncUseCase) Connected(ctx context.Context, actor Actor, chiropractor string) (bool, error) {
	_, err := uc.Tokens.FindByChiropractor(ctx, actor.Scope(chiropractor))
	if err != nil {
		if errors.Is(err, entity.ErrTokenNotFound) {
			return false, nil
		}
		return false, databaseError("failed to load calendar token", err)
	}
	return true, nil
}
