package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/xavierca1/frontdesk/internal/entity"
	"github.com/xavierca1/frontdesk/internal/infra/queue"
	"github.com/xavierca1/frontdesk/internal/logger"
)

type BookingUseCase struct {
	Bookings entity.BookingRepositoryInterface
	Leads    entity.LeadRepositoryInterface
	Sync     CalendarSyncPublisher
	Audit    *AuditTrail
	Metrics  MetricsRecorder
	Location *time.Location
	Now      func() time.Time
}

func NewBookingUseCase(
	bookings entity.BookingRepositoryInterface,
	leads entity.LeadRepositoryInterface,
	sync CalendarSyncPublisher,
	audit *AuditTrail,
	metrics MetricsRecorder,
	loc *time.Location,
) *BookingUseCase {
	if loc == nil {
		loc = time.UTC
	}
	return &BookingUseCase{
		Bookings: bookings,
		Leads:    leads,
		Sync:     sync,
		Audit:    audit,
		Metrics:  metricsOrNoop(metrics),
		Location: loc,
		Now:      time.Now,
	}
}

func (uc *BookingUseCase) now() time.Time {
	return uc.Now().In(uc.Location)
}

func (uc *BookingUseCase) Create(ctx context.Context, actor Actor, input CreateBookingInput) (*entity.Booking, error) {
	if errs := ValidateCreateBookingInput(input); len(errs) > 0 {
		return nil, validationFailed(errs)
	}

	if input.LeadID != "" && !isValidID(input.LeadID) {
		return nil, &DomainError{Code: CodeValidation, Message: "leadId does not match a lead"}
	}

	scope := actor.Scope(input.Chiropractor)
	booking, err := entity.NewBooking(input.LeadID, input.Date, input.TimeFrom, input.TimeTo, input.Name, input.Description, scope)
	if err != nil {
		return nil, validationError(err)
	}

	if booking.LeadID != "" {
		if _, err := uc.Leads.FindByID(ctx, scope, booking.LeadID); err != nil {
			if errors.Is(err, entity.ErrLeadNotFound) {
				return nil, &DomainError{Code: CodeValidation, Message: "leadId does not match a lead"}
			}
			return nil, databaseError("failed to load lead", err)
		}
	}

	if err := uc.ensureSlotFree(ctx, booking); err != nil {
		return nil, err
	}
	if booking.ShouldAutoComplete(uc.now()) {
		booking.Status = entity.BookingCompleted
	}

	if err := uc.Bookings.Create(ctx, booking); err != nil {
		return nil, databaseError("failed to save booking", err)
	}

	if booking.LeadID != "" {
		uc.reconcileLead(ctx, actor, scope, booking.LeadID)
	}
	uc.publish(ctx, queue.SyncUpsert, booking)
	uc.Audit.Record(ctx, actor, scope, entity.AuditActionCreate, entity.AuditEntityBooking, booking.ID, bookingDetails(booking))
	return booking, nil
}

// BookLead books a slot for a lead and moves the lead to Umówiony. The
// booking insert is undone when the lead update fails.
func (uc *BookingUseCase) BookLead(ctx context.Context, actor Actor, chiropractor, leadID string, input BookLeadInput) (*BookLeadOutput, error) {
	if errs := validateSlot(input.Date, input.TimeFrom, input.TimeTo); len(errs) > 0 {
		return nil, validationFailed(errs)
	}

	if !isValidID(leadID) {
		return nil, notFound("lead")
	}

	scope := actor.Scope(chiropractor)
	lead, err := uc.Leads.FindByID(ctx, scope, leadID)
	if err != nil {
		if errors.Is(err, entity.ErrLeadNotFound) {
			return nil, notFound("lead")
		}
		return nil, databaseError("failed to load lead", err)
	}

	description := input.Description
	if strings.TrimSpace(description) == "" {
		description = lead.Description
	}
	booking, err := entity.NewBooking(lead.ID, input.Date, input.TimeFrom, input.TimeTo, lead.Name, description, lead.Chiropractor)
	if err != nil {
		return nil, validationError(err)
	}
	if err := uc.ensureSlotFree(ctx, booking); err != nil {
		return nil, err
	}
	if booking.ShouldAutoComplete(uc.now()) {
		booking.Status = entity.BookingCompleted
	}

	previous := lead.Status
	txn := NewTransaction()
	txn.AddOperation("create_booking", func(ctx context.Context) error {
		return uc.Bookings.Create(ctx, booking)
	})
	txn.AddCompensation("delete_booking", func(ctx context.Context) error {
		return uc.Bookings.Delete(ctx, booking.Chiropractor, booking.ID)
	})
	if previous != entity.LeadStatusBooked {
		txn.AddOperation("mark_lead_booked", func(ctx context.Context) error {
			return uc.Leads.UpdateStatus(ctx, lead.Chiropractor, lead.ID, entity.LeadStatusBooked)
		})
	}

	if err := txn.Execute(ctx); err != nil {
		return nil, databaseError("failed to book lead", err)
	}

	lead.Status = entity.LeadStatusBooked
	lead.UpdatedAt = time.Now()

	uc.publish(ctx, queue.SyncUpsert, booking)
	uc.Audit.Record(ctx, actor, lead.Chiropractor, entity.AuditActionCreate, entity.AuditEntityBooking, booking.ID, bookingDetails(booking))
	if previous != entity.LeadStatusBooked {
		uc.Audit.Record(ctx, actor, lead.Chiropractor, entity.AuditActionStatus, entity.AuditEntityLead, lead.ID, map[string]any{
			"from": string(previous),
			"to":   string(entity.LeadStatusBooked),
		})
	}
	return &BookLeadOutput{Lead: lead, Booking: booking}, nil
}

func (uc *BookingUseCase) List(ctx context.Context, actor Actor, input ListBookingsInput) ([]*entity.Booking, error) {
	for _, d := range []string{input.From, input.To} {
		if d != "" && !isValidDate(d) {
			return nil, &DomainError{Code: CodeValidation, Message: "from/to must be YYYY-MM-DD"}
		}
	}
	if input.LeadID != "" && !isValidID(input.LeadID) {
		return nil, &DomainError{Code: CodeValidation, Message: "leadId must be a UUID"}
	}
	bookings, err := uc.Bookings.List(ctx, entity.BookingFilter{
		Chiropractor: actor.Scope(input.Chiropractor),
		From:         input.From,
		To:           input.To,
		LeadID:       input.LeadID,
		Since:        input.Since,
	})
	if err != nil {
		return nil, databaseError("failed to list bookings", err)
	}
	if bookings == nil {
		bookings = []*entity.Booking{}
	}
	return bookings, nil
}

func (uc *BookingUseCase) Get(ctx context.Context, actor Actor, chiropractor, id string) (*entity.Booking, error) {
	if !isValidID(id) {
		return nil, notFound("booking")
	}
	booking, err := uc.Bookings.FindByID(ctx, actor.Scope(chiropractor), id)
	if err != nil {
		if errors.Is(err, entity.ErrBookingNotFound) {
			return nil, notFound("booking")
		}
		return nil, databaseError("failed to load booking", err)
	}
	return booking, nil
}

func (uc *BookingUseCase) Update(ctx context.Context, actor Actor, chiropractor, id string, input UpdateBookingInput) (*entity.Booking, error) {
	booking, err := uc.Get(ctx, actor, chiropractor, id)
	if err != nil {
		return nil, err
	}

	changed := map[string]any{}
	slotChanged := false
	set := func(field string, dst *string, src *string, slot bool) {
		if src == nil || *dst == strings.TrimSpace(*src) {
			return
		}
		*dst = strings.TrimSpace(*src)
		changed[field] = *dst
		if slot {
			slotChanged = true
		}
	}
	set("date", &booking.Date, input.Date, true)
	set("timeFrom", &booking.TimeFrom, clock(input.TimeFrom), true)
	set("timeTo", &booking.TimeTo, clock(input.TimeTo), true)
	set("name", &booking.Name, input.Name, false)
	if input.Description != nil && *input.Description != booking.Description {
		booking.Description = *input.Description
		changed["description"] = booking.Description
	}
	if input.Status != nil && *input.Status != booking.Status {
		booking.Status = *input.Status
		changed["status"] = string(booking.Status)
	}

	if len(changed) == 0 {
		return booking, nil
	}
	if err := booking.Validate(); err != nil {
		return nil, validationError(err)
	}
	if slotChanged {
		if err := uc.ensureSlotFree(ctx, booking); err != nil {
			return nil, err
		}
	}
	booking.UpdatedAt = time.Now()

	if err := uc.Bookings.Update(ctx, booking); err != nil {
		if errors.Is(err, entity.ErrBookingNotFound) {
			return nil, notFound("booking")
		}
		return nil, databaseError("failed to update booking", err)
	}

	if booking.LeadID != "" {
		uc.reconcileLead(ctx, actor, booking.Chiropractor, booking.LeadID)
	}
	uc.publish(ctx, queue.SyncUpsert, booking)
	uc.Audit.Record(ctx, actor, booking.Chiropractor, entity.AuditActionUpdate, entity.AuditEntityBooking, booking.ID, changed)
	return booking, nil
}

// Delete removes a booking, reconciles the linked lead and asks for the
// mirrored Google event to be removed. The mirror delete is best effort.
func (uc *BookingUseCase) Delete(ctx context.Context, actor Actor, chiropractor, id string) error {
	booking, err := uc.Get(ctx, actor, chiropractor, id)
	if err != nil {
		return err
	}

	if err := uc.Bookings.Delete(ctx, booking.Chiropractor, booking.ID); err != nil {
		if errors.Is(err, entity.ErrBookingNotFound) {
			return notFound("booking")
		}
		return databaseError("failed to delete booking", err)
	}

	if booking.LeadID != "" {
		uc.reconcileLead(ctx, actor, booking.Chiropractor, booking.LeadID)
	}
	if booking.GoogleEventID != "" {
		uc.publish(ctx, queue.SyncDelete, booking)
	}
	uc.Audit.Record(ctx, actor, booking.Chiropractor, entity.AuditActionDelete, entity.AuditEntityBooking, booking.ID, bookingDetails(booking))
	return nil
}

// CompleteDue marks every scheduled booking whose slot has passed as
// completed and returns how many rows changed.
func (uc *BookingUseCase) CompleteDue(ctx context.Context) (int, error) {
	now := uc.now()
	candidates, err := uc.Bookings.ListScheduledUntil(ctx, now.Format(entity.DateLayout))
	if err != nil {
		return 0, databaseError("failed to list scheduled bookings", err)
	}

	var due []*entity.Booking
	var ids []string
	for _, b := range candidates {
		if b.ShouldAutoComplete(now) {
			due = append(due, b)
			ids = append(ids, b.ID)
		}
	}
	if len(ids) == 0 {
		return 0, nil
	}

	n, err := uc.Bookings.MarkCompleted(ctx, ids)
	if err != nil {
		return 0, databaseError("failed to complete bookings", err)
	}
	uc.Metrics.BookingsCompleted(int(n))

	// mirrored events pick up the completed colour
	for _, b := range due {
		b.Status = entity.BookingCompleted
		if b.GoogleEventID != "" {
			uc.publish(ctx, queue.SyncUpsert, b)
		}
	}
	return int(n), nil
}

func (uc *BookingUseCase) ensureSlotFree(ctx context.Context, b *entity.Booking) error {
	sameDay, err := uc.Bookings.List(ctx, entity.BookingFilter{
		Chiropractor: b.Chiropractor,
		From:         b.Date,
		To:           b.Date,
	})
	if err != nil {
		return databaseError("failed to check slot", err)
	}
	for _, other := range sameDay {
		if other.ID == b.ID {
			continue
		}
		if b.Overlaps(other) {
			return &DomainError{
				Code:    CodeSlotTaken,
				Message: fmt.Sprintf("slot %s-%s on %s overlaps booking %q (%s-%s)", b.TimeFrom, b.TimeTo, b.Date, other.Name, other.TimeFrom, other.TimeTo),
			}
		}
	}
	return nil
}

// reconcileLead re-derives a lead's status from its bookings. Failures are
// logged only; the booking write already succeeded.
func (uc *BookingUseCase) reconcileLead(ctx context.Context, actor Actor, chiropractor, leadID string) {
	log := logger.FromContext(ctx).With(zap.String("lead_id", leadID))

	lead, err := uc.Leads.FindByID(ctx, chiropractor, leadID)
	if err != nil {
		if !errors.Is(err, entity.ErrLeadNotFound) {
			log.Warn("lead reconcile: load failed", zap.Error(err))
		}
		return
	}
	bookings, err := uc.Bookings.List(ctx, entity.BookingFilter{Chiropractor: chiropractor, LeadID: leadID})
	if err != nil {
		log.Warn("lead reconcile: list bookings failed", zap.Error(err))
		return
	}

	next := entity.ReconcileLeadStatus(lead.Status, bookings)
	if next == lead.Status {
		return
	}
	if err := uc.Leads.UpdateStatus(ctx, chiropractor, leadID, next); err != nil {
		log.Warn("lead reconcile: status update failed", zap.Error(err))
		return
	}
	uc.Audit.Record(ctx, actor, chiropractor, entity.AuditActionStatus, entity.AuditEntityLead, leadID, map[string]any{
		"from":   string(lead.Status),
		"to":     string(next),
		"reason": "booking change",
	})
}

func (uc *BookingUseCase) publish(ctx context.Context, action string, b *entity.Booking) {
	if uc.Sync == nil {
		return
	}
	job := queue.CalendarSyncJob{
		Action:       action,
		BookingID:    b.ID,
		Chiropractor: b.Chiropractor,
		EventID:      b.GoogleEventID,
	}
	if err := uc.Sync.PublishCalendarSync(ctx, job); err != nil {
		uc.Metrics.CalendarSyncFailed(action)
		logger.FromContext(ctx).Warn("calendar sync publish failed",
			zap.String("booking_id", b.ID),
			zap.String("action", action),
			zap.Error(err),
		)
	}
}

// clock pads a submitted time so "9:00" compares equal to a stored "09:00".
func clock(s *string) *string {
	if s == nil {
		return nil
	}
	v := entity.NormalizeClock(*s)
	return &v
}

func bookingDetails(b *entity.Booking) map[string]any {
	d := map[string]any{
		"name":     b.Name,
		"date":     b.Date,
		"timeFrom": b.TimeFrom,
		"timeTo":   b.TimeTo,
		"status":   string(b.Status),
	}
	if b.LeadID != "" {
		d["leadId"] = b.LeadID
	}
	return d
}
