package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/xavierca1/frontdesk/internal/entity"
	"github.com/xavierca1/frontdesk/internal/logger"
)

type LeadUseCase struct {
	Leads    entity.LeadRepositoryInterface
	Audit    *AuditTrail
	Notifier LeadNotifier
	Metrics  MetricsRecorder

	// DefaultChiropractor receives webhook leads that do not name one.
	DefaultChiropractor string
}

func NewLeadUseCase(
	leads entity.LeadRepositoryInterface,
	audit *AuditTrail,
	notifier LeadNotifier,
	metrics MetricsRecorder,
	defaultChiropractor string,
) *LeadUseCase {
	return &LeadUseCase{
		Leads:               leads,
		Audit:               audit,
		Notifier:            notifier,
		Metrics:             metricsOrNoop(metrics),
		DefaultChiropractor: defaultChiropractor,
	}
}

func (uc *LeadUseCase) Create(ctx context.Context, actor Actor, input CreateLeadInput) (*entity.Lead, error) {
	if errs := ValidateCreateLeadInput(input); len(errs) > 0 {
		return nil, validationFailed(errs)
	}

	lead, err := entity.NewLead(input.Name, input.Phone, input.Email, input.Description, actor.Scope(input.Chiropractor), input.Source)
	if err != nil {
		return nil, validationError(err)
	}
	lead.Notes = input.Notes

	if err := uc.Leads.Create(ctx, lead); err != nil {
		return nil, databaseError("failed to save lead", err)
	}

	uc.Metrics.LeadCreated(lead.Source)
	uc.Audit.Record(ctx, actor, lead.Chiropractor, entity.AuditActionCreate, entity.AuditEntityLead, lead.ID, map[string]any{
		"name":   lead.Name,
		"source": lead.Source,
	})
	return lead, nil
}

// Capture stores a lead pushed by an external form and notifies the front desk.
func (uc *LeadUseCase) Capture(ctx context.Context, input CreateLeadInput) (*entity.Lead, error) {
	chiropractor := strings.TrimSpace(input.Chiropractor)
	if chiropractor == "" {
		chiropractor = uc.DefaultChiropractor
	}
	input.Chiropractor = chiropractor
	input.Source = entity.LeadSourceWebhook

	lead, err := uc.Create(ctx, SystemActor("webhook", chiropractor), input)
	if err != nil {
		return nil, err
	}

	if uc.Notifier != nil {
		log := logger.FromContext(ctx)
		go func(l entity.Lead) {
			if err := uc.Notifier.NotifyNewLead(&l); err != nil {
				log.Warn("new lead notification failed", zap.String("lead_id", l.ID), zap.Error(err))
			}
		}(*lead)
	}
	return lead, nil
}

func (uc *LeadUseCase) List(ctx context.Context, actor Actor, input ListLeadsInput) ([]*entity.Lead, error) {
	if input.Status != "" && !input.Status.Valid() {
		return nil, &DomainError{Code: CodeValidation, Message: "status is invalid"}
	}
	leads, err := uc.Leads.List(ctx, entity.LeadFilter{
		Chiropractor: actor.Scope(input.Chiropractor),
		Status:       input.Status,
		Since:        input.Since,
	})
	if err != nil {
		return nil, databaseError("failed to list leads", err)
	}
	if leads == nil {
		leads = []*entity.Lead{}
	}
	return leads, nil
}

func (uc *LeadUseCase) Get(ctx context.Context, actor Actor, chiropractor, id string) (*entity.Lead, error) {
	if !isValidID(id) {
		return nil, notFound("lead")
	}
	lead, err := uc.Leads.FindByID(ctx, actor.Scope(chiropractor), id)
	if err != nil {
		if errors.Is(err, entity.ErrLeadNotFound) {
			return nil, notFound("lead")
		}
		return nil, databaseError("failed to load lead", err)
	}
	return lead, nil
}

func (uc *LeadUseCase) Update(ctx context.Context, actor Actor, chiropractor, id string, input UpdateLeadInput) (*entity.Lead, error) {
	if errs := ValidateUpdateLeadInput(input); len(errs) > 0 {
		return nil, validationFailed(errs)
	}

	lead, err := uc.Get(ctx, actor, chiropractor, id)
	if err != nil {
		return nil, err
	}

	changed := map[string]any{}
	apply := func(field string, dst *string, src *string) {
		if src == nil {
			return
		}
		v := *src
		if field != "description" && field != "notes" {
			v = strings.TrimSpace(v)
		}
		if *dst != v {
			*dst = v
			changed[field] = v
		}
	}
	apply("name", &lead.Name, input.Name)
	apply("phone", &lead.Phone, input.Phone)
	apply("email", &lead.Email, input.Email)
	apply("description", &lead.Description, input.Description)
	apply("notes", &lead.Notes, input.Notes)

	if len(changed) == 0 {
		return lead, nil
	}
	if err := lead.Validate(); err != nil {
		return nil, validationError(err)
	}
	lead.UpdatedAt = time.Now()

	if err := uc.Leads.Update(ctx, lead); err != nil {
		if errors.Is(err, entity.ErrLeadNotFound) {
			return nil, notFound("lead")
		}
		return nil, databaseError("failed to update lead", err)
	}

	uc.Audit.Record(ctx, actor, lead.Chiropractor, entity.AuditActionUpdate, entity.AuditEntityLead, lead.ID, changed)
	return lead, nil
}

// UpdateStatus moves a lead to another board column.
func (uc *LeadUseCase) UpdateStatus(ctx context.Context, actor Actor, chiropractor, id string, status entity.LeadStatus) (*entity.Lead, error) {
	if !status.Valid() {
		return nil, &DomainError{Code: CodeValidation, Message: "status is invalid"}
	}

	lead, err := uc.Get(ctx, actor, chiropractor, id)
	if err != nil {
		return nil, err
	}
	if lead.Status == status {
		return lead, nil
	}

	previous := lead.Status
	if err := uc.Leads.UpdateStatus(ctx, lead.Chiropractor, lead.ID, status); err != nil {
		if errors.Is(err, entity.ErrLeadNotFound) {
			return nil, notFound("lead")
		}
		return nil, databaseError("failed to update lead status", err)
	}
	lead.Status = status
	lead.UpdatedAt = time.Now()

	uc.Audit.Record(ctx, actor, lead.Chiropractor, entity.AuditActionStatus, entity.AuditEntityLead, lead.ID, map[string]any{
		"from": string(previous),
		"to":   string(status),
	})
	return lead, nil
}

// Delete removes a lead. Its bookings stay and lose the back-reference.
func (uc *LeadUseCase) Delete(ctx context.Context, actor Actor, chiropractor, id string) error {
	if !isValidID(id) {
		return notFound("lead")
	}
	scope := actor.Scope(chiropractor)
	if err := uc.Leads.Delete(ctx, scope, id); err != nil {
		if errors.Is(err, entity.ErrLeadNotFound) {
			return notFound("lead")
		}
		return databaseError("failed to delete lead", err)
	}
	uc.Audit.Record(ctx, actor, scope, entity.AuditActionDelete, entity.AuditEntityLead, id, nil)
	return nil
}
