package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/frontdesk/internal/entity"
	"github.com/xavierca1/frontdesk/internal/mocks"
	"github.com/xavierca1/frontdesk/internal/usecase"
)

const (
	leadID    = "6f1c2d9e-4b7a-4c1e-9a53-2f8d0b7e1a01"
	bookingID = "0d4e8a77-19c3-4f2b-8e6a-5b3c9d1f7e02"
)

var (
	staff = usecase.Actor{Username: "recepcja", Chiropractor: "anna", Role: entity.RoleStaff}
	admin = usecase.Actor{Username: "szef", Chiropractor: "anna", Role: entity.RoleAdmin}
)

func newAudit() (*usecase.AuditTrail, *mocks.AuditLogRepository) {
	repo := new(mocks.AuditLogRepository)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil).Maybe()
	return usecase.NewAuditTrail(repo), repo
}

func TestCreateLeadSuccess(t *testing.T) {
	leads := new(mocks.LeadRepository)
	audit, auditRepo := newAudit()
	leads.On("Create", mock.Anything, mock.MatchedBy(func(l *entity.Lead) bool {
		return l.Chiropractor == "anna" && l.Status == entity.LeadStatusNew && l.Notes == "oddzwonić po 16"
	})).Return(nil)

	uc := usecase.NewLeadUseCase(leads, audit, nil, nil, "")
	lead, err := uc.Create(context.Background(), staff, usecase.CreateLeadInput{
		Name:         "Ewa Nowak",
		Phone:        "600 100 200",
		Notes:        "oddzwonić po 16",
		Chiropractor: "marek",
	})

	require.NoError(t, err)
	assert.Equal(t, "anna", lead.Chiropractor, "staff cannot write into another partition")
	leads.AssertExpectations(t)
	auditRepo.AssertCalled(t, "Create", mock.Anything, mock.MatchedBy(func(a *entity.AuditLog) bool {
		return a.Action == entity.AuditActionCreate && a.EntityID == lead.ID
	}))
}

func TestCreateLeadValidation(t *testing.T) {
	leads := new(mocks.LeadRepository)
	audit, _ := newAudit()
	uc := usecase.NewLeadUseCase(leads, audit, nil, nil, "")

	_, err := uc.Create(context.Background(), staff, usecase.CreateLeadInput{Name: "Ewa"})

	require.Error(t, err)
	var de *usecase.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, usecase.CodeValidation, de.Code)
	leads.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateLeadDatabaseError(t *testing.T) {
	leads := new(mocks.LeadRepository)
	audit, auditRepo := newAudit()
	leads.On("Create", mock.Anything, mock.Anything).Return(errors.New("connection refused"))

	uc := usecase.NewLeadUseCase(leads, audit, nil, nil, "")
	_, err := uc.Create(context.Background(), staff, usecase.CreateLeadInput{Name: "Ewa", Phone: "600100200"})

	require.Error(t, err)
	assert.True(t, usecase.IsTechnicalError(err))
	auditRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCaptureUsesDefaultChiropractorAndNotifies(t *testing.T) {
	leads := new(mocks.LeadRepository)
	notifier := new(mocks.LeadNotifier)
	audit, _ := newAudit()

	leads.On("Create", mock.Anything, mock.MatchedBy(func(l *entity.Lead) bool {
		return l.Chiropractor == "anna" && l.Source == entity.LeadSourceWebhook
	})).Return(nil)
	notified := make(chan string, 1)
	notifier.On("NotifyNewLead", mock.Anything).Run(func(args mock.Arguments) {
		notified <- args.Get(0).(*entity.Lead).Name
	}).Return(nil)

	uc := usecase.NewLeadUseCase(leads, audit, notifier, nil, "anna")
	lead, err := uc.Capture(context.Background(), usecase.CreateLeadInput{Name: "Jan", Phone: "500400300"})

	require.NoError(t, err)
	assert.Equal(t, entity.LeadSourceWebhook, lead.Source)
	select {
	case name := <-notified:
		assert.Equal(t, "Jan", name)
	case <-time.After(time.Second):
		t.Fatal("notification not sent")
	}
}

func TestUpdateLeadStatus(t *testing.T) {
	leads := new(mocks.LeadRepository)
	audit, auditRepo := newAudit()
	existing := &entity.Lead{ID: leadID, Name: "Ewa", Phone: "600100200", Chiropractor: "anna", Status: entity.LeadStatusNew}

	leads.On("FindByID", mock.Anything, "anna", leadID).Return(existing, nil)
	leads.On("UpdateStatus", mock.Anything, "anna", leadID, entity.LeadStatusCallLater).Return(nil)

	uc := usecase.NewLeadUseCase(leads, audit, nil, nil, "")
	lead, err := uc.UpdateStatus(context.Background(), staff, "", leadID, entity.LeadStatusCallLater)

	require.NoError(t, err)
	assert.Equal(t, entity.LeadStatusCallLater, lead.Status)
	auditRepo.AssertCalled(t, "Create", mock.Anything, mock.MatchedBy(func(a *entity.AuditLog) bool {
		return a.Action == entity.AuditActionStatus && a.Details["to"] == string(entity.LeadStatusCallLater)
	}))
}

func TestUpdateLeadStatusRejectsUnknown(t *testing.T) {
	uc := usecase.NewLeadUseCase(new(mocks.LeadRepository), nil, nil, nil, "")
	_, err := uc.UpdateStatus(context.Background(), staff, "", leadID, "Zamknięty")
	assert.True(t, usecase.IsDomainError(err))
}

func TestUpdateLeadAppliesOnlyGivenFields(t *testing.T) {
	leads := new(mocks.LeadRepository)
	audit, _ := newAudit()
	existing := &entity.Lead{ID: leadID, Name: "Ewa", Phone: "600100200", Chiropractor: "anna", Status: entity.LeadStatusNew, Description: "ból"}
	leads.On("FindByID", mock.Anything, "anna", leadID).Return(existing, nil)
	leads.On("Update", mock.Anything, mock.Anything).Return(nil)

	notes := "po wizycie"
	uc := usecase.NewLeadUseCase(leads, audit, nil, nil, "")
	lead, err := uc.Update(context.Background(), staff, "", leadID, usecase.UpdateLeadInput{Notes: &notes})

	require.NoError(t, err)
	assert.Equal(t, "po wizycie", lead.Notes)
	assert.Equal(t, "ból", lead.Description)
	leads.AssertCalled(t, "Update", mock.Anything, existing)
}

func TestGetLeadNotFound(t *testing.T) {
	leads := new(mocks.LeadRepository)
	leads.On("FindByID", mock.Anything, "marek", leadID).Return(nil, entity.ErrLeadNotFound)

	uc := usecase.NewLeadUseCase(leads, nil, nil, nil, "")
	_, err := uc.Get(context.Background(), admin, "marek", leadID)

	var de *usecase.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, usecase.CodeNotFound, de.Code)
}

func TestDeleteLead(t *testing.T) {
	leads := new(mocks.LeadRepository)
	audit, auditRepo := newAudit()
	leads.On("Delete", mock.Anything, "anna", leadID).Return(nil)

	uc := usecase.NewLeadUseCase(leads, audit, nil, nil, "")
	require.NoError(t, uc.Delete(context.Background(), staff, "", leadID))
	auditRepo.AssertNumberOfCalls(t, "Create", 1)
}

func TestLeadMalformedIDIsNotFound(t *testing.T) {
	leads := new(mocks.LeadRepository)
	uc := usecase.NewLeadUseCase(leads, nil, nil, nil, "")

	_, err := uc.Get(context.Background(), staff, "", "abc")
	var de *usecase.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, usecase.CodeNotFound, de.Code)

	err = uc.Delete(context.Background(), staff, "", "not-a-uuid")
	require.ErrorAs(t, err, &de)
	assert.Equal(t, usecase.CodeNotFound, de.Code)

	leads.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything, mock.Anything)
	leads.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
}
