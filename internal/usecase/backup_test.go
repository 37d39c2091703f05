package usecase_test

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/frontdesk/internal/entity"
	"github.com/xavierca1/frontdesk/internal/mocks"
	"github.com/xavierca1/frontdesk/internal/usecase"
)

func newBackupUseCase(t *testing.T) (*usecase.BackupUseCase, *mocks.BackupMailer) {
	t.Helper()
	leads := new(mocks.LeadRepository)
	bookings := new(mocks.BookingRepository)
	audit := new(mocks.AuditLogRepository)
	counter := new(mocks.TableCounter)
	mailer := new(mocks.BackupMailer)

	leads.On("List", mock.Anything, mock.Anything).Return([]*entity.Lead{
		{ID: "l1", Name: "Ewa, \"Nowak\"", Phone: "600100200", Status: entity.LeadStatusNew, Chiropractor: "anna"},
	}, nil)
	bookings.On("List", mock.Anything, mock.Anything).Return([]*entity.Booking{
		{ID: "b1", LeadID: "l1", Date: "2026-10-20", TimeFrom: "10:00", TimeTo: "10:30", Status: entity.BookingScheduled, Chiropractor: "anna"},
	}, nil)
	audit.On("List", mock.Anything, mock.Anything, 0, 0).Return([]*entity.AuditLog{
		{ID: "a1", Action: entity.AuditActionCreate, EntityType: entity.AuditEntityLead, EntityID: "l1", Details: map[string]any{"name": "Ewa"}},
	}, 1, nil)
	counter.On("CountRows", mock.Anything).Return(map[string]int64{"leads": 1, "bookings": 1}, nil)

	uc := usecase.NewBackupUseCase(leads, bookings, audit, counter, mailer)
	uc.Now = func() time.Time { return time.Date(2026, 10, 19, 3, 0, 0, 0, time.UTC) }
	return uc, mailer
}

func TestExportJSON(t *testing.T) {
	uc, _ := newBackupUseCase(t)

	file, err := uc.Export(context.Background(), "anna", "")
	require.NoError(t, err)
	assert.Equal(t, "frontdesk-anna-20261019-030000.json", file.Filename)
	assert.Equal(t, "application/json", file.ContentType)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(file.Data, &doc))
	assert.Len(t, doc["leads"], 1)
	assert.Len(t, doc["bookings"], 1)
	assert.Len(t, doc["auditLogs"], 1)
	assert.Equal(t, map[string]any{"leads": 1.0, "bookings": 1.0}, doc["rowCounts"])
}

func TestExportCSVArchive(t *testing.T) {
	uc, _ := newBackupUseCase(t)

	file, err := uc.Export(context.Background(), "", usecase.BackupCSV)
	require.NoError(t, err)
	assert.Equal(t, "frontdesk-backup-20261019-030000.zip", file.Filename)

	zr, err := zip.NewReader(bytes.NewReader(file.Data), int64(len(file.Data)))
	require.NoError(t, err)

	files := map[string][][]string{}
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		raw, err := io.ReadAll(rc)
		require.NoError(t, err)
		rc.Close()
		rows, err := csv.NewReader(bytes.NewReader(raw)).ReadAll()
		require.NoError(t, err)
		files[f.Name] = rows
	}

	require.Contains(t, files, "leads.csv")
	require.Contains(t, files, "bookings.csv")
	require.Contains(t, files, "audit_logs.csv")
	assert.Equal(t, "Ewa, \"Nowak\"", files["leads.csv"][1][1])
	assert.Equal(t, "l1", files["bookings.csv"][1][1])
	assert.Equal(t, `{"name":"Ewa"}`, files["audit_logs.csv"][1][6])
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	uc, _ := newBackupUseCase(t)
	_, err := uc.Export(context.Background(), "", "xml")
	assert.True(t, usecase.IsDomainError(err))
}

func TestSendBackup(t *testing.T) {
	uc, mailer := newBackupUseCase(t)
	mailer.On("SendBackup", "kopia@example.com", "frontdesk-backup-20261019-030000.json", mock.Anything).Return(nil)

	require.NoError(t, uc.SendBackup(context.Background(), "kopia@example.com"))
	mailer.AssertExpectations(t)

	require.NoError(t, uc.SendBackup(context.Background(), ""))
	mailer.AssertNumberOfCalls(t, "SendBackup", 1)
}
