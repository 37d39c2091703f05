package usecase

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"time"

	"github.com/xavierca1/frontdesk/internal/entity"
)

const (
	BackupJSON = "json"
	BackupCSV  = "csv"
)

type BackupFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

type backupDocument struct {
	ExportedAt   time.Time          `json:"exportedAt"`
	Chiropractor string             `json:"chiropractor,omitempty"`
	RowCounts    map[string]int64   `json:"rowCounts,omitempty"`
	Leads        []*entity.Lead     `json:"leads"`
	Bookings     []*entity.Booking  `json:"bookings"`
	AuditLogs    []*entity.AuditLog `json:"auditLogs"`
}

type BackupUseCase struct {
	Leads    entity.LeadRepositoryInterface
	Bookings entity.BookingRepositoryInterface
	AuditLog entity.AuditLogRepositoryInterface
	Counter  TableCounter
	Mailer   BackupMailer
	Now      func() time.Time
}

func NewBackupUseCase(
	leads entity.LeadRepositoryInterface,
	bookings entity.BookingRepositoryInterface,
	auditLog entity.AuditLogRepositoryInterface,
	counter TableCounter,
	mailer BackupMailer,
) *BackupUseCase {
	return &BackupUseCase{
		Leads:    leads,
		Bookings: bookings,
		AuditLog: auditLog,
		Counter:  counter,
		Mailer:   mailer,
		Now:      time.Now,
	}
}

// Export dumps one partition, or every partition when chiropractor is empty.
func (uc *BackupUseCase) Export(ctx context.Context, chiropractor, format string) (*BackupFile, error) {
	if format == "" {
		format = BackupJSON
	}
	if format != BackupJSON && format != BackupCSV {
		return nil, &DomainError{Code: CodeValidation, Message: "format must be json or csv"}
	}

	doc, err := uc.collect(ctx, chiropractor)
	if err != nil {
		return nil, err
	}

	stamp := doc.ExportedAt.Format("20060102-150405")
	name := "frontdesk-backup-" + stamp
	if chiropractor != "" {
		name = "frontdesk-" + chiropractor + "-" + stamp
	}

	if format == BackupJSON {
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, &TechnicalError{Code: "ENCODING_ERROR", Message: "failed to encode backup", Err: err}
		}
		return &BackupFile{Filename: name + ".json", ContentType: "application/json", Data: data}, nil
	}

	data, err := encodeCSVArchive(doc)
	if err != nil {
		return nil, &TechnicalError{Code: "ENCODING_ERROR", Message: "failed to encode backup", Err: err}
	}
	return &BackupFile{Filename: name + ".zip", ContentType: "application/zip", Data: data}, nil
}

// SendBackup exports every partition and mails it to the given address.
func (uc *BackupUseCase) SendBackup(ctx context.Context, to string) error {
	if uc.Mailer == nil || to == "" {
		return nil
	}
	file, err := uc.Export(ctx, "", BackupJSON)
	if err != nil {
		return err
	}
	if err := uc.Mailer.SendBackup(to, file.Filename, file.Data); err != nil {
		return &TechnicalError{Code: CodeIntegration, Message: "failed to mail backup", Err: err}
	}
	return nil
}

func (uc *BackupUseCase) collect(ctx context.Context, chiropractor string) (*backupDocument, error) {
	leads, err := uc.Leads.List(ctx, entity.LeadFilter{Chiropractor: chiropractor})
	if err != nil {
		return nil, databaseError("failed to list leads", err)
	}
	bookings, err := uc.Bookings.List(ctx, entity.BookingFilter{Chiropractor: chiropractor})
	if err != nil {
		return nil, databaseError("failed to list bookings", err)
	}
	logs, _, err := uc.AuditLog.List(ctx, chiropractor, 0, 0)
	if err != nil {
		return nil, databaseError("failed to list audit logs", err)
	}

	doc := &backupDocument{
		ExportedAt:   uc.Now().UTC(),
		Chiropractor: chiropractor,
		Leads:        nonNil(leads),
		Bookings:     nonNil(bookings),
		AuditLogs:    nonNil(logs),
	}
	if uc.Counter != nil {
		counts, err := uc.Counter.CountRows(ctx)
		if err != nil {
			return nil, databaseError("failed to count rows", err)
		}
		doc.RowCounts = counts
	}
	return doc, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func encodeCSVArchive(doc *backupDocument) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	leadRows := [][]string{{"id", "name", "phone", "email", "description", "notes", "status", "chiropractor", "source", "created_at", "updated_at"}}
	for _, l := range doc.Leads {
		leadRows = append(leadRows, []string{
			l.ID, l.Name, l.Phone, l.Email, l.Description, l.Notes, string(l.Status),
			l.Chiropractor, l.Source, l.CreatedAt.Format(time.RFC3339), l.UpdatedAt.Format(time.RFC3339),
		})
	}

	bookingRows := [][]string{{"id", "lead_id", "date", "time_from", "time_to", "name", "description", "status", "chiropractor", "google_event_id", "created_at", "updated_at"}}
	for _, b := range doc.Bookings {
		bookingRows = append(bookingRows, []string{
			b.ID, b.LeadID, b.Date, b.TimeFrom, b.TimeTo, b.Name, b.Description, string(b.Status),
			b.Chiropractor, b.GoogleEventID, b.CreatedAt.Format(time.RFC3339), b.UpdatedAt.Format(time.RFC3339),
		})
	}

	auditRows := [][]string{{"id", "chiropractor", "username", "action", "entity_type", "entity_id", "details", "created_at"}}
	for _, a := range doc.AuditLogs {
		details := ""
		if len(a.Details) > 0 {
			raw, err := json.Marshal(a.Details)
			if err != nil {
				return nil, err
			}
			details = string(raw)
		}
		auditRows = append(auditRows, []string{
			a.ID, a.Chiropractor, a.Username, a.Action, a.EntityType, a.EntityID, details, a.CreatedAt.Format(time.RFC3339),
		})
	}

	for _, f := range []struct {
		name string
		rows [][]string
	}{
		{"leads.csv", leadRows},
		{"bookings.csv", bookingRows},
		{"audit_logs.csv", auditRows},
	} {
		w, err := zw.Create(f.name)
		if err != nil {
			return nil, fmt.Errorf("create %s: %w", f.name, err)
		}
		cw := csv.NewWriter(w)
		if err := cw.WriteAll(f.rows); err != nil {
			return nil, fmt.Errorf("write %s: %w", f.name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
