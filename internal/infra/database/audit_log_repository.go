package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/xavierca1/frontdesk/internal/entity"
)

type AuditLogRepository struct {
	DB *sql.DB
}

func NewAuditLogRepository(db *sql.DB) *AuditLogRepository {
	return &AuditLogRepository{DB: db}
}

func (r *AuditLogRepository) Create(ctx context.Context, entry *entity.AuditLog) error {
	var details []byte
	if len(entry.Details) > 0 {
		raw, err := json.Marshal(entry.Details)
		if err != nil {
			return fmt.Errorf("encode audit details: %w", err)
		}
		details = raw
	}

	query := `
		INSERT INTO audit_logs (id, chiropractor, username, action, entity_type, entity_id, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.DB.ExecContext(ctx, query,
		entry.ID,
		entry.Chiropractor,
		entry.Username,
		entry.Action,
		entry.EntityType,
		entry.EntityID,
		details,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}
	return nil
}

// List returns entries newest first with the total count. An empty
// chiropractor lists every partition; limit <= 0 returns everything.
func (r *AuditLogRepository) List(ctx context.Context, chiropractor string, limit, offset int) ([]*entity.AuditLog, int, error) {
	w := &where{}
	if chiropractor != "" {
		w.add("chiropractor = ?", chiropractor)
	}

	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM audit_logs`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count audit logs: %w", err)
	}

	query := `SELECT id, chiropractor, username, action, entity_type, entity_id, details, created_at FROM audit_logs` +
		w.String() + ` ORDER BY created_at DESC`
	args := w.args
	if limit > 0 {
		args = append(args, limit, offset)
		query += ` LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list audit logs: %w", err)
	}
	defer rows.Close()

	var entries []*entity.AuditLog
	for rows.Next() {
		var (
			e       entity.AuditLog
			details []byte
		)
		if err := rows.Scan(&e.ID, &e.Chiropractor, &e.Username, &e.Action, &e.EntityType, &e.EntityID, &details, &e.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan audit log: %w", err)
		}
		if len(details) > 0 {
			if err := json.Unmarshal(details, &e.Details); err != nil {
				return nil, 0, fmt.Errorf("decode audit details: %w", err)
			}
		}
		entries = append(entries, &e)
	}
	return entries, total, rows.Err()
}
