package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
)

var backupTables = []string{"leads", "bookings", "users", "google_calendar_tokens", "audit_logs"}

// MaintenanceRepository serves the heartbeat and backup manifests.
type MaintenanceRepository struct {
	DB *sql.DB
}

func NewMaintenanceRepository(db *sql.DB) *MaintenanceRepository {
	return &MaintenanceRepository{DB: db}
}

// Heartbeat runs a trivial query so a hosted database does not idle out.
func (r *MaintenanceRepository) Heartbeat(ctx context.Context) (time.Time, error) {
	var now time.Time
	if err := r.DB.QueryRowContext(ctx, `SELECT NOW()`).Scan(&now); err != nil {
		return time.Time{}, fmt.Errorf("heartbeat: %w", err)
	}
	return now, nil
}

func (r *MaintenanceRepository) Ping(ctx context.Context) error {
	return r.DB.PingContext(ctx)
}

func (r *MaintenanceRepository) CountRows(ctx context.Context) (map[string]int64, error) {
	counts := make(map[string]int64, len(backupTables))
	for _, table := range backupTables {
		var n int64
		if err := r.DB.QueryRowContext(ctx, countQuery(table)).Scan(&n); err != nil {
			return nil, fmt.Errorf("count %s: %w", table, err)
		}
		counts[table] = n
	}
	return counts, nil
}

func countQuery(table string) string {
	return `SELECT COUNT(*) FROM ` + pq.QuoteIdentifier(table)
}
