package database

import (
	"database/sql"
	"strconv"
	"strings"

	"github.com/xavierca1/frontdesk/internal/entity"
)

type scanner interface {
	Scan(dest ...any) error
}

// where collects AND-ed conditions with positional placeholders. A "?" in a
// condition is replaced by the next $n.
type where struct {
	conds []string
	args  []any
}

func (w *where) add(cond string, arg any) {
	w.args = append(w.args, arg)
	w.conds = append(w.conds, strings.Replace(cond, "?", "$"+strconv.Itoa(len(w.args)), 1))
}

func (w *where) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

func leadListQuery(f entity.LeadFilter) (string, []any) {
	w := &where{}
	if f.Chiropractor != "" {
		w.add("chiropractor = ?", f.Chiropractor)
	}
	if f.Status != "" {
		w.add("status = ?", string(f.Status))
	}
	if f.Since != nil {
		w.add("updated_at > ?", *f.Since)
	}
	return "SELECT " + leadColumns + " FROM leads" + w.String() + " ORDER BY created_at DESC", w.args
}

func bookingListQuery(f entity.BookingFilter) (string, []any) {
	w := &where{}
	if f.Chiropractor != "" {
		w.add("chiropractor = ?", f.Chiropractor)
	}
	if f.From != "" {
		w.add("date >= ?::date", f.From)
	}
	if f.To != "" {
		w.add("date <= ?::date", f.To)
	}
	if f.LeadID != "" {
		w.add("lead_id = ?::uuid", f.LeadID)
	}
	if f.Since != nil {
		w.add("updated_at > ?", *f.Since)
	}
	return "SELECT " + bookingColumns + " FROM bookings" + w.String() + " ORDER BY date, time_from", w.args
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func fromNull(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}
