package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/xavierca1/frontdesk/internal/entity"
)

const leadColumns = `id, name, phone, email, description, notes, status, chiropractor, source, created_at, updated_at`

type LeadRepository struct {
	DB *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{DB: db}
}

func (r *LeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	query := `
		INSERT INTO leads (id, name, phone, email, description, notes, status, chiropractor, source, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.DB.ExecContext(ctx, query,
		lead.ID,
		lead.Name,
		lead.Phone,
		nullString(lead.Email),
		lead.Description,
		lead.Notes,
		string(lead.Status),
		lead.Chiropractor,
		lead.Source,
		lead.CreatedAt,
		lead.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert lead: %w", err)
	}
	return nil
}

func (r *LeadRepository) FindByID(ctx context.Context, chiropractor, id string) (*entity.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE id = $1 AND chiropractor = $2`

	lead, err := scanLead(r.DB.QueryRowContext(ctx, query, id, chiropractor))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entity.ErrLeadNotFound
		}
		return nil, fmt.Errorf("find lead: %w", err)
	}
	return lead, nil
}

func (r *LeadRepository) List(ctx context.Context, filter entity.LeadFilter) ([]*entity.Lead, error) {
	query, args := leadListQuery(filter)

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	defer rows.Close()

	var leads []*entity.Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lead: %w", err)
		}
		leads = append(leads, lead)
	}
	return leads, rows.Err()
}

func (r *LeadRepository) Update(ctx context.Context, lead *entity.Lead) error {
	query := `
		UPDATE leads
		SET name = $3, phone = $4, email = $5, description = $6, notes = $7, status = $8, updated_at = $9
		WHERE id = $1 AND chiropractor = $2
	`
	res, err := r.DB.ExecContext(ctx, query,
		lead.ID,
		lead.Chiropractor,
		lead.Name,
		lead.Phone,
		nullString(lead.Email),
		lead.Description,
		lead.Notes,
		string(lead.Status),
		lead.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update lead: %w", err)
	}
	return expectOne(res, entity.ErrLeadNotFound)
}

func (r *LeadRepository) UpdateStatus(ctx context.Context, chiropractor, id string, status entity.LeadStatus) error {
	query := `UPDATE leads SET status = $3, updated_at = NOW() WHERE id = $1 AND chiropractor = $2`

	res, err := r.DB.ExecContext(ctx, query, id, chiropractor, string(status))
	if err != nil {
		return fmt.Errorf("update lead status: %w", err)
	}
	return expectOne(res, entity.ErrLeadNotFound)
}

func (r *LeadRepository) Delete(ctx context.Context, chiropractor, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM leads WHERE id = $1 AND chiropractor = $2`, id, chiropractor)
	if err != nil {
		return fmt.Errorf("delete lead: %w", err)
	}
	return expectOne(res, entity.ErrLeadNotFound)
}

func scanLead(s scanner) (*entity.Lead, error) {
	var (
		lead   entity.Lead
		email  sql.NullString
		status string
	)
	err := s.Scan(
		&lead.ID,
		&lead.Name,
		&lead.Phone,
		&email,
		&lead.Description,
		&lead.Notes,
		&status,
		&lead.Chiropractor,
		&lead.Source,
		&lead.CreatedAt,
		&lead.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	lead.Email = fromNull(email)
	lead.Status = entity.LeadStatus(status)
	return &lead, nil
}

func expectOne(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
