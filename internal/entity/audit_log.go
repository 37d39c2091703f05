package entity

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	AuditActionCreate = "create"
	AuditActionUpdate = "update"
	AuditActionStatus = "status_change"
	AuditActionDelete = "delete"
	AuditActionLogin  = "login"

	AuditEntityLead    = "lead"
	AuditEntityBooking = "booking"
	AuditEntityUser    = "user"
)

type AuditLog struct {
	ID           string         `json:"id"`
	Chiropractor string         `json:"chiropractor"`
	Username     string         `json:"username"`
	Action       string         `json:"action"`
	EntityType   string         `json:"entityType"`
	EntityID     string         `json:"entityId"`
	Details      map[string]any `json:"details,omitempty"`
	CreatedAt    time.Time      `json:"createdAt"`
}

func NewAuditLog(chiropractor, username, action, entityType, entityID string, details map[string]any) *AuditLog {
	return &AuditLog{
		ID:           uuid.New().String(),
		Chiropractor: chiropractor,
		Username:     username,
		Action:       action,
		EntityType:   entityType,
		EntityID:     entityID,
		Details:      details,
		CreatedAt:    time.Now(),
	}
}

type AuditLogRepositoryInterface interface {
	Create(ctx context.Context, entry *AuditLog) error
	List(ctx context.Context, chiropractor string, limit, offset int) ([]*AuditLog, int, error)
}
