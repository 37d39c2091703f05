package usecase

import (
	"context"

	"go.uber.org/zap"

	"github.com/xavierca1/frontdesk/internal/entity"
	"github.com/xavierca1/frontdesk/internal/logger"
)

// AuditTrail writes audit rows. A failed write is logged and swallowed so it
// never fails the operation being audited.
type AuditTrail struct {
	Repo entity.AuditLogRepositoryInterface
}

func NewAuditTrail(repo entity.AuditLogRepositoryInterface) *AuditTrail {
	return &AuditTrail{Repo: repo}
}

func (a *AuditTrail) Record(ctx context.Context, actor Actor, chiropractor, action, entityType, entityID string, details map[string]any) {
	if a == nil || a.Repo == nil {
		return
	}
	entry := entity.NewAuditLog(chiropractor, actor.Username, action, entityType, entityID, details)
	if err := a.Repo.Create(ctx, entry); err != nil {
		logger.FromContext(ctx).Warn("audit log write failed",
			zap.String("action", action),
			zap.String("entity_type", entityType),
			zap.String("entity_id", entityID),
			zap.Error(err),
		)
	}
}

// List returns a page of audit entries, newest first.
func (a *AuditTrail) List(ctx context.Context, actor Actor, chiropractor string, limit, offset int) (*AuditLogPage, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	items, total, err := a.Repo.List(ctx, actor.Scope(chiropractor), limit, offset)
	if err != nil {
		return nil, databaseError("failed to list audit logs", err)
	}
	if items == nil {
		items = []*entity.AuditLog{}
	}
	return &AuditLogPage{Items: items, Total: total, Limit: limit, Offset: offset}, nil
}
