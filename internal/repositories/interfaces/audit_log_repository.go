package interfaces

import (
	"context"

	"skillswap/internal/models"
	"skillswap/internal/utils"
)

type AuditLogRepository interface {
	Create(ctx context.Context, auditLog *models.AuditLog) error

	// List returns entries matching filter, newest first.
	List(ctx context.Context, filter *models.AuditLogFilter, params *utils.PaginationParams) ([]*models.AuditLog, int64, error)
}
