package memory

import (
	"context"
	"sync"
	"time"

	"skillswap/internal/models"
	"skillswap/internal/repositories/interfaces"
	"skillswap/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type auditLogRepository struct {
	mu   sync.RWMutex
	logs []*models.AuditLog
}

func NewAuditLogRepository() interfaces.AuditLogRepository {
	return &auditLogRepository{}
}

func (r *auditLogRepository) Create(ctx context.Context, auditLog *models.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	auditLog.ID = primitive.NewObjectID()
	auditLog.CreatedAt = time.Now().UTC()

	entry := *auditLog
	r.logs = append(r.logs, &entry)
	return nil
}

func (r *auditLogRepository) List(ctx context.Context, filter *models.AuditLogFilter, params *utils.PaginationParams) ([]*models.AuditLog, int64, error) {
	if params == nil {
		params = utils.DefaultPaginationParams()
	}

	r.mu.RLock()
	var matched []*models.AuditLog
	// Appended in creation order, so walking backwards yields newest first.
	for i := len(r.logs) - 1; i >= 0; i-- {
		entry := r.logs[i]
		if filter != nil {
			if filter.ActorID != nil && entry.ActorID != *filter.ActorID {
				continue
			}
			if filter.Action != "" && entry.Action != filter.Action {
				continue
			}
			if filter.Resource != "" && entry.Resource != filter.Resource {
				continue
			}
			if filter.ResourceID != "" && entry.ResourceID != filter.ResourceID {
				continue
			}
		}
		c := *entry
		matched = append(matched, &c)
	}
	r.mu.RUnlock()

	return paginate(matched, params), int64(len(matched)), nil
}
