package validators

import (
	"skillswap/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AuditLogQuery struct {
	ActorID    string `form:"actor_id" json:"actor_id" validate:"omitempty,object_id"`
	Action     string `form:"action" json:"action" validate:"omitempty,oneof=user_banned user_unbanned feedback_deleted swap_completed rating_recomputed"`
	Resource   string `form:"resource" json:"resource" validate:"omitempty,oneof=user swap"`
	ResourceID string `form:"resource_id" json:"resource_id" validate:"omitempty,object_id"`
}

func ValidateAuditLogQuery(req *AuditLogQuery) ValidationErrors {
	return ValidateStruct(req)
}

// Filter assumes the query has been validated.
func (q *AuditLogQuery) Filter() *models.AuditLogFilter {
	filter := &models.AuditLogFilter{
		Action:     models.AuditAction(q.Action),
		Resource:   q.Resource,
		ResourceID: q.ResourceID,
	}
	if id, err := primitive.ObjectIDFromHex(q.ActorID); err == nil {
		filter.ActorID = &id
	}
	return filter
}
