package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AuditAction string

const (
	AuditActionUserBanned       AuditAction = "user_banned"
	AuditActionUserUnbanned     AuditAction = "user_unbanned"
	AuditActionFeedbackDeleted  AuditAction = "feedback_deleted"
	AuditActionSwapCompleted    AuditAction = "swap_completed"
	AuditActionRatingRecomputed AuditAction = "rating_recomputed"
)

const (
	AuditResourceUser = "user"
	AuditResourceSwap = "swap"
)

// AuditLog records one moderation action taken by an admin. Entries are append-only.
type AuditLog struct {
	ID         primitive.ObjectID     `json:"id" bson:"_id,omitempty"`
	ActorID    primitive.ObjectID     `json:"actor_id" bson:"actor_id"`
	Action     AuditAction            `json:"action" bson:"action"`
	Resource   string                 `json:"resource" bson:"resource"`
	ResourceID string                 `json:"resource_id" bson:"resource_id"`
	Metadata   map[string]interface{} `json:"metadata,omitempty" bson:"metadata,omitempty"`
	CreatedAt  time.Time              `json:"created_at" bson:"created_at"`
}

type AuditLogFilter struct {
	ActorID    *primitive.ObjectID `json:"actor_id,omitempty"`
	Action     AuditAction         `json:"action,omitempty"`
	Resource   string              `json:"resource,omitempty"`
	ResourceID string              `json:"resource_id,omitempty"`
}
