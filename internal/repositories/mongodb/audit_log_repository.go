package mongodb

import (
	"context"
	"fmt"
	"time"

	"skillswap/internal/models"
	"skillswap/internal/repositories/interfaces"
	"skillswap/internal/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type auditLogRepository struct {
	collection *mongo.Collection
}

func NewAuditLogRepository(db *mongo.Database) interfaces.AuditLogRepository {
	return &auditLogRepository{
		collection: db.Collection("audit_logs"),
	}
}

func (r *auditLogRepository) Create(ctx context.Context, auditLog *models.AuditLog) error {
	auditLog.ID = primitive.NewObjectID()
	auditLog.CreatedAt = time.Now().UTC()

	_, err := r.collection.InsertOne(ctx, auditLog)
	if err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}

	return nil
}

func (r *auditLogRepository) List(ctx context.Context, filter *models.AuditLogFilter, params *utils.PaginationParams) ([]*models.AuditLog, int64, error) {
	if params == nil {
		params = utils.DefaultPaginationParams()
	}

	query := bson.M{}
	if filter != nil {
		if filter.ActorID != nil {
			query["actor_id"] = *filter.ActorID
		}
		if filter.Action != "" {
			query["action"] = filter.Action
		}
		if filter.Resource != "" {
			query["resource"] = filter.Resource
		}
		if filter.ResourceID != "" {
			query["resource_id"] = filter.ResourceID
		}
	}

	total, err := r.collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count audit logs: %w", err)
	}

	// Audit entries are always read newest first.
	opts := params.GetSortOptions()
	opts.SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})

	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find audit logs: %w", err)
	}
	defer cursor.Close(ctx)

	var logs []*models.AuditLog
	for cursor.Next(ctx) {
		var log models.AuditLog
		if err := cursor.Decode(&log); err != nil {
			return nil, 0, fmt.Errorf("failed to decode audit log: %w", err)
		}
		logs = append(logs, &log)
	}
	if err := cursor.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate audit logs: %w", err)
	}

	return logs, total, nil
}
