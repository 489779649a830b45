package services

import (
	"context"
	"fmt"

	"skillswap/internal/models"
	"skillswap/internal/repositories/interfaces"
	"skillswap/internal/utils"
	"skillswap/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ModerationService interface {
	// IsAdmin reports whether actorID holds admin capability. Unknown actors are not admins.
	IsAdmin(ctx context.Context, actorID primitive.ObjectID) (bool, error)
	// RequireAdmin returns an AuthorizationError unless actorID is an admin.
	RequireAdmin(ctx context.Context, actorID primitive.ObjectID) error

	SetBanned(ctx context.Context, actorID, userID primitive.ObjectID, banned bool) (*models.User, error)
	ListUsers(ctx context.Context, actorID primitive.ObjectID, params *utils.PaginationParams) ([]*models.User, int64, error)

	// RecordAction appends an audit entry for an admin action that has already been applied.
	// A failed write is logged and never undoes the action.
	RecordAction(ctx context.Context, actorID primitive.ObjectID, action models.AuditAction, resource, resourceID string, metadata map[string]interface{})
	ListAuditLogs(ctx context.Context, actorID primitive.ObjectID, filter *models.AuditLogFilter, params *utils.PaginationParams) ([]*models.AuditLog, int64, error)
}

type moderationService struct {
	userRepo  interfaces.UserRepository
	auditRepo interfaces.AuditLogRepository
	logger    *logger.Logger
}

func NewModerationService(userRepo interfaces.UserRepository, auditRepo interfaces.AuditLogRepository, logger *logger.Logger) ModerationService {
	return &moderationService{
		userRepo:  userRepo,
		auditRepo: auditRepo,
		logger:    logger,
	}
}

func (s *moderationService) IsAdmin(ctx context.Context, actorID primitive.ObjectID) (bool, error) {
	user, err := retryRead(ctx, func(ctx context.Context) (*models.User, error) {
		return s.userRepo.GetByID(ctx, actorID)
	})
	if err != nil {
		if utils.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return user.IsAdmin(), nil
}

func (s *moderationService) RequireAdmin(ctx context.Context, actorID primitive.ObjectID) error {
	isAdmin, err := s.IsAdmin(ctx, actorID)
	if err != nil {
		return err
	}
	if !isAdmin {
		return utils.NewAuthorizationError("admin privileges required")
	}
	return nil
}

func (s *moderationService) SetBanned(ctx context.Context, actorID, userID primitive.ObjectID, banned bool) (*models.User, error) {
	if err := s.RequireAdmin(ctx, actorID); err != nil {
		return nil, err
	}
	if actorID == userID && banned {
		return nil, utils.NewValidationError("admins cannot ban themselves")
	}

	if err := s.userRepo.SetBanned(ctx, userID, banned); err != nil {
		if !utils.IsNotFound(err) {
			s.logger.WithError(err).WithUserID(userID).Error("Failed to update ban flag")
		}
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload user: %w", err)
	}

	action := models.AuditActionUserUnbanned
	if banned {
		action = models.AuditActionUserBanned
	}
	s.RecordAction(ctx, actorID, action, models.AuditResourceUser, userID.Hex(), nil)

	return user, nil
}

func (s *moderationService) ListUsers(ctx context.Context, actorID primitive.ObjectID, params *utils.PaginationParams) ([]*models.User, int64, error) {
	if err := s.RequireAdmin(ctx, actorID); err != nil {
		return nil, 0, err
	}

	return retryList(ctx, func(ctx context.Context) ([]*models.User, int64, error) {
		return s.userRepo.List(ctx, params)
	})
}

func (s *moderationService) RecordAction(ctx context.Context, actorID primitive.ObjectID, action models.AuditAction, resource, resourceID string, metadata map[string]interface{}) {
	details := map[string]interface{}{"resource_id": resourceID}
	for k, v := range metadata {
		details[k] = v
	}
	s.logger.WithContext(ctx).LogAdminAction(actorID, string(action), resource, details)

	entry := &models.AuditLog{
		ActorID:    actorID,
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
		Metadata:   metadata,
	}
	if err := s.auditRepo.Create(ctx, entry); err != nil {
		s.logger.WithError(err).WithUserID(actorID).WithField("action", string(action)).Error("Failed to write audit log")
	}
}

func (s *moderationService) ListAuditLogs(ctx context.Context, actorID primitive.ObjectID, filter *models.AuditLogFilter, params *utils.PaginationParams) ([]*models.AuditLog, int64, error) {
	if err := s.RequireAdmin(ctx, actorID); err != nil {
		return nil, 0, err
	}

	return retryList(ctx, func(ctx context.Context) ([]*models.AuditLog, int64, error) {
		return s.auditRepo.List(ctx, filter, params)
	})
}
