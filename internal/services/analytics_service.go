package services

import (
	"context"
	"fmt"
	"time"

	"skillswap/internal/models"
	"skillswap/internal/repositories/interfaces"
	"skillswap/internal/utils"
	"skillswap/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AnalyticsService interface {
	// SwapStats counts swaps created in the optional [from, to] window per status.
	SwapStats(ctx context.Context, actorID primitive.ObjectID, from, to *time.Time) (*models.SwapStats, error)
	PlatformStats(ctx context.Context, actorID primitive.ObjectID) (*models.PlatformStats, error)
}

type analyticsService struct {
	swapRepo   interfaces.SwapRepository
	userRepo   interfaces.UserRepository
	moderation ModerationService
	logger     *logger.Logger
}

func NewAnalyticsService(
	swapRepo interfaces.SwapRepository,
	userRepo interfaces.UserRepository,
	moderation ModerationService,
	logger *logger.Logger,
) AnalyticsService {
	return &analyticsService{
		swapRepo:   swapRepo,
		userRepo:   userRepo,
		moderation: moderation,
		logger:     logger,
	}
}

func (s *analyticsService) SwapStats(ctx context.Context, actorID primitive.ObjectID, from, to *time.Time) (*models.SwapStats, error) {
	if err := s.moderation.RequireAdmin(ctx, actorID); err != nil {
		return nil, err
	}
	if from != nil && to != nil && from.After(*to) {
		return nil, utils.NewValidationError("start date must not be after end date")
	}

	counts, err := retryRead(ctx, func(ctx context.Context) (map[models.SwapStatus]int64, error) {
		return s.swapRepo.CountByStatus(ctx, from, to)
	})
	if err != nil {
		s.logger.WithError(err).Error("Failed to count swaps by status")
		return nil, err
	}

	stats := &models.SwapStats{
		PeriodStart:    from,
		PeriodEnd:      to,
		PendingSwaps:   counts[models.SwapStatusPending],
		AcceptedSwaps:  counts[models.SwapStatusAccepted],
		RejectedSwaps:  counts[models.SwapStatusRejected],
		CancelledSwaps: counts[models.SwapStatusCancelled],
		CompletedSwaps: counts[models.SwapStatusCompleted],
	}
	for _, count := range counts {
		stats.TotalSwaps += count
	}
	stats.CompletionRate = utils.Percentage(stats.CompletedSwaps, stats.TotalSwaps)

	return stats, nil
}

func (s *analyticsService) PlatformStats(ctx context.Context, actorID primitive.ObjectID) (*models.PlatformStats, error) {
	if err := s.moderation.RequireAdmin(ctx, actorID); err != nil {
		return nil, err
	}

	totalUsers, err := retryRead(ctx, s.userRepo.GetTotalCount)
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	bannedUsers, err := retryRead(ctx, s.userRepo.GetBannedCount)
	if err != nil {
		return nil, fmt.Errorf("failed to count banned users: %w", err)
	}
	counts, err := retryRead(ctx, func(ctx context.Context) (map[models.SwapStatus]int64, error) {
		return s.swapRepo.CountByStatus(ctx, nil, nil)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to count swaps: %w", err)
	}

	stats := &models.PlatformStats{
		TotalUsers:     totalUsers,
		BannedUsers:    bannedUsers,
		PendingSwaps:   counts[models.SwapStatusPending],
		CompletedSwaps: counts[models.SwapStatusCompleted],
	}
	for _, count := range counts {
		stats.TotalSwaps += count
	}
	stats.CompletionRate = utils.Percentage(stats.CompletedSwaps, stats.TotalSwaps)

	return stats, nil
}
