package services

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"skillswap/internal/config"
	"skillswap/internal/models"
	"skillswap/internal/repositories/interfaces"
	"skillswap/internal/utils"
	"skillswap/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AggregateCache is implemented by pkg/cache.RedisCache.
type AggregateCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

type RatingService interface {
	// SubmitRating records the actor's rating of the other participant of a completed swap and
	// recomputes the rated user's aggregate.
	SubmitRating(ctx context.Context, swapID, actorID primitive.ObjectID, rating int, comment string) (*models.Swap, error)
	// RecomputeAggregate rebuilds a user's aggregate from the full history of completed swaps.
	RecomputeAggregate(ctx context.Context, userID primitive.ObjectID) (*models.RatingAggregate, error)
	// GetAggregate serves the cached aggregate, falling back to the stored user record.
	GetAggregate(ctx context.Context, userID primitive.ObjectID) (*models.RatingAggregate, error)
}

type ratingService struct {
	swapRepo interfaces.SwapRepository
	userRepo interfaces.UserRepository
	locker   Locker
	cache    AggregateCache
	config   *config.SwapConfig
	logger   *logger.Logger
}

func NewRatingService(
	swapRepo interfaces.SwapRepository,
	userRepo interfaces.UserRepository,
	locker Locker,
	cache AggregateCache,
	config *config.SwapConfig,
	logger *logger.Logger,
) RatingService {
	return &ratingService{
		swapRepo: swapRepo,
		userRepo: userRepo,
		locker:   locker,
		cache:    cache,
		config:   config,
		logger:   logger,
	}
}

func (s *ratingService) SubmitRating(ctx context.Context, swapID, actorID primitive.ObjectID, rating int, comment string) (*models.Swap, error) {
	if rating < models.MinSwapRating || rating > models.MaxSwapRating {
		return nil, utils.NewValidationError(fmt.Sprintf("rating must be an integer between %d and %d", models.MinSwapRating, models.MaxSwapRating))
	}
	comment = strings.TrimSpace(comment)
	if utf8.RuneCountInString(comment) > s.config.MaxRatingCommentLen {
		return nil, utils.NewValidationError(fmt.Sprintf("comment must be at most %d characters", s.config.MaxRatingCommentLen))
	}

	swap, err := s.getSwap(ctx, swapID)
	if err != nil {
		return nil, err
	}
	if swap.Status != models.SwapStatusCompleted {
		return nil, utils.NewStateError(swapID.Hex(), string(models.SwapStatusCompleted), string(swap.Status))
	}

	// The actor rates the other participant, so the filled role is the opposite of the actor's.
	actorRole, ok := swap.RoleOf(actorID)
	if !ok {
		return nil, utils.NewAuthorizationError("only swap participants can rate")
	}
	role := actorRole.Opposite()
	ratedUserID := swap.Participant(role)

	if swap.RatingFor(role) != nil {
		return nil, utils.NewConflictError("this swap has already been rated by you")
	}

	unlock, err := s.locker.Lock(ctx, utils.LockUserRatingPrefix+ratedUserID.Hex())
	if err != nil {
		return nil, err
	}
	defer unlock()

	entry := &models.SwapRating{
		Rating:  rating,
		Comment: comment,
		Date:    time.Now().UTC(),
	}
	written, err := s.swapRepo.SetRating(ctx, swapID, role, entry)
	if err != nil {
		s.logger.WithError(err).WithSwapID(swapID).Error("Failed to write swap rating")
		return nil, err
	}
	if !written {
		return nil, s.explainRatingConflict(ctx, swapID)
	}

	s.logger.LogRatingEvent(ratedUserID, utils.EventRatingSubmitted, map[string]interface{}{
		"swap_id":  swapID.Hex(),
		"rater_id": actorID.Hex(),
		"role":     string(role),
		"rating":   rating,
	})

	if _, err := s.recompute(ctx, ratedUserID); err != nil {
		return nil, err
	}

	swap.SetRating(role, entry)
	return swap, nil
}

func (s *ratingService) RecomputeAggregate(ctx context.Context, userID primitive.ObjectID) (*models.RatingAggregate, error) {
	unlock, err := s.locker.Lock(ctx, utils.LockUserRatingPrefix+userID.Hex())
	if err != nil {
		return nil, err
	}
	defer unlock()

	return s.recompute(ctx, userID)
}

func (s *ratingService) GetAggregate(ctx context.Context, userID primitive.ObjectID) (*models.RatingAggregate, error) {
	cacheKey := utils.CacheUserRatingPrefix + userID.Hex()
	if s.cache != nil {
		var cached models.RatingAggregate
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	user, err := retryRead(ctx, func(ctx context.Context) (*models.User, error) {
		return s.userRepo.GetByID(ctx, userID)
	})
	if err != nil {
		return nil, err
	}

	// Only recompute fills the cache, under the user's rating lock.
	agg := user.Aggregate()
	return &agg, nil
}

// recompute must be called with the user's rating lock held.
func (s *ratingService) recompute(ctx context.Context, userID primitive.ObjectID) (*models.RatingAggregate, error) {
	swaps, err := retryRead(ctx, func(ctx context.Context) ([]*models.Swap, error) {
		return s.swapRepo.GetCompletedInvolving(ctx, userID)
	})
	if err != nil {
		s.logger.WithError(err).WithUserID(userID).Error("Failed to read completed swaps")
		return nil, err
	}

	agg := models.ComputeAggregate(userID, swaps)

	if err := s.userRepo.UpdateRatingAggregate(ctx, userID, agg.Rating, agg.TotalRatings); err != nil {
		if !utils.IsNotFound(err) {
			s.logger.WithError(err).WithUserID(userID).Error("Failed to write rating aggregate")
		}
		return nil, err
	}

	if s.cache != nil {
		s.cache.Delete(ctx, utils.CacheUserRatingPrefix+userID.Hex())
	}
	s.cacheAggregate(ctx, &agg)

	s.logger.LogRatingEvent(userID, utils.EventAggregateComputed, map[string]interface{}{
		"rating":        agg.Rating,
		"total_ratings": agg.TotalRatings,
	})

	return &agg, nil
}

// explainRatingConflict re-reads a swap whose conditional rating write matched nothing.
func (s *ratingService) explainRatingConflict(ctx context.Context, swapID primitive.ObjectID) error {
	current, err := s.getSwap(ctx, swapID)
	if err != nil {
		return err
	}
	if current.Status != models.SwapStatusCompleted {
		return utils.NewStateError(swapID.Hex(), string(models.SwapStatusCompleted), string(current.Status))
	}
	return utils.NewConflictError("this swap has already been rated by you")
}

func (s *ratingService) getSwap(ctx context.Context, swapID primitive.ObjectID) (*models.Swap, error) {
	return retryRead(ctx, func(ctx context.Context) (*models.Swap, error) {
		return s.swapRepo.GetByID(ctx, swapID)
	})
}

func (s *ratingService) cacheAggregate(ctx context.Context, agg *models.RatingAggregate) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, utils.CacheUserRatingPrefix+agg.UserID.Hex(), agg, s.config.AggregateCacheTTL); err != nil {
		s.logger.WithError(err).WithUserID(agg.UserID).Warn("Failed to cache rating aggregate")
	}
}
