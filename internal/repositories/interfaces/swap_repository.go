package interfaces

import (
	"context"
	"time"

	"skillswap/internal/models"
	"skillswap/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StatusUpdate carries the extra fields written alongside a status transition.
type StatusUpdate struct {
	CompletedAt *time.Time
}

type SwapRepository interface {
	// Basic operations
	Create(ctx context.Context, swap *models.Swap) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Swap, error)

	// Participant queries
	GetByParticipant(ctx context.Context, userID primitive.ObjectID, filter *models.SwapFilter, params *utils.PaginationParams) ([]*models.Swap, int64, error)
	FindPendingBetween(ctx context.Context, userA, userB primitive.ObjectID) (*models.Swap, error)
	GetCompletedInvolving(ctx context.Context, userID primitive.ObjectID) ([]*models.Swap, error)

	// Conditional writes. Each reports false when the swap was not in the expected state.
	UpdateStatus(ctx context.Context, id primitive.ObjectID, expected, next models.SwapStatus, extra *StatusUpdate) (bool, error)
	SetRating(ctx context.Context, id primitive.ObjectID, role models.SwapRole, rating *models.SwapRating) (bool, error)
	ClearRating(ctx context.Context, id primitive.ObjectID, role models.SwapRole) (bool, error)

	// Admin
	List(ctx context.Context, filter *models.SwapFilter, params *utils.PaginationParams) ([]*models.Swap, int64, error)
	CountByStatus(ctx context.Context, from, to *time.Time) (map[models.SwapStatus]int64, error)
}
