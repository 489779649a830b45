package interfaces

import (
	"context"

	"skillswap/internal/models"
	"skillswap/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserRepository interface {
	// Basic operations
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)

	// Rating aggregate, written only by the rating service
	UpdateRatingAggregate(ctx context.Context, id primitive.ObjectID, rating float64, totalRatings int) error

	// Moderation
	SetBanned(ctx context.Context, id primitive.ObjectID, banned bool) error

	// Listing and statistics
	List(ctx context.Context, params *utils.PaginationParams) ([]*models.User, int64, error)
	GetTotalCount(ctx context.Context) (int64, error)
	GetBannedCount(ctx context.Context) (int64, error)
}
