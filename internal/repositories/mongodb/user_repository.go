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

const userCacheTTL = 15 * time.Minute

type userRepository struct {
	collection *mongo.Collection
	cache      CacheService
}

func NewUserRepository(db *mongo.Database, cache CacheService) interfaces.UserRepository {
	return &userRepository{
		collection: db.Collection("users"),
		cache:      cache,
	}
}

// Basic operations
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	now := time.Now()
	user.ID = primitive.NewObjectID()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Role == "" {
		user.Role = models.UserRoleUser
	}

	_, err := r.collection.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return utils.NewConflictError("a user with this email already exists")
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	r.cacheUser(ctx, user)

	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	// Try cache first
	if user := r.getUserFromCache(ctx, id.Hex()); user != nil {
		return user, nil
	}

	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, utils.NewNotFoundError("user", id.Hex())
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	r.cacheUser(ctx, &user)

	return &user, nil
}

// Rating aggregate
func (r *userRepository) UpdateRatingAggregate(ctx context.Context, id primitive.ObjectID, rating float64, totalRatings int) error {
	return r.update(ctx, id, bson.M{
		"rating":        rating,
		"total_ratings": totalRatings,
	})
}

// Moderation
func (r *userRepository) SetBanned(ctx context.Context, id primitive.ObjectID, banned bool) error {
	return r.update(ctx, id, bson.M{"is_banned": banned})
}

// Listing and statistics
func (r *userRepository) List(ctx context.Context, params *utils.PaginationParams) ([]*models.User, int64, error) {
	if params == nil {
		params = utils.DefaultPaginationParams()
	}

	filter := bson.M{}
	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	cursor, err := r.collection.Find(ctx, filter, params.GetSortOptions())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	defer cursor.Close(ctx)

	var users []*models.User
	for cursor.Next(ctx) {
		var user models.User
		if err := cursor.Decode(&user); err != nil {
			return nil, 0, fmt.Errorf("failed to decode user: %w", err)
		}
		users = append(users, &user)
	}
	if err := cursor.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate users: %w", err)
	}

	return users, total, nil
}

func (r *userRepository) GetTotalCount(ctx context.Context) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

func (r *userRepository) GetBannedCount(ctx context.Context) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"is_banned": true})
	if err != nil {
		return 0, fmt.Errorf("failed to count banned users: %w", err)
	}
	return count, nil
}

// Helper methods
func (r *userRepository) update(ctx context.Context, id primitive.ObjectID, set bson.M) error {
	set["updated_at"] = time.Now()

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if result.MatchedCount == 0 {
		return utils.NewNotFoundError("user", id.Hex())
	}

	r.invalidateUserCache(ctx, id.Hex())

	return nil
}

func userCacheKey(userID string) string {
	return fmt.Sprintf("user:%s", userID)
}

func (r *userRepository) cacheUser(ctx context.Context, user *models.User) {
	if r.cache != nil {
		r.cache.Set(ctx, userCacheKey(user.ID.Hex()), user, userCacheTTL)
	}
}

func (r *userRepository) getUserFromCache(ctx context.Context, userID string) *models.User {
	if r.cache == nil {
		return nil
	}

	var user models.User
	if err := r.cache.Get(ctx, userCacheKey(userID), &user); err != nil {
		return nil
	}

	return &user
}

func (r *userRepository) invalidateUserCache(ctx context.Context, userID string) {
	if r.cache != nil {
		r.cache.Delete(ctx, userCacheKey(userID))
	}
}
