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

type swapRepository struct {
	collection *mongo.Collection
}

func NewSwapRepository(db *mongo.Database) interfaces.SwapRepository {
	return &swapRepository{
		collection: db.Collection("swaps"),
	}
}

// Basic operations
func (r *swapRepository) Create(ctx context.Context, swap *models.Swap) error {
	now := time.Now()
	swap.ID = primitive.NewObjectID()
	swap.CreatedAt = now
	swap.UpdatedAt = now

	_, err := r.collection.InsertOne(ctx, swap)
	if err != nil {
		return fmt.Errorf("failed to create swap: %w", err)
	}

	return nil
}

func (r *swapRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Swap, error) {
	var swap models.Swap
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&swap)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, utils.NewNotFoundError("swap", id.Hex())
		}
		return nil, fmt.Errorf("failed to get swap: %w", err)
	}

	return &swap, nil
}

// Participant queries
func (r *swapRepository) GetByParticipant(ctx context.Context, userID primitive.ObjectID, filter *models.SwapFilter, params *utils.PaginationParams) ([]*models.Swap, int64, error) {
	query := participantFilter(userID, filter)
	return r.findSwapsWithFilter(ctx, query, params)
}

func (r *swapRepository) FindPendingBetween(ctx context.Context, userA, userB primitive.ObjectID) (*models.Swap, error) {
	filter := bson.M{
		"$or": []bson.M{
			{"requester": userA, "recipient": userB},
			{"requester": userB, "recipient": userA},
		},
		"status": models.SwapStatusPending,
	}

	var swap models.Swap
	err := r.collection.FindOne(ctx, filter).Decode(&swap)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find pending swap: %w", err)
	}

	return &swap, nil
}

func (r *swapRepository) GetCompletedInvolving(ctx context.Context, userID primitive.ObjectID) ([]*models.Swap, error) {
	filter := bson.M{
		"$or": []bson.M{
			{"requester": userID},
			{"recipient": userID},
		},
		"status": models.SwapStatusCompleted,
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find completed swaps: %w", err)
	}
	defer cursor.Close(ctx)

	var swaps []*models.Swap
	if err := cursor.All(ctx, &swaps); err != nil {
		return nil, fmt.Errorf("failed to decode completed swaps: %w", err)
	}

	return swaps, nil
}

// Conditional writes
func (r *swapRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, expected, next models.SwapStatus, extra *interfaces.StatusUpdate) (bool, error) {
	set := bson.M{
		"status":     next,
		"updated_at": time.Now(),
	}
	if extra != nil && extra.CompletedAt != nil {
		set["completed_at"] = *extra.CompletedAt
	}

	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id, "status": expected},
		bson.M{"$set": set},
	)
	if err != nil {
		return false, fmt.Errorf("failed to update swap status: %w", err)
	}

	return result.MatchedCount == 1, nil
}

func (r *swapRepository) SetRating(ctx context.Context, id primitive.ObjectID, role models.SwapRole, rating *models.SwapRating) (bool, error) {
	field := role.RatingField()

	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{
			"_id":             id,
			"status":          models.SwapStatusCompleted,
			field + ".rating": bson.M{"$exists": false},
		},
		bson.M{"$set": bson.M{
			field:        rating,
			"updated_at": time.Now(),
		}},
	)
	if err != nil {
		return false, fmt.Errorf("failed to set swap rating: %w", err)
	}

	return result.MatchedCount == 1, nil
}

func (r *swapRepository) ClearRating(ctx context.Context, id primitive.ObjectID, role models.SwapRole) (bool, error) {
	field := role.RatingField()

	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{
			"_id":             id,
			field + ".rating": bson.M{"$exists": true},
		},
		bson.M{
			"$unset": bson.M{field: ""},
			"$set":   bson.M{"updated_at": time.Now()},
		},
	)
	if err != nil {
		return false, fmt.Errorf("failed to clear swap rating: %w", err)
	}

	return result.MatchedCount == 1, nil
}

// Admin
func (r *swapRepository) List(ctx context.Context, filter *models.SwapFilter, params *utils.PaginationParams) ([]*models.Swap, int64, error) {
	query := bson.M{}
	if filter != nil && filter.Status != "" {
		query["status"] = filter.Status
	}
	return r.findSwapsWithFilter(ctx, query, params)
}

func (r *swapRepository) CountByStatus(ctx context.Context, from, to *time.Time) (map[models.SwapStatus]int64, error) {
	match := bson.M{}
	if window := createdWindow(from, to); len(window) > 0 {
		match["created_at"] = window
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$status",
			"count": bson.M{"$sum": 1},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to count swaps by status: %w", err)
	}
	defer cursor.Close(ctx)

	counts := make(map[models.SwapStatus]int64)
	for cursor.Next(ctx) {
		var result struct {
			ID    models.SwapStatus `bson:"_id"`
			Count int64             `bson:"count"`
		}

		if err := cursor.Decode(&result); err != nil {
			return nil, fmt.Errorf("failed to decode swap counts: %w", err)
		}

		counts[result.ID] = result.Count
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate swap counts: %w", err)
	}

	return counts, nil
}

// Helper methods
func participantFilter(userID primitive.ObjectID, filter *models.SwapFilter) bson.M {
	query := bson.M{}

	direction := models.SwapDirectionAll
	if filter != nil && filter.Direction != "" {
		direction = filter.Direction
	}

	switch direction {
	case models.SwapDirectionIncoming:
		query["recipient"] = userID
	case models.SwapDirectionOutgoing:
		query["requester"] = userID
	default:
		query["$or"] = []bson.M{
			{"requester": userID},
			{"recipient": userID},
		}
	}

	if filter != nil && filter.Status != "" {
		query["status"] = filter.Status
	}

	return query
}

func createdWindow(from, to *time.Time) bson.M {
	window := bson.M{}
	if from != nil {
		window["$gte"] = *from
	}
	if to != nil {
		window["$lte"] = *to
	}
	return window
}

func (r *swapRepository) findSwapsWithFilter(ctx context.Context, filter bson.M, params *utils.PaginationParams) ([]*models.Swap, int64, error) {
	if params == nil {
		params = utils.DefaultPaginationParams()
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count swaps: %w", err)
	}

	cursor, err := r.collection.Find(ctx, filter, params.GetSortOptions())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find swaps: %w", err)
	}
	defer cursor.Close(ctx)

	var swaps []*models.Swap
	for cursor.Next(ctx) {
		var swap models.Swap
		if err := cursor.Decode(&swap); err != nil {
			return nil, 0, fmt.Errorf("failed to decode swap: %w", err)
		}
		swaps = append(swaps, &swap)
	}
	if err := cursor.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate swaps: %w", err)
	}

	return swaps, total, nil
}

