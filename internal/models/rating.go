package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	MinSwapRating = 1
	MaxSwapRating = 5

	// UnratedDisplayRating is shown for users with no ratings yet. It is never stored.
	UnratedDisplayRating = 3.5
)

// SwapRating is one side's feedback embedded in a swap.
type SwapRating struct {
	Rating  int       `json:"rating" bson:"rating"`
	Comment string    `json:"comment,omitempty" bson:"comment,omitempty"`
	Date    time.Time `json:"date" bson:"date"`
}

// RatingAggregate is a user's reputation derived from completed swaps.
type RatingAggregate struct {
	UserID       primitive.ObjectID `json:"user_id" bson:"user_id"`
	Rating       float64            `json:"rating" bson:"rating"`
	TotalRatings int                `json:"total_ratings" bson:"total_ratings"`
}

// ComputeAggregate derives the aggregate for userID from the given swaps. Only completed swaps
// count, and only the rating sub-field describing userID as the rated party.
func ComputeAggregate(userID primitive.ObjectID, swaps []*Swap) RatingAggregate {
	agg := RatingAggregate{UserID: userID}
	sum := 0
	for _, swap := range swaps {
		if swap == nil || swap.Status != SwapStatusCompleted {
			continue
		}
		role, ok := swap.RoleOf(userID)
		if !ok {
			continue
		}
		if r := swap.RatingFor(role); r != nil {
			sum += r.Rating
			agg.TotalRatings++
		}
	}
	if agg.TotalRatings > 0 {
		agg.Rating = float64(sum) / float64(agg.TotalRatings)
	}
	return agg
}
