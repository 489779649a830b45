package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserRole string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"
)

type User struct {
	ID            primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name          string             `json:"name" bson:"name"`
	Email         string             `json:"email" bson:"email"`
	SkillsOffered []string           `json:"skills_offered" bson:"skills_offered"`
	SkillsWanted  []string           `json:"skills_wanted" bson:"skills_wanted"`
	Role          UserRole           `json:"role" bson:"role"`
	IsBanned      bool               `json:"is_banned" bson:"is_banned"`
	Rating        float64            `json:"rating" bson:"rating"`
	TotalRatings  int                `json:"total_ratings" bson:"total_ratings"`
	CreatedAt     time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at" bson:"updated_at"`
}

func (u *User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}

func (u *User) Offers(skill string) bool {
	for _, s := range u.SkillsOffered {
		if s == skill {
			return true
		}
	}
	return false
}

// DisplayRating is the rating shown to other users.
func (u *User) DisplayRating() float64 {
	if u.TotalRatings == 0 {
		return UnratedDisplayRating
	}
	return u.Rating
}

func (u *User) Aggregate() RatingAggregate {
	return RatingAggregate{
		UserID:       u.ID,
		Rating:       u.Rating,
		TotalRatings: u.TotalRatings,
	}
}
