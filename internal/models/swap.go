package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type SwapStatus string
type SwapRole string

const (
	SwapStatusPending   SwapStatus = "pending"
	SwapStatusAccepted  SwapStatus = "accepted"
	SwapStatusRejected  SwapStatus = "rejected"
	SwapStatusCancelled SwapStatus = "cancelled"
	SwapStatusCompleted SwapStatus = "completed"

	SwapRoleRequester SwapRole = "requester"
	SwapRoleRecipient SwapRole = "recipient"
)

// AllSwapStatuses lists every status a swap can hold, in lifecycle order.
var AllSwapStatuses = []SwapStatus{
	SwapStatusPending,
	SwapStatusAccepted,
	SwapStatusRejected,
	SwapStatusCancelled,
	SwapStatusCompleted,
}

func (s SwapStatus) IsValid() bool {
	for _, status := range AllSwapStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// CanTransitionTo reports whether next is reachable from s in one step.
func (s SwapStatus) CanTransitionTo(next SwapStatus) bool {
	switch s {
	case SwapStatusPending:
		return next == SwapStatusAccepted || next == SwapStatusRejected || next == SwapStatusCancelled
	case SwapStatusAccepted:
		return next == SwapStatusCompleted
	}
	return false
}

func (r SwapRole) IsValid() bool {
	return r == SwapRoleRequester || r == SwapRoleRecipient
}

// Opposite returns the other side of the swap.
func (r SwapRole) Opposite() SwapRole {
	if r == SwapRoleRequester {
		return SwapRoleRecipient
	}
	return SwapRoleRequester
}

// RatingField is the document field holding the rating received by this role.
func (r SwapRole) RatingField() string {
	return string(r) + "_rating"
}

type Swap struct {
	ID              primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Requester       primitive.ObjectID `json:"requester" bson:"requester"`
	Recipient       primitive.ObjectID `json:"recipient" bson:"recipient"`
	SkillOffered    string             `json:"skill_offered" bson:"skill_offered"`
	SkillRequested  string             `json:"skill_requested" bson:"skill_requested"`
	Status          SwapStatus         `json:"status" bson:"status"`
	Message         string             `json:"message,omitempty" bson:"message,omitempty"`
	RequesterRating *SwapRating        `json:"requester_rating,omitempty" bson:"requester_rating,omitempty"`
	RecipientRating *SwapRating        `json:"recipient_rating,omitempty" bson:"recipient_rating,omitempty"`
	CompletedAt     *time.Time         `json:"completed_at,omitempty" bson:"completed_at,omitempty"`
	CreatedAt       time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at" bson:"updated_at"`
}

// RoleOf resolves which side of the swap userID is on.
func (s *Swap) RoleOf(userID primitive.ObjectID) (SwapRole, bool) {
	switch userID {
	case s.Requester:
		return SwapRoleRequester, true
	case s.Recipient:
		return SwapRoleRecipient, true
	}
	return "", false
}

func (s *Swap) IsParticipant(userID primitive.ObjectID) bool {
	_, ok := s.RoleOf(userID)
	return ok
}

// Participant returns the user ID holding role.
func (s *Swap) Participant(role SwapRole) primitive.ObjectID {
	if role == SwapRoleRequester {
		return s.Requester
	}
	return s.Recipient
}

// RatingFor returns the rating received by role, or nil.
func (s *Swap) RatingFor(role SwapRole) *SwapRating {
	if role == SwapRoleRequester {
		return s.RequesterRating
	}
	return s.RecipientRating
}

func (s *Swap) SetRating(role SwapRole, rating *SwapRating) {
	if role == SwapRoleRequester {
		s.RequesterRating = rating
		return
	}
	s.RecipientRating = rating
}

// SwapFilter narrows participant queries.
type SwapFilter struct {
	Status    SwapStatus `json:"status" form:"status"`
	Direction string     `json:"direction" form:"direction"` // all, incoming, outgoing
}

const (
	SwapDirectionAll      = "all"
	SwapDirectionIncoming = "incoming"
	SwapDirectionOutgoing = "outgoing"
)
