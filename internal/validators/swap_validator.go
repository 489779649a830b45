package validators

import (
	"strings"

	"skillswap/internal/models"
)

type SwapCreateRequest struct {
	RecipientID    string `json:"recipient_id" validate:"required,object_id"`
	SkillOffered   string `json:"skill_offered" validate:"not_blank"`
	SkillRequested string `json:"skill_requested" validate:"not_blank"`
	Message        string `json:"message"`
}

// SwapRateRequest carries a rating. Role is optional; when present it names the role being filled
// and must match the one derived from the caller.
type SwapRateRequest struct {
	Rating  int    `json:"rating" validate:"rating_value"`
	Comment string `json:"comment"`
	Role    string `json:"role" validate:"omitempty,swap_role"`
}

type SwapListQuery struct {
	Status    string `form:"status" json:"status" validate:"omitempty,swap_status"`
	Direction string `form:"direction" json:"direction" validate:"omitempty,oneof=all incoming outgoing"`
}

type UserBanRequest struct {
	Banned *bool `json:"banned" validate:"required"`
}

func ValidateSwapCreate(req *SwapCreateRequest) ValidationErrors {
	return ValidateStruct(req)
}

// ValidateSwapRate also accepts the legacy role names requesterRating and recipientRating.
func ValidateSwapRate(req *SwapRateRequest) ValidationErrors {
	req.Role = normalizeRole(req.Role)
	return ValidateStruct(req)
}

func ValidateSwapListQuery(req *SwapListQuery) ValidationErrors {
	return ValidateStruct(req)
}

func ValidateUserBan(req *UserBanRequest) ValidationErrors {
	return ValidateStruct(req)
}

func (q *SwapListQuery) Filter() *models.SwapFilter {
	return &models.SwapFilter{
		Status:    models.SwapStatus(q.Status),
		Direction: q.Direction,
	}
}

func normalizeRole(role string) string {
	role = strings.TrimSpace(role)
	switch strings.ToLower(role) {
	case "requesterrating", "requester_rating":
		return string(models.SwapRoleRequester)
	case "recipientrating", "recipient_rating":
		return string(models.SwapRoleRecipient)
	}
	return role
}
