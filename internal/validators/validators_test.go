package validators

import (
	"testing"

	"skillswap/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestValidateSwapCreate(t *testing.T) {
	valid := &SwapCreateRequest{
		RecipientID:    primitive.NewObjectID().Hex(),
		SkillOffered:   "Guitar",
		SkillRequested: "Python",
	}
	assert.Empty(t, ValidateSwapCreate(valid))

	errs := ValidateSwapCreate(&SwapCreateRequest{RecipientID: "nope", SkillOffered: "  "})
	require.Len(t, errs, 3)

	details := errs.Details()
	assert.Equal(t, "Invalid ID format", details["recipient_id"])
	assert.Equal(t, "skill_offered is required", details["skill_offered"])
	assert.Contains(t, details, "skill_requested")
}

func TestValidateSwapRate(t *testing.T) {
	for rating := models.MinSwapRating; rating <= models.MaxSwapRating; rating++ {
		assert.Empty(t, ValidateSwapRate(&SwapRateRequest{Rating: rating}))
	}

	for _, rating := range []int{0, 6, -1} {
		errs := ValidateSwapRate(&SwapRateRequest{Rating: rating})
		require.Len(t, errs, 1)
		assert.Equal(t, "rating", errs[0].Field)
	}

	req := &SwapRateRequest{Rating: 5, Role: "recipientRating"}
	assert.Empty(t, ValidateSwapRate(req))
	assert.Equal(t, "recipient", req.Role)

	errs := ValidateSwapRate(&SwapRateRequest{Rating: 5, Role: "judge"})
	require.Len(t, errs, 1)
	assert.Equal(t, "role", errs[0].Field)
}

func TestValidateSwapListQuery(t *testing.T) {
	assert.Empty(t, ValidateSwapListQuery(&SwapListQuery{}))
	assert.Empty(t, ValidateSwapListQuery(&SwapListQuery{Status: "completed", Direction: "incoming"}))
	assert.Len(t, ValidateSwapListQuery(&SwapListQuery{Status: "archived"}), 1)
	assert.Len(t, ValidateSwapListQuery(&SwapListQuery{Direction: "sideways"}), 1)
}

func TestValidateUserBan(t *testing.T) {
	banned := true
	assert.Empty(t, ValidateUserBan(&UserBanRequest{Banned: &banned}))
	assert.Len(t, ValidateUserBan(&UserBanRequest{}), 1)
}
