package shared

import (
	"skillswap/internal/middleware"
	"skillswap/internal/models"
	"skillswap/internal/services"
	"skillswap/internal/utils"
	"skillswap/internal/validators"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type SwapHandler struct {
	swapService   services.SwapService
	ratingService services.RatingService
}

func NewSwapHandler(swapService services.SwapService, ratingService services.RatingService) *SwapHandler {
	return &SwapHandler{
		swapService:   swapService,
		ratingService: ratingService,
	}
}

// ProposeSwap creates a pending swap from the caller to another user
func (h *SwapHandler) ProposeSwap(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	var request validators.SwapCreateRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}
	if errs := validators.ValidateSwapCreate(&request); len(errs) > 0 {
		utils.ValidationErrorResponse(c, errs.Details())
		return
	}

	recipientID, _ := primitive.ObjectIDFromHex(request.RecipientID)
	swap, err := h.swapService.Propose(c.Request.Context(), &services.ProposeSwapRequest{
		RequesterID:    userID,
		RecipientID:    recipientID,
		SkillOffered:   request.SkillOffered,
		SkillRequested: request.SkillRequested,
		Message:        request.Message,
	})
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, "Swap proposed successfully", swap)
}

// GetMySwaps lists swaps the caller takes part in
func (h *SwapHandler) GetMySwaps(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	var query validators.SwapListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		utils.BadRequestResponse(c, "Invalid query: "+err.Error())
		return
	}
	if errs := validators.ValidateSwapListQuery(&query); len(errs) > 0 {
		utils.ValidationErrorResponse(c, errs.Details())
		return
	}

	params := utils.GetPaginationParams(c)
	swaps, total, err := h.swapService.ListForUser(c.Request.Context(), userID, query.Filter(), params)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Swaps retrieved successfully", swaps, &utils.Meta{
		Pagination: utils.CreatePaginationMeta(params, total),
	})
}

// GetSwap returns a swap visible to the caller
func (h *SwapHandler) GetSwap(c *gin.Context) {
	h.withSwap(c, func(swapID, userID primitive.ObjectID) (*models.Swap, error) {
		return h.swapService.Get(c.Request.Context(), swapID, userID)
	}, "Swap retrieved successfully")
}

func (h *SwapHandler) AcceptSwap(c *gin.Context) {
	h.withSwap(c, func(swapID, userID primitive.ObjectID) (*models.Swap, error) {
		return h.swapService.Accept(c.Request.Context(), swapID, userID)
	}, "Swap accepted")
}

func (h *SwapHandler) RejectSwap(c *gin.Context) {
	h.withSwap(c, func(swapID, userID primitive.ObjectID) (*models.Swap, error) {
		return h.swapService.Reject(c.Request.Context(), swapID, userID)
	}, "Swap rejected")
}

func (h *SwapHandler) CancelSwap(c *gin.Context) {
	h.withSwap(c, func(swapID, userID primitive.ObjectID) (*models.Swap, error) {
		return h.swapService.Cancel(c.Request.Context(), swapID, userID)
	}, "Swap cancelled")
}

// CompleteSwap marks an accepted swap completed. Also mounted on the admin group.
func (h *SwapHandler) CompleteSwap(c *gin.Context) {
	h.withSwap(c, func(swapID, userID primitive.ObjectID) (*models.Swap, error) {
		return h.swapService.Complete(c.Request.Context(), swapID, userID)
	}, "Swap completed")
}

// RateSwap records the caller's rating of the other participant
func (h *SwapHandler) RateSwap(c *gin.Context) {
	var request validators.SwapRateRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}
	if errs := validators.ValidateSwapRate(&request); len(errs) > 0 {
		utils.ValidationErrorResponse(c, errs.Details())
		return
	}

	h.withSwap(c, func(swapID, userID primitive.ObjectID) (*models.Swap, error) {
		if request.Role != "" {
			if err := h.checkRole(c, swapID, userID, models.SwapRole(request.Role)); err != nil {
				return nil, err
			}
		}
		return h.ratingService.SubmitRating(c.Request.Context(), swapID, userID, request.Rating, request.Comment)
	}, "Rating submitted successfully")
}

// GetUserRating returns a user's rating aggregate
func (h *SwapHandler) GetUserRating(c *gin.Context) {
	userID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user ID")
		return
	}

	aggregate, err := h.ratingService.GetAggregate(c.Request.Context(), userID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	display := aggregate.Rating
	if aggregate.TotalRatings == 0 {
		display = models.UnratedDisplayRating
	}

	utils.SuccessResponse(c, "Rating retrieved successfully", gin.H{
		"user_id":        aggregate.UserID,
		"rating":         aggregate.Rating,
		"total_ratings":  aggregate.TotalRatings,
		"display_rating": display,
	})
}

// checkRole verifies an explicitly requested role is the one the caller fills. Only a participant
// naming the wrong role on a completed swap is refused here; the rating service reports the rest.
func (h *SwapHandler) checkRole(c *gin.Context, swapID, userID primitive.ObjectID, role models.SwapRole) error {
	swap, err := h.swapService.Get(c.Request.Context(), swapID, userID)
	if err != nil {
		if utils.IsKind(err, utils.KindAuthorization) {
			return nil
		}
		return err
	}
	if swap.Status != models.SwapStatusCompleted {
		return nil
	}
	actorRole, ok := swap.RoleOf(userID)
	if ok && actorRole.Opposite() != role {
		return utils.NewAuthorizationError("you cannot submit a rating for this role").WithDetail("role", string(role))
	}
	return nil
}

func (h *SwapHandler) withSwap(c *gin.Context, action func(swapID, userID primitive.ObjectID) (*models.Swap, error), message string) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	swapID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid swap ID")
		return
	}

	swap, err := action(swapID, userID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, message, swap)
}

