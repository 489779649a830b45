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

type AdminHandler struct {
	swapService       services.SwapService
	ratingService     services.RatingService
	moderationService services.ModerationService
	analyticsService  services.AnalyticsService
}

func NewAdminHandler(
	swapService services.SwapService,
	ratingService services.RatingService,
	moderationService services.ModerationService,
	analyticsService services.AnalyticsService,
) *AdminHandler {
	return &AdminHandler{
		swapService:       swapService,
		ratingService:     ratingService,
		moderationService: moderationService,
		analyticsService:  analyticsService,
	}
}

// DeleteFeedback clears one side's rating on a swap
func (h *AdminHandler) DeleteFeedback(c *gin.Context) {
	adminID, ok := middleware.GetUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	swapID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid swap ID")
		return
	}

	role := models.SwapRole(c.Param("role"))
	swap, err := h.swapService.DeleteFeedback(c.Request.Context(), swapID, role, adminID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Feedback deleted successfully", swap)
}

// GetAllSwaps lists every swap on the platform
func (h *AdminHandler) GetAllSwaps(c *gin.Context) {
	adminID, ok := middleware.GetUserID(c)
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
	swaps, total, err := h.swapService.ListAll(c.Request.Context(), adminID, query.Filter(), params)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Swaps retrieved successfully", swaps, &utils.Meta{
		Pagination: utils.CreatePaginationMeta(params, total),
	})
}

func (h *AdminHandler) GetUsers(c *gin.Context) {
	adminID, ok := middleware.GetUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	params := utils.GetPaginationParams(c)
	users, total, err := h.moderationService.ListUsers(c.Request.Context(), adminID, params)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Users retrieved successfully", users, &utils.Meta{
		Pagination: utils.CreatePaginationMeta(params, total),
	})
}

// SetUserBan bans or unbans a user
func (h *AdminHandler) SetUserBan(c *gin.Context) {
	adminID, ok := middleware.GetUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	userID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user ID")
		return
	}

	var request validators.UserBanRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}
	if errs := validators.ValidateUserBan(&request); len(errs) > 0 {
		utils.ValidationErrorResponse(c, errs.Details())
		return
	}

	user, err := h.moderationService.SetBanned(c.Request.Context(), adminID, userID, *request.Banned)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "User updated successfully", user)
}

func (h *AdminHandler) GetPlatformStats(c *gin.Context) {
	adminID, ok := middleware.GetUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	stats, err := h.analyticsService.PlatformStats(c.Request.Context(), adminID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Platform statistics retrieved successfully", stats)
}

// GetSwapStats reports swap counts for an optional start_date/end_date window
func (h *AdminHandler) GetSwapStats(c *gin.Context) {
	adminID, ok := middleware.GetUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	from, err := utils.ParseDateParam(c.Query("start_date"))
	if err != nil {
		utils.ValidationErrorResponse(c, map[string]string{"start_date": "Invalid date format"})
		return
	}
	to, err := utils.ParseDateParam(c.Query("end_date"))
	if err != nil {
		utils.ValidationErrorResponse(c, map[string]string{"end_date": "Invalid date format"})
		return
	}

	stats, err := h.analyticsService.SwapStats(c.Request.Context(), adminID, from, to)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Swap statistics retrieved successfully", stats)
}

// RecomputeUserRating rebuilds a user's rating aggregate from swap history
func (h *AdminHandler) RecomputeUserRating(c *gin.Context) {
	adminID, ok := middleware.GetUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	userID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user ID")
		return
	}

	if err := h.moderationService.RequireAdmin(c.Request.Context(), adminID); err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	aggregate, err := h.ratingService.RecomputeAggregate(c.Request.Context(), userID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}
	h.moderationService.RecordAction(c.Request.Context(), adminID, models.AuditActionRatingRecomputed, models.AuditResourceUser, userID.Hex(), map[string]interface{}{
		"rating":        aggregate.Rating,
		"total_ratings": aggregate.TotalRatings,
	})

	utils.SuccessResponse(c, "Rating recomputed successfully", aggregate)
}

// GetAuditLogs lists moderation actions, newest first
func (h *AdminHandler) GetAuditLogs(c *gin.Context) {
	adminID, ok := middleware.GetUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	var query validators.AuditLogQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		utils.BadRequestResponse(c, "Invalid query: "+err.Error())
		return
	}
	if errs := validators.ValidateAuditLogQuery(&query); len(errs) > 0 {
		utils.ValidationErrorResponse(c, errs.Details())
		return
	}

	params := utils.GetPaginationParams(c)
	logs, total, err := h.moderationService.ListAuditLogs(c.Request.Context(), adminID, query.Filter(), params)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Audit logs retrieved successfully", logs, &utils.Meta{
		Pagination: utils.CreatePaginationMeta(params, total),
	})
}
