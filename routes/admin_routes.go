package routes

import (
	"skillswap/internal/handlers/shared"
	"skillswap/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupAdminRoutes sets up moderation and reporting routes
func SetupAdminRoutes(r *gin.RouterGroup, adminHandler *shared.AdminHandler, swapHandler *shared.SwapHandler, checker middleware.AdminChecker, jwtSecret string) {
	admin := r.Group("/admin")
	admin.Use(middleware.AuthRequired(jwtSecret), middleware.AdminRequired(checker))
	{
		// Swap moderation
		admin.GET("/swaps", adminHandler.GetAllSwaps)
		admin.PUT("/swaps/:id/complete", swapHandler.CompleteSwap)
		admin.DELETE("/swaps/:id/feedback/:role", adminHandler.DeleteFeedback)

		// User moderation
		admin.GET("/users", adminHandler.GetUsers)
		admin.PUT("/users/:id/ban", adminHandler.SetUserBan)
		admin.POST("/users/:id/rating/recompute", adminHandler.RecomputeUserRating)

		// Reports
		admin.GET("/stats", adminHandler.GetPlatformStats)
		admin.GET("/reports/swap-stats", adminHandler.GetSwapStats)
		admin.GET("/audit-logs", adminHandler.GetAuditLogs)
	}
}
