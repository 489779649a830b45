package routes

import (
	"skillswap/internal/handlers/shared"
	"skillswap/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupSwapRoutes sets up swap and rating routes for authenticated users. rateLimit runs after
// authentication so callers are limited per user.
func SetupSwapRoutes(r *gin.RouterGroup, swapHandler *shared.SwapHandler, jwtSecret string, rateLimit gin.HandlerFunc) {
	swaps := r.Group("/swaps")
	swaps.Use(middleware.AuthRequired(jwtSecret), rateLimit)
	{
		swaps.POST("", swapHandler.ProposeSwap)
		swaps.GET("/mine", swapHandler.GetMySwaps)
		swaps.GET("/:id", swapHandler.GetSwap)

		// Lifecycle transitions
		swaps.PUT("/:id/accept", swapHandler.AcceptSwap)
		swaps.PUT("/:id/reject", swapHandler.RejectSwap)
		swaps.PUT("/:id/cancel", swapHandler.CancelSwap)
		swaps.PUT("/:id/complete", swapHandler.CompleteSwap)

		// Feedback
		swaps.POST("/:id/rate", swapHandler.RateSwap)
	}

	users := r.Group("/users")
	users.Use(middleware.AuthRequired(jwtSecret), rateLimit)
	{
		users.GET("/:id/rating", swapHandler.GetUserRating)
	}
}
