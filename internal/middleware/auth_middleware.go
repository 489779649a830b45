package middleware

import (
	"context"
	"net/http"
	"strings"

	"skillswap/internal/utils"
	"skillswap/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	ContextUserID   = "user_id"
	ContextUserType = "user_type"
)

// AdminChecker is implemented by services.ModerationService.
type AdminChecker interface {
	IsAdmin(ctx context.Context, actorID primitive.ObjectID) (bool, error)
}

// AuthRequired validates the bearer token and sets the principal on the context
func AuthRequired(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.ErrorResponse(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authorization header required")
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			utils.ErrorResponse(c, http.StatusUnauthorized, "UNAUTHORIZED", "Bearer token required")
			c.Abort()
			return
		}

		claims, err := utils.ValidateToken(tokenString, jwtSecret)
		if err != nil {
			utils.ErrorResponse(c, http.StatusUnauthorized, "UNAUTHORIZED", utils.ErrInvalidToken)
			c.Abort()
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUserType, claims.UserType)
		c.Request = c.Request.WithContext(logger.ContextWithUserID(c.Request.Context(), claims.UserID))

		c.Next()
	}
}

// AdminRequired checks admin capability against the user directory rather than the token claim,
// so a demoted admin loses access immediately.
func AdminRequired(checker AdminChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := GetUserID(c)
		if !ok {
			utils.UnauthorizedResponse(c)
			c.Abort()
			return
		}

		isAdmin, err := checker.IsAdmin(c.Request.Context(), userID)
		if err != nil {
			utils.InternalServerErrorResponse(c)
			c.Abort()
			return
		}
		if !isAdmin {
			utils.ForbiddenResponse(c)
			c.Abort()
			return
		}

		c.Next()
	}
}

// GetUserID returns the authenticated user set by AuthRequired.
func GetUserID(c *gin.Context) (primitive.ObjectID, bool) {
	value, exists := c.Get(ContextUserID)
	if !exists {
		return primitive.NilObjectID, false
	}
	userID, ok := value.(primitive.ObjectID)
	return userID, ok && !userID.IsZero()
}
