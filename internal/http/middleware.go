package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"birdieo-service/internal/service"
)

// ContextUserID is the gin context key the auth middleware sets for
// downstream handlers.
const ContextUserID = "user_id"

// NewAuthMiddleware validates the bearer token and attaches the user ID to
// the request context.
func NewAuthMiddleware(auth *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse("missing bearer token"))
			return
		}

		userID, err := auth.ParseToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse("invalid token"))
			return
		}

		c.Set(ContextUserID, userID)
		c.Next()
	}
}

func currentUserID(c *gin.Context) string {
	return c.GetString(ContextUserID)
}
