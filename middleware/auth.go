package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/norawee/meetroom_backend/utils"
)

// JWTAuth validates the Bearer token and stores the user ID in the context.
// Requests without a valid token are rejected.
func JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := userIDFromHeader(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or missing token"})
			c.Abort()
			return
		}

		c.Set("userID", userID)
		c.Next()
	}
}

// OptionalJWTAuth stores the user ID when a valid Bearer token is present and
// lets the request through anonymously otherwise. Used on endpoints that are
// open to guests, such as joining a room.
func OptionalJWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID, ok := userIDFromHeader(c); ok {
			c.Set("userID", userID)
		}
		c.Next()
	}
}

func userIDFromHeader(c *gin.Context) (uint, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return 0, false
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return 0, false
	}

	userID, err := utils.ParseToken(parts[1])
	if err != nil {
		return 0, false
	}
	return userID, true
}
