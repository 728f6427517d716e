package auth

import (
	"strings"

	"github.com/gin-gonic/gin"

	"codeberg.org/turningpoint/server/internal/errors"
)

const (
	ctxUserID    = "user_id"
	ctxUserEmail = "user_email"
	ctxClaims    = "claims"
)

// validates Bearer access tokens and adds user info to context
func AuthMiddleware(codec *Codec) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			errors.Unauthorized(c, "Access token is required")
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			errors.Unauthorized(c, "Invalid or malformed token")
			c.Abort()
			return
		}

		result := codec.Verify(parts[1])
		if !result.Valid {
			message := "Invalid or malformed token"
			if result.Expired {
				message = "Access token has expired"
			}

			errors.Unauthorized(c, message)
			c.Abort()
			return
		}

		c.Set(ctxUserID, result.Claims.Profile.ID)
		c.Set(ctxUserEmail, result.Claims.Email)
		c.Set(ctxClaims, result.Claims)

		c.Next()
	}
}

// extracts user_id from context after AuthMiddleware
func GetUserID(c *gin.Context) (int64, bool) {
	userID, exists := c.Get(ctxUserID)
	if !exists {
		return 0, false
	}

	id, ok := userID.(int64)
	return id, ok
}

// extracts the verified claims from context after AuthMiddleware
func GetClaims(c *gin.Context) (*Claims, bool) {
	value, exists := c.Get(ctxClaims)
	if !exists {
		return nil, false
	}

	claims, ok := value.(*Claims)
	return claims, ok
}
