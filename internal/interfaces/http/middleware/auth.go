// internal/interfaces/http/middleware/auth.go
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/bookstore-backend/internal/interfaces/http/response"
	"github.com/your-org/bookstore-backend/internal/pkg/auth"
)

// Context keys set by the auth middleware
const (
	ContextUserID    = "user_id"
	ContextUserEmail = "user_email"
	ContextIsAdmin   = "is_admin"
)

// tokenFrom reads the access token from the auth cookie, then the
// Authorization header.
func tokenFrom(c *gin.Context, cookieName string) string {
	if cookie, err := c.Cookie(cookieName); err == nil && cookie != "" {
		return cookie
	}
	return auth.ExtractTokenFromHeader(c.GetHeader("Authorization"))
}

// AuthMiddleware creates JWT authentication middleware
func AuthMiddleware(jwtManager *auth.JWTManager, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := tokenFrom(c, cookieName)
		if tokenString == "" {
			response.Fail(c, http.StatusUnauthorized, "Not authorized. Login again")
			return
		}

		claims, err := jwtManager.ValidateAccessToken(tokenString)
		if err != nil {
			response.Fail(c, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUserEmail, claims.Email)
		c.Set(ContextIsAdmin, claims.IsAdmin)

		c.Next()
	}
}

// AdminMiddleware ensures the user is an admin
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get(ContextUserID); !exists {
			response.Fail(c, http.StatusUnauthorized, "Authentication required")
			return
		}
		if !IsAdminFromContext(c) {
			response.Fail(c, http.StatusForbidden, "Admin access required")
			return
		}
		c.Next()
	}
}

// GetUserIDFromContext extracts user ID from gin context
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	userID, exists := c.Get(ContextUserID)
	if !exists {
		return "", false
	}
	id, ok := userID.(string)
	return id, ok && id != ""
}

// IsAdminFromContext checks if user is admin from gin context
func IsAdminFromContext(c *gin.Context) bool {
	isAdmin, exists := c.Get(ContextIsAdmin)
	if !exists {
		return false
	}
	v, _ := isAdmin.(bool)
	return v
}
