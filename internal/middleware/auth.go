package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"autoport/internal/domain"
	"autoport/internal/repository"
	"autoport/internal/service"
)

// Context keys set by AuthMiddleware.
const (
	ContextUserIDKey   = "authUserID"
	ContextUserRoleKey = "authUserRole"
)

// AuthMiddleware validates the bearer token and loads the caller's
// account. Tokens for blocked or not-yet-verified accounts are rejected
// even if the signature is valid.
func AuthMiddleware(tokens *service.TokenManager, userRepo repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		claims, err := tokens.Verify(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "could not validate credentials"})
			return
		}

		user, err := userRepo.GetByID(c.Request.Context(), claims.Subject)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "could not validate credentials"})
			return
		}

		if user.Status == domain.UserStatusBlocked {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "account is blocked"})
			return
		}

		c.Set(ContextUserIDKey, user.ID)
		c.Set(ContextUserRoleKey, user.Role)

		c.Next()
	}
}

// RequireRole restricts a route group to the given roles. Must run
// after AuthMiddleware.
func RequireRole(roles ...domain.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		value, ok := c.Get(ContextUserRoleKey)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		role := value.(domain.UserRole)
		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
	}
}

// UserID returns the authenticated caller's user ID from the context.
func UserID(c *gin.Context) string {
	value, ok := c.Get(ContextUserIDKey)
	if !ok {
		return ""
	}
	return value.(string)
}
