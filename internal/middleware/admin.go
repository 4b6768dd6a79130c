package middleware

import (
	"net/http"                     // HTTP status codes
	"wallet_ledger/internal/utils" // Role names

	"github.com/gin-gonic/gin" // Gin web framework
)

// AdminOnlyMiddleware lets through tokens carrying the admin role
func AdminOnlyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Role is set by JWTAuthMiddleware
		if c.GetString(RoleKey) != utils.RoleAdmin {
			// If not admin, abort with forbidden status
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			return
		}
		c.Next() // If admin, proceed to the next handler
	}
}
