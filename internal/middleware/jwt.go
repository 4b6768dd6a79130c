package middleware

import (
	"net/http"                     // HTTP status codes
	"strings"                      // String manipulation
	"wallet_ledger/internal/utils" // JWT utility functions

	"github.com/gin-gonic/gin" // Gin web framework
)

// Context keys set by the middlewares
const (
	PhoneKey     = "phone"     // Raw phone from the token
	RoleKey      = "role"      // Role from the token
	UserIDKey    = "userID"    // Resolved user key
	RequestIDKey = "requestID" // Per-request id
)

// JWTAuthMiddleware validates JWT tokens and extracts the caller's phone and role
func JWTAuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization") // Get Authorization header
		// Check if the Authorization header is present and properly formatted
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			// If not, abort with unauthorized status
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}
		tokenStr := strings.TrimPrefix(authHeader, "Bearer ") // Extract the token string
		claims, err := utils.ParseJWT(tokenStr, secret)       // Parse the JWT token
		if err != nil {
			// If parsing fails, abort with unauthorized status
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}
		c.Set(PhoneKey, claims.Phone) // Store phone in context
		c.Set(RoleKey, claims.Role)   // Store role in context
		c.Next()                      // Proceed to the next handler
	}
}
