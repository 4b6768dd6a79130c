package utils

import (
	"time" // Time for token expiration

	"github.com/golang-jwt/jwt/v5" // JWT library
)

// RoleAdmin grants access to the data-erasure routes
const RoleAdmin = "admin"

// Claims carried by tokens issued by the chat gateway
type Claims struct {
	Phone                string `json:"phone"`          // Raw phone of the caller, resolved per request
	Role                 string `json:"role,omitempty"` // Empty for end users, "admin" for compliance tooling
	jwt.RegisteredClaims        // Standard JWT claims
}

// GenerateJWT creates a signed token for a phone and role
func GenerateJWT(phone, role, secret string, ttl time.Duration) (string, error) {
	claims := Claims{
		Phone: phone,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)), // Token expiry
			IssuedAt:  jwt.NewNumericDate(time.Now()),          // Issued at current time
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims) // Create token with claims
	return token.SignedString([]byte(secret))                  // Sign the token with the secret
}

// ParseJWT parses and validates a JWT token string
func ParseJWT(tokenStr, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (any, error) {
		return []byte(secret), nil // Return the secret key for validation
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	// Check for parsing errors
	if err != nil {
		return nil, err // Return error if parsing fails
	}
	// Validate token and extract claims
	if claims, ok := token.Claims.(*Claims); ok && token.Valid && claims.Phone != "" {
		return claims, nil // Return claims if valid
	}
	// Return error if token is invalid
	return nil, jwt.ErrSignatureInvalid
}
