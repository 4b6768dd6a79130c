package api

import (
	"errors"                        // Error matching
	"net/http"                      // HTTP status codes
	"wallet_ledger/internal/domain" // Domain errors

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// statusByKind maps domain error kinds to HTTP status codes
var statusByKind = map[domain.ErrorKind]int{
	domain.KindValidation:        http.StatusBadRequest,
	domain.KindNotFound:          http.StatusNotFound,
	domain.KindPermission:        http.StatusForbidden,
	domain.KindInvariant:         http.StatusConflict,
	domain.KindAmbiguousIdentity: http.StatusConflict,
}

// respondError renders err; anything that is not a domain error is an opaque 500
func respondError(c *gin.Context, err error) {
	var de *domain.Error
	if errors.As(err, &de) {
		if status, ok := statusByKind[de.Kind]; ok {
			c.AbortWithStatusJSON(status, gin.H{"error": de.Message, "code": de.Code})
			return
		}
	}
	// Log the error with context
	logrus.WithFields(logrus.Fields{
		"path":  c.FullPath(), // Route
		"error": err.Error(),  // Error message
	}).Error("Request failed")
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

// badRequest renders a binding failure
func badRequest(c *gin.Context, err error) {
	var de *domain.Error
	if errors.As(err, &de) {
		respondError(c, err) // Domain types validate while decoding
		return
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "code": "INVALID_REQUEST"})
}
