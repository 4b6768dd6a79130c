package api

import (
	"net/http"                        // HTTP status codes
	"wallet_ledger/internal/category" // Category inputs
	"wallet_ledger/internal/ledger"   // Ledger service

	"github.com/gin-gonic/gin" // Gin web framework
)

// ListCategoriesHandler returns the default categories and the caller's own
func ListCategoriesHandler(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		cats, err := svc.ListCategories(c.Request.Context(), userID(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"categories": cats})
	}
}

// CreateCategoryHandler adds a custom category
func CreateCategoryHandler(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req category.CreateInput // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		cat, err := svc.CreateCategory(c.Request.Context(), userID(c), req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"category": cat})
	}
}

// UpdateCategoryHandler changes a custom category
func UpdateCategoryHandler(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		var req category.UpdateInput
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		cat, err := svc.UpdateCategory(c.Request.Context(), userID(c), id, req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"category": cat})
	}
}

// DeleteCategoryHandler removes a custom category
func DeleteCategoryHandler(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		if err := svc.DeleteCategory(c.Request.Context(), userID(c), id); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Category deleted"})
	}
}
