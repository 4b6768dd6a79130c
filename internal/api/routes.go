package api

import (
	"wallet_ledger/internal/ledger"     // Ledger service
	"wallet_ledger/internal/middleware" // Custom middlewares

	"github.com/gin-gonic/gin" // Gin web framework
)

// RegisterRoutes mounts the ledger API on r
func RegisterRoutes(r *gin.Engine, svc *ledger.Service, jwtSecret string) {
	r.Use(middleware.RequestLogger())

	// Caller routes (protected by JWT, phone resolved to a user key)
	me := r.Group("/")
	me.Use(middleware.JWTAuthMiddleware(jwtSecret), ResolveUserMiddleware(svc))

	me.GET("/wallets", ListWalletsHandler(svc))                   // List wallets with balances
	me.POST("/wallets", CreateWalletHandler(svc))                 // Create wallet
	me.PATCH("/wallets/:id", UpdateWalletHandler(svc))            // Update wallet
	me.POST("/wallets/:id/default", SetDefaultWalletHandler(svc)) // Make wallet default
	me.DELETE("/wallets/:id", DeleteWalletHandler(svc))           // Soft-delete wallet

	me.POST("/transactions", RecordTransactionHandler(svc))       // Record transaction
	me.GET("/transactions", SearchTransactionsHandler(svc))       // Search transactions
	me.GET("/transactions/:id", GetTransactionHandler(svc))       // Get transaction
	me.DELETE("/transactions/:id", DeleteTransactionHandler(svc)) // Delete transaction

	me.GET("/stats", StatisticsHandler(svc))        // Debit or credit report
	me.GET("/stats/daily", DailySeriesHandler(svc)) // Daily series

	me.GET("/categories", ListCategoriesHandler(svc))        // List categories
	me.POST("/categories", CreateCategoryHandler(svc))       // Create category
	me.PATCH("/categories/:id", UpdateCategoryHandler(svc))  // Update category
	me.DELETE("/categories/:id", DeleteCategoryHandler(svc)) // Delete category

	// Admin routes (protected, admin only)
	adminGroup := r.Group("/admin")
	adminGroup.Use(middleware.JWTAuthMiddleware(jwtSecret), middleware.AdminOnlyMiddleware())
	adminGroup.DELETE("/users/:phone", EraseUserHandler(svc))              // Erase all data of a user
	adminGroup.POST("/users/:phone/backfill", BackfillWalletsHandler(svc)) // Attach wallets to legacy rows
}
