package api

import (
	"net/http"                          // HTTP status codes
	"strconv"                           // String conversion
	"wallet_ledger/internal/ledger"     // Ledger service
	"wallet_ledger/internal/middleware" // Context keys
	"wallet_ledger/internal/wallet"     // Wallet inputs

	"github.com/gin-gonic/gin" // Gin web framework
)

// userID returns the resolved user key set by ResolveUserMiddleware
func userID(c *gin.Context) uint {
	return c.GetUint(middleware.UserIDKey)
}

// pathID parses a numeric path parameter
func pathID(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || v == 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name, "code": "INVALID_ID"})
		return 0, false
	}
	return uint(v), true
}

// ResolveUserMiddleware turns the token's phone into a user key, registering it on first contact
func ResolveUserMiddleware(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := svc.ResolveOrRegister(c.Request.Context(), c.GetString(middleware.PhoneKey))
		if err != nil {
			respondError(c, err)
			return
		}
		c.Set(middleware.UserIDKey, id) // Store user key in context
		c.Next()
	}
}

// ListWalletsHandler returns the caller's active wallets with balances
func ListWalletsHandler(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		wallets, err := svc.ListWallets(c.Request.Context(), userID(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"wallets": wallets})
	}
}

// CreateWalletHandler creates a debit or credit wallet
func CreateWalletHandler(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req wallet.CreateInput // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		w, err := svc.CreateWallet(c.Request.Context(), userID(c), req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"message": "Wallet created", "wallet": w})
	}
}

// UpdateWalletHandler applies partial changes to a wallet
func UpdateWalletHandler(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		var req wallet.UpdateInput // Only the fields present change
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		w, err := svc.UpdateWallet(c.Request.Context(), userID(c), id, req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"wallet": w})
	}
}

// SetDefaultWalletHandler makes a wallet the caller's default
func SetDefaultWalletHandler(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		w, err := svc.SetDefaultWallet(c.Request.Context(), userID(c), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"wallet": w})
	}
}

// DeleteWalletHandler soft-deletes a wallet
func DeleteWalletHandler(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		deleted, err := svc.DeleteWallet(c.Request.Context(), userID(c), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"deleted": deleted})
	}
}
