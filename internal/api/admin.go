package api

import (
	"net/http"                      // HTTP status codes
	"wallet_ledger/internal/ledger" // Ledger service

	"github.com/gin-gonic/gin" // Gin web framework
)

// EraseUserHandler deletes every record of the user registered under the phone path parameter
func EraseUserHandler(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		id, err := svc.ResolveExactIdentity(ctx, c.Param("phone")) // Exact match only
		if err != nil {
			respondError(c, err)
			return
		}
		if err := svc.EraseAllUserData(ctx, id); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "User data erased", "user_id": id})
	}
}

// BackfillWalletsHandler attaches wallets to the user's transactions that predate them
func BackfillWalletsHandler(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		id, err := svc.ResolveExactIdentity(ctx, c.Param("phone")) // Exact match only
		if err != nil {
			respondError(c, err)
			return
		}
		n, err := svc.BackfillWallets(ctx, id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"user_id": id, "updated": n})
	}
}
