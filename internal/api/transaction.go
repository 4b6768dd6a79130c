package api

import (
	"net/http"                           // HTTP status codes
	"strconv"                            // String conversion
	"strings"                            // String manipulation
	"wallet_ledger/internal/domain"      // Importing domain models
	"wallet_ledger/internal/ledger"      // Ledger service
	"wallet_ledger/internal/transaction" // Search filters

	"github.com/gin-gonic/gin" // Gin web framework
)

// DefaultSeriesDays is used when the days query parameter is absent
const DefaultSeriesDays = 30

// RecordTransactionHandler stores a transaction for the caller
func RecordTransactionHandler(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ledger.RecordInput // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		id, err := svc.RecordTransaction(c.Request.Context(), userID(c), req)
		if err != nil {
			respondError(c, err)
			return
		}
		tx, err := svc.GetTransaction(c.Request.Context(), userID(c), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"message": "Transaction recorded", "transaction": tx})
	}
}

// GetTransactionHandler returns one of the caller's transactions
func GetTransactionHandler(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		tx, err := svc.GetTransaction(c.Request.Context(), userID(c), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"transaction": tx})
	}
}

// DeleteTransactionHandler hard-deletes one of the caller's transactions
func DeleteTransactionHandler(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		if err := svc.DeleteTransaction(c.Request.Context(), userID(c), id); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Transaction deleted"})
	}
}

// SearchTransactionsHandler returns a page of the caller's transactions
func SearchTransactionsHandler(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		f, err := parseFilters(c)
		if err != nil {
			respondError(c, err)
			return
		}
		page := 1 // Default page number
		if p := c.Query("page"); p != "" {
			// If valid, set page number
			if v, err := strconv.Atoi(p); err == nil && v > 0 {
				page = v
			}
		}
		f.Limit = transaction.DefaultLimit // Default page size
		if ps := c.Query("page_size"); ps != "" {
			// If valid, set page size within limits
			if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= transaction.MaxLimit {
				f.Limit = v
			}
		}
		f.Offset = (page - 1) * f.Limit // Calculate offset for pagination
		items, total, err := svc.SearchTransactions(c.Request.Context(), f)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"transactions": items,                                // Page of transactions
			"page":         page,                                 // Current page
			"page_size":    f.Limit,                              // Page size
			"total":        total,                                // Matches regardless of paging
			"total_pages":  (int(total) + f.Limit - 1) / f.Limit, // Total pages
		})
	}
}

// StatisticsHandler returns the debit or credit report
func StatisticsHandler(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		view, err := transaction.ParseView(c.Query("view"))
		if err != nil {
			respondError(c, err)
			return
		}
		f, err := parseFilters(c)
		if err != nil {
			respondError(c, err)
			return
		}
		report, err := svc.GetStatistics(c.Request.Context(), userID(c), view, f)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, report)
	}
}

// DailySeriesHandler returns per-day inflow, outflow and balance
func DailySeriesHandler(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		view, err := transaction.ParseView(c.Query("view"))
		if err != nil {
			respondError(c, err)
			return
		}
		days := DefaultSeriesDays
		if d := c.Query("days"); d != "" {
			if days, err = strconv.Atoi(d); err != nil {
				respondError(c, domain.Validation("INVALID_DAYS", "days must be a number"))
				return
			}
		}
		series, err := svc.GetDailySeries(c.Request.Context(), userID(c), view, days)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"view": view, "days": series})
	}
}

// parseFilters reads search filters from the query string for the caller
func parseFilters(c *gin.Context) (transaction.SearchFilters, error) {
	f := transaction.SearchFilters{
		UserID:      userID(c),
		Description: c.Query("description"),
		Category:    c.Query("category"),
	}
	for param, dst := range map[string]**domain.Date{"from": &f.From, "to": &f.To} {
		if v := c.Query(param); v != "" {
			d, err := domain.ParseDate(v)
			if err != nil {
				return f, err
			}
			*dst = &d
		}
	}
	for param, dst := range map[string]**domain.Money{"min_amount": &f.MinAmount, "max_amount": &f.MaxAmount} {
		if v := c.Query(param); v != "" {
			m, err := domain.ParseMoney(v)
			if err != nil {
				return f, err
			}
			*dst = &m
		}
	}
	if v := c.Query("direction"); v != "" {
		d, err := domain.ParseDirection(v)
		if err != nil {
			return f, err
		}
		f.Direction = &d
	}
	// wallet_id may repeat or hold a comma separated list
	for _, raw := range c.QueryArray("wallet_id") {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part == "" {
				continue
			}
			id, err := strconv.ParseUint(part, 10, 64)
			if err != nil {
				return f, domain.Validation("INVALID_WALLET_ID", "wallet id %q is not a number", part)
			}
			f.WalletIDs = append(f.WalletIDs, uint(id))
		}
	}
	return f, nil
}
