// Package credit computes credit-card statement windows and utilization.
package credit

import (
	"context"                       // Request scoped sums
	"time"                          // Month arithmetic
	"wallet_ledger/internal/domain" // Importing domain models
)

// Utilization is how much of a credit wallet's limit the current statement has used
type Utilization struct {
	WindowStart domain.Date  `json:"window_start"` // First day of the statement
	WindowEnd   domain.Date  `json:"window_end"`   // Next billing day, exclusive
	Used        domain.Money `json:"used"`         // Outflows inside the window
	Available   domain.Money `json:"available"`    // Limit minus used, negative when over the limit
}

// OutflowSource sums a wallet's outflows over a half-open date range
type OutflowSource interface {
	OutflowBetween(ctx context.Context, walletID uint, from, to domain.Date) (domain.Money, error)
}

// Calculator derives utilization from stored transactions
type Calculator struct {
	outflows OutflowSource      // Outflow sums per wallet
	today    func() domain.Date // Current calendar date
}

// NewCalculator creates a calculator; today supplies the current calendar date
func NewCalculator(outflows OutflowSource, today func() domain.Date) *Calculator {
	return &Calculator{outflows: outflows, today: today}
}

// Window returns the statement window [start, end) containing today.
// The billing day is clamped to the length of each month it lands in.
func Window(billingDay int, today domain.Date) (start, end domain.Date) {
	thisMonth := anchor(today.Year, today.Month, billingDay) // Billing day of the current month
	// On or past the billing day, the window runs to next month's
	if !today.Before(thisMonth) {
		return thisMonth, anchor(today.Year, today.Month+1, billingDay)
	}
	return anchor(today.Year, today.Month-1, billingDay), thisMonth
}

// anchor is billingDay of the given month, clamped; month may overflow the year
func anchor(year int, month time.Month, billingDay int) domain.Date {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC) // Normalises overflowing months
	last := first.AddDate(0, 1, -1).Day()                    // Days in the month
	// Short months bill on their last day
	if billingDay > last {
		billingDay = last
	}
	// Guard against unset days
	if billingDay < 1 {
		billingDay = 1
	}
	return domain.NewDate(first.Year(), first.Month(), billingDay)
}

// Utilization sums the wallet's outflows in the current statement window
func (c *Calculator) Utilization(ctx context.Context, w *domain.Wallet) (Utilization, error) {
	// Only credit wallets have a statement
	if w.Kind != domain.KindCredit || w.BillingDay == nil || w.CreditLimit == nil {
		return Utilization{}, domain.Validation("NOT_A_CREDIT_WALLET", "wallet %q is not a credit wallet", w.Name)
	}
	start, end := Window(*w.BillingDay, c.today())                // Current statement
	used, err := c.outflows.OutflowBetween(ctx, w.ID, start, end) // Spent so far
	if err != nil {
		return Utilization{}, err
	}
	return Utilization{
		WindowStart: start,
		WindowEnd:   end,
		Used:        used,
		Available:   *w.CreditLimit - used,
	}, nil
}
