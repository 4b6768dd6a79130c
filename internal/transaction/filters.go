package transaction

import (
	"strings"                       // Case-insensitive matching
	"time"                          // Calendar placement
	"wallet_ledger/internal/domain" // Importing domain models

	"gorm.io/gorm" // GORM ORM library
)

// Pagination bounds
const (
	DefaultLimit = 20  // Page size when none is given
	MaxLimit     = 100 // Largest page size
)

// SearchFilters narrows transaction queries. Zero-valued fields do not filter.
type SearchFilters struct {
	UserID      uint              // Resolved owner, required
	From        *domain.Date      // Inclusive start date
	To          *domain.Date      // Inclusive end date
	MinAmount   *domain.Money     // Inclusive lower amount bound
	MaxAmount   *domain.Money     // Inclusive upper amount bound
	Description string            // Case-insensitive substring
	Category    string            // Case-insensitive exact name
	Direction   *domain.Direction // inflow or outflow
	WalletIDs   []uint            // Restrict to these wallets
	Offset      int               // Rows to skip
	Limit       int               // Page size, defaults to 20, at most 100
}

// Validate checks the filter once at the boundary and fills pagination defaults
func (f *SearchFilters) Validate() error {
	// Every query is scoped to one user
	if f.UserID == 0 {
		return domain.Validation("MISSING_USER", "user is required")
	}
	if f.From != nil && f.To != nil && f.To.Before(*f.From) {
		return domain.Validation("INVALID_DATE_RANGE", "end date %s is before start date %s", f.To, f.From)
	}
	if f.MinAmount != nil && *f.MinAmount < 0 {
		return domain.Validation("INVALID_AMOUNT_RANGE", "minimum amount cannot be negative")
	}
	if f.MinAmount != nil && f.MaxAmount != nil && *f.MaxAmount < *f.MinAmount {
		return domain.Validation("INVALID_AMOUNT_RANGE", "maximum amount is below minimum amount")
	}
	if f.Direction != nil {
		if _, err := domain.ParseDirection(string(*f.Direction)); err != nil {
			return err
		}
	}
	if f.Offset < 0 {
		return domain.Validation("INVALID_OFFSET", "offset cannot be negative")
	}
	// Clamp the page size
	if f.Limit <= 0 {
		f.Limit = DefaultLimit
	}
	if f.Limit > MaxLimit {
		f.Limit = MaxLimit
	}
	return nil
}

// WithDates returns a copy narrowed to the intersection of its range and [from, to].
// ok is false when the intersection is empty.
func (f SearchFilters) WithDates(from, to domain.Date) (SearchFilters, bool) {
	if f.From == nil || f.From.Before(from) {
		f.From = &from
	}
	if f.To == nil || to.Before(*f.To) {
		f.To = &to
	}
	return f, !f.To.Before(*f.From)
}

// apply adds every non-pagination condition; loc places legacy timestamps on the calendar
func (f SearchFilters) apply(q *gorm.DB, loc *time.Location) *gorm.DB {
	q = q.Where("transactions.user_id = ?", f.UserID) // Owner scope
	// Legacy rows without a date are placed by their timestamp
	if f.From != nil {
		q = q.Where("(transactions.occurred_on >= ? OR (transactions.occurred_on IS NULL AND transactions.occurred_at >= ?))",
			*f.From, f.From.In(loc).UTC())
	}
	if f.To != nil {
		q = q.Where("(transactions.occurred_on <= ? OR (transactions.occurred_on IS NULL AND transactions.occurred_at < ?))",
			*f.To, f.To.AddDays(1).In(loc).UTC())
	}
	if f.MinAmount != nil {
		q = q.Where("transactions.amount >= ?", *f.MinAmount)
	}
	if f.MaxAmount != nil {
		q = q.Where("transactions.amount <= ?", *f.MaxAmount)
	}
	if d := strings.TrimSpace(f.Description); d != "" {
		q = q.Where("LOWER(transactions.description) LIKE ?", "%"+strings.ToLower(d)+"%")
	}
	if c := strings.TrimSpace(f.Category); c != "" {
		q = q.Where("LOWER(transactions.category) = ?", strings.ToLower(c))
	}
	if f.Direction != nil {
		q = q.Where("transactions.direction = ?", *f.Direction)
	}
	if len(f.WalletIDs) > 0 {
		q = q.Where("transactions.wallet_id IN ?", f.WalletIDs)
	}
	return q
}
