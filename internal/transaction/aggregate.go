package transaction

import (
	"context"                       // Request scoped queries
	"fmt"                           // Error wrapping
	"time"                          // Calendar placement
	"wallet_ledger/internal/domain" // Importing domain models

	"gorm.io/gorm" // GORM ORM library
)

// View selects which wallets an aggregate covers
type View string

const (
	// ViewDebit covers debit wallets and transactions with no wallet at all
	ViewDebit View = "debit"
	// ViewCredit covers credit wallets only
	ViewCredit View = "credit"
)

// ParseView validates a view name, defaulting to debit when empty
func ParseView(s string) (View, error) {
	switch View(s) {
	case "", ViewDebit:
		return ViewDebit, nil
	case ViewCredit:
		return ViewCredit, nil
	}
	return "", domain.Validation("INVALID_VIEW", "view %q must be debit or credit", s)
}

// Totals are the raw aggregates of one view
type Totals struct {
	Count        int64        // Rows of any direction
	OutflowCount int64        // Outflow rows
	OutflowTotal domain.Money // Sum of outflows
	InflowTotal  domain.Money // Sum of inflows
	MaxOutflow   domain.Money // Largest outflow, 0 if none
	MinOutflow   domain.Money // Smallest outflow, 0 if none
}

// Flow is the minimal projection used for daily series
type Flow struct {
	OccurredOn *domain.Date     // Null on legacy rows
	OccurredAt time.Time        // Fallback for legacy rows
	Direction  domain.Direction // inflow or outflow
	Amount     domain.Money     // Positive, in cents
}

// Date places the flow on the calendar, falling back to the timestamp for legacy rows
func (f Flow) Date(loc *time.Location) domain.Date {
	if f.OccurredOn != nil && !f.OccurredOn.IsZero() {
		return *f.OccurredOn
	}
	return domain.DateOf(f.OccurredAt.In(loc))
}

// scopeView restricts a transactions query to the wallets of view.
// Rows without a wallet belong to the debit view.
func scopeView(q *gorm.DB, view View) *gorm.DB {
	// Credit rows always have a wallet
	if view == ViewCredit {
		return q.Joins("JOIN wallets ON wallets.id = transactions.wallet_id").
			Where("wallets.kind = ?", domain.KindCredit)
	}
	return q.Joins("LEFT JOIN wallets ON wallets.id = transactions.wallet_id").
		Where("(transactions.wallet_id IS NULL OR wallets.kind = ?)", domain.KindDebit)
}

// Totals aggregates the transactions matching f inside view; pagination is ignored
func (s *Store) Totals(ctx context.Context, view View, f SearchFilters) (Totals, error) {
	// Reject bad filters
	if err := f.Validate(); err != nil {
		return Totals{}, err
	}
	q := scopeView(f.apply(s.db.WithContext(ctx).Model(&domain.Transaction{}), s.loc), view)

	var row struct { // One aggregate row
		Count        int64
		OutflowCount int64
		OutflowTotal int64
		InflowTotal  int64
		MaxOutflow   int64
		MinOutflow   int64
	}
	err := q.Select(`COUNT(*) AS count,
		COALESCE(SUM(CASE WHEN transactions.direction = ? THEN 1 ELSE 0 END), 0) AS outflow_count,
		COALESCE(SUM(CASE WHEN transactions.direction = ? THEN transactions.amount ELSE 0 END), 0) AS outflow_total,
		COALESCE(SUM(CASE WHEN transactions.direction = ? THEN transactions.amount ELSE 0 END), 0) AS inflow_total,
		COALESCE(MAX(CASE WHEN transactions.direction = ? THEN transactions.amount END), 0) AS max_outflow,
		COALESCE(MIN(CASE WHEN transactions.direction = ? THEN transactions.amount END), 0) AS min_outflow`,
		domain.Outflow, domain.Outflow, domain.Inflow, domain.Outflow, domain.Outflow).
		Scan(&row).Error
	if err != nil {
		return Totals{}, fmt.Errorf("failed to aggregate transactions: %w", err)
	}
	return Totals{
		Count:        row.Count,
		OutflowCount: row.OutflowCount,
		OutflowTotal: domain.Money(row.OutflowTotal),
		InflowTotal:  domain.Money(row.InflowTotal),
		MaxOutflow:   domain.Money(row.MaxOutflow),
		MinOutflow:   domain.Money(row.MinOutflow),
	}, nil
}

// Flows returns the date, direction and amount of every transaction matching f inside view
func (s *Store) Flows(ctx context.Context, view View, f SearchFilters) ([]Flow, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	var flows []Flow // Projection rows
	err := scopeView(f.apply(s.db.WithContext(ctx).Model(&domain.Transaction{}), s.loc), view).
		Select("transactions.occurred_on, transactions.occurred_at, transactions.direction, transactions.amount").
		Scan(&flows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load transaction flows: %w", err)
	}
	return flows, nil
}

// OutflowBetween sums the outflows on walletID dated in [from, to)
func (s *Store) OutflowBetween(ctx context.Context, walletID uint, from, to domain.Date) (domain.Money, error) {
	var total int64 // Sum in cents
	// Dated rows by date, legacy rows by timestamp on the ledger calendar
	err := s.db.WithContext(ctx).Model(&domain.Transaction{}).
		Where("wallet_id = ? AND direction = ?", walletID, domain.Outflow).
		Where("((occurred_on >= ? AND occurred_on < ?) OR (occurred_on IS NULL AND occurred_at >= ? AND occurred_at < ?))",
			from, to, from.In(s.loc).UTC(), to.In(s.loc).UTC()).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("failed to sum wallet outflows: %w", err)
	}
	return domain.Money(total), nil
}

// Balances returns inflow minus outflow per wallet of the user
func (s *Store) Balances(ctx context.Context, userID uint) (map[uint]domain.Money, error) {
	var rows []struct {
		WalletID uint  // Wallet key
		Balance  int64 // Net in cents
	}
	err := s.db.WithContext(ctx).Model(&domain.Transaction{}).
		Where("user_id = ? AND wallet_id IS NOT NULL", userID).
		Select("wallet_id, COALESCE(SUM(CASE WHEN direction = ? THEN amount ELSE -amount END), 0) AS balance", domain.Inflow).
		Group("wallet_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to compute wallet balances: %w", err)
	}
	out := make(map[uint]domain.Money, len(rows)) // Wallet to balance
	for _, r := range rows {
		out[r.WalletID] = domain.Money(r.Balance)
	}
	return out, nil
}
