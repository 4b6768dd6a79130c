// Package stats builds the debit and credit dashboards out of transaction
// aggregates. Storage failures never reach the caller: the report degrades to
// zero values and the failure is logged.
package stats

import (
	"context"                            // Request scoped queries
	"time"                               // Clock and calendar
	"wallet_ledger/internal/credit"      // Credit utilization
	"wallet_ledger/internal/domain"      // Importing domain models
	"wallet_ledger/internal/transaction" // Aggregates and filters

	"github.com/sirupsen/logrus" // Logging library
)

// MaxSeriesDays bounds DailySeries
const MaxSeriesDays = 366 // One leap year

// Transactions is the aggregate surface of the transaction store
type Transactions interface {
	Totals(ctx context.Context, view transaction.View, f transaction.SearchFilters) (transaction.Totals, error)
	Flows(ctx context.Context, view transaction.View, f transaction.SearchFilters) ([]transaction.Flow, error)
}

// Wallets lists a user's active wallets
type Wallets interface {
	ListActive(ctx context.Context, userID uint) ([]domain.Wallet, error)
}

// CreditCalculator computes a credit wallet's statement utilization
type CreditCalculator interface {
	Utilization(ctx context.Context, w *domain.Wallet) (credit.Utilization, error)
}

// Report is the dashboard of one view
type Report struct {
	View               transaction.View `json:"view"`
	TotalOutflow       domain.Money     `json:"total_outflow"`
	TransactionCount   int64            `json:"transaction_count"` // All directions
	AverageOutflow     domain.Money     `json:"average_outflow"`   // Per outflow row
	MaxOutflow         domain.Money     `json:"max_outflow"`
	MinOutflow         domain.Money     `json:"min_outflow"`
	TodayOutflow       domain.Money     `json:"today_outflow"`
	MonthToDateOutflow domain.Money     `json:"month_to_date_outflow"`      // Calendar month, not billing cycle
	CreditUsed         domain.Money     `json:"credit_used,omitempty"`      // Credit view only
	CreditAvailable    domain.Money     `json:"credit_available,omitempty"` // Credit view only
}

// DailyPoint is one calendar day of a series
type DailyPoint struct {
	Date    domain.Date  `json:"date"`
	Inflow  domain.Money `json:"inflow"`
	Outflow domain.Money `json:"outflow"`
	Balance domain.Money `json:"balance"` // Inflow minus outflow of the day
}

// Options configures an Aggregator
type Options struct {
	Logger   logrus.FieldLogger // Defaults to the standard logger
	Now      func() time.Time   // Defaults to time.Now
	Location *time.Location     // Calendar for "today", defaults to UTC
}

// Aggregator composes transaction aggregates into reports
type Aggregator struct {
	txs     Transactions       // Aggregate queries
	wallets Wallets            // Active wallets
	credit  CreditCalculator   // Statement utilization
	log     logrus.FieldLogger // Degraded read logging
	now     func() time.Time   // Clock
	loc     *time.Location     // Calendar for "today"
}

// NewAggregator creates an aggregator
func NewAggregator(txs Transactions, wallets Wallets, calc CreditCalculator, opts Options) *Aggregator {
	// Fill defaults
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &Aggregator{txs: txs, wallets: wallets, credit: calc, log: opts.Logger, now: opts.Now, loc: opts.Location}
}

func (a *Aggregator) today() domain.Date {
	return domain.DateOf(a.now().In(a.loc))
}

// Statistics builds the report of view over the transactions matching f.
// Only invalid input is returned as an error.
func (a *Aggregator) Statistics(ctx context.Context, userID uint, view transaction.View, f transaction.SearchFilters) (Report, error) {
	f.UserID = userID // Scope every query to the user
	// Bad filters are the caller's error
	if err := f.Validate(); err != nil {
		return Report{}, err
	}
	view, err := transaction.ParseView(string(view)) // debit or credit
	if err != nil {
		return Report{}, err
	}
	r, err := a.statistics(ctx, view, f)
	// Storage failures degrade to an empty report
	if err != nil {
		a.log.WithFields(logrus.Fields{
			"user_id": userID,
			"view":    view,
			"error":   err.Error(),
		}).Error("Statistics query failed, returning empty report")
		return Report{View: view}, nil
	}
	return r, nil
}

func (a *Aggregator) statistics(ctx context.Context, view transaction.View, f transaction.SearchFilters) (Report, error) {
	totals, err := a.txs.Totals(ctx, view, f) // Sums over the whole filter
	if err != nil {
		return Report{}, err
	}
	r := Report{
		View:             view,
		TotalOutflow:     totals.OutflowTotal,
		TransactionCount: totals.Count,
		AverageOutflow:   domain.Average(totals.OutflowTotal, totals.OutflowCount),
		MaxOutflow:       totals.MaxOutflow,
		MinOutflow:       totals.MinOutflow,
	}

	today := a.today() // Ledger calendar date
	// Outflow of today within the filter
	if r.TodayOutflow, err = a.outflowWithin(ctx, view, f, today, today); err != nil {
		return Report{}, err
	}
	monthStart := domain.NewDate(today.Year, today.Month, 1) // Calendar month, not billing cycle
	// Outflow since the first of the month within the filter
	if r.MonthToDateOutflow, err = a.outflowWithin(ctx, view, f, monthStart, today); err != nil {
		return Report{}, err
	}

	// Credit view adds statement usage
	if view == transaction.ViewCredit {
		if r.CreditUsed, r.CreditAvailable, err = a.creditUsage(ctx, f); err != nil {
			return Report{}, err
		}
	}
	return r, nil
}

// outflowWithin sums outflows of f narrowed to [from, to]
func (a *Aggregator) outflowWithin(ctx context.Context, view transaction.View, f transaction.SearchFilters, from, to domain.Date) (domain.Money, error) {
	narrowed, ok := f.WithDates(from, to) // Intersect with the caller's range
	// Disjoint ranges sum to zero
	if !ok {
		return 0, nil
	}
	totals, err := a.txs.Totals(ctx, view, narrowed)
	if err != nil {
		return 0, err
	}
	return totals.OutflowTotal, nil
}

// creditUsage sums the utilization of every active credit wallet matching f
func (a *Aggregator) creditUsage(ctx context.Context, f transaction.SearchFilters) (used, available domain.Money, err error) {
	wallets, err := a.wallets.ListActive(ctx, f.UserID) // Candidate wallets
	if err != nil {
		return 0, 0, err
	}
	scope := make(map[uint]bool, len(f.WalletIDs)) // Wallet filter, empty means all
	for _, id := range f.WalletIDs {
		scope[id] = true
	}
	for i := range wallets {
		w := &wallets[i]
		// Skip debit wallets and those outside the filter
		if w.Kind != domain.KindCredit || (len(scope) > 0 && !scope[w.ID]) {
			continue
		}
		u, err := a.credit.Utilization(ctx, w)
		if err != nil {
			return 0, 0, err
		}
		used += u.Used
		available += u.Available
	}
	return used, available, nil
}

// DailySeries returns one point per calendar day for the last days days, today
// included, with zero points for days without activity
func (a *Aggregator) DailySeries(ctx context.Context, userID uint, view transaction.View, days int) ([]DailyPoint, error) {
	// Bound the series length
	if days < 1 || days > MaxSeriesDays {
		return nil, domain.Validation("INVALID_DAYS", "days must be between 1 and %d", MaxSeriesDays)
	}
	view, err := transaction.ParseView(string(view))
	if err != nil {
		return nil, err
	}
	to := a.today()                          // Last day, included
	from := to.AddDays(-(days - 1))          // First day, included
	points := make([]DailyPoint, days)       // One point per day, zero by default
	index := make(map[domain.Date]int, days) // Date to point
	for i := range points {
		points[i].Date = from.AddDays(i)
		index[points[i].Date] = i
	}

	flows, err := a.txs.Flows(ctx, view, transaction.SearchFilters{UserID: userID, From: &from, To: &to})
	// Storage failures degrade to an all-zero series
	if err != nil {
		a.log.WithFields(logrus.Fields{
			"user_id": userID,
			"view":    view,
			"days":    days,
			"error":   err.Error(),
		}).Error("Daily series query failed, returning empty series")
		return points, nil
	}
	// Bucket every flow into its calendar day
	for _, fl := range flows {
		i, ok := index[fl.Date(a.loc)]
		if !ok {
			continue
		}
		if fl.Direction == domain.Inflow {
			points[i].Inflow += fl.Amount
		} else {
			points[i].Outflow += fl.Amount
		}
	}
	// Net of each day
	for i := range points {
		points[i].Balance = points[i].Inflow - points[i].Outflow
	}
	return points, nil
}
