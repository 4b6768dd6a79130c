// Package ledger is the call surface the chat transport, the reporting UI and
// the data-erasure flow use. It resolves identities once at the boundary and
// then works on stable user keys.
package ledger

import (
	"context"                            // Request scoped calls
	"fmt"                                // Error wrapping
	"strings"                            // Phone trimming for logs
	"time"                               // Clock and calendar
	"wallet_ledger/internal/category"    // Category store
	"wallet_ledger/internal/credit"      // Credit cycles
	"wallet_ledger/internal/domain"      // Importing domain models
	"wallet_ledger/internal/identity"    // Phone resolution
	"wallet_ledger/internal/stats"       // Reports
	"wallet_ledger/internal/transaction" // Transaction store
	"wallet_ledger/internal/wallet"      // Wallet store and resolver

	"github.com/shopspring/decimal" // Exact decimal amounts
	"gorm.io/gorm"                  // GORM ORM library

	"github.com/sirupsen/logrus" // Logging library
)

// Options configures a Service
type Options struct {
	Identity   identity.Options   // Phone normalisation and lookup cache
	AllowFuzzy bool               // Suffix matching on read-only lookups of unknown phones
	Now        func() time.Time   // Clock, time.Now when nil
	Location   *time.Location     // Ledger calendar, UTC when nil
	Logger     logrus.FieldLogger // Logger for degraded reads
}

// Service wires the ledger components together
type Service struct {
	identity   *identity.Resolver // Phone to user key
	wallets    *wallet.Store      // Wallet persistence
	resolver   *wallet.Resolver   // Wallet selection and provisioning
	txs        *transaction.Store // Transaction persistence
	credit     *credit.Calculator // Credit utilization
	stats      *stats.Aggregator  // Dashboard reports
	categories *category.Store    // Category persistence
	allowFuzzy bool               // Suffix matching on read-only lookups
}

// New builds a Service over db
func New(db *gorm.DB, opts Options) *Service {
	wallets := wallet.NewStore(db)                                                                         // Wallet persistence
	resolver := wallet.NewResolver(wallets)                                                                // Wallet selection
	txs := transaction.NewStore(db, resolver, transaction.Options{Now: opts.Now, Location: opts.Location}) // Transactions
	calc := credit.NewCalculator(txs, txs.Today)                                                           // Credit cycles on the ledger calendar
	return &Service{
		identity:   identity.NewResolver(db, opts.Identity),
		wallets:    wallets,
		resolver:   resolver,
		txs:        txs,
		credit:     calc,
		stats:      stats.NewAggregator(txs, wallets, calc, stats.Options{Logger: opts.Logger, Now: opts.Now, Location: txs.Location()}),
		categories: category.NewStore(db),
		allowFuzzy: opts.AllowFuzzy,
	}
}

// ResolveIdentity maps a raw phone string to its user key, with suffix
// matching when the service allows it. Use it for read-only lookups.
func (s *Service) ResolveIdentity(ctx context.Context, rawPhone string) (uint, error) {
	return s.identity.Resolve(ctx, rawPhone, s.allowFuzzy)
}

// ResolveExactIdentity maps a raw phone string to its user key without suffix
// matching. Erasure and backfill go through it so they never act on a look-alike number.
func (s *Service) ResolveExactIdentity(ctx context.Context, rawPhone string) (uint, error) {
	return s.identity.Resolve(ctx, rawPhone, false)
}

// ResolveOrRegister maps a raw phone string to its user key, registering it on first contact.
// Only exact matches count, so a new number is never merged into an existing account.
func (s *Service) ResolveOrRegister(ctx context.Context, rawPhone string) (uint, error) {
	return s.identity.ResolveOrRegister(ctx, rawPhone)
}

// WalletView is a wallet with its running balance and, for credit wallets, statement utilization
type WalletView struct {
	domain.Wallet
	Balance     domain.Money        `json:"balance"`
	Utilization *credit.Utilization `json:"utilization,omitempty"`
}

// ListWallets returns the user's active wallets, default first
func (s *Service) ListWallets(ctx context.Context, userID uint) ([]WalletView, error) {
	wallets, err := s.wallets.ListActive(ctx, userID) // Active wallets, default first
	if err != nil {
		return nil, err
	}
	balances, err := s.txs.Balances(ctx, userID) // Running balance per wallet
	if err != nil {
		return nil, err
	}
	out := make([]WalletView, len(wallets)) // One view per wallet
	for i := range wallets {
		out[i] = WalletView{Wallet: wallets[i], Balance: balances[wallets[i].ID]}
		// Credit wallets also report their statement utilization
		if wallets[i].Kind == domain.KindCredit {
			u, err := s.credit.Utilization(ctx, &wallets[i])
			if err != nil {
				return nil, err
			}
			out[i].Utilization = &u
		}
	}
	return out, nil
}

// CreateWallet creates a wallet for the user
func (s *Service) CreateWallet(ctx context.Context, userID uint, in wallet.CreateInput) (*domain.Wallet, error) {
	return s.wallets.Create(ctx, userID, in)
}

// UpdateWallet applies partial changes to one of the user's wallets
func (s *Service) UpdateWallet(ctx context.Context, userID, walletID uint, in wallet.UpdateInput) (*domain.Wallet, error) {
	return s.wallets.Update(ctx, walletID, userID, in)
}

// SetDefaultWallet makes the wallet the user's default
func (s *Service) SetDefaultWallet(ctx context.Context, userID, walletID uint) (*domain.Wallet, error) {
	return s.wallets.SetDefault(ctx, walletID, userID)
}

// DeleteWallet soft-deletes one of the user's wallets
func (s *Service) DeleteWallet(ctx context.Context, userID, walletID uint) (bool, error) {
	return s.wallets.SoftDelete(ctx, walletID, userID)
}

// RecordInput is a transaction as handed over by the chat transport
type RecordInput struct {
	Description     string          `json:"description" binding:"required"`
	Amount          decimal.Decimal `json:"amount"`
	Category        string          `json:"category"`
	Direction       string          `json:"direction" binding:"required"`
	PaymentMethod   string          `json:"payment_method" binding:"required"`
	OccurredOn      *domain.Date    `json:"occurred_on"`
	WalletID        *uint           `json:"wallet_id"`
	OriginalMessage *string         `json:"original_message"`
}

// RecordTransaction validates and stores a transaction, returning its id
func (s *Service) RecordTransaction(ctx context.Context, userID uint, in RecordInput) (uint, error) {
	amount, err := domain.MoneyFromDecimal(in.Amount) // Exact cents, bounded
	if err != nil {
		return 0, err
	}
	direction, err := domain.ParseDirection(in.Direction) // inflow or outflow
	if err != nil {
		return 0, err
	}
	method, err := domain.ParseWalletKind(in.PaymentMethod) // debit or credit
	if err != nil {
		return 0, domain.Validation("INVALID_PAYMENT_METHOD", "payment method %q must be debit or credit", in.PaymentMethod)
	}
	t := domain.Transaction{
		UserID:          userID,
		Description:     in.Description,
		Amount:          amount,
		Category:        in.Category,
		Direction:       direction,
		PaymentMethod:   method,
		WalletID:        in.WalletID,
		OccurredOn:      in.OccurredOn,
		OriginalMessage: in.OriginalMessage,
	}
	// Store resolves the wallet and the calendar date
	if err := s.txs.Create(ctx, &t); err != nil {
		return 0, err
	}
	return t.ID, nil
}

// GetTransaction returns one of the user's transactions
func (s *Service) GetTransaction(ctx context.Context, userID, id uint) (*domain.Transaction, error) {
	return s.txs.GetByID(ctx, id, userID)
}

// DeleteTransaction hard-deletes one of the user's transactions
func (s *Service) DeleteTransaction(ctx context.Context, userID, id uint) error {
	return s.txs.DeleteByID(ctx, id, userID)
}

// SearchTransactions returns one page of matches and the total match count
func (s *Service) SearchTransactions(ctx context.Context, f transaction.SearchFilters) ([]domain.Transaction, int64, error) {
	return s.txs.Search(ctx, f)
}

// GetStatistics builds the debit or credit report
func (s *Service) GetStatistics(ctx context.Context, userID uint, view transaction.View, f transaction.SearchFilters) (stats.Report, error) {
	return s.stats.Statistics(ctx, userID, view, f)
}

// GetDailySeries returns the last days calendar days of activity in view
func (s *Service) GetDailySeries(ctx context.Context, userID uint, view transaction.View, days int) ([]stats.DailyPoint, error) {
	return s.stats.DailySeries(ctx, userID, view, days)
}

// ListCategories returns the default categories and the user's own
func (s *Service) ListCategories(ctx context.Context, userID uint) ([]domain.Category, error) {
	return s.categories.List(ctx, userID)
}

// CreateCategory adds a custom category
func (s *Service) CreateCategory(ctx context.Context, userID uint, in category.CreateInput) (*domain.Category, error) {
	return s.categories.Create(ctx, userID, in)
}

// UpdateCategory changes a custom category
func (s *Service) UpdateCategory(ctx context.Context, userID, id uint, in category.UpdateInput) (*domain.Category, error) {
	return s.categories.Update(ctx, id, userID, in)
}

// DeleteCategory removes a custom category
func (s *Service) DeleteCategory(ctx context.Context, userID, id uint) error {
	return s.categories.Delete(ctx, id, userID)
}

// BackfillWallets attaches a wallet of the matching kind to every transaction
// of the user that predates wallets, returning how many rows were updated
func (s *Service) BackfillWallets(ctx context.Context, userID uint) (int64, error) {
	kinds, err := s.txs.LegacyPaymentMethods(ctx, userID) // Payment methods still without a wallet
	if err != nil {
		return 0, err
	}
	var total int64 // Rows updated so far
	for _, kind := range kinds {
		w, err := s.resolver.ResolveForTransaction(ctx, userID, kind) // Default or provisioned wallet
		if err != nil {
			return total, err
		}
		n, err := s.txs.AttachWallet(ctx, userID, kind, w.ID) // Point legacy rows at it
		if err != nil {
			return total, err
		}
		total += n
	}
	logrus.WithFields(logrus.Fields{"user_id": userID, "updated": total}).Info("Legacy transactions backfilled")
	return total, nil
}

// EraseAllUserData deletes the user's transactions, custom categories, wallets
// and the user itself in one transaction, then forgets cached lookups of the phone
func (s *Service) EraseAllUserData(ctx context.Context, userID uint) error {
	var phone string // Phone of the erased user, for cache eviction
	// Serialize with wallet writes of the same user
	err := s.wallets.WithUserLock(ctx, userID, func(tx *gorm.DB, user *domain.User) error {
		phone = user.Phone
		steps := []struct {
			what string
			run  func() error
		}{
			{"transactions", func() error { return tx.Where("user_id = ?", userID).Delete(&domain.Transaction{}).Error }},
			{"categories", func() error { return tx.Where("user_id = ?", userID).Delete(&domain.Category{}).Error }},
			{"default wallet pointer", func() error {
				return tx.Model(&domain.User{}).Where("id = ?", userID).Update("default_wallet_id", nil).Error
			}},
			{"wallets", func() error { return tx.Where("user_id = ?", userID).Delete(&domain.Wallet{}).Error }},
			{"user", func() error { return tx.Delete(&domain.User{}, userID).Error }},
		}
		// Children before parents
		for _, step := range steps {
			if err := step.run(); err != nil {
				return fmt.Errorf("failed to erase %s: %w", step.what, err)
			}
		}
		return nil
	})
	if err != nil {
		logrus.WithFields(logrus.Fields{"user_id": userID, "error": err.Error()}).Error("Failed to erase user data")
		return err
	}
	s.identity.Forget(ctx, phone) // Drop cached lookups of every form
	logrus.WithFields(logrus.Fields{"user_id": userID, "phone_suffix": lastDigits(phone, 4)}).Info("User data erased")
	return nil
}

// lastDigits keeps erased phones out of the logs
func lastDigits(phone string, n int) string {
	phone = strings.TrimSpace(phone)
	if len(phone) <= n {
		return phone
	}
	return phone[len(phone)-n:]
}
