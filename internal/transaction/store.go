// Package transaction persists ledger transactions and serves the search and
// aggregate queries the reports are built from.
package transaction

import (
	"context"                       // Request scoped queries
	"errors"                        // Record-not-found checks
	"fmt"                           // Error wrapping
	"strings"                       // Input trimming
	"time"                          // Clock and calendar
	"wallet_ledger/internal/domain" // Importing domain models

	"gorm.io/gorm" // GORM ORM library

	"github.com/sirupsen/logrus" // Logging library
)

// DefaultCategory is used when a transaction arrives without one
const DefaultCategory = "Other"

// WalletSource is what the store needs from the wallet layer
type WalletSource interface {
	GetByID(ctx context.Context, id, userID uint) (*domain.Wallet, error)
	ResolveForTransaction(ctx context.Context, userID uint, kind domain.WalletKind) (*domain.Wallet, error)
}

// Options configures a Store
type Options struct {
	Now      func() time.Time // Clock, time.Now when nil
	Location *time.Location   // Calendar for occurred_on, UTC when nil
}

// Store persists transactions
type Store struct {
	db      *gorm.DB         // Transactions table
	wallets WalletSource     // Wallet selection
	now     func() time.Time // Clock
	loc     *time.Location   // Calendar for occurred_on
}

// NewStore creates a transaction store
func NewStore(db *gorm.DB, wallets WalletSource, opts Options) *Store {
	// Fill defaults
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &Store{db: db, wallets: wallets, now: opts.Now, loc: opts.Location}
}

// Location is the calendar the store places timestamps on
func (s *Store) Location() *time.Location {
	return s.loc
}

// Today is the current calendar date
func (s *Store) Today() domain.Date {
	return domain.DateOf(s.now().In(s.loc))
}

// Create validates t, attaches it to a wallet whose kind equals its payment
// method, and stores it
func (s *Store) Create(ctx context.Context, t *domain.Transaction) error {
	// Blank category falls back to the default one
	if t.Category = strings.TrimSpace(t.Category); t.Category == "" {
		t.Category = DefaultCategory
	}
	t.Description = strings.TrimSpace(t.Description) // Stored trimmed
	// Validate before any write
	if err := t.Validate(); err != nil {
		return err
	}
	// Timestamp from the date, or now
	if t.OccurredAt.IsZero() {
		if t.OccurredOn != nil {
			t.OccurredAt = t.OccurredOn.In(s.loc)
		} else {
			t.OccurredAt = s.now()
		}
	}
	t.OccurredAt = t.OccurredAt.UTC() // Timestamps are stored in UTC
	// Date from the timestamp on the ledger calendar
	if t.OccurredOn == nil {
		on := domain.DateOf(t.OccurredAt.In(s.loc))
		t.OccurredOn = &on
	}

	var w *domain.Wallet // Wallet the row is attached to
	var err error
	// Resolve a wallet unless the caller picked one
	if t.WalletID == nil {
		w, err = s.wallets.ResolveForTransaction(ctx, t.UserID, t.PaymentMethod)
	} else {
		w, err = s.wallets.GetByID(ctx, *t.WalletID, t.UserID)
		if err == nil && !w.IsActive {
			err = domain.Invariant("WALLET_INACTIVE", "wallet %q has been deleted", w.Name)
		}
	}
	if err != nil {
		return err
	}
	// Payment method must agree with the wallet
	if w.Kind != t.PaymentMethod {
		return domain.Invariant("PAYMENT_METHOD_MISMATCH", "wallet %q is %s but the payment method is %s", w.Name, w.Kind, t.PaymentMethod)
	}
	t.WalletID = &w.ID

	// Insert the row
	if err := s.db.WithContext(ctx).Create(t).Error; err != nil {
		logrus.WithFields(logrus.Fields{
			"user_id":   t.UserID,
			"wallet_id": w.ID,
			"error":     err.Error(),
		}).Error("Failed to record transaction")
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	logrus.WithFields(logrus.Fields{
		"user_id":        t.UserID,
		"transaction_id": t.ID,
		"wallet_id":      w.ID,
		"direction":      t.Direction,
		"amount":         t.Amount.String(),
	}).Info("Transaction recorded")
	return nil
}

// GetByID returns a transaction owned by userID
func (s *Store) GetByID(ctx context.Context, id, userID uint) (*domain.Transaction, error) {
	var t domain.Transaction // Lookup target
	// Query transaction by id
	if err := s.db.WithContext(ctx).First(&t, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFound("TRANSACTION_NOT_FOUND", "transaction %d not found", id)
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	// Rows of other users are forbidden, not hidden
	if t.UserID != userID {
		return nil, domain.Permission("TRANSACTION_FORBIDDEN", "transaction %d belongs to another user", id)
	}
	return &t, nil
}

// DeleteByID hard-deletes a single transaction owned by userID
func (s *Store) DeleteByID(ctx context.Context, id, userID uint) error {
	t, err := s.GetByID(ctx, id, userID) // Ownership check
	if err != nil {
		return err
	}
	res := s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&domain.Transaction{}, t.ID) // Hard delete
	if res.Error != nil {
		return fmt.Errorf("failed to delete transaction: %w", res.Error)
	}
	// Lost a race with another delete
	if res.RowsAffected == 0 {
		return domain.NotFound("TRANSACTION_NOT_FOUND", "transaction %d not found", id)
	}
	logrus.WithFields(logrus.Fields{"user_id": userID, "transaction_id": id}).Info("Transaction deleted")
	return nil
}

// Search returns one page of matching transactions, newest first, and the
// total number of matches regardless of pagination
func (s *Store) Search(ctx context.Context, f SearchFilters) ([]domain.Transaction, int64, error) {
	// Reject bad filters
	if err := f.Validate(); err != nil {
		return nil, 0, err
	}
	base := f.apply(s.db.WithContext(ctx).Model(&domain.Transaction{}), s.loc) // Filtered query

	var total int64 // Matches regardless of paging
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	items := []domain.Transaction{} // Empty page renders as []
	// Skip the page query when the offset is past the end
	if total > int64(f.Offset) {
		err := base.Session(&gorm.Session{}).
			Order("transactions.occurred_at DESC").Order("transactions.id DESC").
			Offset(f.Offset).Limit(f.Limit).
			Find(&items).Error
		if err != nil {
			return nil, 0, fmt.Errorf("failed to search transactions: %w", err)
		}
	}
	return items, total, nil
}

// LegacyPaymentMethods lists the payment methods of the user's transactions that have no wallet
func (s *Store) LegacyPaymentMethods(ctx context.Context, userID uint) ([]domain.WalletKind, error) {
	var raw []string // Distinct stored payment methods
	err := s.db.WithContext(ctx).Model(&domain.Transaction{}).
		Where("user_id = ? AND wallet_id IS NULL", userID).
		Distinct().Pluck("payment_method", &raw).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list legacy payment methods: %w", err)
	}
	seen := make(map[domain.WalletKind]bool) // Kinds already listed
	var kinds []domain.WalletKind            // Result, in first-seen order
	// Fold unknown methods into debit
	for _, r := range raw {
		kind := legacyKind(r)
		if !seen[kind] {
			seen[kind] = true
			kinds = append(kinds, kind)
		}
	}
	return kinds, nil
}

// AttachWallet links the user's wallet-less transactions of kind to walletID.
// Rows with an unrecognised payment method are treated as debit.
func (s *Store) AttachWallet(ctx context.Context, userID uint, kind domain.WalletKind, walletID uint) (int64, error) {
	q := s.db.WithContext(ctx).Model(&domain.Transaction{}).Where("user_id = ? AND wallet_id IS NULL", userID) // Wallet-less rows
	// Credit rows, or everything else as debit
	if kind == domain.KindCredit {
		q = q.Where("payment_method = ?", domain.KindCredit)
	} else {
		q = q.Where("payment_method <> ?", domain.KindCredit)
	}
	res := q.Updates(map[string]any{"wallet_id": walletID, "payment_method": kind}) // Rewrite the method to match the wallet
	if res.Error != nil {
		return 0, fmt.Errorf("failed to attach wallet: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func legacyKind(paymentMethod string) domain.WalletKind {
	if domain.WalletKind(paymentMethod) == domain.KindCredit {
		return domain.KindCredit
	}
	return domain.KindDebit
}
