// Package wallet owns debit and credit wallets and the single-default rule.
//
// Every mutation that touches the default flag runs in one database
// transaction holding the owner's row lock, and is also serialised per user
// in-process, so "clear siblings, then set target" is never observed half done.
package wallet

import (
	"context" // Request scoped deadlines
	"errors"  // Error matching
	"fmt"     // Error wrapping
	"strings" // Name trimming

	"wallet_ledger/internal/domain" // Importing domain models

	"github.com/sirupsen/logrus" // Structured logging
	"gorm.io/gorm"               // GORM ORM library
	"gorm.io/gorm/clause"        // Row locking
)

// CreateInput holds the fields of a new wallet
type CreateInput struct {
	Name        string            `json:"name" binding:"required"` // Display name
	Description *string           `json:"description"`             // Optional description
	Kind        domain.WalletKind `json:"kind" binding:"required"` // debit or credit
	IsDefault   bool              `json:"is_default"`              // Make it the user's default
	CreditLimit *domain.Money     `json:"credit_limit"`            // Credit only, defaults to 1000.00
	BillingDay  *int              `json:"billing_day"`             // Credit only, defaults to 10
}

// UpdateInput holds the fields to change; nil means unchanged
type UpdateInput struct {
	Name        *string            `json:"name"`
	Description *string            `json:"description"`
	Kind        *domain.WalletKind `json:"kind"`
	IsDefault   *bool              `json:"is_default"`
	CreditLimit *domain.Money      `json:"credit_limit"`
	BillingDay  *int               `json:"billing_day"`
}

// Store persists wallets
type Store struct {
	db    *gorm.DB
	locks *userLocks
}

// NewStore creates a wallet store
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db, locks: newUserLocks()}
}

// ListActive returns the user's active wallets, default first then oldest first
func (s *Store) ListActive(ctx context.Context, userID uint) ([]domain.Wallet, error) {
	return listActive(s.db.WithContext(ctx), userID)
}

// GetByID returns a wallet owned by userID
func (s *Store) GetByID(ctx context.Context, id, userID uint) (*domain.Wallet, error) {
	return getByID(s.db.WithContext(ctx), id, userID)
}

// GetDefault returns the wallet used when a transaction names none, or nil when
// the user has no active wallet. The cached user pointer wins, then any wallet
// flagged default, then the oldest active wallet.
func (s *Store) GetDefault(ctx context.Context, userID uint) (*domain.Wallet, error) {
	tx := s.db.WithContext(ctx)
	user, err := loadUser(tx, userID, false)
	if err != nil {
		return nil, err
	}
	return defaultFor(tx, user)
}

// Create validates and stores a new wallet, taking over the default flag if asked
func (s *Store) Create(ctx context.Context, userID uint, in CreateInput) (*domain.Wallet, error) {
	w := domain.Wallet{
		UserID:      userID,
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Kind:        in.Kind,
		CreditLimit: in.CreditLimit,
		BillingDay:  in.BillingDay,
		IsDefault:   in.IsDefault,
		IsActive:    true,
	}
	w.ApplyCreditDefaults()
	if err := w.Validate(); err != nil {
		return nil, err // Rejected before any write
	}
	err := s.WithUserLock(ctx, userID, func(tx *gorm.DB, user *domain.User) error {
		return insert(tx, user, &w)
	})
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"user_id":    userID,
		"wallet_id":  w.ID,
		"kind":       w.Kind,
		"is_default": w.IsDefault,
	}).Info("Wallet created")
	return &w, nil
}

// Update applies partial changes, re-validating credit fields and the default flag
func (s *Store) Update(ctx context.Context, id, userID uint, in UpdateInput) (*domain.Wallet, error) {
	var out *domain.Wallet
	err := s.WithUserLock(ctx, userID, func(tx *gorm.DB, user *domain.User) error {
		w, err := getActive(tx, id, userID)
		if err != nil {
			return err
		}
		if in.Name != nil {
			w.Name = strings.TrimSpace(*in.Name)
			w.AutoProvisioned = false // A renamed wallet is the user's own
		}
		if in.Description != nil {
			w.Description = in.Description
		}
		if in.Kind != nil && *in.Kind != w.Kind {
			n, err := countTransactions(tx, w.ID)
			if err != nil {
				return err
			}
			if n > 0 {
				return domain.Invariant("KIND_CHANGE_WITH_TRANSACTIONS", "wallet %q already has transactions and cannot change kind", w.Name)
			}
			w.Kind = *in.Kind
			if w.Kind == domain.KindDebit {
				w.CreditLimit, w.BillingDay = nil, nil
			}
		}
		if in.CreditLimit != nil {
			w.CreditLimit = in.CreditLimit
		}
		if in.BillingDay != nil {
			w.BillingDay = in.BillingDay
		}
		w.ApplyCreditDefaults()
		if err := w.Validate(); err != nil {
			return err
		}
		if in.IsDefault != nil {
			if *in.IsDefault {
				if err := clearDefaults(tx, userID, w.ID); err != nil {
					return err
				}
				w.IsDefault = true
			} else if w.IsDefault {
				w.IsDefault = false
			}
		}
		if err := tx.Save(w).Error; err != nil {
			return fmt.Errorf("failed to update wallet: %w", err)
		}
		if err := syncPointer(tx, user, w); err != nil {
			return err
		}
		out = w
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SoftDelete marks a wallet inactive. It reports false when the wallet was already inactive.
// A default wallet that owns transactions cannot be deleted.
func (s *Store) SoftDelete(ctx context.Context, id, userID uint) (bool, error) {
	deleted := false
	err := s.WithUserLock(ctx, userID, func(tx *gorm.DB, user *domain.User) error {
		w, err := getByID(tx, id, userID)
		if err != nil {
			return err
		}
		if !w.IsActive {
			return nil
		}
		isDefault := w.IsDefault || (user.DefaultWalletID != nil && *user.DefaultWalletID == w.ID)
		if isDefault {
			n, err := countTransactions(tx, w.ID)
			if err != nil {
				return err
			}
			if n > 0 {
				return domain.Invariant("DEFAULT_WALLET_HAS_TRANSACTIONS", "wallet %q is your default and has %d transactions; choose another default first", w.Name, n)
			}
		}
		w.IsActive, w.IsDefault = false, false
		if err := tx.Save(w).Error; err != nil {
			return fmt.Errorf("failed to delete wallet: %w", err)
		}
		if err := syncPointer(tx, user, w); err != nil {
			return err
		}
		deleted = true
		return nil
	})
	if err == nil && deleted {
		logrus.WithFields(logrus.Fields{"user_id": userID, "wallet_id": id}).Info("Wallet deleted")
	}
	return deleted, err
}

// SetDefault makes the wallet the user's only default
func (s *Store) SetDefault(ctx context.Context, id, userID uint) (*domain.Wallet, error) {
	var out *domain.Wallet
	err := s.WithUserLock(ctx, userID, func(tx *gorm.DB, user *domain.User) error {
		w, err := getActive(tx, id, userID)
		if err != nil {
			return err
		}
		if err := clearDefaults(tx, userID, w.ID); err != nil {
			return err
		}
		w.IsDefault = true
		if err := tx.Save(w).Error; err != nil {
			return fmt.Errorf("failed to set default wallet: %w", err)
		}
		if err := syncPointer(tx, user, w); err != nil {
			return err
		}
		out = w
		return nil
	})
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{"user_id": userID, "wallet_id": id}).Info("Default wallet changed")
	return out, nil
}

// WithUserLock runs fn in a transaction that holds the user's row lock and the per-user mutex
func (s *Store) WithUserLock(ctx context.Context, userID uint, fn func(tx *gorm.DB, user *domain.User) error) error {
	unlock := s.locks.lock(userID)
	defer unlock()
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := loadUser(tx, userID, true)
		if err != nil {
			return err
		}
		return fn(tx, user)
	})
}

func loadUser(tx *gorm.DB, userID uint, forUpdate bool) (*domain.User, error) {
	q := tx
	// SQLite locks the whole database for writes and has no FOR UPDATE
	if forUpdate && tx.Dialector.Name() != "sqlite" {
		q = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var user domain.User
	if err := q.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFound("USER_NOT_FOUND", "user not found")
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &user, nil
}

func listActive(tx *gorm.DB, userID uint) ([]domain.Wallet, error) {
	var wallets []domain.Wallet
	err := tx.Where("user_id = ? AND is_active = ?", userID, true).
		Order("is_default DESC").Order("created_at ASC").Order("id ASC").
		Find(&wallets).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list wallets: %w", err)
	}
	return wallets, nil
}

// getByID fails closed: a wallet owned by someone else is a permission error
func getByID(tx *gorm.DB, id, userID uint) (*domain.Wallet, error) {
	var w domain.Wallet
	if err := tx.First(&w, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFound("WALLET_NOT_FOUND", "wallet %d not found", id)
		}
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	if w.UserID != userID {
		return nil, domain.Permission("WALLET_FORBIDDEN", "wallet %d belongs to another user", id)
	}
	return &w, nil
}

func getActive(tx *gorm.DB, id, userID uint) (*domain.Wallet, error) {
	w, err := getByID(tx, id, userID)
	if err != nil {
		return nil, err
	}
	if !w.IsActive {
		return nil, domain.NotFound("WALLET_INACTIVE", "wallet %d has been deleted", id)
	}
	return w, nil
}

func defaultFor(tx *gorm.DB, user *domain.User) (*domain.Wallet, error) {
	if user.DefaultWalletID != nil {
		var w domain.Wallet
		err := tx.Where("id = ? AND user_id = ? AND is_active = ?", *user.DefaultWalletID, user.ID, true).First(&w).Error
		if err == nil {
			return &w, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to get default wallet: %w", err)
		}
	}
	for _, flagged := range []bool{true, false} {
		q := tx.Where("user_id = ? AND is_active = ?", user.ID, true)
		if flagged {
			q = q.Where("is_default = ?", true)
		}
		var w domain.Wallet
		err := q.Order("created_at ASC").Order("id ASC").First(&w).Error
		if err == nil {
			return &w, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to get default wallet: %w", err)
		}
	}
	return nil, nil
}

// insert stores a validated wallet, moving the default flag to it if set
func insert(tx *gorm.DB, user *domain.User, w *domain.Wallet) error {
	if w.IsDefault {
		if err := clearDefaults(tx, user.ID, 0); err != nil {
			return err
		}
	}
	if err := tx.Create(w).Error; err != nil {
		return fmt.Errorf("failed to create wallet: %w", err)
	}
	return syncPointer(tx, user, w)
}

// clearDefaults unsets the default flag on every wallet of the user except keepID
func clearDefaults(tx *gorm.DB, userID, keepID uint) error {
	err := tx.Model(&domain.Wallet{}).
		Where("user_id = ? AND is_default = ? AND id <> ?", userID, true, keepID).
		Update("is_default", false).Error
	if err != nil {
		return fmt.Errorf("failed to clear default wallets: %w", err)
	}
	return nil
}

// syncPointer keeps users.default_wallet_id in step with w's default flag
func syncPointer(tx *gorm.DB, user *domain.User, w *domain.Wallet) error {
	pointsHere := user.DefaultWalletID != nil && *user.DefaultWalletID == w.ID
	var next *uint
	switch {
	case w.IsDefault && w.IsActive && !pointsHere:
		next = &w.ID
	case pointsHere && (!w.IsDefault || !w.IsActive):
		next = nil
	default:
		return nil
	}
	if err := tx.Model(user).Update("default_wallet_id", next).Error; err != nil {
		return fmt.Errorf("failed to update default wallet pointer: %w", err)
	}
	user.DefaultWalletID = next
	return nil
}

func countTransactions(tx *gorm.DB, walletID uint) (int64, error) {
	var n int64
	if err := tx.Model(&domain.Transaction{}).Where("wallet_id = ?", walletID).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count wallet transactions: %w", err)
	}
	return n, nil
}
