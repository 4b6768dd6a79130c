package wallet

import (
	"context"                       // Request scoped calls
	"strings"                       // Name matching
	"wallet_ledger/internal/domain" // Importing domain models

	"gorm.io/gorm" // GORM ORM library

	"github.com/sirupsen/logrus" // Logging library
)

// Resolver picks the wallet a new transaction is attached to, creating one
// when the user has no wallet of the required kind
type Resolver struct {
	store *Store // Wallet persistence and user locks
}

// NewResolver creates a resolver over store
func NewResolver(store *Store) *Resolver {
	return &Resolver{store: store}
}

// GetByID looks up an explicitly chosen wallet through the underlying store
func (r *Resolver) GetByID(ctx context.Context, id, userID uint) (*domain.Wallet, error) {
	return r.store.GetByID(ctx, id, userID)
}

// ResolveForTransaction returns the wallet of kind for userID. The user's
// default wallet is used when its kind matches; otherwise a wallet of the
// required kind whose name twins the default's, created on first need.
// The default wallet itself is never changed.
func (r *Resolver) ResolveForTransaction(ctx context.Context, userID uint, kind domain.WalletKind) (*domain.Wallet, error) {
	// Only debit and credit wallets exist
	if _, err := domain.ParseWalletKind(string(kind)); err != nil {
		return nil, err
	}
	var out *domain.Wallet // Selected wallet
	// Serialize with other wallet writes of the same user
	err := r.store.WithUserLock(ctx, userID, func(tx *gorm.DB, user *domain.User) error {
		def, err := defaultFor(tx, user) // Current default, nil when none
		if err != nil {
			return err
		}
		// No wallet at all, provision the main one as default
		if def == nil {
			w := domain.Wallet{
				UserID:          userID,
				Name:            domain.MainWalletName,
				Kind:            kind,
				IsDefault:       true,
				IsActive:        true,
				AutoProvisioned: true,
			}
			out, err = provision(tx, user, w)
			return err
		}
		// Default wallet already has the right kind
		if def.Kind == kind {
			out = def
			return nil
		}

		wallets, err := listActive(tx, userID) // Candidates for a twin
		if err != nil {
			return err
		}
		// Reuse a wallet of the required kind named like the default
		if twin := findTwin(wallets, def.Name, kind); twin != nil {
			out = twin
			return nil
		}
		// Create the twin, never touching the default
		w := domain.Wallet{
			UserID:          userID,
			Name:            def.Name,
			Kind:            kind,
			IsActive:        true,
			AutoProvisioned: true,
		}
		// Copy credit terms when the default carries them
		if kind == domain.KindCredit {
			w.CreditLimit, w.BillingDay = def.CreditLimit, def.BillingDay
		}
		out, err = provision(tx, user, w)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func provision(tx *gorm.DB, user *domain.User, w domain.Wallet) (*domain.Wallet, error) {
	w.ApplyCreditDefaults() // Fill omitted credit terms
	// Validate before any write
	if err := w.Validate(); err != nil {
		return nil, err
	}
	// Insert and keep the default pointer in sync
	if err := insert(tx, user, &w); err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"user_id":    user.ID,
		"wallet_id":  w.ID,
		"kind":       w.Kind,
		"is_default": w.IsDefault,
	}).Info("Wallet auto-provisioned")
	return &w, nil
}

// findTwin returns the wallet of kind whose name equals name, or failing that
// contains or is contained by it, case-insensitively
func findTwin(wallets []domain.Wallet, name string, kind domain.WalletKind) *domain.Wallet {
	target := strings.ToLower(strings.TrimSpace(name)) // Name to match
	var partial *domain.Wallet                         // First containment match
	for i := range wallets {
		w := &wallets[i]
		// Skip wallets of the other kind
		if w.Kind != kind {
			continue
		}
		candidate := strings.ToLower(strings.TrimSpace(w.Name))
		// Exact name wins outright
		if candidate == target {
			return w
		}
		// Remember the first partial match
		if partial == nil && (strings.Contains(candidate, target) || strings.Contains(target, candidate)) {
			partial = w
		}
	}
	return partial
}
