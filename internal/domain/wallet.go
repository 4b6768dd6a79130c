package domain

import (
	"strings"
	"time"
)

// WalletKind is debit or credit
type WalletKind string

const (
	KindDebit  WalletKind = "debit"  // Money already owned
	KindCredit WalletKind = "credit" // Money borrowed against a limit
)

// Credit wallet defaults applied when the caller omits them
const (
	DefaultCreditLimit Money = 100000 // 1000.00
	DefaultBillingDay  int   = 10
)

// MainWalletName is the name of the wallet auto-provisioned for a user with none
const MainWalletName = "Main Wallet"

// ParseWalletKind validates a kind string
func ParseWalletKind(s string) (WalletKind, error) {
	switch k := WalletKind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindDebit, KindCredit:
		return k, nil
	}
	return "", Validation("INVALID_KIND", "wallet kind %q must be debit or credit", s)
}

// Wallet Model
type Wallet struct {
	ID              uint       `gorm:"primaryKey" json:"id"`                           // Primary key
	UserID          uint       `gorm:"not null;index" json:"user_id"`                  // Owner
	Name            string     `gorm:"size:100;not null" json:"name"`                  // Display name
	Description     *string    `gorm:"size:255" json:"description,omitempty"`          // Optional description
	Kind            WalletKind `gorm:"size:10;not null" json:"kind"`                   // debit or credit
	CreditLimit     *Money     `json:"credit_limit,omitempty"`                         // Credit only, in cents
	BillingDay      *int       `json:"billing_day,omitempty"`                          // Credit only, 1-31
	IsDefault       bool       `gorm:"not null;default:false" json:"is_default"`       // At most one per user among active
	IsActive        bool       `gorm:"not null;default:true;index" json:"is_active"`   // False once soft-deleted
	AutoProvisioned bool       `gorm:"not null;default:false" json:"auto_provisioned"` // Created by the wallet resolver
	CreatedAt       time.Time  `json:"created_at"`                                     // Creation timestamp
	UpdatedAt       time.Time  `json:"updated_at"`                                     // Last update timestamp
}

// Validate checks the kind-specific field invariants
func (w *Wallet) Validate() error {
	if strings.TrimSpace(w.Name) == "" {
		return Validation("INVALID_NAME", "wallet name is required")
	}
	if len(w.Name) > 100 {
		return Validation("INVALID_NAME", "wallet name is too long")
	}
	switch w.Kind {
	case KindCredit:
		if w.CreditLimit == nil || *w.CreditLimit <= 0 {
			return Validation("INVALID_CREDIT_LIMIT", "credit limit must be greater than zero")
		}
		if w.BillingDay == nil || *w.BillingDay < 1 || *w.BillingDay > 31 {
			return Validation("INVALID_BILLING_DAY", "billing day must be between 1 and 31")
		}
	case KindDebit:
		if w.CreditLimit != nil || w.BillingDay != nil {
			return Validation("INVALID_DEBIT_FIELDS", "debit wallets have no credit limit or billing day")
		}
	default:
		return Validation("INVALID_KIND", "wallet kind %q must be debit or credit", w.Kind)
	}
	return nil
}

// ApplyCreditDefaults fills omitted credit fields on credit wallets
func (w *Wallet) ApplyCreditDefaults() {
	if w.Kind != KindCredit {
		return
	}
	if w.CreditLimit == nil {
		limit := DefaultCreditLimit
		w.CreditLimit = &limit
	}
	if w.BillingDay == nil {
		day := DefaultBillingDay
		w.BillingDay = &day
	}
}
