package domain

import (
	"strings"
	"time"
)

// Direction is inflow or outflow
type Direction string

const (
	Inflow  Direction = "inflow"  // Money coming in
	Outflow Direction = "outflow" // Money going out
)

// ParseDirection validates a direction string
func ParseDirection(s string) (Direction, error) {
	switch d := Direction(strings.ToLower(strings.TrimSpace(s))); d {
	case Inflow, Outflow:
		return d, nil
	}
	return "", Validation("INVALID_DIRECTION", "direction %q must be inflow or outflow", s)
}

// Transaction Model
type Transaction struct {
	ID              uint       `gorm:"primaryKey" json:"id"`                                           // Primary key
	UserID          uint       `gorm:"not null;index:idx_tx_user_date,priority:1" json:"user_id"`      // Owner
	Description     string     `gorm:"size:255;not null" json:"description"`                           // What the movement was
	Amount          Money      `gorm:"not null" json:"amount"`                                         // Positive, in cents
	Category        string     `gorm:"size:60;not null;index" json:"category"`                         // Category name
	Direction       Direction  `gorm:"size:10;not null" json:"direction"`                              // inflow or outflow
	PaymentMethod   WalletKind `gorm:"size:10;not null" json:"payment_method"`                         // Must equal the wallet kind
	WalletID        *uint      `gorm:"index" json:"wallet_id"`                                         // Null only on legacy rows
	OccurredOn      *Date      `gorm:"type:date;index:idx_tx_user_date,priority:2" json:"occurred_on"` // Calendar date, null on legacy rows
	OccurredAt      time.Time  `gorm:"not null" json:"occurred_at"`                                    // Timestamp of the movement
	OriginalMessage *string    `gorm:"type:text" json:"original_message,omitempty"`                    // Raw chat message, if any
	CreatedAt       time.Time  `json:"created_at"`                                                     // Creation timestamp
}

// Validate checks the fields a caller supplies on the write path
func (t *Transaction) Validate() error {
	if t.Amount <= 0 {
		return Validation("INVALID_AMOUNT", "amount must be greater than zero")
	}
	if strings.TrimSpace(t.Description) == "" {
		return Validation("INVALID_DESCRIPTION", "description is required")
	}
	if len(t.Description) > 255 {
		return Validation("INVALID_DESCRIPTION", "description is too long")
	}
	if len(t.Category) > 60 {
		return Validation("INVALID_CATEGORY", "category name must be at most 60 characters")
	}
	if _, err := ParseDirection(string(t.Direction)); err != nil {
		return err
	}
	if t.PaymentMethod != KindDebit && t.PaymentMethod != KindCredit {
		return Validation("INVALID_PAYMENT_METHOD", "payment method %q must be debit or credit", t.PaymentMethod)
	}
	return nil
}

// Signed returns the amount as positive for inflow and negative for outflow
func (t *Transaction) Signed() Money {
	if t.Direction == Outflow {
		return -t.Amount
	}
	return t.Amount
}
