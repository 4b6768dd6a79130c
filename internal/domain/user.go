package domain

import "time"

// User Model
type User struct {
	ID              uint      `gorm:"primaryKey" json:"id"`                      // Stable internal user key
	Phone           string    `gorm:"size:32;uniqueIndex;not null" json:"phone"` // Phone as first registered
	DefaultWalletID *uint     `json:"default_wallet_id"`                         // Cached default wallet pointer
	CreatedAt       time.Time `json:"created_at"`                                // Creation timestamp
	UpdatedAt       time.Time `json:"updated_at"`                                // Last update timestamp
}
