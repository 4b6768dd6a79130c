package domain

import (
	"regexp"
	"strings"
	"time"
)

// Affinity is the direction a category is meant for
type Affinity string

const (
	AffinityInflow  Affinity = "inflow"
	AffinityOutflow Affinity = "outflow"
	AffinityBoth    Affinity = "both"
)

var colorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// Category Model
type Category struct {
	ID        uint      `gorm:"primaryKey" json:"id"`             // Primary key
	UserID    *uint     `gorm:"index" json:"user_id"`             // Null for system-wide defaults
	Name      string    `gorm:"size:60;not null" json:"name"`     // Unique per user, case-insensitive
	Affinity  Affinity  `gorm:"size:10;not null" json:"affinity"` // inflow, outflow or both
	Color     string    `gorm:"size:7;not null" json:"color"`     // #RRGGBB
	CreatedAt time.Time `json:"created_at"`                       // Creation timestamp
}

// IsDefault reports whether the category is system-wide
func (c *Category) IsDefault() bool {
	return c.UserID == nil
}

// Validate checks name, affinity and color
func (c *Category) Validate() error {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" || len(c.Name) > 60 {
		return Validation("INVALID_CATEGORY_NAME", "category name must be 1 to 60 characters")
	}
	switch c.Affinity {
	case AffinityInflow, AffinityOutflow, AffinityBoth:
	default:
		return Validation("INVALID_AFFINITY", "affinity %q must be inflow, outflow or both", c.Affinity)
	}
	if !colorPattern.MatchString(c.Color) {
		return Validation("INVALID_COLOR", "color %q must look like #RRGGBB", c.Color)
	}
	return nil
}

// DefaultCategories are seeded on migration and shared by every user
var DefaultCategories = []Category{
	{Name: "Food", Affinity: AffinityOutflow, Color: "#E67E22"},
	{Name: "Transport", Affinity: AffinityOutflow, Color: "#3498DB"},
	{Name: "Housing", Affinity: AffinityOutflow, Color: "#8E44AD"},
	{Name: "Health", Affinity: AffinityOutflow, Color: "#E74C3C"},
	{Name: "Leisure", Affinity: AffinityOutflow, Color: "#1ABC9C"},
	{Name: "Education", Affinity: AffinityOutflow, Color: "#F1C40F"},
	{Name: "Salary", Affinity: AffinityInflow, Color: "#27AE60"},
	{Name: "Investments", Affinity: AffinityBoth, Color: "#2C3E50"},
	{Name: "Other", Affinity: AffinityBoth, Color: "#95A5A6"},
}
