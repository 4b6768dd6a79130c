// Package category manages the shared default categories and each user's own.
package category

import (
	"context" // Request scoped deadlines
	"errors"  // Error matching
	"fmt"     // Error wrapping
	"strings" // Name trimming

	"wallet_ledger/internal/domain" // Importing domain models

	"github.com/sirupsen/logrus" // Structured logging
	"gorm.io/gorm"               // GORM ORM library
)

// DefaultColor is used when a category is created without one
const DefaultColor = "#95A5A6"

// CreateInput holds the fields of a new custom category
type CreateInput struct {
	Name     string          `json:"name" binding:"required"` // Unique per user, case-insensitive
	Affinity domain.Affinity `json:"affinity"`                // Defaults to both
	Color    string          `json:"color"`                   // Defaults to DefaultColor
}

// UpdateInput holds the fields to change; nil means unchanged
type UpdateInput struct {
	Name     *string          `json:"name"`
	Affinity *domain.Affinity `json:"affinity"`
	Color    *string          `json:"color"`
}

// Store persists categories
type Store struct {
	db *gorm.DB
}

// NewStore creates a category store
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// List returns the default categories followed by the user's own, by name
func (s *Store) List(ctx context.Context, userID uint) ([]domain.Category, error) {
	var out []domain.Category
	err := s.db.WithContext(ctx).
		Where("user_id IS NULL OR user_id = ?", userID).
		Order("CASE WHEN user_id IS NULL THEN 0 ELSE 1 END").Order("LOWER(name)").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return out, nil
}

// Create stores a custom category for userID
func (s *Store) Create(ctx context.Context, userID uint, in CreateInput) (*domain.Category, error) {
	c := domain.Category{UserID: &userID, Name: in.Name, Affinity: in.Affinity, Color: in.Color}
	if c.Affinity == "" {
		c.Affinity = domain.AffinityBoth
	}
	if c.Color == "" {
		c.Color = DefaultColor
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureUnique(tx, userID, c.Name, 0); err != nil {
			return err
		}
		return tx.Create(&c).Error
	})
	if err != nil {
		return nil, wrap(err, "failed to create category")
	}
	logrus.WithFields(logrus.Fields{"user_id": userID, "category_id": c.ID, "name": c.Name}).Info("Category created")
	return &c, nil
}

// Update changes a custom category; default categories are read-only
func (s *Store) Update(ctx context.Context, id, userID uint, in UpdateInput) (*domain.Category, error) {
	var c *domain.Category
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if c, err = getOwned(tx, id, userID); err != nil {
			return err
		}
		if in.Name != nil {
			c.Name = strings.TrimSpace(*in.Name)
		}
		if in.Affinity != nil {
			c.Affinity = *in.Affinity
		}
		if in.Color != nil {
			c.Color = *in.Color
		}
		if err := c.Validate(); err != nil {
			return err
		}
		if err := ensureUnique(tx, userID, c.Name, c.ID); err != nil {
			return err
		}
		return tx.Save(c).Error
	})
	if err != nil {
		return nil, wrap(err, "failed to update category")
	}
	return c, nil
}

// Delete removes a custom category. Transactions keep the category name they were recorded with.
func (s *Store) Delete(ctx context.Context, id, userID uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		c, err := getOwned(tx, id, userID)
		if err != nil {
			return err
		}
		return tx.Delete(c).Error
	})
	if err != nil {
		return wrap(err, "failed to delete category")
	}
	logrus.WithFields(logrus.Fields{"user_id": userID, "category_id": id}).Info("Category deleted")
	return nil
}

// getOwned loads a category the user may change
func getOwned(tx *gorm.DB, id, userID uint) (*domain.Category, error) {
	var c domain.Category
	if err := tx.First(&c, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFound("CATEGORY_NOT_FOUND", "category %d not found", id)
		}
		return nil, err
	}
	if c.IsDefault() {
		return nil, domain.Permission("CATEGORY_READ_ONLY", "default category %q cannot be changed", c.Name)
	}
	if *c.UserID != userID {
		return nil, domain.Permission("CATEGORY_FORBIDDEN", "category %d belongs to another user", id)
	}
	return &c, nil
}

// ensureUnique rejects a name already used by a default or by another of the user's categories
func ensureUnique(tx *gorm.DB, userID uint, name string, exceptID uint) error {
	var count int64
	err := tx.Model(&domain.Category{}).
		Where("(user_id IS NULL OR user_id = ?) AND LOWER(name) = ? AND id <> ?", userID, strings.ToLower(name), exceptID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return domain.Invariant("CATEGORY_EXISTS", "a category named %q already exists", name)
	}
	return nil
}

// wrap leaves domain errors untouched and wraps storage errors
func wrap(err error, msg string) error {
	var de *domain.Error
	if errors.As(err, &de) {
		return err
	}
	return fmt.Errorf("%s: %w", msg, err)
}
