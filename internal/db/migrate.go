package db

import (
	"fmt"                           // Error wrapping
	"time"                          // Pool lifetimes
	"wallet_ledger/internal/domain" // Importing domain models

	"github.com/sirupsen/logrus" // Structured logging
	"gorm.io/driver/mysql"       // MySQL driver for GORM
	"gorm.io/driver/postgres"    // Postgres driver for GORM
	"gorm.io/gorm"               // GORM ORM library
)

// Open connects to the database using the named driver
func Open(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "mysql":
		dialector = mysql.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", driver, err)
	}
	return db, nil
}

// Pool holds connection pool limits; zero values keep the driver defaults
type Pool struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Tune applies the pool limits to the underlying sql.DB
func Tune(db *gorm.DB, p Pool) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	if p.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(p.MaxOpenConns) // Maximum number of open connections
	}
	if p.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(p.MaxIdleConns) // Maximum number of idle connections
	}
	if p.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(p.ConnMaxLifetime) // Maximum lifetime of a connection
	}
	return nil
}

// partialIndexes back the single-default and single-auto-provisioned wallet rules.
// MySQL has no partial indexes and relies on the user row lock alone.
var partialIndexes = []string{
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_wallets_single_default ON wallets (user_id) WHERE is_default AND is_active`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_wallets_single_auto ON wallets (user_id, kind, name) WHERE auto_provisioned AND is_active`,
}

// Migrate creates or updates the ledger schema and seeds the default categories
func Migrate(db *gorm.DB) error {
	// AutoMigrate will create tables, missing foreign keys, constraints, columns and indexes
	if err := db.AutoMigrate(&domain.User{}, &domain.Wallet{}, &domain.Transaction{}, &domain.Category{}); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	if db.Dialector.Name() != "mysql" {
		for _, stmt := range partialIndexes {
			if err := db.Exec(stmt).Error; err != nil {
				return fmt.Errorf("failed to create partial index: %w", err)
			}
		}
	}
	if err := seedCategories(db); err != nil {
		return err
	}
	logrus.Info("Migration completed.") // Log successful migration
	return nil
}

// seedCategories inserts any missing system-wide default category
func seedCategories(db *gorm.DB) error {
	for _, c := range domain.DefaultCategories {
		var count int64
		if err := db.Model(&domain.Category{}).
			Where("user_id IS NULL AND LOWER(name) = LOWER(?)", c.Name).
			Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check default category %s: %w", c.Name, err)
		}
		if count > 0 {
			continue // Already seeded
		}
		row := c // Copy so the package-level slice stays untouched
		if err := db.Create(&row).Error; err != nil {
			return fmt.Errorf("failed to seed category %s: %w", c.Name, err)
		}
	}
	return nil
}
