// Package cmd holds the ledgerctl operator commands.
package cmd

import (
	"context"
	"fmt"

	"wallet_ledger/internal/config"
	"wallet_ledger/internal/db"
	"wallet_ledger/internal/ledger"
	"wallet_ledger/internal/utils"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// Deps opens the resources the commands work on
type Deps struct {
	Connect func(ctx context.Context) (*gorm.DB, error)
	Cache   func(ctx context.Context) (utils.Cache, error) // nil disables caching
	Options func(cache utils.Cache) ledger.Options
}

// FromConfig builds Deps that connect to the configured database and Redis
func FromConfig(cfg *config.Config) Deps {
	return Deps{
		Connect: func(context.Context) (*gorm.DB, error) {
			gdb, err := db.Open(cfg.DBDriver, cfg.DSN())
			if err != nil {
				return nil, err
			}
			return gdb, db.Tune(gdb, db.Pool{MaxOpenConns: cfg.DBMaxOpenConns, MaxIdleConns: cfg.DBMaxIdleConns, ConnMaxLifetime: cfg.DBConnMaxLifetime})
		},
		Cache: func(ctx context.Context) (utils.Cache, error) {
			if cfg.RedisAddr == "" {
				return nil, nil
			}
			rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPass, DB: cfg.RedisDB})
			if err := rdb.Ping(ctx).Err(); err != nil {
				return nil, fmt.Errorf("failed to connect to Redis: %w", err)
			}
			return utils.NewRedisCache(rdb), nil
		},
		Options: func(cache utils.Cache) ledger.Options { return ledger.OptionsFromConfig(cfg, cache) },
	}
}

// NewRootCmd returns the ledgerctl command tree
func NewRootCmd(deps Deps) *cobra.Command {
	var verbose bool
	root := &cobra.Command{
		Use:   "ledgerctl",
		Short: "Operator tooling for the wallet ledger",
		Long: `ledgerctl runs maintenance tasks against the ledger database.

Examples:
  ledgerctl migrate
  ledgerctl resolve --phone "+55 11 91234-5678"
  ledgerctl backfill --phone 5511912345678
  ledgerctl erase --phone 5511912345678 --yes`,
		SilenceUsage: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			if verbose {
				logrus.SetLevel(logrus.DebugLevel)
			}
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	root.AddCommand(newMigrateCmd(deps), newResolveCmd(deps), newBackfillCmd(deps), newEraseCmd(deps))
	return root
}

// service connects and builds a ledger service
func (d Deps) service(ctx context.Context) (*ledger.Service, error) {
	gdb, err := d.Connect(ctx)
	if err != nil {
		return nil, err
	}
	var cache utils.Cache
	if d.Cache != nil {
		if cache, err = d.Cache(ctx); err != nil {
			return nil, err
		}
	}
	return ledger.New(gdb, d.Options(cache)), nil
}
