package ledger

import (
	"wallet_ledger/internal/config"   // Environment configuration
	"wallet_ledger/internal/identity" // Identity options
	"wallet_ledger/internal/utils"    // Lookup cache

	"github.com/sirupsen/logrus" // Logging library
)

// OptionsFromConfig maps the environment configuration onto service options.
// cache may be nil to disable identity caching.
func OptionsFromConfig(cfg *config.Config, cache utils.Cache) Options {
	return Options{
		Identity: identity.Options{
			Prefixes:    cfg.PhonePrefixes,
			CountryCode: cfg.DefaultCountryCode,
			Cache:       cache,
			CacheTTL:    cfg.IdentityCacheTTL,
		},
		AllowFuzzy: cfg.IdentityFuzzy,
		Location:   cfg.Location,
		Logger:     logrus.StandardLogger(),
	}
}
