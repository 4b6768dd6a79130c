package identity

import (
	"context"                       // Request scoped lookups
	"errors"                        // Error kind checks
	"fmt"                           // Error wrapping
	"time"                          // Cache lifetimes
	"wallet_ledger/internal/domain" // Importing domain models
	"wallet_ledger/internal/utils"  // Lookup cache

	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/gorm"               // GORM ORM library
)

const cachePrefix = "identity:" // Cache key prefix, followed by the phone digits

// Options configures a Resolver
type Options struct {
	Prefixes    []string      // Transport prefixes stripped from raw phones
	CountryCode string        // Country code assumed for local numbers
	Cache       utils.Cache   // Lookup cache; nil disables caching
	CacheTTL    time.Duration // Lifetime of a cached lookup
}

// Resolver turns raw phone strings into user keys
type Resolver struct {
	db    *gorm.DB      // Users table
	norm  Normalizer    // Phone normalizer
	cache utils.Cache   // Exact lookups only
	ttl   time.Duration // Lifetime of a cached lookup
}

// NewResolver creates a resolver over the users table
func NewResolver(db *gorm.DB, opts Options) *Resolver {
	// Default cache lifetime
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 5 * time.Minute
	}
	return &Resolver{
		db:    db,
		norm:  Normalizer{Prefixes: opts.Prefixes, CountryCode: opts.CountryCode},
		cache: opts.Cache,
		ttl:   opts.CacheTTL,
	}
}

// Normalizer exposes the phone normalizer in use
func (r *Resolver) Normalizer() Normalizer {
	return r.norm
}

// Resolve returns the user key registered under any textual form of raw.
// With allowFuzzy, a failed exact lookup falls back to the longest matching
// trailing-digit suffix; equally long matches on several users are ambiguous.
// Only exact matches are cached, so a cached key is valid for both modes.
func (r *Resolver) Resolve(ctx context.Context, raw string, allowFuzzy bool) (uint, error) {
	digits := r.norm.Digits(raw) // Strip prefixes and formatting
	// Reject inputs with nothing to match on
	if digits == "" {
		return 0, domain.Validation("INVALID_PHONE", "phone %q has no digits", raw)
	}
	// Serve exact matches from the cache
	if id, ok := r.cached(ctx, digits); ok {
		return id, nil
	}

	id, err := r.exact(ctx, raw) // Try every textual form of the phone
	if err != nil {
		return 0, err
	}
	if id != 0 {
		r.remember(ctx, digits, id) // Cache the exact hit
		return id, nil
	}
	// Fall back to suffix matching when allowed, without caching the result
	if allowFuzzy {
		if id, err = r.fuzzy(ctx, digits); err != nil {
			return 0, err
		}
	}
	if id == 0 {
		return 0, domain.NotFound("IDENTITY_NOT_FOUND", "no user registered for phone %s", raw)
	}
	logrus.WithFields(logrus.Fields{"user_id": id}).Debug("Identity resolved by suffix match")
	return id, nil
}

// Register returns the existing key for raw or creates a user stored in canonical form
func (r *Resolver) Register(ctx context.Context, raw string) (uint, error) {
	canonical := r.norm.Canonical(raw) // Storage form, with country code
	// Enforce plausible phone lengths
	if len(canonical) < minDigits || len(canonical) > maxDigits {
		return 0, domain.Validation("INVALID_PHONE", "phone %q must have between %d and %d digits", raw, minDigits, maxDigits)
	}
	// Registering twice returns the first key
	if id, err := r.exact(ctx, raw); err != nil || id != 0 {
		return id, err
	}
	user := domain.User{Phone: canonical} // New user
	if err := r.db.WithContext(ctx).Create(&user).Error; err != nil {
		// A concurrent registration may have won the unique index
		if id, lookupErr := r.exact(ctx, raw); lookupErr == nil && id != 0 {
			return id, nil
		}
		return 0, fmt.Errorf("failed to register phone: %w", err)
	}
	logrus.WithFields(logrus.Fields{"user_id": user.ID}).Info("User registered")
	r.remember(ctx, r.norm.Digits(raw), user.ID) // Cache the new key
	return user.ID, nil
}

// ResolveOrRegister resolves raw by exact match, registering a new user when nobody matches.
// Suffix matching is never used here, so a new number is never merged into an existing account.
func (r *Resolver) ResolveOrRegister(ctx context.Context, raw string) (uint, error) {
	id, err := r.Resolve(ctx, raw, false) // Exact lookup only
	// Unknown phone, register it
	if errors.Is(err, domain.ErrNotFound) {
		return r.Register(ctx, raw)
	}
	return id, err
}

// Forget drops cached lookups for every textual form of phone
func (r *Resolver) Forget(ctx context.Context, phone string) {
	// Nothing to drop without a cache
	if r.cache == nil {
		return
	}
	var keys []string // Cache keys of every form
	for _, c := range r.norm.Candidates(phone) {
		if d := digitsOnly(c); d != "" {
			keys = append(keys, cachePrefix+d)
		}
	}
	// A failed delete leaves entries to expire on their own
	if err := r.cache.Delete(ctx, keys...); err != nil {
		logrus.WithError(err).Warn("Failed to forget cached identity")
	}
}

func (r *Resolver) exact(ctx context.Context, raw string) (uint, error) {
	candidates := r.norm.Candidates(raw) // Every stored form raw may have
	var users []domain.User              // Matching users
	// Query users by any candidate form
	if err := r.db.WithContext(ctx).Select("id", "phone").Where("phone IN ?", candidates).Find(&users).Error; err != nil {
		return 0, fmt.Errorf("failed to look up phone: %w", err)
	}
	byPhone := make(map[string]uint, len(users)) // Stored phone to key
	for _, u := range users {
		byPhone[u.Phone] = u.ID
	}
	// Most literal candidate wins when legacy data holds several forms
	for _, c := range candidates {
		if id, ok := byPhone[c]; ok {
			return id, nil
		}
	}
	return 0, nil
}

func (r *Resolver) fuzzy(ctx context.Context, digits string) (uint, error) {
	// Too short to match any suffix size
	if len(digits) < suffixSizes[len(suffixSizes)-1] {
		return 0, nil
	}
	best := 0                      // Longest common suffix seen
	matches := make(map[uint]bool) // Users sharing the best suffix
	var batch []domain.User        // Current page of users
	// Scan the users table in pages
	res := r.db.WithContext(ctx).Select("id", "phone").FindInBatches(&batch, 500, func(tx *gorm.DB, _ int) error {
		for _, u := range batch {
			size := commonSuffix(digits, r.norm.Digits(u.Phone))
			switch {
			case size == 0 || size < best:
			case size > best:
				best = size
				matches = map[uint]bool{u.ID: true}
			default:
				matches[u.ID] = true
			}
		}
		return nil
	})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to scan phones: %w", res.Error)
	}
	// Several users on the same suffix cannot be told apart
	if len(matches) > 1 {
		return 0, domain.Ambiguous("AMBIGUOUS_IDENTITY", "phone matches %d users on the last %d digits", len(matches), best)
	}
	for id := range matches {
		return id, nil
	}
	return 0, nil
}

func (r *Resolver) cached(ctx context.Context, digits string) (uint, bool) {
	// Caching disabled
	if r.cache == nil {
		return 0, false
	}
	var id uint // Cached key
	found, err := r.cache.Get(ctx, cachePrefix+digits, &id)
	// A broken cache degrades to database lookups
	if err != nil {
		logrus.WithError(err).Warn("Identity cache read failed")
		return 0, false
	}
	return id, found && id != 0
}

func (r *Resolver) remember(ctx context.Context, digits string, id uint) {
	// Caching disabled or nothing to key on
	if r.cache == nil || digits == "" {
		return
	}
	// A failed write only costs a later database lookup
	if err := r.cache.Set(ctx, cachePrefix+digits, id, r.ttl); err != nil {
		logrus.WithError(err).Warn("Identity cache write failed")
	}
}
