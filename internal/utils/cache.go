package utils

import (
	"context"       // Context for Redis operations
	"encoding/json" // JSON encoding/decoding
	"sync"          // Guards the in-memory cache
	"time"          // Time durations

	"github.com/redis/go-redis/v9" // Redis client
)

// Cache is a TTL key/value cache holding JSON-encodable values
type Cache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// RedisCache stores values in Redis
type RedisCache struct {
	rdb *redis.Client
}

// NewRedisCache wraps a Redis client
func NewRedisCache(rdb *redis.Client) *RedisCache {
	return &RedisCache{rdb: rdb}
}

// Get retrieves a value from Redis and unmarshals it into dest
func (c *RedisCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	val, err := c.rdb.Get(ctx, key).Result() // Get value from Redis
	if err == redis.Nil {
		return false, nil // Key does not exist
	} else if err != nil {
		return false, err // Other Redis error
	}
	return true, json.Unmarshal([]byte(val), dest) // Unmarshal JSON into dest
}

// Set sets a value in Redis with a specified TTL
func (c *RedisCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	b, err := json.Marshal(value) // Marshal value to JSON
	if err != nil {
		return err // Return error if marshaling fails
	}
	return c.rdb.Set(ctx, key, b, ttl).Err() // Set value in Redis with TTL
}

// Delete deletes keys from Redis
func (c *RedisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.rdb.Del(ctx, keys...).Err() // Delete keys from Redis
}

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// MemoryCache is an in-process cache with lazy expiry and a size bound.
// When full, expired entries are dropped first, then the entry closest to expiry.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	max     int
	now     func() time.Time
}

// NewMemoryCache creates a cache holding at most max entries; now may be nil for time.Now
func NewMemoryCache(max int, now func() time.Time) *MemoryCache {
	if now == nil {
		now = time.Now
	}
	if max <= 0 {
		max = 10000
	}
	return &MemoryCache{entries: make(map[string]memoryEntry), max: max, now: now}
}

// Get returns a live entry decoded into dest
func (c *MemoryCache) Get(_ context.Context, key string, dest any) (bool, error) {
	c.mu.Lock()
	e, ok := c.entries[key]
	if ok && !c.now().Before(e.expiresAt) {
		delete(c.entries, key) // Expired
		ok = false
	}
	c.mu.Unlock()
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(e.data, dest)
}

// Set stores value until ttl elapses
func (c *MemoryCache) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.max {
		c.evictLocked()
	}
	c.entries[key] = memoryEntry{data: b, expiresAt: c.now().Add(ttl)}
	return nil
}

// Delete removes keys
func (c *MemoryCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.entries, k)
	}
	return nil
}

// Len reports the number of stored entries, expired ones included
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *MemoryCache) evictLocked() {
	now := c.now()
	var victim string
	var soonest time.Time
	for k, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, k)
			continue
		}
		if victim == "" || e.expiresAt.Before(soonest) {
			victim, soonest = k, e.expiresAt
		}
	}
	if len(c.entries) >= c.max && victim != "" {
		delete(c.entries, victim)
	}
}
