// Package cache implements the feature-cache tiers backing
// internal/service/decision.FeatureProvider (§4.1 features, §4.5 step 4):
// an in-memory L1, and an optional Redis-backed L2 for features whose
// computation window is wider than one node's process lifetime. No L3 tier
// is built; the l3_* settings are validated but not used.
package cache

import (
	"context"
	"time"
)

// Cache is the generic get/set/delete surface each tier implements.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Increment(ctx context.Context, key string) (int64, error)
	GetJSON(ctx context.Context, key string, dest interface{}) error
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Close() error
}

const (
	FeaturePrefix = "riskguard:features:"
	CounterPrefix = "riskguard:counters:"
)

// ErrCacheKeyNotFound is returned when a cache key doesn't exist.
type ErrCacheKeyNotFound struct {
	Key string
}

func (e ErrCacheKeyNotFound) Error() string {
	return "cache key not found: " + e.Key
}
