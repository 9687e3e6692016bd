// Package cache provides the shared key-value store used for place pools,
// structured-text payloads, audience deltas and city descriptions. All
// access through GetJSON and SetJSON is best-effort: failures are logged and
// treated as a miss.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"
)

// Store is a string-keyed byte store with per-entry TTL.
type Store interface {
	// Get returns the value for key. A missing or expired key returns
	// (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores val under key for ttl. A non-positive ttl never expires.
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
	Close() error
}

// Purger is implemented by stores that keep expired entries until they
// are removed explicitly.
type Purger interface {
	Purge(ctx context.Context) (int64, error)
}

// PurgeExpired removes expired entries from s and reports how many went.
// Stores that expire entries on their own return 0.
func PurgeExpired(ctx context.Context, s Store) (int64, error) {
	p, ok := s.(Purger)
	if !ok {
		return 0, nil
	}
	return p.Purge(ctx)
}

// GetJSON decodes the value at key into dst. It reports false on a miss,
// a store failure or an undecodable value.
func GetJSON(ctx context.Context, s Store, key string, dst any) bool {
	if s == nil {
		return false
	}
	raw, ok, err := s.Get(ctx, key)
	if err != nil {
		zap.L().Warn("cache: get failed", zap.String("key", key), zap.Error(err))
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		zap.L().Warn("cache: decode failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

// SetJSON encodes v and stores it under key. Failures are logged.
func SetJSON(ctx context.Context, s Store, key string, v any, ttl time.Duration) {
	if s == nil {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		zap.L().Warn("cache: encode failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := s.Set(ctx, key, raw, ttl); err != nil {
		zap.L().Warn("cache: set failed", zap.String("key", key), zap.Error(err))
	}
}
