package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryStore is a process-local Store backed by go-cache.
type MemoryStore struct {
	c *gocache.Cache
}

// NewMemory creates an in-memory store that sweeps expired entries every
// cleanup interval.
func NewMemory(cleanup time.Duration) *MemoryStore {
	return &MemoryStore{c: gocache.New(gocache.NoExpiration, cleanup)}
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := m.c.Get(key)
	if !ok {
		return nil, false, nil
	}
	b, ok := v.([]byte)
	return b, ok, nil
}

func (m *MemoryStore) Set(_ context.Context, key string, val []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	m.c.Set(key, val, ttl)
	return nil
}

// Purge drops expired entries ahead of the cleanup sweep.
func (m *MemoryStore) Purge(_ context.Context) (int64, error) {
	before := m.c.ItemCount()
	m.c.DeleteExpired()
	return int64(before - m.c.ItemCount()), nil
}

func (m *MemoryStore) Close() error {
	m.c.Flush()
	return nil
}
