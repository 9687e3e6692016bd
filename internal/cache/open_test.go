package cache

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/community-cli/internal/config"
)

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, config.CacheConfig{Driver: "memory"})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	s, err = Open(ctx, config.CacheConfig{Driver: "sqlite", SQLitePath: filepath.Join(t.TempDir(), "c.db")})
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, s)
	require.NoError(t, s.Close())

	_, err = Open(ctx, config.CacheConfig{Driver: "redis"})
	assert.ErrorContains(t, err, "redis_url is required")

	_, err = Open(ctx, config.CacheConfig{Driver: "postgres"})
	assert.ErrorContains(t, err, "database_url is required")

	_, err = Open(ctx, config.CacheConfig{Driver: "etcd"})
	assert.ErrorContains(t, err, "unknown driver")
}
