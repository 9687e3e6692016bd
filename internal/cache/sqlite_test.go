package cache

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(context.Background(), filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStore_GetSet(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t)

	_, ok, err := s.Get(ctx, "community:pool:78701:dining")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "community:pool:78701:dining", []byte(`{"a":1}`), time.Hour))
	v, ok, err := s.Get(ctx, "community:pool:78701:dining")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{"a":1}`, string(v))

	// Overwrite is last-write-wins.
	require.NoError(t, s.Set(ctx, "community:pool:78701:dining", []byte(`{"a":2}`), time.Hour))
	v, _, _ = s.Get(ctx, "community:pool:78701:dining")
	assert.JSONEq(t, `{"a":2}`, string(v))
}

func TestSQLiteStore_ExpiryAndPurge(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t)

	now := time.Date(2026, time.October, 18, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	require.NoError(t, s.Set(ctx, "short", []byte("1"), time.Minute))
	require.NoError(t, s.Set(ctx, "forever", []byte("2"), 0))

	now = now.Add(2 * time.Minute)
	_, ok, err := s.Get(ctx, "short")
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = s.Get(ctx, "forever")
	require.NoError(t, err)
	assert.True(t, ok)

	n, err := s.Purge(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestSQLiteStore_JSONHelpers(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t)

	SetJSON(ctx, s, "k", payload{Name: "x", Count: 2}, time.Hour)
	var got payload
	require.True(t, GetJSON(ctx, s, "k", &got))
	assert.Equal(t, "x", got.Name)
}
