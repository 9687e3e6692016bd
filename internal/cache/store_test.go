package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStore struct{}

func (failingStore) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("connection refused")
}

func (failingStore) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("connection refused")
}

func (failingStore) Close() error { return nil }

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestJSONRoundTrip_Memory(t *testing.T) {
	ctx := context.Background()
	s := NewMemory(time.Minute)
	defer s.Close() //nolint:errcheck

	SetJSON(ctx, s, "k", payload{Name: "pool", Count: 3}, time.Hour)

	var got payload
	require.True(t, GetJSON(ctx, s, "k", &got))
	assert.Equal(t, payload{Name: "pool", Count: 3}, got)

	assert.False(t, GetJSON(ctx, s, "missing", &got))
}

func TestGetJSON_FailuresAreMisses(t *testing.T) {
	ctx := context.Background()
	var got payload

	assert.False(t, GetJSON(ctx, failingStore{}, "k", &got))
	assert.False(t, GetJSON(ctx, nil, "k", &got))

	s := NewMemory(time.Minute)
	require.NoError(t, s.Set(ctx, "bad", []byte("{not json"), time.Hour))
	assert.False(t, GetJSON(ctx, s, "bad", &got))
}

func TestSetJSON_FailuresAreSwallowed(t *testing.T) {
	ctx := context.Background()
	assert.NotPanics(t, func() {
		SetJSON(ctx, failingStore{}, "k", payload{}, time.Hour)
		SetJSON(ctx, nil, "k", payload{}, time.Hour)
		SetJSON(ctx, NewMemory(time.Minute), "k", make(chan int), time.Hour)
	})
}

func TestMemoryStore_Expiry(t *testing.T) {
	ctx := context.Background()
	s := NewMemory(time.Minute)

	require.NoError(t, s.Set(ctx, "short", []byte("v"), time.Millisecond))
	require.NoError(t, s.Set(ctx, "forever", []byte("v"), 0))
	time.Sleep(5 * time.Millisecond)

	_, ok, err := s.Get(ctx, "short")
	require.NoError(t, err)
	assert.False(t, ok)

	v, ok, err := s.Get(ctx, "forever")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), v)

	n, err := PurgeExpired(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = PurgeExpired(ctx, s)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestPurgeExpired_StoreWithoutPurge(t *testing.T) {
	n, err := PurgeExpired(context.Background(), failingStore{})
	require.NoError(t, err)
	assert.Zero(t, n)
}
