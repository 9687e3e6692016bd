package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/community-cli/internal/community"
)

type fakePrefetcher struct {
	fail map[string]bool
	reqs []community.Request
	cats [][]string
}

func (f *fakePrefetcher) PrefetchCategories(_ context.Context, req community.Request, categories []string) error {
	f.reqs = append(f.reqs, req)
	f.cats = append(f.cats, categories)
	if f.fail[req.Zip] {
		return errors.New("boom")
	}
	return nil
}

func TestWarmAll_ForcesRefreshPerZip(t *testing.T) {
	pf := &fakePrefetcher{}
	cats := []string{"dining", "parks"}

	err := warmAll(context.Background(), pf, []string{"78701", "78664"}, cats)
	require.NoError(t, err)

	require.Len(t, pf.reqs, 2)
	assert.Equal(t, "78701", pf.reqs[0].Zip)
	assert.Equal(t, "78664", pf.reqs[1].Zip)
	for i, req := range pf.reqs {
		assert.True(t, req.Options.ForceRefresh)
		assert.Equal(t, cats, pf.cats[i])
	}
}

func TestWarmAll_SkipsFailedZips(t *testing.T) {
	pf := &fakePrefetcher{fail: map[string]bool{"00000": true}}

	err := warmAll(context.Background(), pf, []string{"00000", "78701"}, []string{"dining"})
	require.NoError(t, err)
	assert.Len(t, pf.reqs, 2)
}

func TestWarmAll_AllFailed(t *testing.T) {
	pf := &fakePrefetcher{fail: map[string]bool{"00000": true}}

	err := warmAll(context.Background(), pf, []string{"00000"}, []string{"dining"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "none of 1 zips")
}

func TestWarmAll_StopsOnCancel(t *testing.T) {
	pf := &fakePrefetcher{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := warmAll(ctx, pf, []string{"78701", "78702"}, []string{"dining"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, pf.reqs)
}

type purgeStore struct {
	purged int
	err    error
}

func (s *purgeStore) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

func (s *purgeStore) Set(context.Context, string, []byte, time.Duration) error { return nil }

func (s *purgeStore) Close() error { return nil }

func (s *purgeStore) Purge(context.Context) (int64, error) {
	s.purged++
	return 4, s.err
}

func TestPurgeExpired(t *testing.T) {
	s := &purgeStore{}
	purgeExpired(context.Background(), s)
	assert.Equal(t, 1, s.purged)

	failing := &purgeStore{err: errors.New("locked")}
	assert.NotPanics(t, func() { purgeExpired(context.Background(), failing) })
	assert.Equal(t, 1, failing.purged)
}
