package orchestrator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/community-cli/internal/cache"
)

func TestCacheRotationSelector(t *testing.T) {
	store := cache.NewMemory(time.Minute)
	s := NewCacheRotationSelector(store, cache.Keys{Prefix: "community"}, 2)
	ctx := context.Background()
	candidates := []string{"a", "b", "c", "d", "e"}

	want := []struct {
		keys  []string
		next  []string
		force bool
	}{
		{[]string{"a", "b"}, []string{"c", "d"}, false},
		{[]string{"c", "d"}, []string{"e", "a"}, false},
		{[]string{"e", "a"}, []string{"b", "c"}, true},
		{[]string{"b", "c"}, []string{"d", "e"}, false},
	}
	for i, w := range want {
		sel, err := s.Select(ctx, "u1", candidates)
		require.NoError(t, err)
		assert.Equal(t, w.keys, sel.Keys, "turn %d", i)
		assert.Equal(t, w.next, sel.Next, "turn %d", i)
		assert.Equal(t, w.force, sel.ForceRefresh, "turn %d", i)
	}

	// Users rotate independently.
	sel, err := s.Select(ctx, "u2", candidates)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, sel.Keys)

	var st rotationState
	require.True(t, cache.GetJSON(ctx, store, "community:rotation:u1", &st))
	assert.Equal(t, 3, st.Cursor)
	assert.Equal(t, 1, st.Passes)
}

func TestCacheRotationSelector_AllCandidates(t *testing.T) {
	s := NewCacheRotationSelector(cache.NewMemory(time.Minute), cache.Keys{Prefix: "community"}, 4)

	sel, err := s.Select(context.Background(), "", []string{"a", "b", "c", "d", "e"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, sel.Keys)
	assert.Empty(t, sel.Next)

	sel, err = s.Select(context.Background(), "u1", []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, sel.Keys)
	assert.False(t, sel.ForceRefresh)
}
