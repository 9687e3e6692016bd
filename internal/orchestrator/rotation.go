package orchestrator

import (
	"context"
	"slices"
	"time"

	"github.com/sells-group/community-cli/internal/cache"
)

// Selection is the rotation's choice for one turn.
type Selection struct {
	Keys         []string
	ForceRefresh bool
	// Next is the window the following turn will use.
	Next []string
}

// RotationSelector picks which categories a user sees this turn.
type RotationSelector interface {
	Select(ctx context.Context, userID string, candidates []string) (Selection, error)
}

const rotationTTL = 400 * 24 * time.Hour

type rotationState struct {
	Cursor int `json:"cursor"`
	Passes int `json:"passes"`
}

// CacheRotationSelector rotates a fixed-size window over the candidates,
// keeping a per-user cursor in the cache. A window that reaches the end of
// the candidate list completes a pass and requests a forced refresh.
type CacheRotationSelector struct {
	store  cache.Store
	keys   cache.Keys
	window int
}

// NewCacheRotationSelector creates a selector showing window categories per turn.
func NewCacheRotationSelector(store cache.Store, keys cache.Keys, window int) *CacheRotationSelector {
	if window <= 0 {
		window = 4
	}
	return &CacheRotationSelector{store: store, keys: keys, window: window}
}

// Select returns the next window for userID. Without a user, or with no
// more candidates than the window, every candidate is selected.
func (s *CacheRotationSelector) Select(ctx context.Context, userID string, candidates []string) (Selection, error) {
	n := len(candidates)
	if userID == "" || n <= s.window {
		return Selection{Keys: slices.Clone(candidates)}, nil
	}

	key := s.keys.Rotation(userID)
	var st rotationState
	cache.GetJSON(ctx, s.store, key, &st)

	cursor := st.Cursor % n
	next := (cursor + s.window) % n
	sel := Selection{
		Keys:         window(candidates, cursor, s.window),
		Next:         window(candidates, next, s.window),
		ForceRefresh: cursor+s.window >= n,
	}
	if sel.ForceRefresh {
		st.Passes++
	}
	st.Cursor = next

	cache.SetJSON(ctx, s.store, key, st, rotationTTL)
	return sel, nil
}

func window(keys []string, start, size int) []string {
	out := make([]string, 0, size)
	for i := range size {
		out = append(out, keys[(start+i)%len(keys)])
	}
	return out
}
