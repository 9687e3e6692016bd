// Package seasonal blends holiday and regional query headers into a
// category's baseline queries and picks which categories get seasonal
// treatment in an aggregation run.
package seasonal

import (
	"math/rand/v2"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
)

// Batch tracks the seasonal headers already used within one aggregation
// run so that concurrent categories do not repeat a header.
type Batch struct {
	ID string

	mu   sync.Mutex
	used map[string]bool
}

// NewBatch starts a new aggregation batch.
func NewBatch() *Batch {
	return &Batch{ID: uuid.NewString(), used: make(map[string]bool)}
}

// Used reports whether header was already claimed in this batch.
func (b *Batch) Used(header string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.used[strings.ToLower(header)]
}

// claim marks header used, returning false if another category got it first.
func (b *Batch) claim(header string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	k := strings.ToLower(header)
	if b.used[k] {
		return false
	}
	b.used[k] = true
	return true
}

// Planner selects seasonal headers. Its random source is only used for the
// variety pick between candidate headers.
type Planner struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewPlanner creates a Planner. A nil rng uses an unseeded source.
func NewPlanner(rng *rand.Rand) *Planner {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Planner{rng: rng}
}

// Headers picks at most one seasonal header for category in the given
// month and state, skipping headers already used in batch.
func (p *Planner) Headers(category, state string, month time.Month, batch *Batch) []string {
	var candidates []string
	for _, h := range Candidates(category, RegionForState(state), month) {
		if batch != nil && batch.Used(h) {
			continue
		}
		candidates = append(candidates, h)
	}

	for len(candidates) > 0 {
		i := 0
		if len(candidates) > 1 {
			p.mu.Lock()
			i = p.rng.IntN(len(candidates))
			p.mu.Unlock()
		}
		h := candidates[i]
		if batch == nil || batch.claim(h) {
			return []string{h}
		}
		candidates = slices.Delete(candidates, i, i+1)
	}
	return nil
}

// Plan returns the category's query list with any chosen seasonal header
// ahead of baseline, plus the headers that were chosen.
func (p *Planner) Plan(category, state string, month time.Month, batch *Batch, baseline []string) (queries, headers []string) {
	headers = p.Headers(category, state, month, batch)
	return Blend(headers, baseline), headers
}

// Blend merges lists in order, dropping case-insensitive duplicates.
func Blend(lists ...[]string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, list := range lists {
		for _, q := range list {
			k := strings.ToLower(strings.TrimSpace(q))
			if k == "" || seen[k] {
				continue
			}
			seen[k] = true
			out = append(out, q)
		}
	}
	return out
}

// SelectCategories deterministically picks up to n of keys for seasonal
// treatment. The selection is a shuffle seeded by xxhash(zip|month|scope),
// so one request key sees the same choice all month while other zips and
// scopes diverge.
func SelectCategories(keys []string, zip, monthKey, scope string, n int) map[string]bool {
	sorted := slices.Clone(keys)
	slices.Sort(sorted)

	seed := xxhash.Sum64String(zip + "|" + monthKey + "|" + scope)
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	rng.Shuffle(len(sorted), func(i, j int) { sorted[i], sorted[j] = sorted[j], sorted[i] })

	out := make(map[string]bool, n)
	for _, k := range sorted[:min(n, len(sorted))] {
		out[k] = true
	}
	return out
}

// Scope returns the seasonal-selection scope for an audience.
func Scope(audience string) string {
	if audience == "" {
		return "base"
	}
	return audience
}
