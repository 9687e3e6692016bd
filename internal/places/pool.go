package places

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/community-cli/internal/cache"
	"github.com/sells-group/community-cli/internal/catalog"
	"github.com/sells-group/community-cli/internal/geo"
)

// PoolEntry is the persisted projection of a ranked place.
type PoolEntry struct {
	PlaceID       string   `json:"placeId"`
	SourceQueries []string `json:"sourceQueries"`
}

// Pool is the cached, ranked candidate set for one key.
type Pool struct {
	Entries    []PoolEntry `json:"entries"`
	FetchedAt  time.Time   `json:"fetchedAt"`
	QueryCount int         `json:"queryCount"`
}

// Stale reports whether the pool was fetched in an earlier UTC month than now.
func (p *Pool) Stale(now time.Time) bool {
	return !cache.SameMonth(p.FetchedAt, now)
}

// poolSpec describes one pool fetch.
type poolSpec struct {
	key      string
	cat      *catalog.Category
	queries  []string
	loc      *geo.Location
	dist     *geo.DistanceScorer
	force    bool
	category string
}

// loadPool returns the pool for spec, serving a month-stale pool once while
// a detached refresh rebuilds it. Missing pools are built synchronously.
func (p *Provider) loadPool(ctx context.Context, spec poolSpec) *Pool {
	log := zap.L().With(zap.String("key", spec.key))

	if !spec.force {
		var cached Pool
		if cache.GetJSON(ctx, p.store, spec.key, &cached) {
			if !cached.Stale(p.now()) {
				log.Debug("places: pool hit", zap.Int("entries", len(cached.Entries)))
				return &cached
			}
			log.Info("places: stale pool, refreshing in background",
				zap.Time("fetched_at", cached.FetchedAt))
			p.background(ctx, "pool refresh "+spec.key, func(ctx context.Context) error {
				p.buildPool(ctx, spec)
				return nil
			})
			return &cached
		}
	}

	return p.buildPool(ctx, spec)
}

// buildPool searches, filters, ranks, dedupes and caps the candidates, then
// persists the pool. Places without an ID cannot be hydrated and are left
// out of the persisted pool.
func (p *Provider) buildPool(ctx context.Context, spec poolSpec) *Pool {
	log := zap.L().With(zap.String("key", spec.key), zap.String("category", spec.category))

	centers := anchors(spec.dist.Origin(), p.cfg.AnchorOffsetKM, spec.cat.SingleAnchor)
	cands := p.search(ctx, spec.queries, centers)

	f := &filter{cat: spec.cat, catalog: p.catalog, city: spec.loc.City, dist: spec.dist, maxKM: p.cfg.MaxDistanceKM}
	ranked := Rank(Dedupe(f.apply(cands, log)), p.cfg.DistanceCapKM, p.cfg.DistanceWeight)

	pool := &Pool{FetchedAt: p.now().UTC(), QueryCount: len(spec.queries)}
	for _, sp := range ranked {
		if sp.PlaceID == "" {
			continue
		}
		if len(pool.Entries) >= p.cfg.PoolSize {
			break
		}
		pool.Entries = append(pool.Entries, PoolEntry{PlaceID: sp.PlaceID, SourceQueries: sp.SourceQueries})
	}

	cache.SetJSON(ctx, p.store, spec.key, pool, time.Duration(p.cfg.PoolTTLDays)*24*time.Hour)
	fields := []zap.Field{
		zap.Int("candidates", len(cands)),
		zap.Int("entries", len(pool.Entries)),
		zap.Int("queries", len(spec.queries)),
		zap.Int("anchors", len(centers)),
	}
	if p.costs != nil {
		fields = append(fields, zap.Float64("est_cost_usd", p.costs.Places(len(spec.queries)*len(centers), 0)))
	}
	log.Info("places: pool built", fields...)
	return pool
}
