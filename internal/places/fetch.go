package places

import (
	"context"
	"errors"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/community-cli/internal/cache"
	"github.com/sells-group/community-cli/internal/catalog"
	"github.com/sells-group/community-cli/internal/community"
	"github.com/sells-group/community-cli/internal/geo"
	"github.com/sells-group/community-cli/internal/seasonal"
)

// run carries the per-request state shared by every category fetch.
type run struct {
	req    community.Request
	loc    *geo.Location
	scope  cache.Scope
	saHash string
	dist   *geo.DistanceScorer
	batch  *seasonal.Batch
	now    time.Time
	log    *zap.Logger
}

func (p *Provider) newRun(req community.Request) (*run, error) {
	log := zap.L().With(zap.String("provider", Name), zap.String("zip", req.Zip))

	loc, err := p.resolver.Resolve(req.Zip, req.PreferredCity, req.PreferredState)
	if errors.Is(err, geo.ErrNotFound) {
		log.Warn("places: unable to resolve zip, skipping")
		return nil, eris.Wrapf(community.ErrNoContent, "places: unresolvable zip %s", req.Zip)
	}
	if err != nil {
		return nil, eris.Wrap(err, "places: resolve zip")
	}

	batch := seasonal.NewBatch()
	return &run{
		req:    req,
		loc:    loc,
		scope:  cache.Scope{Zip: req.Zip, State: loc.State, City: loc.City},
		saHash: cache.ServiceAreaHash(req.ServiceAreas),
		dist:   geo.NewDistanceScorer(loc.Point(), p.resolver.ServiceAreaPoints(req.ServiceAreas)),
		batch:  batch,
		now:    p.now().UTC(),
		log:    log.With(zap.String("batch", batch.ID), zap.String("city", loc.City)),
	}, nil
}

// plan returns the queries for a category, blending in a seasonal header
// when the category is selected for seasonal treatment.
func (p *Provider) plan(r *run, cat *catalog.Category, baseline []string, selected map[string]bool) (queries, headers []string) {
	if !selected[cat.Key] {
		return baseline, nil
	}
	return p.planner.Plan(cat.Key, r.loc.State, r.now.Month(), r.batch, baseline)
}

func (p *Provider) poolSpec(r *run, cat *catalog.Category, queries []string, audience string) poolSpec {
	return poolSpec{
		key:      p.keys.Pool(r.scope, cat.Key, audience, r.saHash),
		cat:      cat,
		queries:  queries,
		loc:      r.loc,
		dist:     r.dist,
		force:    r.req.Options.ForceRefresh,
		category: cat.Key,
	}
}

// fetchCategory loads (or builds) the pool for a category, samples up to
// the display limit and hydrates the sample.
func (p *Provider) fetchCategory(ctx context.Context, r *run, cat *catalog.Category, queries []string, audience string) []ScoredPlace {
	pool := p.loadPool(ctx, p.poolSpec(r, cat, queries, audience))
	if pool == nil || len(pool.Entries) == 0 {
		return nil
	}

	var sampled []PoolEntry
	p.withRand(func(rng *rand.Rand) {
		sampled = TieredSample(pool.Entries, cat.DisplayLimit, rng)
	})
	return p.hydrate(ctx, sampled, cat.Key, r.dist)
}

// seasonalLines groups formatted places under the seasonal headers that
// produced them.
func seasonalLines(places []ScoredPlace, headers []string) map[string][]string {
	out := make(map[string][]string)
	for _, h := range headers {
		for _, sp := range places {
			if slices.Contains(sp.SourceQueries, h) {
				out[h] = append(out[h], formatPlace(sp))
			}
		}
	}
	return out
}
