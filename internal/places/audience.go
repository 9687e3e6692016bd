package places

import (
	"context"
	"slices"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/community-cli/internal/cache"
	"github.com/sells-group/community-cli/internal/catalog"
	"github.com/sells-group/community-cli/internal/community"
	"github.com/sells-group/community-cli/internal/seasonal"
)

// deltaEntry is one category's cached audience text and whether it met
// the category minimum. Text is empty when nothing was found.
type deltaEntry struct {
	Text      string `json:"text,omitempty"`
	Satisfied bool   `json:"satisfied"`
}

// ByZipAndAudience fetches audience-specific results for the augmentable
// categories, then the base data for the rest, and merges the two. An
// empty audience is the same as ByZip.
func (p *Provider) ByZipAndAudience(ctx context.Context, req community.Request) (*community.Data, error) {
	if req.Audience == "" {
		return p.ByZip(ctx, req)
	}
	r, err := p.newRun(req)
	if err != nil {
		return nil, err
	}
	r.log = r.log.With(zap.String("audience", req.Audience))

	delta, satisfied := p.audienceDelta(ctx, r)

	baseRun := *r
	baseRun.req.Options.SkipCategories = append(slices.Clone(req.Options.SkipCategories), satisfied...)
	base := p.byZip(ctx, &baseRun)

	return community.ApplyAudienceDelta(base, delta, p.catalog.DisplayLimits()), nil
}

// audienceDelta assembles the delta for the augmentable categories the
// request wants. Entries are cached per category, so a request for a
// different window reuses only the categories it shares.
func (p *Provider) audienceDelta(ctx context.Context, r *run) (community.AudienceDelta, []string) {
	selected := seasonal.SelectCategories(p.catalog.Keys(), r.req.Zip, cache.MonthKey(r.now), seasonal.Scope(r.req.Audience), p.seasonalMax)

	var (
		mu        sync.Mutex
		delta     = community.AudienceDelta{}
		satisfied []string
	)
	g, gctx := errgroup.WithContext(ctx)
	for _, cat := range p.catalog.Augmentable() {
		if !r.req.Options.Wants(cat.Key) {
			continue
		}
		g.Go(func() error {
			entry := p.categoryDelta(gctx, r, cat, selected)

			mu.Lock()
			defer mu.Unlock()
			if entry.Text != "" {
				delta[cat.Key] = entry.Text
			}
			if entry.Satisfied {
				satisfied = append(satisfied, cat.Key)
			}
			return nil
		})
	}
	_ = g.Wait()
	slices.Sort(satisfied)

	r.log.Debug("places: audience delta assembled",
		zap.Int("categories", len(delta)),
		zap.Strings("satisfied", satisfied),
	)
	return delta, satisfied
}

// categoryDelta runs the audience query variants for one category,
// backfilling from the generic pool when the audience results fall short
// of the category minimum.
func (p *Provider) categoryDelta(ctx context.Context, r *run, cat *catalog.Category, selected map[string]bool) deltaEntry {
	key := p.keys.AudienceDelta(r.scope, r.req.Audience, cat.Key, r.saHash)
	log := r.log.With(zap.String("category", cat.Key))

	var entry deltaEntry
	if !r.req.Options.ForceRefresh && cache.GetJSON(ctx, p.store, key, &entry) {
		log.Debug("places: audience delta hit")
		return entry
	}

	queries, _ := p.plan(r, cat, p.catalog.AudienceQueries(r.req.Audience, cat.Key), selected)
	primary := p.fetchCategory(ctx, r, cat, queries, r.req.Audience)
	lines := formatPlaces(primary)

	if len(primary) < cat.MinPrimaryResults {
		log.Debug("places: audience results short, backfilling",
			zap.Int("primary", len(primary)),
			zap.Int("min", cat.MinPrimaryResults),
		)
		fallback := p.fetchCategory(ctx, r, cat, cat.Queries, "")
		lines = community.MergeLines(lines, formatPlaces(fallback), cat.DisplayLimit)
	}

	entry = deltaEntry{Satisfied: len(lines) >= cat.MinPrimaryResults}
	if len(lines) > 0 {
		entry.Text = community.FormatList(lines)
	}
	cache.SetJSON(ctx, p.store, key, entry, p.deltaTTL)
	log.Info("places: audience delta built",
		zap.Int("lines", len(lines)),
		zap.Bool("satisfied", entry.Satisfied),
	)
	return entry
}
