package places

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/community-cli/internal/cache"
	"github.com/sells-group/community-cli/internal/community"
	"github.com/sells-group/community-cli/internal/seasonal"
)

// ByZip fetches every requested category for a zip. Categories fail
// independently; a failed category renders as community.NoneFound.
func (p *Provider) ByZip(ctx context.Context, req community.Request) (*community.Data, error) {
	r, err := p.newRun(req)
	if err != nil {
		return nil, err
	}
	return p.byZip(ctx, r), nil
}

func (p *Provider) byZip(ctx context.Context, r *run) *community.Data {
	selected := seasonal.SelectCategories(p.catalog.Keys(), r.req.Zip, cache.MonthKey(r.now), seasonal.Scope(""), p.seasonalMax)

	var (
		mu       sync.Mutex
		data     = community.NewData()
		sections = make(map[string][]string)
	)
	g, gctx := errgroup.WithContext(ctx)
	for i := range p.catalog.Categories {
		cat := &p.catalog.Categories[i]
		if !r.req.Options.Wants(cat.Key) {
			continue
		}
		g.Go(func() error {
			queries, headers := p.plan(r, cat, cat.Queries, selected)
			places := p.fetchCategory(gctx, r, cat, queries, "")

			mu.Lock()
			defer mu.Unlock()
			data.Categories[cat.Key] = community.FormatList(formatPlaces(places))
			for h, lines := range seasonalLines(places, headers) {
				sections[h] = append(sections[h], lines...)
			}
			return nil
		})
	}
	_ = g.Wait()

	for h, lines := range sections {
		data.SeasonalSections[h] = community.FormatList(lines)
	}
	r.log.Info("places: community data assembled",
		zap.Int("categories", len(data.Categories)),
		zap.Int("seasonal_sections", len(data.SeasonalSections)),
	)
	return data
}

// PrefetchCategories builds missing or month-stale pools for categories
// without sampling them. ForceRefresh rebuilds every pool. With an
// audience set, augmentable categories warm their audience pool and the
// rest warm the base pool, matching what ByZipAndAudience reads. Queries
// go through the seasonal planner so warmed pools carry seasonal results.
func (p *Provider) PrefetchCategories(ctx context.Context, req community.Request, categories []string) error {
	r, err := p.newRun(req)
	if err != nil {
		return err
	}
	month := cache.MonthKey(r.now)
	baseSel := seasonal.SelectCategories(p.catalog.Keys(), r.req.Zip, month, seasonal.Scope(""), p.seasonalMax)
	audSel := baseSel
	if r.req.Audience != "" {
		audSel = seasonal.SelectCategories(p.catalog.Keys(), r.req.Zip, month, seasonal.Scope(r.req.Audience), p.seasonalMax)
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, key := range categories {
		cat, ok := p.catalog.Category(key)
		if !ok {
			r.log.Warn("places: prefetch of unknown category", zap.String("category", key))
			continue
		}
		g.Go(func() error {
			audience, baseline, selected := "", cat.Queries, baseSel
			if r.req.Audience != "" && cat.Augmentable {
				audience = r.req.Audience
				baseline = p.catalog.AudienceQueries(audience, cat.Key)
				selected = audSel
			}
			queries, _ := p.plan(r, cat, baseline, selected)

			spec := p.poolSpec(r, cat, queries, audience)
			if !spec.force {
				var cached Pool
				if cache.GetJSON(gctx, p.store, spec.key, &cached) && !cached.Stale(r.now) {
					return nil
				}
			}
			p.buildPool(gctx, spec)
			return nil
		})
	}
	return g.Wait()
}
