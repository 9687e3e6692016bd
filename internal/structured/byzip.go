package structured

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/community-cli/internal/cache"
	"github.com/sells-group/community-cli/internal/catalog"
	"github.com/sells-group/community-cli/internal/community"
)

// fetch runs category prompts concurrently and returns the formatted text
// per category plus how many succeeded. Failed categories render as
// community.NoneFound.
func (p *Provider) fetch(ctx context.Context, r *run, cats []*catalog.Category, audience func(*catalog.Category) string) (map[string]string, int) {
	var (
		mu  sync.Mutex
		out = make(map[string]string, len(cats))
		ok  int
	)
	g, gctx := errgroup.WithContext(ctx)
	for _, cat := range cats {
		g.Go(func() error {
			payload, err := p.category(gctx, r, cat, audience(cat))
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				r.log.Warn("structured: category failed", zap.String("category", cat.Key), zap.Error(err))
				out[cat.Key] = community.NoneFound
				return nil
			}
			ok++
			out[cat.Key] = community.FormatList(itemLines(payload.Items))
			return nil
		})
	}
	_ = g.Wait()
	return out, ok
}

func (p *Provider) wanted(opts community.Options) []*catalog.Category {
	var out []*catalog.Category
	for i := range p.catalog.Categories {
		if cat := &p.catalog.Categories[i]; opts.Wants(cat.Key) {
			out = append(out, cat)
		}
	}
	return out
}

func noAudience(*catalog.Category) string { return "" }

// ByZip fetches every requested category. When every category fails the
// result is (nil, nil) so the caller can fall back to another provider.
func (p *Provider) ByZip(ctx context.Context, req community.Request) (*community.Data, error) {
	r, err := p.newRun(req)
	if err != nil {
		return nil, err
	}

	cats := p.wanted(req.Options)
	texts, ok := p.fetch(ctx, r, cats, noAudience)
	if len(cats) > 0 && ok == 0 {
		r.log.Warn("structured: every category failed")
		return nil, nil
	}

	data := community.NewData()
	data.Categories = texts
	r.log.Info("structured: community data assembled", zap.Int("categories", ok))
	return data, nil
}

// ByZipAndAudience fetches audience-specific answers for augmentable
// categories and merges them ahead of the generic answers. An empty
// audience is the same as ByZip.
func (p *Provider) ByZipAndAudience(ctx context.Context, req community.Request) (*community.Data, error) {
	if req.Audience == "" {
		return p.ByZip(ctx, req)
	}
	r, err := p.newRun(req)
	if err != nil {
		return nil, err
	}
	r.log = r.log.With(zap.String("audience", req.Audience))

	var augmentable []*catalog.Category
	for _, cat := range p.catalog.Augmentable() {
		if req.Options.Wants(cat.Key) {
			augmentable = append(augmentable, cat)
		}
	}

	var (
		base, delta   map[string]string
		baseOK, audOK int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		base, baseOK = p.fetch(gctx, r, p.wanted(req.Options), noAudience)
		return nil
	})
	g.Go(func() error {
		delta, audOK = p.fetch(gctx, r, augmentable, func(*catalog.Category) string { return req.Audience })
		return nil
	})
	_ = g.Wait()

	if baseOK == 0 && audOK == 0 {
		r.log.Warn("structured: every category failed")
		return nil, nil
	}

	data := community.NewData()
	data.Categories = base
	return community.ApplyAudienceDelta(data, community.AudienceDelta(delta), p.catalog.DisplayLimits()), nil
}

// AvoidRecommendations returns the names in the cached payloads for the
// given categories. It never calls the backend.
func (p *Provider) AvoidRecommendations(ctx context.Context, req community.Request, categories []string) (map[string][]string, error) {
	r, err := p.newRun(req)
	if err != nil {
		return nil, err
	}

	out := make(map[string][]string)
	for _, key := range categories {
		cat, ok := p.catalog.Category(key)
		if !ok {
			continue
		}
		var names []string
		audiences := []string{""}
		if req.Audience != "" && cat.Augmentable {
			audiences = append(audiences, req.Audience)
		}
		for _, aud := range audiences {
			var cached community.CategoryPayload
			if cache.GetJSON(ctx, p.store, p.keys.Category(r.scope, key, aud, r.saHash), &cached) {
				for _, n := range cached.Names() {
					if !slices.Contains(names, n) {
						names = append(names, n)
					}
				}
			}
		}
		if len(names) > 0 {
			out[key] = names
		}
	}
	return out, nil
}

// PrefetchCategories fills the category cache. Augmentable categories are
// fetched for req.Audience when one is set.
func (p *Provider) PrefetchCategories(ctx context.Context, req community.Request, categories []string) error {
	r, err := p.newRun(req)
	if err != nil {
		return err
	}

	var cats []*catalog.Category
	for _, key := range categories {
		if cat, ok := p.catalog.Category(key); ok {
			cats = append(cats, cat)
		}
	}
	_, ok := p.fetch(ctx, r, cats, func(cat *catalog.Category) string {
		if cat.Augmentable {
			return req.Audience
		}
		return ""
	})
	if len(cats) > 0 && ok == 0 {
		return eris.Errorf("structured: prefetch failed for %d categories", len(cats))
	}
	return nil
}

// MonthlyEvents returns this month's things-to-do list, cached until the
// end of the UTC month.
func (p *Provider) MonthlyEvents(ctx context.Context, req community.Request) (*community.CategoryPayload, error) {
	r, err := p.newRun(req)
	if err != nil {
		return nil, err
	}

	key := p.keys.MonthlyEvents(r.scope, cache.MonthKey(r.now), req.Audience)
	if !req.Options.ForceRefresh {
		var cached community.CategoryPayload
		if cache.GetJSON(ctx, p.store, key, &cached) {
			return &cached, nil
		}
	}

	c, err := p.complete(ctx, eventsPrompt(r.loc, req.Zip, r.now, p.catalog.AudienceLabel(req.Audience), eventsLimit))
	if err != nil {
		return nil, err
	}
	items, err := parseItems(c.Text, "events", r.loc.City)
	if err != nil {
		return nil, eris.Wrap(err, "structured: monthly events")
	}
	if len(items) > eventsLimit {
		items = items[:eventsLimit]
	}

	payload := &community.CategoryPayload{
		Provider:  p.backend.Name(),
		Category:  "things_to_do",
		Audience:  req.Audience,
		Zip:       req.Zip,
		City:      r.loc.City,
		State:     r.loc.State,
		FetchedAt: r.now,
		Items:     items,
		Citations: c.Citations,
	}
	if len(items) > 0 {
		cache.SetJSON(ctx, p.store, key, payload, cache.UntilMonthEnd(r.now))
	}
	r.log.Info("structured: monthly events fetched", zap.Int("items", len(items)), zap.Duration("ttl", cache.UntilMonthEnd(r.now).Truncate(time.Minute)))
	return payload, nil
}
