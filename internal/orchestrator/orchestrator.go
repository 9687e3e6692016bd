// Package orchestrator selects between community providers, applies the
// one-directional fallback policy and assembles the content context used
// for newsletter generation.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/community-cli/internal/catalog"
	"github.com/sells-group/community-cli/internal/community"
	"github.com/sells-group/community-cli/internal/geo"
)

const prefetchTimeout = 5 * time.Minute

// Orchestrator routes community requests to the registered providers.
type Orchestrator struct {
	registry *Registry
	catalog  *catalog.Catalog
	resolver *geo.Resolver
	rotation RotationSelector
	cities   *CityDescriber
	now      func() time.Time
	spawn    func(func())
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithRotation sets the category rotation selector.
func WithRotation(r RotationSelector) Option {
	return func(o *Orchestrator) { o.rotation = r }
}

// WithCityDescriber sets the city description source.
func WithCityDescriber(d *CityDescriber) Option {
	return func(o *Orchestrator) { o.cities = d }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// WithSpawner overrides how background prefetches are started.
func WithSpawner(spawn func(func())) Option {
	return func(o *Orchestrator) { o.spawn = spawn }
}

// New creates an Orchestrator.
func New(reg *Registry, cat *catalog.Catalog, resolver *geo.Resolver, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		registry: reg,
		catalog:  cat,
		resolver: resolver,
		now:      time.Now,
		spawn:    func(fn func()) { go fn() },
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// ByZip returns community data for a zip. The result is nil when no
// provider has anything to show. An error is returned only when every
// eligible provider failed.
func (o *Orchestrator) ByZip(ctx context.Context, req community.Request) (*community.Data, error) {
	return o.withFallback(ctx, req, "by_zip", func(p community.Provider) (*community.Data, error) {
		return p.ByZip(ctx, req)
	})
}

// ByZipAndAudience returns audience-augmented community data. Providers
// without audience support answer with ByZip.
func (o *Orchestrator) ByZipAndAudience(ctx context.Context, req community.Request) (*community.Data, error) {
	return o.withFallback(ctx, req, "by_zip_and_audience", func(p community.Provider) (*community.Data, error) {
		if ap, ok := p.(community.AudienceProvider); ok {
			return ap.ByZipAndAudience(ctx, req)
		}
		return p.ByZip(ctx, req)
	})
}

// withFallback calls the primary and, unless it reported ErrNoContent,
// falls back to the secondary on an error or a nil result.
func (o *Orchestrator) withFallback(ctx context.Context, req community.Request, op string, call func(community.Provider) (*community.Data, error)) (*community.Data, error) {
	log := zap.L().With(zap.String("zip", req.Zip), zap.String("op", op))
	primary := o.registry.Primary()

	data, err := call(primary)
	switch {
	case errors.Is(err, community.ErrNoContent):
		log.Info("orchestrator: no content for request", zap.String("provider", primary.Name()))
		return nil, nil
	case err == nil && data != nil:
		return data, nil
	}

	secondary := o.registry.Secondary()
	if secondary == nil {
		if err != nil {
			log.Warn("orchestrator: provider failed", zap.String("provider", primary.Name()), zap.Error(err))
		}
		return nil, err
	}

	log.Warn("orchestrator: falling back",
		zap.String("from", primary.Name()),
		zap.String("to", secondary.Name()),
		zap.Error(err),
	)
	data, err2 := call(secondary)
	if errors.Is(err2, community.ErrNoContent) {
		return nil, nil
	}
	if err2 != nil {
		log.Warn("orchestrator: fallback failed", zap.String("provider", secondary.Name()), zap.Error(err2))
		return nil, err2
	}
	return data, nil
}

// ContextParams describes a content-context request.
type ContextParams struct {
	UserID         string
	Zip            string
	Audience       string
	ServiceAreas   []string
	PreferredCity  string
	PreferredState string
	// Categories are the rotation candidates. Empty means every category.
	Categories []string
}

// ContentContext is the community material handed to content generation.
type ContentContext struct {
	CommunityData         *community.Data   `json:"communityData"`
	CityDescription       string            `json:"cityDescription"`
	CommunityCategoryKeys []string          `json:"communityCategoryKeys"`
	SeasonalExtraSections map[string]string `json:"seasonalExtraSections"`
}

// ContentContext selects this turn's categories, fetches them with an
// avoid list built from earlier answers, adds monthly events and the city
// description, and prefetches the next rotation in the background.
func (o *Orchestrator) ContentContext(ctx context.Context, params ContextParams) (*ContentContext, error) {
	log := zap.L().With(zap.String("zip", params.Zip), zap.String("user", params.UserID))

	candidates := params.Categories
	if len(candidates) == 0 {
		candidates = o.catalog.Keys()
	}

	sel := Selection{Keys: candidates}
	if o.rotation != nil {
		s, err := o.rotation.Select(ctx, params.UserID, candidates)
		if err != nil {
			log.Warn("orchestrator: rotation failed, using all candidates", zap.Error(err))
		} else {
			sel = s
		}
	}

	req := community.Request{
		Zip:            params.Zip,
		Audience:       params.Audience,
		ServiceAreas:   params.ServiceAreas,
		PreferredCity:  params.PreferredCity,
		PreferredState: params.PreferredState,
		Options: community.Options{
			Categories:   sel.Keys,
			ForceRefresh: sel.ForceRefresh,
		},
	}
	if al, ok := o.registry.Primary().(community.AvoidLister); ok {
		avoid, err := al.AvoidRecommendations(ctx, req, sel.Keys)
		if err != nil && !errors.Is(err, community.ErrNoContent) {
			log.Warn("orchestrator: avoid list failed", zap.Error(err))
		}
		req.Options.Avoid = avoid
	}

	out := &ContentContext{
		CommunityCategoryKeys: sel.Keys,
		SeasonalExtraSections: map[string]string{},
	}

	var (
		data   *community.Data
		events *community.CategoryPayload
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		data, err = o.ByZipAndAudience(gctx, req)
		if err != nil {
			log.Warn("orchestrator: community data unavailable", zap.Error(err))
		}
		return nil
	})
	g.Go(func() error {
		events = o.monthlyEvents(gctx, req)
		return nil
	})
	g.Go(func() error {
		out.CityDescription = o.describeCity(gctx, req)
		return nil
	})
	_ = g.Wait()

	out.CommunityData = o.render(data, sel.Keys)
	for header, text := range out.CommunityData.SeasonalSections {
		out.SeasonalExtraSections[header] = text
	}
	if events != nil && len(events.Items) > 0 {
		lines := make([]string, 0, len(events.Items))
		for _, it := range events.Items {
			lines = append(lines, community.ItemLine(it))
		}
		out.SeasonalExtraSections[eventsHeader(o.now())] = community.FormatList(lines)
	}

	if len(sel.Next) > 0 {
		o.prefetch(ctx, req, sel.Next)
	}
	return out, nil
}

// render keeps the selected categories, filling missing ones with
// community.NoneFound so downstream always sees a well-formed payload.
func (o *Orchestrator) render(data *community.Data, keys []string) *community.Data {
	out := community.NewData()
	for _, k := range keys {
		out.Categories[k] = data.Category(k)
	}
	if data != nil {
		for h, text := range data.SeasonalSections {
			out.SeasonalSections[h] = text
		}
	}
	return out
}

func (o *Orchestrator) monthlyEvents(ctx context.Context, req community.Request) *community.CategoryPayload {
	ep := o.registry.events()
	if ep == nil {
		return nil
	}
	p, err := ep.MonthlyEvents(ctx, req)
	if err != nil {
		if !errors.Is(err, community.ErrNoContent) {
			zap.L().Warn("orchestrator: monthly events failed", zap.String("zip", req.Zip), zap.Error(err))
		}
		return nil
	}
	return p
}

func (o *Orchestrator) describeCity(ctx context.Context, req community.Request) string {
	if o.cities == nil || o.resolver == nil {
		return ""
	}
	loc, err := o.resolver.Resolve(req.Zip, req.PreferredCity, req.PreferredState)
	if err != nil {
		return ""
	}
	return o.cities.Describe(ctx, loc.City, loc.State)
}

func eventsHeader(now time.Time) string {
	return fmt.Sprintf("Things to do in %s", now.UTC().Format("January"))
}

// prefetch warms the next rotation's categories on a detached context.
// Failures are logged and never reach the caller.
func (o *Orchestrator) prefetch(ctx context.Context, req community.Request, next []string) {
	pf, ok := o.registry.Primary().(community.Prefetcher)
	if !ok {
		return
	}
	bg := context.WithoutCancel(ctx)
	req.Options = community.Options{}
	o.spawn(func() {
		ctx, cancel := context.WithTimeout(bg, prefetchTimeout)
		defer cancel()
		defer func() {
			if r := recover(); r != nil {
				zap.L().Error("orchestrator: prefetch panicked", zap.Any("panic", r))
			}
		}()
		if err := pf.PrefetchCategories(ctx, req, next); err != nil {
			zap.L().Error("orchestrator: prefetch failed",
				zap.String("zip", req.Zip),
				zap.Strings("categories", next),
				zap.Error(err),
			)
		}
	})
}
