// Package structured implements the structured-text community provider:
// category prompts answered by a language model under a JSON schema,
// parsed into place items and cached per zip, category and audience.
package structured

import (
	"context"
	"errors"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/community-cli/internal/cache"
	"github.com/sells-group/community-cli/internal/catalog"
	"github.com/sells-group/community-cli/internal/community"
	"github.com/sells-group/community-cli/internal/config"
	"github.com/sells-group/community-cli/internal/cost"
	"github.com/sells-group/community-cli/internal/geo"
	"github.com/sells-group/community-cli/internal/resilience"
)

// Name is the provider tag.
const Name = "structured"

const eventsLimit = 8

// Deps are the collaborators a Provider needs.
type Deps struct {
	Backend  Backend
	Resolver *geo.Resolver
	Catalog  *catalog.Catalog
	Store    cache.Store
	Keys     cache.Keys
}

// Provider is the structured-text community provider.
type Provider struct {
	backend  Backend
	resolver *geo.Resolver
	catalog  *catalog.Catalog
	store    cache.Store
	keys     cache.Keys
	cfg      config.StructuredConfig
	retry    resilience.RetryConfig
	costs    *cost.Calculator
	now      func() time.Time
}

// Option configures a Provider.
type Option func(*Provider)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(p *Provider) { p.now = now }
}

// WithRetry overrides the retry policy for backend calls.
func WithRetry(cfg resilience.RetryConfig) Option {
	return func(p *Provider) { p.retry = cfg }
}

// WithCosts logs an estimated price for each completion.
func WithCosts(c *cost.Calculator) Option {
	return func(p *Provider) { p.costs = c }
}

// New creates a Provider.
func New(d Deps, cfg config.StructuredConfig, opts ...Option) *Provider {
	if cfg.CategoryTTLDays <= 0 {
		cfg.CategoryTTLDays = 90
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 2500
	}
	p := &Provider{
		backend:  d.Backend,
		resolver: d.Resolver,
		catalog:  d.Catalog,
		store:    d.Store,
		keys:     d.Keys,
		cfg:      cfg,
		retry:    resilience.DefaultRetryConfig(),
		now:      time.Now,
	}
	for _, o := range opts {
		o(p)
	}
	p.retry.OnRetry = resilience.RetryLogger(p.backend.Name(), "completion")
	return p
}

// Name returns the provider tag.
func (p *Provider) Name() string { return Name }

type run struct {
	req    community.Request
	loc    *geo.Location
	scope  cache.Scope
	saHash string
	now    time.Time
	log    *zap.Logger
}

func (p *Provider) newRun(req community.Request) (*run, error) {
	log := zap.L().With(zap.String("provider", Name), zap.String("zip", req.Zip))

	loc, err := p.resolver.Resolve(req.Zip, req.PreferredCity, req.PreferredState)
	if errors.Is(err, geo.ErrNotFound) {
		log.Warn("structured: unable to resolve zip, skipping")
		return nil, eris.Wrapf(community.ErrNoContent, "structured: unresolvable zip %s", req.Zip)
	}
	if err != nil {
		return nil, eris.Wrap(err, "structured: resolve zip")
	}
	return &run{
		req:    req,
		loc:    loc,
		scope:  cache.Scope{Zip: req.Zip, State: loc.State, City: loc.City},
		saHash: cache.ServiceAreaHash(req.ServiceAreas),
		now:    p.now().UTC(),
		log:    log.With(zap.String("city", loc.City), zap.String("backend", p.backend.Name())),
	}, nil
}

func (p *Provider) complete(ctx context.Context, user string) (*Completion, error) {
	prompt := Prompt{
		System:      systemText,
		User:        user,
		Schema:      itemsSchema,
		MaxTokens:   p.cfg.MaxTokens,
		Temperature: p.cfg.Temperature,
	}
	c, err := resilience.DoVal(ctx, p.retry, func(ctx context.Context) (*Completion, error) {
		return p.backend.Complete(ctx, prompt)
	})
	if err != nil || c == nil {
		return c, err
	}
	if p.costs != nil {
		zap.L().Debug("structured: completion usage",
			zap.String("backend", p.backend.Name()),
			zap.String("model", c.Model),
			zap.Int64("input_tokens", c.Usage.InputTokens),
			zap.Int64("output_tokens", c.Usage.OutputTokens),
			zap.Float64("est_cost_usd", p.costs.Completion(p.backend.Name(), c.Model, c.Usage)),
		)
	}
	return c, nil
}

// category returns the cached payload for a category or asks the backend.
// A failed or empty answer is an error and is not cached.
func (p *Provider) category(ctx context.Context, r *run, cat *catalog.Category, audience string) (*community.CategoryPayload, error) {
	key := p.keys.Category(r.scope, cat.Key, audience, r.saHash)
	log := r.log.With(zap.String("category", cat.Key), zap.String("audience", audience))

	if !r.req.Options.ForceRefresh {
		var cached community.CategoryPayload
		if cache.GetJSON(ctx, p.store, key, &cached) {
			log.Debug("structured: category hit")
			return &cached, nil
		}
	}

	user := categoryPrompt(cat, r.loc, r.req.Zip, p.catalog.AudienceLabel(audience), r.req.ServiceAreas, r.req.Options.Avoid[cat.Key])
	c, err := p.complete(ctx, user)
	if err != nil {
		return nil, err
	}
	items, err := parseItems(c.Text, cat.Key, r.loc.City)
	if err != nil {
		return nil, eris.Wrapf(err, "structured: category %s", cat.Key)
	}
	if len(items) == 0 {
		return nil, eris.Errorf("structured: no items for %s", cat.Key)
	}
	if len(items) > cat.DisplayLimit {
		items = items[:cat.DisplayLimit]
	}

	payload := &community.CategoryPayload{
		Provider:  p.backend.Name(),
		Category:  cat.Key,
		Audience:  audience,
		Zip:       r.req.Zip,
		City:      r.loc.City,
		State:     r.loc.State,
		FetchedAt: r.now,
		Items:     items,
		Citations: c.Citations,
	}
	cache.SetJSON(ctx, p.store, key, payload, time.Duration(p.cfg.CategoryTTLDays)*24*time.Hour)
	log.Info("structured: category fetched", zap.Int("items", len(items)))
	return payload, nil
}
