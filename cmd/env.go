package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/community-cli/internal/cache"
	"github.com/sells-group/community-cli/internal/catalog"
	"github.com/sells-group/community-cli/internal/community"
	"github.com/sells-group/community-cli/internal/config"
	"github.com/sells-group/community-cli/internal/cost"
	"github.com/sells-group/community-cli/internal/geo"
	"github.com/sells-group/community-cli/internal/orchestrator"
	"github.com/sells-group/community-cli/internal/places"
	"github.com/sells-group/community-cli/internal/resilience"
	"github.com/sells-group/community-cli/internal/seasonal"
	"github.com/sells-group/community-cli/internal/structured"
	anthropicpkg "github.com/sells-group/community-cli/pkg/anthropic"
	"github.com/sells-group/community-cli/pkg/google"
	"github.com/sells-group/community-cli/pkg/perplexity"
)

// rotationWindow is how many categories a user sees per turn.
const rotationWindow = 4

// communityEnv holds the initialized store, providers and orchestrator
// needed by the community/serve/warm commands.
type communityEnv struct {
	Store        cache.Store
	Catalog      *catalog.Catalog
	Resolver     *geo.Resolver
	Places       *places.Provider
	Structured   *structured.Provider // nil without LLM credentials
	Orchestrator *orchestrator.Orchestrator
}

// Close releases resources held by the environment.
func (e *communityEnv) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

// Prefetcher returns the primary provider's prefetch capability.
func (e *communityEnv) Prefetcher(primary string) community.Prefetcher {
	if primary == "structured" && e.Structured != nil {
		return e.Structured
	}
	return e.Places
}

// loadCatalog returns the embedded catalog or the configured override.
func loadCatalog(c config.CatalogConfig) (*catalog.Catalog, error) {
	if c.Path == "" {
		return catalog.Default()
	}
	return catalog.Load(c.Path)
}

// newBackend returns the configured structured-text backend, or nil when
// its API key is missing.
func newBackend(c *config.Config) structured.Backend {
	switch c.Providers.StructuredBackend {
	case "anthropic":
		if c.Anthropic.Key == "" {
			return nil
		}
		return structured.NewAnthropicBackend(anthropicpkg.NewClient(c.Anthropic.Key, anthropicpkg.WithMaxRetries(c.Anthropic.MaxRetries)), c.Anthropic.Model)
	default:
		if c.Perplexity.Key == "" {
			return nil
		}
		client := perplexity.NewClient(c.Perplexity.Key,
			perplexity.WithBaseURL(c.Perplexity.BaseURL),
			perplexity.WithModel(c.Perplexity.Model),
		)
		return structured.NewPerplexityBackend(client, c.Perplexity.Model)
	}
}

// initEnv opens the cache, builds both providers and the orchestrator.
// Callers should defer env.Close().
func initEnv(ctx context.Context, c *config.Config) (*communityEnv, error) {
	cat, err := loadCatalog(c.Catalog)
	if err != nil {
		return nil, eris.Wrap(err, "load catalog")
	}

	store, err := cache.Open(ctx, c.Cache)
	if err != nil {
		return nil, err
	}

	env := &communityEnv{
		Store:    store,
		Catalog:  cat,
		Resolver: geo.NewResolver(geo.FileLoader(c.Geo.DatasetPath)),
	}
	keys := cache.Keys{Prefix: c.Cache.Prefix}
	costs := cost.NewCalculator(cost.DefaultRates())

	if c.Google.Key == "" {
		zap.L().Warn("google.key is not set; place searches will fail")
	}
	googleClient := google.NewClient(c.Google.Key,
		google.WithBaseURL(c.Google.BaseURL),
		google.WithTimeout(time.Duration(c.Google.TimeoutSecs)*time.Second),
	)

	env.Places = places.New(places.Deps{
		Google:   googleClient,
		Resolver: env.Resolver,
		Catalog:  cat,
		Store:    store,
		Keys:     keys,
		Planner:  seasonal.NewPlanner(nil),
	}, c.Places,
		places.WithRateLimit(c.Google.RateLimit),
		places.WithRetry(resilience.FromRetryConfig(c.Google.MaxAttempts, 0, 0)),
		places.WithAudienceDeltaTTL(time.Duration(c.Audience.DeltaTTLHours)*time.Hour),
		places.WithSeasonalCategories(c.Seasonal.MaxCategories),
		places.WithCosts(costs),
	)

	backend := newBackend(c)
	var structuredProvider community.Provider
	if backend != nil {
		env.Structured = structured.New(structured.Deps{
			Backend:  backend,
			Resolver: env.Resolver,
			Catalog:  cat,
			Store:    store,
			Keys:     keys,
		}, c.Structured, structured.WithCosts(costs))
		structuredProvider = env.Structured
	} else if c.Providers.Primary == "structured" {
		env.Close()
		return nil, eris.Errorf("providers.primary is structured but %s.key is not set", c.Providers.StructuredBackend)
	}

	reg, err := orchestrator.NewRegistry(c.Providers.Primary, env.Places, structuredProvider)
	if err != nil {
		env.Close()
		return nil, err
	}

	env.Orchestrator = orchestrator.New(reg, cat, env.Resolver,
		orchestrator.WithRotation(orchestrator.NewCacheRotationSelector(store, keys, rotationWindow)),
		orchestrator.WithCityDescriber(orchestrator.NewCityDescriber(backend, store, keys)),
	)

	zap.L().Info("community environment ready",
		zap.String("primary", reg.Primary().Name()),
		zap.String("cache", c.Cache.Driver),
		zap.Bool("structured", env.Structured != nil),
	)
	return env, nil
}
