// Package places implements the place-search community provider: anchor
// fan-out over the Places API, filtering, ranking and deduplication, the
// month-scoped pool cache with tiered sampling, and audience augmentation.
package places

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/community-cli/internal/cache"
	"github.com/sells-group/community-cli/internal/catalog"
	"github.com/sells-group/community-cli/internal/config"
	"github.com/sells-group/community-cli/internal/cost"
	"github.com/sells-group/community-cli/internal/geo"
	"github.com/sells-group/community-cli/internal/resilience"
	"github.com/sells-group/community-cli/internal/seasonal"
	"github.com/sells-group/community-cli/pkg/google"
)

// Name is the provider tag.
const Name = "places"

const refreshTimeout = 2 * time.Minute

// Deps are the collaborators a Provider needs.
type Deps struct {
	Google   google.Client
	Resolver *geo.Resolver
	Catalog  *catalog.Catalog
	Store    cache.Store
	Keys     cache.Keys
	Planner  *seasonal.Planner
}

// Provider is the place-search community provider.
type Provider struct {
	google   google.Client
	limiter  *rate.Limiter
	resolver *geo.Resolver
	catalog  *catalog.Catalog
	store    cache.Store
	keys     cache.Keys
	planner  *seasonal.Planner
	cfg      config.PlacesConfig
	retry    resilience.RetryConfig
	costs    *cost.Calculator

	deltaTTL    time.Duration
	seasonalMax int

	now   func() time.Time
	rngMu sync.Mutex
	rng   *rand.Rand
	spawn func(func())
}

// Option configures a Provider.
type Option func(*Provider)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(p *Provider) { p.now = now }
}

// WithRand sets the sampling random source.
func WithRand(rng *rand.Rand) Option {
	return func(p *Provider) { p.rng = rng }
}

// WithRetry overrides the retry policy for Places calls.
func WithRetry(cfg resilience.RetryConfig) Option {
	return func(p *Provider) { p.retry = cfg }
}

// WithRateLimit sets the Places request rate in requests per second.
func WithRateLimit(rps float64) Option {
	return func(p *Provider) {
		if rps > 0 {
			p.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// WithAudienceDeltaTTL sets how long audience deltas are cached.
func WithAudienceDeltaTTL(ttl time.Duration) Option {
	return func(p *Provider) {
		if ttl > 0 {
			p.deltaTTL = ttl
		}
	}
}

// WithSeasonalCategories sets how many categories get seasonal queries per run.
func WithSeasonalCategories(n int) Option {
	return func(p *Provider) {
		if n >= 0 {
			p.seasonalMax = n
		}
	}
}

// WithCosts logs an estimated search price for each pool build.
func WithCosts(c *cost.Calculator) Option {
	return func(p *Provider) { p.costs = c }
}

// WithSpawner overrides how detached background work is started.
func WithSpawner(spawn func(func())) Option {
	return func(p *Provider) { p.spawn = spawn }
}

// New creates a Provider.
func New(d Deps, cfg config.PlacesConfig, opts ...Option) *Provider {
	p := &Provider{
		google:      d.Google,
		limiter:     rate.NewLimiter(rate.Limit(10), 1),
		resolver:    d.Resolver,
		catalog:     d.Catalog,
		store:       d.Store,
		keys:        d.Keys,
		planner:     d.Planner,
		cfg:         withDefaults(cfg),
		retry:       resilience.DefaultRetryConfig(),
		deltaTTL:    12 * time.Hour,
		seasonalMax: 4,
		now:         time.Now,
		rng:         rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		spawn:       func(fn func()) { go fn() },
	}
	for _, o := range opts {
		o(p)
	}
	if p.planner == nil {
		p.planner = seasonal.NewPlanner(nil)
	}
	p.retry.OnRetry = resilience.RetryLogger("google_places", "search")
	return p
}

func withDefaults(cfg config.PlacesConfig) config.PlacesConfig {
	if cfg.SearchRadiusM <= 0 {
		cfg.SearchRadiusM = 12000
	}
	if cfg.AnchorOffsetKM <= 0 {
		cfg.AnchorOffsetKM = 9
	}
	if cfg.MaxDistanceKM <= 0 {
		cfg.MaxDistanceKM = 40
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = 20
	}
	if cfg.PoolSize <= 0 {
		cfg.PoolSize = 60
	}
	if cfg.PoolTTLDays <= 0 {
		cfg.PoolTTLDays = 62
	}
	if cfg.DistanceWeight <= 0 {
		cfg.DistanceWeight = 0.35
	}
	if cfg.DistanceCapKM <= 0 {
		cfg.DistanceCapKM = 30
	}
	if cfg.DetailsTTLHours <= 0 {
		cfg.DetailsTTLHours = 720
	}
	return cfg
}

// Name returns the provider tag.
func (p *Provider) Name() string { return Name }

// background runs fn detached from the caller's cancellation, bounded by a
// timeout. Panics are recovered and logged.
func (p *Provider) background(ctx context.Context, what string, fn func(ctx context.Context) error) {
	bg := context.WithoutCancel(ctx)
	p.spawn(func() {
		ctx, cancel := context.WithTimeout(bg, refreshTimeout)
		defer cancel()
		defer func() {
			if r := recover(); r != nil {
				zap.L().Error("places: background task panicked", zap.String("task", what), zap.Any("panic", r))
			}
		}()
		if err := fn(ctx); err != nil {
			zap.L().Error("places: background task failed", zap.String("task", what), zap.Error(err))
		}
	})
}

func (p *Provider) withRand(fn func(rng *rand.Rand)) {
	p.rngMu.Lock()
	defer p.rngMu.Unlock()
	fn(p.rng)
}
