package places

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/community-cli/internal/cache"
	"github.com/sells-group/community-cli/internal/catalog"
	"github.com/sells-group/community-cli/internal/config"
	"github.com/sells-group/community-cli/internal/cost"
	"github.com/sells-group/community-cli/internal/geo"
	"github.com/sells-group/community-cli/internal/resilience"
	"github.com/sells-group/community-cli/internal/seasonal"
	"github.com/sells-group/community-cli/pkg/google"
	"github.com/sells-group/community-cli/pkg/google/mocks"
)

var austin = geo.Location{
	City: "Austin", State: "TX", County: "Travis",
	Lat: 30.2672, Lng: -97.7431, Population: 961855,
	Zips: []string{"78701", "78702"},
}

// world is a fake Places backend keyed by place ID.
type world struct {
	mu      sync.Mutex
	places  map[string]google.Place
	byQuery map[string][]string // query substring -> place IDs; "*" matches all
}

func newWorld() *world {
	return &world{places: map[string]google.Place{}, byQuery: map[string][]string{}}
}

func (w *world) add(match string, p google.Place) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.places[p.ID] = p
	w.byQuery[match] = append(w.byQuery[match], p.ID)
}

func (w *world) search(_ context.Context, req google.SearchTextRequest) (*google.SearchTextResponse, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	var out []google.Place
	for match, ids := range w.byQuery {
		if match != "*" && !strings.Contains(req.TextQuery, match) {
			continue
		}
		for _, id := range ids {
			out = append(out, w.places[id])
		}
	}
	return &google.SearchTextResponse{Places: out}, nil
}

func (w *world) details(_ context.Context, id string) (*google.PlaceDetails, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	p, ok := w.places[id]
	if !ok {
		return nil, resilience.NewStatusError(fmt.Errorf("google: unexpected status 404"), 404)
	}
	return &google.PlaceDetails{
		ID:               p.ID,
		DisplayName:      p.DisplayName,
		FormattedAddress: p.FormattedAddress,
		Rating:           p.Rating,
		UserRatingCount:  p.UserRatingCount,
		Location:         p.Location,
		Types:            []string{"restaurant"},
		GenerativeSummary: &google.GenerativeSummary{
			Overview: google.LocalizedText{Text: "Summary of " + p.DisplayName.Text},
		},
	}, nil
}

func place(id, name string, rating float64, reviews int, lat, lng float64) google.Place {
	return google.Place{
		ID:               id,
		DisplayName:      google.DisplayName{Text: name},
		Rating:           rating,
		UserRatingCount:  reviews,
		FormattedAddress: name + " St, Austin, TX 78701, USA",
		Location:         &google.LatLng{Latitude: lat, Longitude: lng},
	}
}

// diningWorld holds twelve local restaurants, a chain, a low-review spot
// and a far-away restaurant, all returned for every query.
func diningWorld() *world {
	w := newWorld()
	for i := range 12 {
		w.add("*", place(fmt.Sprintf("local-%02d", i), fmt.Sprintf("Local Spot %02d", i),
			4.3+float64(i%5)/10, 150+i*40, austin.Lat+float64(i)*0.002, austin.Lng))
	}
	w.add("*", place("sbux", "Starbucks", 4.6, 9000, austin.Lat, austin.Lng))
	w.add("*", place("tiny", "Tiny Diner", 4.9, 12, austin.Lat, austin.Lng))
	w.add("*", place("far", "Houston Grill", 4.9, 900, 29.7604, -95.3698))
	return w
}

type harness struct {
	provider *Provider
	google   *mocks.MockClient
	store    *cache.MemoryStore
	keys     cache.Keys
	world    *world

	mu      sync.Mutex
	now     time.Time
	spawned []func()
}

func (h *harness) setNow(t time.Time) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.now = t
}

func (h *harness) runSpawned() {
	h.mu.Lock()
	fns := h.spawned
	h.spawned = nil
	h.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

func newHarness(t *testing.T, w *world, opts ...Option) *harness {
	t.Helper()

	cat, err := catalog.Default()
	require.NoError(t, err)

	h := &harness{
		google: mocks.NewMockClient(t),
		store:  cache.NewMemory(time.Minute),
		keys:   cache.Keys{Prefix: "community"},
		world:  w,
		now:    time.Date(2026, time.October, 18, 12, 0, 0, 0, time.UTC),
	}
	h.google.On("SearchText", mock.Anything, mock.Anything).Return(w.search).Maybe()
	h.google.On("PlaceDetails", mock.Anything, mock.Anything).Return(w.details).Maybe()

	base := []Option{
		WithClock(func() time.Time {
			h.mu.Lock()
			defer h.mu.Unlock()
			return h.now
		}),
		WithRand(rand.New(rand.NewPCG(7, 11))),
		WithRateLimit(1e6),
		WithSeasonalCategories(0),
		WithCosts(cost.NewCalculator(cost.DefaultRates())),
		WithRetry(resilience.RetryConfig{MaxAttempts: 2, InitialBackoff: time.Millisecond, MaxBackoff: time.Millisecond}),
		WithSpawner(func(fn func()) {
			h.mu.Lock()
			defer h.mu.Unlock()
			h.spawned = append(h.spawned, fn)
		}),
	}

	h.provider = New(Deps{
		Google:   h.google,
		Resolver: geo.NewResolverFromLocations([]geo.Location{austin}),
		Catalog:  cat,
		Store:    h.store,
		Keys:     h.keys,
		Planner:  seasonal.NewPlanner(rand.New(rand.NewPCG(1, 2))),
	}, config.PlacesConfig{}, append(base, opts...)...)
	return h
}

func (h *harness) searchCalls() int {
	n := 0
	for _, c := range h.google.Calls {
		if c.Method == "SearchText" {
			n++
		}
	}
	return n
}
