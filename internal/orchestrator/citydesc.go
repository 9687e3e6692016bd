package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sells-group/community-cli/internal/cache"
	"github.com/sells-group/community-cli/internal/structured"
)

const cityDescriptionSystem = `You write short, factual descriptions of US cities for a real estate newsletter.
Describe only what is true and widely known. Do not mention specific businesses, prices or statistics you cannot verify.
Reply with plain prose: no headings, lists or markdown.`

var titleCase = cases.Title(language.English)

type cityDescription struct {
	Text      string    `json:"text"`
	FetchedAt time.Time `json:"fetched_at"`
}

// CityDescriber writes a two to three sentence description of a city,
// cached until the end of the UTC month.
type CityDescriber struct {
	backend structured.Backend
	store   cache.Store
	keys    cache.Keys
	now     func() time.Time
}

// NewCityDescriber creates a CityDescriber. A nil backend disables
// descriptions.
func NewCityDescriber(backend structured.Backend, store cache.Store, keys cache.Keys) *CityDescriber {
	return &CityDescriber{backend: backend, store: store, keys: keys, now: time.Now}
}

// Describe returns the description for city, state, or "" when none is
// available. Failures are logged, not returned.
func (d *CityDescriber) Describe(ctx context.Context, city, state string) string {
	if d == nil || city == "" || state == "" {
		return ""
	}
	key := d.keys.CityDescription(state, city)

	var cached cityDescription
	if cache.GetJSON(ctx, d.store, key, &cached) && cached.Text != "" {
		return cached.Text
	}
	if d.backend == nil {
		return ""
	}

	name := titleCase.String(strings.ToLower(city)) + ", " + strings.ToUpper(state)
	c, err := d.backend.Complete(ctx, structured.Prompt{
		System:      cityDescriptionSystem,
		User:        fmt.Sprintf("Describe %s in two to three sentences for someone considering moving there.", name),
		MaxTokens:   300,
		Temperature: 0.3,
	})
	if err != nil {
		zap.L().Warn("orchestrator: city description failed", zap.String("city", name), zap.Error(err))
		return ""
	}
	text := strings.TrimSpace(c.Text)
	if text == "" {
		return ""
	}

	now := d.now().UTC()
	cache.SetJSON(ctx, d.store, key, cityDescription{Text: text, FetchedAt: now}, cache.UntilMonthEnd(now))
	return text
}
