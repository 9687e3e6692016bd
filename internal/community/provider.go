package community

import (
	"context"
	"slices"
)

// Request identifies a community-data lookup.
type Request struct {
	Zip            string
	Audience       string
	ServiceAreas   []string
	PreferredCity  string
	PreferredState string
	Options        Options
}

// Options narrow or modify a lookup.
type Options struct {
	// Categories restricts the lookup to these keys. Empty means all.
	Categories []string
	// SkipCategories are left out of the lookup.
	SkipCategories []string
	// ForceRefresh bypasses cached payloads.
	ForceRefresh bool
	// Avoid lists names per category that should not be recommended again.
	Avoid map[string][]string
}

// Wants reports whether category is part of the lookup.
func (o Options) Wants(category string) bool {
	if slices.Contains(o.SkipCategories, category) {
		return false
	}
	return len(o.Categories) == 0 || slices.Contains(o.Categories, category)
}

// Provider produces community data for a zip. Implementations return
// ErrNoContent when the request cannot produce location-bound content, and
// (nil, nil) or another error when the result should be retried elsewhere.
type Provider interface {
	Name() string
	ByZip(ctx context.Context, req Request) (*Data, error)
}

// AudienceProvider produces audience-augmented data.
type AudienceProvider interface {
	ByZipAndAudience(ctx context.Context, req Request) (*Data, error)
}

// AvoidLister returns previously recommended names per category.
type AvoidLister interface {
	AvoidRecommendations(ctx context.Context, req Request, categories []string) (map[string][]string, error)
}

// Prefetcher warms the cache for categories without returning data.
type Prefetcher interface {
	PrefetchCategories(ctx context.Context, req Request, categories []string) error
}

// EventsProvider produces the monthly "things to do" section.
type EventsProvider interface {
	MonthlyEvents(ctx context.Context, req Request) (*CategoryPayload, error)
}
