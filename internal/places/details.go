package places

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/community-cli/internal/cache"
	"github.com/sells-group/community-cli/internal/geo"
	"github.com/sells-group/community-cli/internal/resilience"
	"github.com/sells-group/community-cli/pkg/google"
)

// details returns place details, cached per place ID.
func (p *Provider) details(ctx context.Context, placeID string) (*google.PlaceDetails, error) {
	key := p.keys.Place(placeID)

	var cached google.PlaceDetails
	if cache.GetJSON(ctx, p.store, key, &cached) {
		return &cached, nil
	}

	cfg := p.retry
	cfg.OnRetry = resilience.RetryLogger("google_places", "details")
	d, err := resilience.DoVal(ctx, cfg, func(ctx context.Context) (*google.PlaceDetails, error) {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		return p.google.PlaceDetails(ctx, placeID)
	})
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, eris.Errorf("places: empty details for %s", placeID)
	}

	cache.SetJSON(ctx, p.store, key, d, time.Duration(p.cfg.DetailsTTLHours)*time.Hour)
	return d, nil
}

// hydrate resolves sampled pool entries to full places, preserving order.
// Entries whose details cannot be fetched are dropped.
func (p *Provider) hydrate(ctx context.Context, entries []PoolEntry, category string, dist *geo.DistanceScorer) []ScoredPlace {
	out := make([]*ScoredPlace, len(entries))

	g, gctx := errgroup.WithContext(ctx)
	for i, e := range entries {
		g.Go(func() error {
			d, err := p.details(gctx, e.PlaceID)
			if err != nil {
				zap.L().Warn("places: details failed",
					zap.String("place_id", e.PlaceID),
					zap.Int("status", resilience.StatusCode(err)),
					zap.Error(err),
				)
				return nil
			}
			sp := fromDetails(d, e, category, dist)
			out[i] = &sp
			return nil
		})
	}
	_ = g.Wait()

	res := make([]ScoredPlace, 0, len(entries))
	for _, sp := range out {
		if sp != nil && sp.Name != "" {
			res = append(res, *sp)
		}
	}
	return res
}

func fromDetails(d *google.PlaceDetails, e PoolEntry, category string, dist *geo.DistanceScorer) ScoredPlace {
	sp := ScoredPlace{
		PlaceID:       e.PlaceID,
		Name:          d.DisplayName.Text,
		Address:       d.FormattedAddress,
		Category:      category,
		Rating:        d.Rating,
		Reviews:       d.UserRatingCount,
		Summary:       d.SummaryText(),
		Keywords:      d.Types,
		SourceQueries: e.SourceQueries,
	}
	if d.Location != nil && dist != nil {
		pt := geo.Point{Lat: d.Location.Latitude, Lng: d.Location.Longitude}
		sp.HasLocation = true
		sp.OriginKM = dist.FromOrigin(pt)
		sp.DistanceKM = dist.Composite(pt)
	}
	return sp
}
