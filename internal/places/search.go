package places

import (
	"context"
	"math"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/community-cli/internal/geo"
	"github.com/sells-group/community-cli/internal/resilience"
	"github.com/sells-group/community-cli/pkg/google"
)

// candidate is a raw search hit with the query that produced it.
type candidate struct {
	place google.Place
	query string
}

// anchors returns the search centers: the origin alone for single-anchor
// categories, otherwise the origin plus N/S/E/W offsets.
func anchors(origin geo.Point, offsetKM float64, single bool) []geo.Point {
	if single {
		return []geo.Point{origin}
	}
	return []geo.Point{
		origin,
		origin.Offset(offsetKM, 0),
		origin.Offset(-offsetKM, 0),
		origin.Offset(0, offsetKM),
		origin.Offset(0, -offsetKM),
	}
}

// perAnchorLimit spreads maxResults across anchors, never below 3.
func perAnchorLimit(maxResults, anchorCount int) int {
	if anchorCount <= 0 {
		return maxResults
	}
	return max(3, int(math.Ceil(float64(maxResults)/float64(anchorCount))))
}

// search issues one Places call per (query, anchor) concurrently and
// flattens the hits. Failed calls are logged and contribute nothing.
func (p *Provider) search(ctx context.Context, queries []string, centers []geo.Point) []candidate {
	limit := perAnchorLimit(p.cfg.MaxResults, len(centers))

	var (
		mu  sync.Mutex
		out []candidate
	)
	g, gctx := errgroup.WithContext(ctx)
	for _, q := range queries {
		for _, c := range centers {
			g.Go(func() error {
				places := p.searchAnchor(gctx, q, c, limit)
				mu.Lock()
				for _, pl := range places {
					out = append(out, candidate{place: pl, query: q})
				}
				mu.Unlock()
				return nil
			})
		}
	}
	_ = g.Wait()
	return out
}

func (p *Provider) searchAnchor(ctx context.Context, query string, center geo.Point, limit int) []google.Place {
	req := google.SearchTextRequest{
		TextQuery:      query,
		MaxResultCount: limit,
		LocationBias: &google.LocationBias{Circle: google.Circle{
			Center: google.LatLng{Latitude: center.Lat, Longitude: center.Lng},
			Radius: p.cfg.SearchRadiusM,
		}},
	}

	resp, err := resilience.DoVal(ctx, p.retry, func(ctx context.Context) (*google.SearchTextResponse, error) {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		return p.google.SearchText(ctx, req)
	})
	if err != nil {
		zap.L().Warn("places: search failed",
			zap.String("query", query),
			zap.Int("status", resilience.StatusCode(err)),
			zap.Error(err),
		)
		return nil
	}
	if resp == nil {
		return nil
	}
	return resp.Places
}
