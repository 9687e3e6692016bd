package places

import (
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/community-cli/internal/catalog"
	"github.com/sells-group/community-cli/internal/geo"
)

// filter applies the distance cap and category rules to raw candidates.
type filter struct {
	cat     *catalog.Category
	catalog *catalog.Catalog
	city    string
	dist    *geo.DistanceScorer
	maxKM   float64
}

// reason returns why c is rejected, or "" when it passes.
func (f *filter) reason(c candidate) string {
	name := strings.TrimSpace(c.place.DisplayName.Text)
	if name == "" {
		return "no name"
	}

	if c.place.Location != nil {
		pt := geo.Point{Lat: c.place.Location.Latitude, Lng: c.place.Location.Longitude}
		if f.dist.FromOrigin(pt) > f.maxKM {
			return "too far"
		}
	}

	if f.cat.IsNeighborhoods() {
		folded := geo.Fold(name)
		if folded == geo.Fold(f.city) {
			return "city name"
		}
		for _, term := range f.cat.RejectTerms {
			if strings.Contains(folded, geo.Fold(term)) {
				return "generic name"
			}
		}
	} else if !f.cat.SkipChainFilter && f.catalog.IsChain(name) {
		return "chain"
	}

	minRating, minReviews := f.cat.Thresholds(c.query)
	if c.place.Rating < minRating {
		return "rating"
	}
	if c.place.UserRatingCount < minReviews {
		return "reviews"
	}
	return ""
}

// apply filters candidates and maps survivors to ScoredPlace.
func (f *filter) apply(cands []candidate, log *zap.Logger) []ScoredPlace {
	out := make([]ScoredPlace, 0, len(cands))
	rejected := 0
	for _, c := range cands {
		if r := f.reason(c); r != "" {
			rejected++
			log.Debug("candidate filtered",
				zap.String("name", c.place.DisplayName.Text),
				zap.String("reason", r),
			)
			continue
		}
		out = append(out, f.toScored(c))
	}
	log.Debug("candidates filtered", zap.Int("kept", len(out)), zap.Int("rejected", rejected))
	return out
}

func (f *filter) toScored(c candidate) ScoredPlace {
	sp := ScoredPlace{
		PlaceID:       c.place.ID,
		Name:          strings.TrimSpace(c.place.DisplayName.Text),
		Address:       c.place.FormattedAddress,
		Category:      f.cat.Key,
		Rating:        c.place.Rating,
		Reviews:       c.place.UserRatingCount,
		SourceQueries: []string{c.query},
	}
	if c.place.Location != nil {
		pt := geo.Point{Lat: c.place.Location.Latitude, Lng: c.place.Location.Longitude}
		sp.HasLocation = true
		sp.OriginKM = f.dist.FromOrigin(pt)
		sp.DistanceKM = f.dist.Composite(pt)
	}
	return sp
}
