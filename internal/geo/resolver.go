// Package geo resolves postal codes to populated places and scores
// distances from a search origin.
package geo

import (
	"strings"
	"sync/atomic"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// ErrNotFound is returned when no dataset record matches a lookup.
var ErrNotFound = eris.New("geo: location not found")

type index struct {
	byZip  map[string]*Location
	byCity map[string][]*Location
}

// Resolver looks up locations by postal code or city. The index is built
// from the loader on first use and is read-only afterwards. Concurrent first
// calls may each build it; the results are equivalent and the last one wins.
type Resolver struct {
	load func() ([]Location, error)
	idx  atomic.Pointer[index]
}

// NewResolver creates a Resolver backed by load.
func NewResolver(load func() ([]Location, error)) *Resolver {
	return &Resolver{load: load}
}

// NewResolverFromLocations creates a Resolver over an in-memory dataset.
func NewResolverFromLocations(locs []Location) *Resolver {
	return NewResolver(func() ([]Location, error) { return locs, nil })
}

func (r *Resolver) index() (*index, error) {
	if idx := r.idx.Load(); idx != nil {
		return idx, nil
	}

	locs, err := r.load()
	if err != nil {
		return nil, eris.Wrap(err, "geo: load dataset")
	}

	idx := &index{
		byZip:  make(map[string]*Location),
		byCity: make(map[string][]*Location),
	}
	for i := range locs {
		loc := &locs[i]
		for _, zip := range loc.Zips {
			if cur, ok := idx.byZip[zip]; !ok || loc.Population > cur.Population {
				idx.byZip[zip] = loc
			}
		}
		key := Fold(loc.City)
		idx.byCity[key] = append(idx.byCity[key], loc)
	}

	r.idx.Store(idx)
	zap.L().Debug("geo: index built",
		zap.Int("locations", len(locs)),
		zap.Int("zips", len(idx.byZip)),
	)
	return idx, nil
}

// Resolve maps zip to a location. When preferredCity is set, records with
// that city name whose postal codes include zip win (filtered by
// preferredState when set), largest population first. Otherwise the zip
// index is used.
func (r *Resolver) Resolve(zip, preferredCity, preferredState string) (*Location, error) {
	idx, err := r.index()
	if err != nil {
		return nil, err
	}

	zip = strings.TrimSpace(zip)
	if preferredCity != "" {
		var best *Location
		for _, loc := range idx.byCity[Fold(preferredCity)] {
			if preferredState != "" && !strings.EqualFold(loc.State, preferredState) {
				continue
			}
			if !loc.HasZip(zip) {
				continue
			}
			if best == nil || loc.Population > best.Population {
				best = loc
			}
		}
		if best != nil {
			return best, nil
		}
	}

	if loc, ok := idx.byZip[zip]; ok {
		return loc, nil
	}
	return nil, eris.Wrapf(ErrNotFound, "geo: zip %s", zip)
}

// LookupCity finds a location by city name, optionally restricted to a
// state. Ambiguous names resolve to the most populous match.
func (r *Resolver) LookupCity(city, state string) (*Location, error) {
	idx, err := r.index()
	if err != nil {
		return nil, err
	}

	var best *Location
	for _, loc := range idx.byCity[Fold(city)] {
		if state != "" && !strings.EqualFold(loc.State, state) {
			continue
		}
		if best == nil || loc.Population > best.Population {
			best = loc
		}
	}
	if best == nil {
		return nil, eris.Wrapf(ErrNotFound, "geo: city %s, %s", city, state)
	}
	return best, nil
}

// ServiceAreaPoints resolves "City, ST" service-area labels to coordinates.
// Labels that cannot be resolved are logged and skipped.
func (r *Resolver) ServiceAreaPoints(areas []string) []Point {
	var pts []Point
	for _, area := range areas {
		city, state := SplitCityState(area)
		if city == "" {
			continue
		}
		loc, err := r.LookupCity(city, state)
		if err != nil {
			zap.L().Warn("geo: unresolved service area", zap.String("area", area), zap.Error(err))
			continue
		}
		pts = append(pts, loc.Point())
	}
	return pts
}

// SplitCityState splits "Round Rock, TX" into its city and state parts.
func SplitCityState(s string) (city, state string) {
	city, state, _ = strings.Cut(s, ",")
	return strings.TrimSpace(city), strings.ToUpper(strings.TrimSpace(state))
}
