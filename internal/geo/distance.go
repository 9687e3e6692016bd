package geo

import (
	"math"
	"sync"
)

const earthRadiusKM = 6371.0

// Point is a WGS84 coordinate in degrees.
type Point struct {
	Lat float64
	Lng float64
}

// Offset returns the point displaced by northKM and eastKM.
func (p Point) Offset(northKM, eastKM float64) Point {
	dLat := northKM / earthRadiusKM * 180 / math.Pi
	dLng := eastKM / (earthRadiusKM * math.Cos(p.Lat*math.Pi/180)) * 180 / math.Pi
	return Point{Lat: p.Lat + dLat, Lng: p.Lng + dLng}
}

// HaversineKM returns the great-circle distance between a and b.
func HaversineKM(a, b Point) float64 {
	toRad := func(d float64) float64 { return d * math.Pi / 180 }
	dLat := toRad(b.Lat - a.Lat)
	dLng := toRad(b.Lng - a.Lng)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(a.Lat))*math.Cos(toRad(b.Lat))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKM * math.Asin(math.Min(1, math.Sqrt(h)))
}

// DistanceScorer memoizes distances from an origin and from a set of
// service-area centers. It is safe for concurrent use.
type DistanceScorer struct {
	origin Point
	areas  []Point

	mu   sync.Mutex
	memo map[Point][2]float64
}

// NewDistanceScorer creates a scorer for origin and optional service areas.
func NewDistanceScorer(origin Point, areas []Point) *DistanceScorer {
	return &DistanceScorer{
		origin: origin,
		areas:  areas,
		memo:   make(map[Point][2]float64),
	}
}

// Origin returns the scorer's origin.
func (s *DistanceScorer) Origin() Point { return s.origin }

func (s *DistanceScorer) lookup(p Point) [2]float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if d, ok := s.memo[p]; ok {
		return d
	}
	d := [2]float64{HaversineKM(s.origin, p), math.Inf(1)}
	for _, a := range s.areas {
		d[1] = math.Min(d[1], HaversineKM(a, p))
	}
	s.memo[p] = d
	return d
}

// FromOrigin returns the distance from the origin to p.
func (s *DistanceScorer) FromOrigin(p Point) float64 {
	return s.lookup(p)[0]
}

// Composite returns the smaller of the origin distance and the distance to
// the nearest service area.
func (s *DistanceScorer) Composite(p Point) float64 {
	d := s.lookup(p)
	return math.Min(d[0], d[1])
}
