package geo

import "slices"

// Location is one populated place from the dataset.
type Location struct {
	City       string
	State      string
	County     string
	Lat        float64
	Lng        float64
	Population int
	Zips       []string
}

// HasZip reports whether zip is one of the location's postal codes.
func (l *Location) HasZip(zip string) bool {
	return slices.Contains(l.Zips, zip)
}

// Point returns the location's coordinate.
func (l *Location) Point() Point {
	return Point{Lat: l.Lat, Lng: l.Lng}
}
