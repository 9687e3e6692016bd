package geo

import (
	"bytes"
	_ "embed"
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
)

//go:embed data/places_sample.csv
var sampleDataset []byte

// row mirrors one CSV line: city,state,county,lat,lng,population,zips.
// zips is a space separated list.
type row struct {
	City       string  `csv:"city"`
	State      string  `csv:"state"`
	County     string  `csv:"county"`
	Lat        float64 `csv:"lat"`
	Lng        float64 `csv:"lng"`
	Population int     `csv:"population"`
	Zips       string  `csv:"zips"`
}

// ReadCSV decodes locations from r.
func ReadCSV(r io.Reader) ([]Location, error) {
	dec, err := csvutil.NewDecoder(csv.NewReader(r))
	if err != nil {
		return nil, eris.Wrap(err, "geo: read csv header")
	}

	var out []Location
	for {
		var rec row
		if err := dec.Decode(&rec); err != nil {
			if err == io.EOF {
				break
			}
			return nil, eris.Wrapf(err, "geo: decode line %d", len(out)+2)
		}
		if rec.City == "" || rec.State == "" {
			continue
		}
		out = append(out, Location{
			City:       strings.TrimSpace(rec.City),
			State:      strings.ToUpper(strings.TrimSpace(rec.State)),
			County:     strings.TrimSpace(rec.County),
			Lat:        rec.Lat,
			Lng:        rec.Lng,
			Population: rec.Population,
			Zips:       strings.Fields(rec.Zips),
		})
	}
	return out, nil
}

// FileLoader returns a loader reading the dataset at path. An empty path
// selects the embedded sample dataset.
func FileLoader(path string) func() ([]Location, error) {
	if path == "" {
		return SampleLoader()
	}
	return func() ([]Location, error) {
		f, err := os.Open(path)
		if err != nil {
			return nil, eris.Wrapf(err, "geo: open dataset %s", path)
		}
		defer f.Close() //nolint:errcheck
		return ReadCSV(f)
	}
}

// SampleLoader returns a loader for the embedded sample dataset.
func SampleLoader() func() ([]Location, error) {
	return func() ([]Location, error) {
		return ReadCSV(bytes.NewReader(sampleDataset))
	}
}
