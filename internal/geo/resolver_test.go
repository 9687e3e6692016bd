package geo

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCSV = `city,state,county,lat,lng,population,zips
Austin,TX,Travis,30.2672,-97.7431,961855,78701 78702 78717
Round Rock,TX,Williamson,30.5083,-97.6789,119468,78664 78717
Portland,OR,Multnomah,45.5152,-122.6784,652503,97201
Portland,ME,Cumberland,43.6591,-70.2568,68408,04101
`

func testResolver(t *testing.T) *Resolver {
	t.Helper()
	locs, err := ReadCSV(strings.NewReader(testCSV))
	require.NoError(t, err)
	require.Len(t, locs, 4)
	return NewResolverFromLocations(locs)
}

func TestResolve_ByZip(t *testing.T) {
	r := testResolver(t)

	loc, err := r.Resolve("78701", "", "")
	require.NoError(t, err)
	assert.Equal(t, "Austin", loc.City)
	assert.Equal(t, "TX", loc.State)
	assert.True(t, loc.HasZip("78701"))
}

func TestResolve_SharedZipPrefersPopulation(t *testing.T) {
	r := testResolver(t)

	loc, err := r.Resolve("78717", "", "")
	require.NoError(t, err)
	assert.Equal(t, "Austin", loc.City)
}

func TestResolve_PreferredCity(t *testing.T) {
	r := testResolver(t)

	loc, err := r.Resolve("78717", "round rock", "tx")
	require.NoError(t, err)
	assert.Equal(t, "Round Rock", loc.City)
}

func TestResolve_PreferredCityWithoutZipFallsBack(t *testing.T) {
	r := testResolver(t)

	loc, err := r.Resolve("78701", "Round Rock", "TX")
	require.NoError(t, err)
	assert.Equal(t, "Austin", loc.City)
}

func TestResolve_NotFound(t *testing.T) {
	r := testResolver(t)

	_, err := r.Resolve("00000", "", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestResolve_EveryIndexedZipRoundTrips(t *testing.T) {
	r := NewResolver(SampleLoader())
	locs, err := SampleLoader()()
	require.NoError(t, err)

	for _, l := range locs {
		for _, zip := range l.Zips {
			got, err := r.Resolve(zip, "", "")
			require.NoError(t, err, zip)
			assert.True(t, got.HasZip(zip), zip)
		}
	}
}

func TestResolve_LoaderError(t *testing.T) {
	calls := 0
	r := NewResolver(func() ([]Location, error) {
		calls++
		return nil, errors.New("disk gone")
	})

	_, err := r.Resolve("78701", "", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "geo: load dataset")

	_, _ = r.Resolve("78701", "", "")
	assert.Equal(t, 2, calls, "failed loads are not cached")
}

func TestResolve_ConcurrentFirstBuild(t *testing.T) {
	r := testResolver(t)

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			loc, err := r.Resolve("97201", "", "")
			assert.NoError(t, err)
			assert.Equal(t, "OR", loc.State)
		}()
	}
	wg.Wait()
}

func TestLookupCity(t *testing.T) {
	r := testResolver(t)

	tests := []struct {
		name, city, state string
		wantState         string
		wantErr           bool
	}{
		{"ambiguous picks populous", "Portland", "", "OR", false},
		{"state filter", "Portland", "ME", "ME", false},
		{"case insensitive", "AUSTIN", "tx", "TX", false},
		{"unknown", "Gotham", "NY", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, err := r.LookupCity(tt.city, tt.state)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrNotFound)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantState, loc.State)
		})
	}
}

func TestServiceAreaPoints(t *testing.T) {
	r := testResolver(t)

	pts := r.ServiceAreaPoints([]string{"Round Rock, TX", "Nowhere, ZZ", ""})
	require.Len(t, pts, 1)
	assert.InDelta(t, 30.5083, pts[0].Lat, 1e-9)
}

func TestReadCSV_BadRow(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("city,state,county,lat,lng,population,zips\nA,TX,C,notanumber,1,1,1\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "geo: decode line 2")
}

func TestSplitCityState(t *testing.T) {
	city, state := SplitCityState(" Round Rock , tx ")
	assert.Equal(t, "Round Rock", city)
	assert.Equal(t, "TX", state)

	city, state = SplitCityState("Austin")
	assert.Equal(t, "Austin", city)
	assert.Empty(t, state)
}
