package places

import (
	"cmp"
	"math"
	"slices"

	"github.com/sells-group/community-cli/internal/geo"
)

// ScoredPlace is a filtered candidate ready for ranking.
type ScoredPlace struct {
	PlaceID       string
	Name          string
	Address       string
	Category      string
	Rating        float64
	Reviews       int
	Summary       string
	Keywords      []string
	OriginKM      float64
	DistanceKM    float64
	HasLocation   bool
	SourceQueries []string
	Score         float64
}

// Score is log10(reviews+1)*10 + rating - min(distance, capKM)*weight.
// Places with no known location take no distance penalty.
func Score(sp ScoredPlace, capKM, weight float64) float64 {
	s := math.Log10(float64(sp.Reviews)+1)*10 + sp.Rating
	if sp.HasLocation {
		s -= math.Min(sp.DistanceKM, capKM) * weight
	}
	return s
}

// dedupeKey is the place ID, or the folded name and address.
func dedupeKey(sp ScoredPlace) string {
	if sp.PlaceID != "" {
		return "id:" + sp.PlaceID
	}
	return "na:" + geo.Fold(sp.Name) + "|" + geo.Fold(sp.Address)
}

// Dedupe collapses duplicates, keeping first-seen order. Duplicates merge
// into the richer record.
func Dedupe(in []ScoredPlace) []ScoredPlace {
	idx := make(map[string]int, len(in))
	out := make([]ScoredPlace, 0, len(in))
	for _, sp := range in {
		k := dedupeKey(sp)
		if i, ok := idx[k]; ok {
			out[i] = mergePlaces(out[i], sp)
			continue
		}
		idx[k] = len(out)
		sp.SourceQueries = slices.Clone(sp.SourceQueries)
		out = append(out, sp)
	}
	return out
}

// mergePlaces keeps the longer summary and keyword list, unions the
// source queries, and takes rating, reviews, address, place ID and
// distance from whichever record has the higher reviews+rating.
func mergePlaces(a, b ScoredPlace) ScoredPlace {
	out := a
	if float64(b.Reviews)+b.Rating > float64(a.Reviews)+a.Rating {
		out.Rating = b.Rating
		out.Reviews = b.Reviews
		out.Address = b.Address
		out.PlaceID = b.PlaceID
		out.OriginKM = b.OriginKM
		out.DistanceKM = b.DistanceKM
		out.HasLocation = b.HasLocation
	}
	if len(b.Summary) > len(a.Summary) {
		out.Summary = b.Summary
	}
	if len(b.Keywords) > len(a.Keywords) {
		out.Keywords = slices.Clone(b.Keywords)
	}
	out.SourceQueries = unionQueries(a.SourceQueries, b.SourceQueries)
	return out
}

func unionQueries(a, b []string) []string {
	out := slices.Clone(a)
	for _, q := range b {
		if !slices.Contains(out, q) {
			out = append(out, q)
		}
	}
	return out
}

// Rank scores every place and sorts by descending score. Ties keep input
// order.
func Rank(in []ScoredPlace, capKM, weight float64) []ScoredPlace {
	out := slices.Clone(in)
	for i := range out {
		out[i].Score = Score(out[i], capKM, weight)
	}
	slices.SortStableFunc(out, func(a, b ScoredPlace) int {
		return cmp.Compare(b.Score, a.Score)
	})
	return out
}
