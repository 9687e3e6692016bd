package places

import (
	"math"
	"math/rand/v2"
)

// Tier boundaries and draw shares for tiered sampling.
var (
	tierSplits = [3]float64{0.2, 0.5, 0.3}
	tierShares = [3]float64{0.6, 0.3, 0.1}
)

// TieredSample draws n items from a ranked slice: ~60% from the top 20%,
// ~30% from the next 50% and ~10% from the bottom 30%, each uniformly
// without replacement. Any shortfall is backfilled from the remaining
// items, and the result is shuffled so order does not reveal tier rank.
func TieredSample[T any](ranked []T, n int, rng *rand.Rand) []T {
	if n <= 0 || len(ranked) == 0 {
		return nil
	}
	if n >= len(ranked) {
		out := make([]T, len(ranked))
		copy(out, ranked)
		rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
		return out
	}

	total := len(ranked)
	topEnd := min(total, int(math.Ceil(float64(total)*tierSplits[0])))
	midEnd := min(total, topEnd+int(math.Ceil(float64(total)*tierSplits[1])))
	bounds := [3][2]int{{0, topEnd}, {topEnd, midEnd}, {midEnd, total}}

	picked := make([]bool, total)
	var chosen []int
	for t, b := range bounds {
		size := b[1] - b[0]
		want := min(size, int(math.Floor(float64(n)*tierShares[t])))
		for _, off := range rng.Perm(size)[:want] {
			picked[b[0]+off] = true
			chosen = append(chosen, b[0]+off)
		}
	}

	if short := n - len(chosen); short > 0 {
		var rest []int
		for i, ok := range picked {
			if !ok {
				rest = append(rest, i)
			}
		}
		rng.Shuffle(len(rest), func(i, j int) { rest[i], rest[j] = rest[j], rest[i] })
		chosen = append(chosen, rest[:min(short, len(rest))]...)
	}

	rng.Shuffle(len(chosen), func(i, j int) { chosen[i], chosen[j] = chosen[j], chosen[i] })
	out := make([]T, 0, len(chosen))
	for _, i := range chosen {
		out = append(out, ranked[i])
	}
	return out
}
