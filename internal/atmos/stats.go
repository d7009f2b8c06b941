package atmos

import (
	"math"
	"sort"
)

// Summarize computes mean, nearest-rank 90th percentile and the chronologically
// last value over a raw observation series. NaN entries are discarded. Mean and
// p90 are rounded to 3 decimals; last is reported un-rounded. An empty or
// all-invalid series yields nil.
func Summarize(values []float64) *SeriesStats {
	clean := make([]float64, 0, len(values))
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		clean = append(clean, v)
	}
	if len(clean) == 0 {
		return nil
	}

	var sum float64
	for _, v := range clean {
		sum += v
	}
	mean := sum / float64(len(clean))

	return &SeriesStats{
		Mean: round3(mean),
		P90:  round3(p90(clean)),
		Last: clean[len(clean)-1],
	}
}

// p90 is the nearest-rank percentile: the value at rank round(0.9*(n-1)) in
// the ascending sort, not interpolated.
func p90(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	k := int(math.Round(0.9 * float64(len(sorted)-1)))
	return sorted[k]
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
