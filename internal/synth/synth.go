// Package synth produces deterministic placeholder values for environmental
// variables when no upstream provider has data. The same (location, timestamp,
// variable) always yields the same value, across runs and across processes.
package synth

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/cespare/xxhash/v2"
)

// Seed derives a stable 31-bit non-negative seed from the location (fixed
// 4-decimal precision), the ISO timestamp, and the variable name. xxhash is
// unsalted and process-independent; a runtime-randomized hash would break
// reproducibility across restarts.
func Seed(lat, lon float64, iso, variable string) int64 {
	key := fmt.Sprintf("%.4f,%.4f|%s|%s", lat, lon, iso, variable)
	return int64(xxhash.Sum64String(key) % (1<<31 - 1))
}

// Uniform draws one reproducible value in [lo, hi] for the given variable,
// rounded to the requested number of decimals.
func Uniform(lat, lon float64, iso, variable string, lo, hi float64, decimals int) float64 {
	rnd := rand.New(rand.NewSource(Seed(lat, lon, iso, variable)))
	return Round(lo+rnd.Float64()*(hi-lo), decimals)
}

// Round rounds v to the given number of decimal places.
func Round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
