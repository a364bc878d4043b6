package engine

import (
	"math"
	"sort"
)

// Percentile returns the p-quantile (p in [0, 1]) of an ascending slice using
// linear interpolation between order statistics: rank = p*(n-1), blended
// between floor(rank) and ceil(rank). It returns NaN for an empty slice or
// p outside [0, 1].
//
// Summary quartiles and outlier bounds both go through this function.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 || math.IsNaN(p) || p < 0 || p > 1 {
		return math.NaN()
	}
	if n == 1 {
		return sorted[0]
	}

	rank := p * float64(n-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}

	frac := rank - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

// Quartiles returns the 25th, 50th and 75th percentiles of values
func Quartiles(values []float64) (q1, q2, q3 float64) {
	sorted := sortedCopy(values)
	return Percentile(sorted, 0.25), Percentile(sorted, 0.5), Percentile(sorted, 0.75)
}

func sortedCopy(values []float64) []float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return sorted
}
