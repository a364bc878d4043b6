package engine

import (
	"math"

	"gotabstat/domain/analysis"
	"gotabstat/domain/table"

	"gonum.org/v1/gonum/stat"
)

// EstimateTrends fits an ordinary-least-squares line to each numeric column
// with at least two values. The x-axis is the position among retained values,
// not the original row number.
func (e *Engine) EstimateTrends(t *table.Table) analysis.Result {
	numeric := t.NumericColumns()
	trends := make([]*analysis.ColumnTrend, len(numeric))

	e.forEach(len(numeric), func(i int) {
		if tr, ok := ColumnTrend(numeric[i]); ok {
			trends[i] = &tr
		}
	})

	p := analysis.TrendPayload{Columns: []analysis.ColumnTrend{}}
	for _, tr := range trends {
		if tr != nil {
			p.Columns = append(p.Columns, *tr)
		}
	}
	return analysis.NewTrendResult(t, p)
}

// ColumnTrend computes the trend of a single column. It reports false when the
// column has fewer than two non-missing values. Statistics that overflow are
// reported as null; the direction still follows the sign of the fitted line.
func ColumnTrend(col table.Column) (analysis.ColumnTrend, bool) {
	values := col.Values()
	if len(values) < 2 {
		return analysis.ColumnTrend{}, false
	}

	scaled, exp := scaledSlope(values)
	first, last := values[0], values[len(values)-1]
	return analysis.ColumnTrend{
		Column:     col.Name(),
		Trend:      analysis.ClassifySlope(scaled),
		Slope:      analysis.NewNullFloat(math.Ldexp(scaled, exp)),
		FirstValue: analysis.NewNullFloat(first),
		LastValue:  analysis.NewNullFloat(last),
		Change:     analysis.NewNullFloat(last - first),
	}, true
}

// Slope returns the OLS slope of values against 0, 1, ..., n-1.
func Slope(values []float64) float64 {
	scaled, exp := scaledSlope(values)
	return math.Ldexp(scaled, exp)
}

// scaledSlope fits values divided by a power of two that brings the largest
// magnitude into [0.5, 1). The true slope is scaled * 2^exp. Power-of-two
// scaling is exact, so the sign of scaled is the sign of the true slope even
// when the unscaled sums would overflow. Non-finite input yields NaN.
func scaledSlope(values []float64) (float64, int) {
	var maxAbs float64
	for _, v := range values {
		if a := math.Abs(v); a > maxAbs || math.IsNaN(a) {
			maxAbs = a
		}
	}
	if math.IsInf(maxAbs, 0) || math.IsNaN(maxAbs) {
		return math.NaN(), 0
	}
	_, exp := math.Frexp(maxAbs)

	xs := make([]float64, len(values))
	ys := make([]float64, len(values))
	for i, v := range values {
		xs[i] = float64(i)
		ys[i] = math.Ldexp(v, -exp)
	}
	_, beta := stat.LinearRegression(xs, ys, nil, false)
	return beta, exp
}
