package engine

import (
	"math"

	"gotabstat/domain/analysis"
	"gotabstat/domain/core"
	"gotabstat/domain/table"

	"gonum.org/v1/gonum/stat"
)

// Correlate computes the pairwise-complete Pearson matrix over the numeric
// columns of t and extracts the strong pairs. Fewer than two numeric columns
// is an InsufficientData failure.
func (e *Engine) Correlate(t *table.Table) analysis.Result {
	p, err := e.correlate(t)
	if err != nil {
		return analysis.NewFailedResult(analysis.ModeCorrelation, t, err)
	}
	return analysis.NewCorrelationResult(t, p)
}

func (e *Engine) correlate(t *table.Table) (analysis.CorrelationPayload, *core.AnalysisError) {
	numeric := t.NumericColumns()
	if len(numeric) < 2 {
		return analysis.CorrelationPayload{}, core.NewInsufficientDataError(
			"need at least 2 numeric columns for correlation analysis, found %d", len(numeric))
	}

	matrix := buildMatrix(numeric, e.forEach)
	return analysis.CorrelationPayload{
		Matrix:             matrix,
		Threshold:          e.config.StrongCorrelationThreshold,
		StrongCorrelations: StrongPairs(matrix, e.config.StrongCorrelationThreshold),
	}, nil
}

// buildMatrix builds the symmetric coefficient matrix for columns. The diagonal
// is exactly 1. Task i fills row i's upper triangle and its mirror, so no two
// tasks write the same cell.
func buildMatrix(columns []table.Column, each func(n int, fn func(i int))) analysis.CorrelationMatrix {
	k := len(columns)
	m := analysis.CorrelationMatrix{
		Columns:      make([]string, k),
		Coefficients: make([][]analysis.NullFloat, k),
	}
	for i, col := range columns {
		m.Columns[i] = col.Name()
		m.Coefficients[i] = make([]analysis.NullFloat, k)
		m.Coefficients[i][i] = analysis.NewNullFloat(1)
	}

	each(k, func(i int) {
		for j := i + 1; j < k; j++ {
			r := Pearson(columns[i], columns[j])
			m.Coefficients[i][j] = r
			m.Coefficients[j][i] = r
		}
	})
	return m
}

// Pearson correlates two columns over the rows where both are present. The
// result is null when fewer than two rows overlap or either side has zero
// variance over the overlap.
func Pearson(a, b table.Column) analysis.NullFloat {
	x, y := pairwiseComplete(a, b)
	if len(x) < 2 {
		return analysis.Null()
	}

	r := stat.Correlation(x, y, nil)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return analysis.Null()
	}
	// Rounding can push |r| a hair past 1.
	return analysis.NewNullFloat(math.Max(-1, math.Min(1, r)))
}

func pairwiseComplete(a, b table.Column) (x, y []float64) {
	n := a.Len()
	x = make([]float64, 0, n)
	y = make([]float64, 0, n)
	for i := 0; i < n; i++ {
		xv, okx := a.FloatAt(i)
		yv, oky := b.FloatAt(i)
		if okx && oky {
			x = append(x, xv)
			y = append(y, yv)
		}
	}
	return x, y
}

// StrongPairs lists the pairs (i<j, in column order) whose coefficient
// magnitude is strictly greater than threshold. Null coefficients never
// qualify.
func StrongPairs(m analysis.CorrelationMatrix, threshold float64) []analysis.StrongPair {
	pairs := []analysis.StrongPair{}
	for i := range m.Columns {
		for j := i + 1; j < len(m.Columns); j++ {
			r := m.Coefficients[i][j]
			if !r.Valid || math.Abs(r.Value) <= threshold {
				continue
			}
			pairs = append(pairs, analysis.StrongPair{
				Column1:     m.Columns[i],
				Column2:     m.Columns[j],
				Correlation: r.Value,
			})
		}
	}
	return pairs
}
