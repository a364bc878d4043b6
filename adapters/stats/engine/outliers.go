package engine

import (
	"math"

	"gotabstat/domain/analysis"
	"gotabstat/domain/table"
)

// DetectOutliers applies the IQR rule to every numeric column of t. A column
// without values reports zero outliers and null bounds.
func (e *Engine) DetectOutliers(t *table.Table) analysis.Result {
	numeric := t.NumericColumns()
	p := analysis.OutlierPayload{Columns: make([]analysis.ColumnOutliers, len(numeric))}

	rows := t.RowCount()
	e.forEach(len(numeric), func(i int) {
		p.Columns[i] = e.columnOutliers(numeric[i], rows)
	})
	return analysis.NewOutlierResult(t, p)
}

func (e *Engine) columnOutliers(col table.Column, totalRows int) analysis.ColumnOutliers {
	values := col.Values()
	out := analysis.ColumnOutliers{
		Column: col.Name(),
		Values: []float64{},
	}

	lower, upper := IQRBounds(values, e.config.IQRMultiplier)
	out.Bounds = analysis.Bounds{
		Lower: analysis.NewNullFloat(lower),
		Upper: analysis.NewNullFloat(upper),
	}
	if len(values) == 0 {
		return out
	}

	for _, v := range values {
		if v < lower || v > upper {
			out.Count++
			if len(out.Values) < e.config.MaxReportedOutliers {
				out.Values = append(out.Values, v)
			}
		}
	}

	if totalRows > 0 {
		out.Percentage = float64(out.Count) / float64(totalRows) * 100
	}
	return out
}

// IQRBounds returns [Q1 - k*IQR, Q3 + k*IQR]. Both bounds are NaN when values
// is empty.
func IQRBounds(values []float64, k float64) (lower, upper float64) {
	if len(values) == 0 {
		return math.NaN(), math.NaN()
	}
	sorted := sortedCopy(values)
	q1 := Percentile(sorted, 0.25)
	q3 := Percentile(sorted, 0.75)
	iqr := q3 - q1
	return q1 - k*iqr, q3 + k*iqr
}
