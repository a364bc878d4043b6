package engine

import (
	"gotabstat/domain/analysis"
	"gotabstat/domain/table"

	"github.com/montanaflynn/stats"
)

// Summarize describes the shape of t and computes descriptive statistics for
// every numeric column. It never fails on a well-formed table.
func (e *Engine) Summarize(t *table.Table) analysis.Result {
	return analysis.NewSummaryResult(t, e.summarize(t))
}

func (e *Engine) summarize(t *table.Table) analysis.SummaryPayload {
	columns := t.Columns()
	p := analysis.SummaryPayload{
		TotalRows:     t.RowCount(),
		TotalColumns:  t.ColumnCount(),
		ColumnNames:   t.ColumnNames(),
		DataTypes:     make([]analysis.ColumnTypeEntry, len(columns)),
		MissingValues: make([]analysis.MissingEntry, len(columns)),
	}

	for i, col := range columns {
		p.DataTypes[i] = analysis.ColumnTypeEntry{Column: col.Name(), Type: col.Type()}
		p.MissingValues[i] = analysis.MissingEntry{Column: col.Name(), Missing: col.MissingCount()}
	}

	numeric := t.NumericColumns()
	p.NumericColumns = len(numeric)
	if len(numeric) == 0 {
		return p
	}

	p.Statistics = make([]analysis.ColumnStats, len(numeric))
	e.forEach(len(numeric), func(i int) {
		p.Statistics[i] = describeColumn(numeric[i])
	})
	return p
}

// describeColumn computes count, mean, sample std, min, quartiles and max
// over the non-missing values. Undefined statistics are left null.
func describeColumn(col table.Column) analysis.ColumnStats {
	values := col.Values()
	s := analysis.ColumnStats{
		Column: col.Name(),
		Count:  len(values),
	}
	if len(values) == 0 {
		return s
	}

	if mean, err := stats.Mean(values); err == nil {
		s.Mean = analysis.NewNullFloat(mean)
	}
	if len(values) >= 2 {
		if std, err := stats.StandardDeviationSample(values); err == nil {
			s.Std = analysis.NewNullFloat(std)
		}
	}
	if min, err := stats.Min(values); err == nil {
		s.Min = analysis.NewNullFloat(min)
	}
	if max, err := stats.Max(values); err == nil {
		s.Max = analysis.NewNullFloat(max)
	}

	sorted := sortedCopy(values)
	s.P25 = analysis.NewNullFloat(Percentile(sorted, 0.25))
	s.P50 = analysis.NewNullFloat(Percentile(sorted, 0.50))
	s.P75 = analysis.NewNullFloat(Percentile(sorted, 0.75))
	return s
}
