// Package profiling describes table columns without running an analysis.
package profiling

import (
	"gotabstat/domain/table"
)

// ColumnProfile is the overview of one column
type ColumnProfile struct {
	Name     string           `json:"name"`
	Type     table.ColumnType `json:"type"`
	Missing  int              `json:"missing"`
	Distinct int              `json:"distinct"`
	// Shape is set for numeric columns with at least one value.
	Shape *Shape `json:"shape,omitempty"`
}

// DataProfiler profiles the columns of a table
type DataProfiler struct {
	distribution *DistributionAnalyzer
}

// NewDataProfiler creates a new data profiler
func NewDataProfiler() *DataProfiler {
	return &DataProfiler{
		distribution: NewDistributionAnalyzer(),
	}
}

// ProfileColumn describes a single column
func (dp *DataProfiler) ProfileColumn(col table.Column) ColumnProfile {
	profile := ColumnProfile{
		Name:     col.Name(),
		Type:     col.Type(),
		Missing:  col.MissingCount(),
		Distinct: distinct(col),
	}
	if col.Type() == table.TypeNumeric {
		shape := dp.distribution.AnalyzeDistribution(col.Values())
		profile.Shape = &shape
	}
	return profile
}

// ProfileTable describes every column in table order
func (dp *DataProfiler) ProfileTable(t *table.Table) []ColumnProfile {
	cols := t.Columns()
	out := make([]ColumnProfile, len(cols))
	for i, col := range cols {
		out[i] = dp.ProfileColumn(col)
	}
	return out
}

func distinct(col table.Column) int {
	seen := make(map[table.Cell]struct{})
	for _, cell := range col.Cells() {
		if !cell.IsMissing() {
			seen[cell] = struct{}{}
		}
	}
	return len(seen)
}
