package analysis

import (
	"encoding/json"
	"math"

	"gotabstat/domain/table"
)

// NullFloat is a statistic that may be undefined. NaN and infinities are
// reported as JSON null.
type NullFloat struct {
	Value float64
	Valid bool
}

// NewNullFloat wraps v, marking NaN and infinities invalid
func NewNullFloat(v float64) NullFloat {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return NullFloat{}
	}
	return NullFloat{Value: v, Valid: true}
}

// Null returns an undefined statistic
func Null() NullFloat { return NullFloat{} }

// Float64 returns the value, or NaN when undefined
func (n NullFloat) Float64() float64 {
	if !n.Valid {
		return math.NaN()
	}
	return n.Value
}

func (n NullFloat) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

func (n *NullFloat) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*n = NullFloat{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*n = NewNullFloat(v)
	return nil
}

// ColumnTypeEntry pairs a column with its declared type
type ColumnTypeEntry struct {
	Column string           `json:"column"`
	Type   table.ColumnType `json:"type"`
}

// MissingEntry pairs a column with its missing-value count
type MissingEntry struct {
	Column  string `json:"column"`
	Missing int    `json:"missing"`
}

// ColumnStats holds descriptive statistics over the non-missing values of a
// numeric column
type ColumnStats struct {
	Column string    `json:"column"`
	Count  int       `json:"count"`
	Mean   NullFloat `json:"mean"`
	Std    NullFloat `json:"std"`
	Min    NullFloat `json:"min"`
	P25    NullFloat `json:"25%"`
	P50    NullFloat `json:"50%"`
	P75    NullFloat `json:"75%"`
	Max    NullFloat `json:"max"`
}

// SummaryPayload describes the shape of a table and its numeric columns
type SummaryPayload struct {
	TotalRows      int               `json:"total_rows"`
	TotalColumns   int               `json:"total_columns"`
	NumericColumns int               `json:"numeric_columns"`
	ColumnNames    []string          `json:"column_names"`
	DataTypes      []ColumnTypeEntry `json:"data_types"`
	MissingValues  []MissingEntry    `json:"missing_values"`
	// Statistics is omitted when the table has no numeric columns.
	Statistics []ColumnStats `json:"statistics,omitempty"`
}

// CorrelationMatrix is a symmetric Pearson matrix over numeric columns
type CorrelationMatrix struct {
	Columns      []string      `json:"columns"`
	Coefficients [][]NullFloat `json:"coefficients"`
}

// Coefficient looks up the coefficient for a column pair
func (m CorrelationMatrix) Coefficient(a, b string) (NullFloat, bool) {
	i, j := -1, -1
	for k, name := range m.Columns {
		if name == a {
			i = k
		}
		if name == b {
			j = k
		}
	}
	if i < 0 || j < 0 {
		return NullFloat{}, false
	}
	return m.Coefficients[i][j], true
}

// StrongPair is a column pair whose correlation exceeds the threshold
type StrongPair struct {
	Column1     string  `json:"column1"`
	Column2     string  `json:"column2"`
	Correlation float64 `json:"correlation"`
}

// CorrelationPayload holds the matrix and its strong pairs
type CorrelationPayload struct {
	Matrix             CorrelationMatrix `json:"correlation_matrix"`
	Threshold          float64           `json:"threshold"`
	StrongCorrelations []StrongPair      `json:"strong_correlations"`
}

// Bounds is the closed interval outside of which values are outliers
type Bounds struct {
	Lower NullFloat `json:"lower"`
	Upper NullFloat `json:"upper"`
}

// ColumnOutliers describes the IQR outliers of one column
type ColumnOutliers struct {
	Column     string    `json:"column"`
	Count      int       `json:"count"`
	Percentage float64   `json:"percentage"`
	Values     []float64 `json:"values"`
	Bounds     Bounds    `json:"bounds"`
}

// OutlierPayload lists outliers per numeric column
type OutlierPayload struct {
	Columns []ColumnOutliers `json:"columns"`
}

// Direction classifies a fitted slope
type Direction string

const (
	DirectionIncreasing Direction = "increasing"
	DirectionDecreasing Direction = "decreasing"
	DirectionStable     Direction = "stable"
	// DirectionUndefined marks a line that could not be fitted, as when a
	// column holds an infinite value.
	DirectionUndefined Direction = "undefined"
)

// ClassifySlope maps a slope to a direction. Only an exactly zero slope is
// stable; NaN is undefined.
func ClassifySlope(slope float64) Direction {
	switch {
	case slope > 0:
		return DirectionIncreasing
	case slope < 0:
		return DirectionDecreasing
	case slope == 0:
		return DirectionStable
	}
	return DirectionUndefined
}

// ColumnTrend is the linear trend of one numeric column
type ColumnTrend struct {
	Column     string    `json:"column"`
	Trend      Direction `json:"trend"`
	Slope      NullFloat `json:"slope"`
	FirstValue NullFloat `json:"first_value"`
	LastValue  NullFloat `json:"last_value"`
	Change     NullFloat `json:"change"`
}

// TrendPayload lists trends for numeric columns with at least two values
type TrendPayload struct {
	Columns []ColumnTrend `json:"columns"`
}

// Lookup helpers keep tests and renderers free of index bookkeeping.

// Stats returns the statistics for a column
func (p SummaryPayload) Stats(column string) (ColumnStats, bool) {
	for _, s := range p.Statistics {
		if s.Column == column {
			return s, true
		}
	}
	return ColumnStats{}, false
}

// Column returns the outliers of a column
func (p OutlierPayload) Column(name string) (ColumnOutliers, bool) {
	for _, c := range p.Columns {
		if c.Column == name {
			return c, true
		}
	}
	return ColumnOutliers{}, false
}

// Column returns the trend of a column
func (p TrendPayload) Column(name string) (ColumnTrend, bool) {
	for _, c := range p.Columns {
		if c.Column == name {
			return c, true
		}
	}
	return ColumnTrend{}, false
}
