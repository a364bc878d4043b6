package engine

import (
	"encoding/json"
	"math"
	"testing"

	"gotabstat/domain/analysis"
	"gotabstat/domain/core"
	"gotabstat/domain/table"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var nan = math.NaN()

func mustTable(t *testing.T, cols ...table.Column) *table.Table {
	t.Helper()
	tbl, err := table.New(table.Source{File: "fixture.xlsx", Sheet: "Sheet1"}, cols...)
	require.NoError(t, err)
	return tbl
}

func textColumn(name string, values ...string) table.Column {
	cells := make([]table.Cell, len(values))
	for i, v := range values {
		if v == "" {
			cells[i] = table.Missing()
		} else {
			cells[i] = table.Text(v)
		}
	}
	return table.NewColumn(name, cells)
}

// sampleStd is an independent n-1 standard deviation used to cross-check the
// library result.
func sampleStd(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))
	var ss float64
	for _, v := range values {
		ss += (v - mean) * (v - mean)
	}
	return math.Sqrt(ss / float64(len(values)-1))
}

// --- Percentile ---

func TestPercentileLinearInterpolation(t *testing.T) {
	sorted := []float64{1, 2, 3, 4, 5, 100}

	assert.Equal(t, 1.0, Percentile(sorted, 0))
	assert.Equal(t, 2.25, Percentile(sorted, 0.25))
	assert.Equal(t, 3.5, Percentile(sorted, 0.5))
	assert.Equal(t, 4.75, Percentile(sorted, 0.75))
	assert.Equal(t, 100.0, Percentile(sorted, 1))

	assert.Equal(t, 7.0, Percentile([]float64{7}, 0.3))
	assert.True(t, math.IsNaN(Percentile(nil, 0.5)))
	assert.True(t, math.IsNaN(Percentile(sorted, 1.5)))
	assert.True(t, math.IsNaN(Percentile(sorted, -0.1)))
}

func TestPercentileBoundsAndMonotonic(t *testing.T) {
	samples := [][]float64{
		{3, -1, 4, 1, -5, 9, 2, 6},
		{0.5},
		{2, 2, 2, 2},
		{-1e9, 1e-9, 42, 42, 43},
	}

	for _, values := range samples {
		sorted := sortedCopy(values)
		assert.Equal(t, sorted[0], Percentile(sorted, 0))
		assert.Equal(t, sorted[len(sorted)-1], Percentile(sorted, 1))

		prev := math.Inf(-1)
		for p := 0.0; p <= 1.0; p += 0.01 {
			q := Percentile(sorted, p)
			assert.GreaterOrEqual(t, q, prev, "percentile must not decrease at p=%.2f", p)
			prev = q
		}
	}
}

// --- Summary ---

func TestSummarize(t *testing.T) {
	tbl := mustTable(t,
		table.NewNumericColumn("revenue", 1, 2, 3, 4),
		table.NewNumericColumn("cost", 10, nan, nan, nan),
		textColumn("region", "north", "", "south", "east"),
		table.NewColumn("active", []table.Cell{table.Bool(true), table.Bool(false), table.Missing(), table.Bool(true)}),
	)

	res := NewDefaultEngine().Summarize(tbl)
	require.True(t, res.Success())
	assert.Equal(t, analysis.ModeSummary, res.Mode)

	s, ok := res.Summary()
	require.True(t, ok)
	assert.Equal(t, tbl.RowCount(), s.TotalRows)
	assert.Equal(t, tbl.ColumnCount(), s.TotalColumns)
	assert.Equal(t, 2, s.NumericColumns)
	assert.Equal(t, []string{"revenue", "cost", "region", "active"}, s.ColumnNames)

	assert.Equal(t, []analysis.ColumnTypeEntry{
		{Column: "revenue", Type: table.TypeNumeric},
		{Column: "cost", Type: table.TypeNumeric},
		{Column: "region", Type: table.TypeText},
		{Column: "active", Type: table.TypeBoolean},
	}, s.DataTypes)
	assert.Equal(t, []analysis.MissingEntry{
		{Column: "revenue", Missing: 0},
		{Column: "cost", Missing: 3},
		{Column: "region", Missing: 1},
		{Column: "active", Missing: 1},
	}, s.MissingValues)

	require.Len(t, s.Statistics, 2)
	rev, ok := s.Stats("revenue")
	require.True(t, ok)
	assert.Equal(t, 4, rev.Count)
	assert.Equal(t, 2.5, rev.Mean.Value)
	assert.InDelta(t, sampleStd([]float64{1, 2, 3, 4}), rev.Std.Value, 1e-12)
	assert.Equal(t, 1.0, rev.Min.Value)
	assert.Equal(t, 1.75, rev.P25.Value)
	assert.Equal(t, 2.5, rev.P50.Value)
	assert.Equal(t, 3.25, rev.P75.Value)
	assert.Equal(t, 4.0, rev.Max.Value)

	cost, ok := s.Stats("cost")
	require.True(t, ok)
	assert.Equal(t, 1, cost.Count)
	assert.Equal(t, 10.0, cost.Mean.Value)
	assert.False(t, cost.Std.Valid, "std of a single value is undefined")
	assert.Equal(t, 10.0, cost.P50.Value)
}

func TestSummarizeWithoutNumericColumns(t *testing.T) {
	tbl := mustTable(t, textColumn("name", "a", "b"))

	s, ok := NewDefaultEngine().Summarize(tbl).Summary()
	require.True(t, ok)
	assert.Equal(t, 0, s.NumericColumns)
	assert.Nil(t, s.Statistics)

	b, err := json.Marshal(s)
	require.NoError(t, err)
	assert.NotContains(t, string(b), "statistics")
}

func TestSummarizeAllMissingColumn(t *testing.T) {
	tbl := mustTable(t, table.NewNumericColumn("empty", nan, nan))

	s, ok := NewDefaultEngine().Summarize(tbl).Summary()
	require.True(t, ok)
	st, ok := s.Stats("empty")
	require.True(t, ok)
	assert.Equal(t, 0, st.Count)
	assert.False(t, st.Mean.Valid)
	assert.False(t, st.Min.Valid)
	assert.False(t, st.P50.Valid)
}

func TestSummarizeEmptyTable(t *testing.T) {
	tbl := mustTable(t)
	s, ok := NewDefaultEngine().Summarize(tbl).Summary()
	require.True(t, ok)
	assert.Equal(t, 0, s.TotalRows)
	assert.Equal(t, 0, s.TotalColumns)
}

// --- Correlation ---

func TestCorrelateMatrixAndStrongPairs(t *testing.T) {
	tbl := mustTable(t,
		table.NewNumericColumn("x", 1, 2, 3, 4, 5),
		table.NewNumericColumn("double", 2, 4, 6, 8, 10),
		table.NewNumericColumn("inverse", 5, 4, 3, 2, 1),
		table.NewNumericColumn("noise", 1, -1, 1, -1, 1),
		textColumn("label", "a", "b", "c", "d", "e"),
	)

	res := NewDefaultEngine().Correlate(tbl)
	require.True(t, res.Success())
	p, ok := res.Correlation()
	require.True(t, ok)

	m := p.Matrix
	assert.Equal(t, []string{"x", "double", "inverse", "noise"}, m.Columns)
	for i := range m.Columns {
		assert.Equal(t, 1.0, m.Coefficients[i][i].Value)
		for j := range m.Columns {
			assert.Equal(t, m.Coefficients[i][j], m.Coefficients[j][i])
		}
	}

	r, _ := m.Coefficient("x", "double")
	assert.InDelta(t, 1.0, r.Value, 1e-12)
	r, _ = m.Coefficient("x", "inverse")
	assert.InDelta(t, -1.0, r.Value, 1e-12)
	r, _ = m.Coefficient("x", "noise")
	assert.InDelta(t, 0.0, r.Value, 1e-12)

	assert.Equal(t, 0.7, p.Threshold)
	require.Len(t, p.StrongCorrelations, 3)
	assert.Equal(t, "x", p.StrongCorrelations[0].Column1)
	assert.Equal(t, "double", p.StrongCorrelations[0].Column2)
	assert.Equal(t, "x", p.StrongCorrelations[1].Column1)
	assert.Equal(t, "inverse", p.StrongCorrelations[1].Column2)
	assert.Equal(t, "double", p.StrongCorrelations[2].Column1)
	assert.Equal(t, "inverse", p.StrongCorrelations[2].Column2)
}

func TestCorrelatePairwiseComplete(t *testing.T) {
	tbl := mustTable(t,
		table.NewNumericColumn("a", 1, 2, 3, nan, 5),
		table.NewNumericColumn("b", 2, 4, 6, 1000, nan),
	)

	p, ok := NewDefaultEngine().Correlate(tbl).Correlation()
	require.True(t, ok)
	r, _ := p.Matrix.Coefficient("a", "b")
	require.True(t, r.Valid)
	assert.InDelta(t, 1.0, r.Value, 1e-12)
}

func TestCorrelateZeroVarianceIsNull(t *testing.T) {
	tbl := mustTable(t,
		table.NewNumericColumn("a", 1, 2, 3),
		table.NewNumericColumn("flat", 7, 7, 7),
		table.NewNumericColumn("empty", nan, nan, nan),
	)

	p, ok := NewDefaultEngine().Correlate(tbl).Correlation()
	require.True(t, ok)

	r, _ := p.Matrix.Coefficient("a", "flat")
	assert.False(t, r.Valid)
	r, _ = p.Matrix.Coefficient("a", "empty")
	assert.False(t, r.Valid)
	r, _ = p.Matrix.Coefficient("flat", "flat")
	assert.Equal(t, 1.0, r.Value)
	assert.Empty(t, p.StrongCorrelations)

	b, err := json.Marshal(p.Matrix)
	require.NoError(t, err)
	assert.Contains(t, string(b), "null")
}

func TestCorrelateInsufficientData(t *testing.T) {
	tbl := mustTable(t,
		table.NewNumericColumn("only", 1, 2, 3),
		textColumn("label", "a", "b", "c"),
	)

	res := NewDefaultEngine().Correlate(tbl)
	assert.False(t, res.Success())
	require.NotNil(t, res.Err())
	assert.Equal(t, core.KindInsufficientData, res.Err().Kind)
	assert.ErrorIs(t, res.Err(), core.ErrInsufficientData)
	_, ok := res.Correlation()
	assert.False(t, ok)
	assert.Equal(t, tbl.ID(), res.TableID)
}

func TestStrongPairsThresholdIsStrict(t *testing.T) {
	m := analysis.CorrelationMatrix{
		Columns: []string{"a", "b", "c", "d"},
		Coefficients: [][]analysis.NullFloat{
			{analysis.NewNullFloat(1), analysis.NewNullFloat(0.7), analysis.NewNullFloat(-0.7), analysis.NewNullFloat(0.7000000001)},
			{analysis.NewNullFloat(0.7), analysis.NewNullFloat(1), analysis.NewNullFloat(-0.71), analysis.Null()},
			{analysis.NewNullFloat(-0.7), analysis.NewNullFloat(-0.71), analysis.NewNullFloat(1), analysis.NewNullFloat(0.69)},
			{analysis.NewNullFloat(0.7000000001), analysis.Null(), analysis.NewNullFloat(0.69), analysis.NewNullFloat(1)},
		},
	}

	pairs := StrongPairs(m, 0.7)
	assert.Equal(t, []analysis.StrongPair{
		{Column1: "a", Column2: "d", Correlation: 0.7000000001},
		{Column1: "b", Column2: "c", Correlation: -0.71},
	}, pairs)
}

// --- Outliers ---

func TestDetectOutliersIQR(t *testing.T) {
	tbl := mustTable(t,
		table.NewNumericColumn("six", 1, 2, 3, 4, 5, 100),
	)

	p, ok := NewDefaultEngine().DetectOutliers(tbl).Outliers()
	require.True(t, ok)
	c, ok := p.Column("six")
	require.True(t, ok)

	assert.Equal(t, -1.5, c.Bounds.Lower.Value)
	assert.Equal(t, 8.5, c.Bounds.Upper.Value)
	assert.Equal(t, 1, c.Count)
	assert.Equal(t, []float64{100}, c.Values)
	assert.InDelta(t, 100.0/6.0, c.Percentage, 1e-9)
}

func TestDetectOutliersExactOrderStatistics(t *testing.T) {
	// With five values the quartile ranks land on order statistics: Q1=2, Q3=4.
	tbl := mustTable(t, table.NewNumericColumn("five", 1, 2, 3, 4, 100))

	p, _ := NewDefaultEngine().DetectOutliers(tbl).Outliers()
	c, _ := p.Column("five")
	assert.Equal(t, -1.0, c.Bounds.Lower.Value)
	assert.Equal(t, 7.0, c.Bounds.Upper.Value)
	assert.Equal(t, 1, c.Count)
	assert.Equal(t, 20.0, c.Percentage)
}

func TestDetectOutliersBoundaryValuesAreNotOutliers(t *testing.T) {
	// Q1=2, Q3=4, bounds [-1, 7]: -1 and 7 sit exactly on the bounds.
	lower, upper := IQRBounds([]float64{-1, 2, 3, 4, 7}, 1.5)
	require.Equal(t, -1.0, lower)
	require.Equal(t, 7.0, upper)

	tbl := mustTable(t, table.NewNumericColumn("v", 7, 2, -1, 3, 4))
	p, _ := NewDefaultEngine().DetectOutliers(tbl).Outliers()
	c, _ := p.Column("v")
	assert.Equal(t, 0, c.Count)
	assert.Empty(t, c.Values)

	// Q1=Q3=5 gives bounds [5, 5]; 5 itself stays inside.
	flat := mustTable(t, table.NewNumericColumn("flat", 5, 5, 5, 5, 5, 9))
	p, _ = NewDefaultEngine().DetectOutliers(flat).Outliers()
	c, _ = p.Column("flat")
	assert.Equal(t, 5.0, c.Bounds.Lower.Value)
	assert.Equal(t, 5.0, c.Bounds.Upper.Value)
	assert.Equal(t, 1, c.Count)
	assert.Equal(t, []float64{9}, c.Values)
}

func TestDetectOutliersTruncatesReportedValues(t *testing.T) {
	values := make([]float64, 0, 100)
	for i := 0; i < 80; i++ {
		values = append(values, 50)
	}
	for i := 0; i < 15; i++ {
		values = append(values, float64(1000+i))
	}
	for i := 0; i < 5; i++ {
		values = append(values, float64(-1000-i))
	}
	tbl := mustTable(t, table.NewNumericColumn("spiky", values...))

	p, _ := NewDefaultEngine().DetectOutliers(tbl).Outliers()
	c, _ := p.Column("spiky")
	assert.Equal(t, 20, c.Count)
	assert.Equal(t, 20.0, c.Percentage)
	require.Len(t, c.Values, 10)
	for i, v := range c.Values {
		assert.Equal(t, float64(1000+i), v, "values keep row order")
	}
}

func TestDetectOutliersDegenerateColumns(t *testing.T) {
	tbl := mustTable(t,
		table.NewNumericColumn("empty", nan, nan, nan),
		table.NewNumericColumn("gappy", 1, nan, 100),
		textColumn("label", "a", "b", "c"),
	)

	p, ok := NewDefaultEngine().DetectOutliers(tbl).Outliers()
	require.True(t, ok)
	require.Len(t, p.Columns, 2)

	empty, _ := p.Column("empty")
	assert.Equal(t, 0, empty.Count)
	assert.Equal(t, 0.0, empty.Percentage)
	assert.False(t, math.IsNaN(empty.Percentage))
	assert.False(t, empty.Bounds.Lower.Valid)
	assert.False(t, empty.Bounds.Upper.Valid)
	assert.Equal(t, []float64{}, empty.Values)

	_, ok = p.Column("label")
	assert.False(t, ok)

	// An empty table must not divide by zero either.
	none := mustTable(t, table.NewNumericColumn("x"))
	p, _ = NewDefaultEngine().DetectOutliers(none).Outliers()
	x, _ := p.Column("x")
	assert.Equal(t, 0.0, x.Percentage)
}

// --- Trends ---

func TestEstimateTrends(t *testing.T) {
	rect := mustTable(t,
		table.NewNumericColumn("up", 10, 20, 30, nan),
		table.NewNumericColumn("flat", 5, 5, 5, nan),
		table.NewNumericColumn("down", 9, nan, 3, 1),
		table.NewNumericColumn("single", nan, 4, nan, nan),
		textColumn("label", "a", "b", "c", "d"),
	)

	res := NewDefaultEngine().EstimateTrends(rect)
	require.True(t, res.Success())
	p, ok := res.Trends()
	require.True(t, ok)

	names := make([]string, len(p.Columns))
	for i, c := range p.Columns {
		names[i] = c.Column
	}
	assert.Equal(t, []string{"up", "flat", "down"}, names)

	up, _ := p.Column("up")
	assert.Equal(t, analysis.DirectionIncreasing, up.Trend)
	assert.Greater(t, up.Slope.Value, 0.0)
	assert.InDelta(t, 10.0, up.Slope.Value, 1e-12)
	assert.Equal(t, 10.0, up.FirstValue.Value)
	assert.Equal(t, 30.0, up.LastValue.Value)
	assert.Equal(t, 20.0, up.Change.Value)

	flat, _ := p.Column("flat")
	assert.Equal(t, analysis.DirectionStable, flat.Trend)
	assert.Equal(t, 0.0, flat.Slope.Value)
	assert.Equal(t, 0.0, flat.Change.Value)

	down, _ := p.Column("down")
	assert.Equal(t, analysis.DirectionDecreasing, down.Trend)
	// Missing rows are dropped and x is the position among retained values:
	// (0,9), (1,3), (2,1) gives slope -4.
	assert.InDelta(t, -4.0, down.Slope.Value, 1e-12)
	assert.Equal(t, 9.0, down.FirstValue.Value)
	assert.Equal(t, 1.0, down.LastValue.Value)
	assert.Equal(t, -8.0, down.Change.Value)
}

func TestEstimateTrendsStableIsExactZero(t *testing.T) {
	// A tiny but non-zero slope is not stable.
	tr, ok := ColumnTrend(table.NewNumericColumn("drift", 1, 1, 1+1e-12))
	require.True(t, ok)
	assert.Equal(t, analysis.DirectionIncreasing, tr.Trend)
}

func TestEstimateTrendsChangeIgnoresSlope(t *testing.T) {
	tr, ok := ColumnTrend(table.NewNumericColumn("v", 5, 100, -50, 6))
	require.True(t, ok)
	assert.Equal(t, 1.0, tr.Change.Value)
	assert.Equal(t, 5.0, tr.FirstValue.Value)
	assert.Equal(t, 6.0, tr.LastValue.Value)
}

func TestEstimateTrendsHugeValuesKeepDirection(t *testing.T) {
	tests := []struct {
		name      string
		values    []float64
		direction analysis.Direction
	}{
		{"opposite extremes", []float64{1e308, -1e308}, analysis.DirectionDecreasing},
		{"rising extremes", []float64{-1e308, 0, 1e308}, analysis.DirectionIncreasing},
		{"constant extreme", []float64{1e308, 1e308}, analysis.DirectionStable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, ok := ColumnTrend(table.NewNumericColumn("v", tt.values...))
			require.True(t, ok)
			assert.Equal(t, tt.direction, tr.Trend)
			if tt.direction == analysis.DirectionStable {
				assert.True(t, tr.Slope.Valid)
				assert.Equal(t, 0.0, tr.Slope.Value)
			}

			b, err := json.Marshal(tr)
			require.NoError(t, err)
			assert.NotContains(t, string(b), "NaN")
		})
	}

	tr, _ := ColumnTrend(table.NewNumericColumn("v", 1e308, -1e308))
	assert.False(t, tr.Slope.Valid)
	assert.False(t, tr.Change.Valid)
	assert.Equal(t, 1e308, tr.FirstValue.Value)

	b, err := json.Marshal(tr)
	require.NoError(t, err)
	assert.JSONEq(t, `{"column":"v","trend":"decreasing","slope":null,"first_value":1e308,"last_value":-1e308,"change":null}`, string(b))
}

func TestEstimateTrendsInfiniteValueIsUndefined(t *testing.T) {
	tr, ok := ColumnTrend(table.NewNumericColumn("v", 1, math.Inf(1), 3))
	require.True(t, ok)
	assert.Equal(t, analysis.DirectionUndefined, tr.Trend)
	assert.False(t, tr.Slope.Valid)
	assert.True(t, tr.FirstValue.Valid)

	res := NewDefaultEngine().EstimateTrends(mustTable(t, table.NewNumericColumn("v", 1, math.Inf(1), 3)))
	require.True(t, res.Success())
	_, err := json.Marshal(res)
	require.NoError(t, err)
}

// --- Determinism ---

func TestAnalysesAreDeterministic(t *testing.T) {
	cols := []table.Column{
		table.NewNumericColumn("a", 3, 1, 4, 1, 5, 9, 2, 6, 5, 3, 5, 8, 9, 7, 9),
		table.NewNumericColumn("b", 2, 7, 1, 8, 2, 8, 1, 8, 2, 8, 4, 5, 9, 0, 4),
		table.NewNumericColumn("c", 1, 4, 1, 4, 2, 1, 3, 5, 6, 2, 3, 7, 3, 0, 9),
		table.NewNumericColumn("d", nan, 1, 2, nan, 3, 5, 8, 13, 21, 34, 55, 89, nan, 144, 233),
		textColumn("e", "x", "y", "z", "x", "y", "z", "x", "y", "z", "x", "y", "z", "x", "y", "z"),
	}
	tbl := mustTable(t, cols...)

	serial := NewEngine(Config{StrongCorrelationThreshold: 0.7, IQRMultiplier: 1.5, MaxReportedOutliers: 10, Workers: 1})
	parallel := NewEngine(Config{StrongCorrelationThreshold: 0.7, IQRMultiplier: 1.5, MaxReportedOutliers: 10, Workers: 8})

	runs := []func(*Engine, *table.Table) analysis.Result{
		(*Engine).Summarize,
		(*Engine).Correlate,
		(*Engine).DetectOutliers,
		(*Engine).EstimateTrends,
	}

	for _, run := range runs {
		first, err := json.Marshal(run(serial, tbl))
		require.NoError(t, err)
		second, err := json.Marshal(run(serial, tbl))
		require.NoError(t, err)
		third, err := json.Marshal(run(parallel, tbl))
		require.NoError(t, err)

		assert.Equal(t, string(first), string(second))
		assert.Equal(t, string(first), string(third))
	}
}

func TestNewEngineDefaults(t *testing.T) {
	e := NewDefaultEngine()
	cfg := e.Config()
	assert.Equal(t, 0.7, cfg.StrongCorrelationThreshold)
	assert.Equal(t, 1.5, cfg.IQRMultiplier)
	assert.Equal(t, 10, cfg.MaxReportedOutliers)
	assert.Greater(t, cfg.Workers, 0)
}
