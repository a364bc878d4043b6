package analysis

import (
	"encoding/json"
	"math"
	"testing"

	"gotabstat/domain/core"
	"gotabstat/domain/table"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	for _, m := range AllModes() {
		got, err := ParseMode(" " + string(m) + " ")
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}

	got, err := ParseMode("TRENDS")
	require.NoError(t, err)
	assert.Equal(t, ModeTrends, got)

	_, err = ParseMode("regression")
	assert.ErrorIs(t, err, core.ErrUnknownMode)
}

func TestClassifySlope(t *testing.T) {
	assert.Equal(t, DirectionIncreasing, ClassifySlope(1e-300))
	assert.Equal(t, DirectionDecreasing, ClassifySlope(-1e-300))
	assert.Equal(t, DirectionStable, ClassifySlope(0))
	assert.Equal(t, DirectionStable, ClassifySlope(math.Copysign(0, -1)))
	assert.Equal(t, DirectionUndefined, ClassifySlope(math.NaN()))
}

func TestNullFloatJSON(t *testing.T) {
	b, err := json.Marshal([]NullFloat{NewNullFloat(1.5), NewNullFloat(math.NaN()), NewNullFloat(math.Inf(1)), Null()})
	require.NoError(t, err)
	assert.Equal(t, `[1.5,null,null,null]`, string(b))

	var back []NullFloat
	require.NoError(t, json.Unmarshal(b, &back))
	assert.True(t, back[0].Valid)
	assert.False(t, back[1].Valid)
	assert.True(t, math.IsNaN(back[1].Float64()))
}

func TestResultJSONShape(t *testing.T) {
	tbl, err := table.New(table.Source{File: "sales.xlsx", Sheet: "Q1"}, table.NewNumericColumn("a", 1, 2))
	require.NoError(t, err)

	ok := NewTrendResult(tbl, TrendPayload{Columns: []ColumnTrend{{Column: "a", Trend: DirectionIncreasing, Slope: NewNullFloat(1), FirstValue: NewNullFloat(1), LastValue: NewNullFloat(2), Change: NewNullFloat(1)}}})
	b, err := json.Marshal(ok)
	require.NoError(t, err)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &raw))
	assert.Equal(t, true, raw["success"])
	assert.Equal(t, "trends", raw["mode"])
	assert.Equal(t, "sales.xlsx", raw["file"])
	assert.Equal(t, "Q1", raw["sheet"])
	assert.Equal(t, tbl.ID().String(), raw["table_id"])
	assert.Contains(t, raw, "analysis")
	assert.NotContains(t, raw, "error")

	var back Result
	require.NoError(t, json.Unmarshal(b, &back))
	trends, found := back.Trends()
	require.True(t, found)
	assert.Equal(t, DirectionIncreasing, trends.Columns[0].Trend)

	failed := NewFailedResult(ModeCorrelation, tbl, core.NewInsufficientDataError("need 2"))
	b, err = json.Marshal(failed)
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":false,"mode":"correlation","file":"sales.xlsx","sheet":"Q1","table_id":"`+tbl.ID().String()+`","error":{"kind":"insufficient_data","message":"need 2"}}`, string(b))

	require.NoError(t, json.Unmarshal(b, &back))
	assert.False(t, back.Success())
	assert.ErrorIs(t, back.Err(), core.ErrInsufficientData)
	assert.Nil(t, back.Payload())
}

func TestCorrelationMatrixCoefficient(t *testing.T) {
	m := CorrelationMatrix{
		Columns: []string{"a", "b"},
		Coefficients: [][]NullFloat{
			{NewNullFloat(1), NewNullFloat(0.5)},
			{NewNullFloat(0.5), NewNullFloat(1)},
		},
	}

	c, ok := m.Coefficient("b", "a")
	require.True(t, ok)
	assert.Equal(t, 0.5, c.Value)

	_, ok = m.Coefficient("a", "zzz")
	assert.False(t, ok)
}
