package profiling

import (
	"math"
	"testing"

	"gotabstat/domain/table"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeDistributionSymmetric(t *testing.T) {
	shape := NewDistributionAnalyzer().AnalyzeDistribution([]float64{1, 2, 3, 4, 5})

	require.True(t, shape.Skewness.Valid)
	assert.InDelta(t, 0.0, shape.Skewness.Value, 1e-12)
	require.True(t, shape.Kurtosis.Valid)
	assert.InDelta(t, -1.2, shape.Kurtosis.Value, 1e-12)
	assert.InDelta(t, math.Sqrt(2.5)/3, shape.Variation.Value, 1e-12)

	// g1 = 0, g2 = -1.3
	jb := 5.0 / 6 * (1.3 * 1.3 / 4)
	assert.InDelta(t, jb, shape.JarqueBera.Value, 1e-12)
	assert.InDelta(t, math.Exp(-jb/2), shape.NormalityP.Value, 1e-9)
}

func TestAnalyzeDistributionSkewed(t *testing.T) {
	shape := NewDistributionAnalyzer().AnalyzeDistribution([]float64{1, 1, 2, 2, 3, 40})
	assert.Greater(t, shape.Skewness.Value, 1.0)
}

func TestAnalyzeDistributionDegenerate(t *testing.T) {
	da := NewDistributionAnalyzer()

	tests := []struct {
		name string
		data []float64
	}{
		{"empty", nil},
		{"single", []float64{3}},
		{"constant", []float64{2, 2, 2, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shape := da.AnalyzeDistribution(tt.data)
			assert.False(t, shape.Skewness.Valid)
			assert.False(t, shape.Kurtosis.Valid)
			assert.False(t, shape.NormalityP.Valid)
		})
	}

	// three values: skewness is defined, kurtosis is not
	shape := da.AnalyzeDistribution([]float64{1, 2, 4})
	assert.True(t, shape.Skewness.Valid)
	assert.False(t, shape.Kurtosis.Valid)
}

func TestProfileTable(t *testing.T) {
	tbl, err := table.New(table.Source{File: "t.csv"},
		table.NewNumericColumn("n", 1, 2, 2, 5),
		table.NewColumn("label", []table.Cell{table.Text("a"), table.Missing(), table.Text("a"), table.Text("b")}),
	)
	require.NoError(t, err)

	profiles := NewDataProfiler().ProfileTable(tbl)
	require.Len(t, profiles, 2)

	assert.Equal(t, "n", profiles[0].Name)
	assert.Equal(t, 3, profiles[0].Distinct)
	require.NotNil(t, profiles[0].Shape)
	assert.True(t, profiles[0].Shape.Skewness.Valid)

	assert.Equal(t, table.TypeText, profiles[1].Type)
	assert.Equal(t, 1, profiles[1].Missing)
	assert.Equal(t, 2, profiles[1].Distinct)
	assert.Nil(t, profiles[1].Shape)
}
