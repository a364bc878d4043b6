package profiling

import (
	"math"

	"gotabstat/domain/analysis"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"
)

// Shape describes the distribution of a numeric column. Moments that are
// undefined for the sample (too few values, zero spread) are null.
type Shape struct {
	Skewness   analysis.NullFloat `json:"skewness"`
	Kurtosis   analysis.NullFloat `json:"excess_kurtosis"`
	Variation  analysis.NullFloat `json:"coefficient_of_variation"`
	JarqueBera analysis.NullFloat `json:"jarque_bera"`
	NormalityP analysis.NullFloat `json:"normality_p"`
}

// DistributionAnalyzer handles distribution shape analysis
type DistributionAnalyzer struct{}

// NewDistributionAnalyzer creates a new distribution analyzer
func NewDistributionAnalyzer() *DistributionAnalyzer {
	return &DistributionAnalyzer{}
}

// AnalyzeDistribution computes the shape of data
func (da *DistributionAnalyzer) AnalyzeDistribution(data []float64) Shape {
	shape := Shape{
		Skewness:   analysis.Null(),
		Kurtosis:   analysis.Null(),
		Variation:  analysis.Null(),
		JarqueBera: analysis.Null(),
		NormalityP: analysis.Null(),
	}
	if len(data) < 2 {
		return shape
	}

	mean, err := stats.Mean(data)
	if err != nil {
		return shape
	}
	sampleStd, err := stats.StandardDeviationSample(data)
	if err != nil {
		return shape
	}
	if mean != 0 {
		shape.Variation = analysis.NewNullFloat(sampleStd / math.Abs(mean))
	}

	m2, m3, m4 := centralMoments(data, mean)
	if m2 == 0 {
		return shape
	}

	n := float64(len(data))
	g1 := m3 / math.Pow(m2, 1.5)
	g2 := m4/(m2*m2) - 3

	if len(data) >= 3 {
		shape.Skewness = analysis.NewNullFloat(adjustedSkewness(g1, n))
	}
	if len(data) >= 4 {
		shape.Kurtosis = analysis.NewNullFloat(adjustedKurtosis(g2, n))

		jb := n / 6 * (g1*g1 + g2*g2/4)
		shape.JarqueBera = analysis.NewNullFloat(jb)
		shape.NormalityP = analysis.NewNullFloat(1 - distuv.ChiSquared{K: 2}.CDF(jb))
	}
	return shape
}

// centralMoments returns the biased second, third and fourth central moments
func centralMoments(data []float64, mean float64) (m2, m3, m4 float64) {
	for _, x := range data {
		d := x - mean
		d2 := d * d
		m2 += d2
		m3 += d2 * d
		m4 += d2 * d2
	}
	n := float64(len(data))
	return m2 / n, m3 / n, m4 / n
}

// adjustedSkewness is the adjusted Fisher-Pearson coefficient G1
func adjustedSkewness(g1, n float64) float64 {
	return g1 * math.Sqrt(n*(n-1)) / (n - 2)
}

// adjustedKurtosis is the bias-corrected excess kurtosis G2
func adjustedKurtosis(g2, n float64) float64 {
	return ((n+1)*g2 + 6) * (n - 1) / ((n - 2) * (n - 3))
}
