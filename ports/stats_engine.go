package ports

import (
	"gotabstat/domain/analysis"
	"gotabstat/domain/table"
)

// StatsEngine runs the four analyses. Failures are reported inside the
// result, never as Go errors.
type StatsEngine interface {
	Summarize(t *table.Table) analysis.Result
	Correlate(t *table.Table) analysis.Result
	DetectOutliers(t *table.Table) analysis.Result
	EstimateTrends(t *table.Table) analysis.Result
}
