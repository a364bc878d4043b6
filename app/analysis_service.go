package app

import (
	"context"
	"fmt"
	"time"

	"gotabstat/domain/analysis"
	"gotabstat/domain/core"
	"gotabstat/domain/table"
	"gotabstat/internal"
	"gotabstat/internal/errors"
	"gotabstat/internal/profiling"
	"gotabstat/ports"

	"golang.org/x/sync/errgroup"
)

// AnalysisService loads tables and runs analyses over them
type AnalysisService struct {
	loader ports.TableLoader
	engine ports.StatsEngine
	logger *internal.Logger
}

// AnalyzeRequest names the data and the analysis to run on it
type AnalyzeRequest struct {
	ports.LoadRequest
	Mode analysis.Mode `json:"mode"`
}

// TableProfile is a quick overview of a loaded table
type TableProfile struct {
	TableID core.TableID    `json:"table_id"`
	File    string          `json:"file"`
	Sheet   string          `json:"sheet,omitempty"`
	Rows    int             `json:"rows"`
	Columns []profiling.ColumnProfile `json:"columns"`
}

// NewAnalysisService creates an analysis service
func NewAnalysisService(loader ports.TableLoader, engine ports.StatsEngine, logger *internal.Logger) *AnalysisService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &AnalysisService{
		loader: loader,
		engine: engine,
		logger: logger.WithComponent("AnalysisService"),
	}
}

// Analyze loads the requested table and runs one analysis. Load failures
// are returned as errors; analysis failures are carried by the result.
func (s *AnalysisService) Analyze(ctx context.Context, req AnalyzeRequest) (analysis.Result, error) {
	if !req.Mode.Valid() {
		return analysis.Result{}, invalidMode(req.Mode)
	}

	t, err := s.LoadTable(ctx, req.LoadRequest)
	if err != nil {
		return analysis.Result{}, err
	}
	return s.AnalyzeTable(t, req.Mode)
}

// AnalyzeTable runs one analysis on an already loaded table
func (s *AnalysisService) AnalyzeTable(t *table.Table, mode analysis.Mode) (analysis.Result, error) {
	startTime := time.Now()

	var result analysis.Result
	switch mode {
	case analysis.ModeSummary:
		result = s.engine.Summarize(t)
	case analysis.ModeCorrelation:
		result = s.engine.Correlate(t)
	case analysis.ModeOutliers:
		result = s.engine.DetectOutliers(t)
	case analysis.ModeTrends:
		result = s.engine.EstimateTrends(t)
	default:
		return analysis.Result{}, invalidMode(mode)
	}

	if result.Success() {
		s.logger.Debug("%s analysis of table %s finished in %dms", mode, t.ID(), time.Since(startTime).Milliseconds())
	} else {
		s.logger.Info("%s analysis of table %s failed: %v", mode, t.ID(), result.Err())
	}
	return result, nil
}

// AnalyzeAll loads the table once and runs every analysis concurrently.
// Results come back in AllModes order.
func (s *AnalysisService) AnalyzeAll(ctx context.Context, req ports.LoadRequest) ([]analysis.Result, error) {
	t, err := s.LoadTable(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.AnalyzeTableAll(ctx, t)
}

// AnalyzeTableAll runs every analysis on an already loaded table
func (s *AnalysisService) AnalyzeTableAll(ctx context.Context, t *table.Table) ([]analysis.Result, error) {
	modes := analysis.AllModes()
	results := make([]analysis.Result, len(modes))

	g, ctx := errgroup.WithContext(ctx)
	for i, mode := range modes {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r, err := s.AnalyzeTable(t, mode)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Inspect loads the table and reports its shape and column types
func (s *AnalysisService) Inspect(ctx context.Context, req ports.LoadRequest) (*TableProfile, error) {
	t, err := s.LoadTable(ctx, req)
	if err != nil {
		return nil, err
	}
	return ProfileTable(t), nil
}

// LoadTable loads a table without analysing it
func (s *AnalysisService) LoadTable(ctx context.Context, req ports.LoadRequest) (*table.Table, error) {
	t, err := s.loader.Load(ctx, req)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load %s", req.File)
	}
	return t, nil
}

// Sheets lists the sheets of a workbook
func (s *AnalysisService) Sheets(ctx context.Context, file string) ([]string, error) {
	sheets, err := s.loader.Sheets(ctx, file)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list sheets of %s", file)
	}
	return sheets, nil
}

// ProfileTable describes a table without running any analysis
func ProfileTable(t *table.Table) *TableProfile {
	src := t.Source()
	return &TableProfile{
		TableID: t.ID(),
		File:    src.File,
		Sheet:   src.Sheet,
		Rows:    t.RowCount(),
		Columns: profiling.NewDataProfiler().ProfileTable(t),
	}
}

func invalidMode(mode analysis.Mode) error {
	return errors.Wrap(fmt.Errorf("%w: %q", core.ErrUnknownMode, string(mode)), "invalid analysis mode")
}
