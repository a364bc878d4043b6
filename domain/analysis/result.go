package analysis

import (
	"encoding/json"
	"fmt"

	"gotabstat/domain/core"
	"gotabstat/domain/table"
)

// Result is the outcome of one analysis: exactly one of the payloads is set
// on success, Err is set on failure.
type Result struct {
	Mode    Mode
	Source  table.Source
	TableID core.TableID

	summary     *SummaryPayload
	correlation *CorrelationPayload
	outliers    *OutlierPayload
	trends      *TrendPayload
	err         *core.AnalysisError
}

func newResult(mode Mode, t *table.Table) Result {
	r := Result{Mode: mode}
	if t != nil {
		r.Source = t.Source()
		r.TableID = t.ID()
	}
	return r
}

// NewSummaryResult wraps a summary payload
func NewSummaryResult(t *table.Table, p SummaryPayload) Result {
	r := newResult(ModeSummary, t)
	r.summary = &p
	return r
}

// NewCorrelationResult wraps a correlation payload
func NewCorrelationResult(t *table.Table, p CorrelationPayload) Result {
	r := newResult(ModeCorrelation, t)
	r.correlation = &p
	return r
}

// NewOutlierResult wraps an outlier payload
func NewOutlierResult(t *table.Table, p OutlierPayload) Result {
	r := newResult(ModeOutliers, t)
	r.outliers = &p
	return r
}

// NewTrendResult wraps a trend payload
func NewTrendResult(t *table.Table, p TrendPayload) Result {
	r := newResult(ModeTrends, t)
	r.trends = &p
	return r
}

// NewFailedResult records a mode-level failure
func NewFailedResult(mode Mode, t *table.Table, err *core.AnalysisError) Result {
	r := newResult(mode, t)
	if err == nil {
		err = core.NewStructuralError("analysis failed without a reason")
	}
	r.err = err
	return r
}

// Success reports whether the analysis produced a payload
func (r Result) Success() bool { return r.err == nil }

// Err returns the failure, or nil on success
func (r Result) Err() *core.AnalysisError { return r.err }

// Summary returns the summary payload when Mode is summary and it succeeded
func (r Result) Summary() (SummaryPayload, bool) {
	if r.summary == nil {
		return SummaryPayload{}, false
	}
	return *r.summary, true
}

// Correlation returns the correlation payload when present
func (r Result) Correlation() (CorrelationPayload, bool) {
	if r.correlation == nil {
		return CorrelationPayload{}, false
	}
	return *r.correlation, true
}

// Outliers returns the outlier payload when present
func (r Result) Outliers() (OutlierPayload, bool) {
	if r.outliers == nil {
		return OutlierPayload{}, false
	}
	return *r.outliers, true
}

// Trends returns the trend payload when present
func (r Result) Trends() (TrendPayload, bool) {
	if r.trends == nil {
		return TrendPayload{}, false
	}
	return *r.trends, true
}

// Payload returns whichever success payload is set, or nil
func (r Result) Payload() interface{} {
	switch {
	case r.summary != nil:
		return r.summary
	case r.correlation != nil:
		return r.correlation
	case r.outliers != nil:
		return r.outliers
	case r.trends != nil:
		return r.trends
	}
	return nil
}

// resultJSON is the wire shape shared by the CLI and the HTTP API
type resultJSON struct {
	Success  bool                `json:"success"`
	Mode     Mode                `json:"mode"`
	File     string              `json:"file,omitempty"`
	Sheet    string              `json:"sheet,omitempty"`
	TableID  core.TableID        `json:"table_id,omitempty"`
	Analysis json.RawMessage     `json:"analysis,omitempty"`
	Error    *core.AnalysisError `json:"error,omitempty"`
}

func (r Result) MarshalJSON() ([]byte, error) {
	out := resultJSON{
		Success: r.Success(),
		Mode:    r.Mode,
		File:    r.Source.File,
		Sheet:   r.Source.Sheet,
		TableID: r.TableID,
		Error:   r.err,
	}
	if p := r.Payload(); p != nil {
		raw, err := json.Marshal(p)
		if err != nil {
			return nil, fmt.Errorf("marshal %s payload: %w", r.Mode, err)
		}
		out.Analysis = raw
	}
	return json.Marshal(out)
}

func (r *Result) UnmarshalJSON(data []byte) error {
	var in resultJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*r = Result{
		Mode:    in.Mode,
		Source:  table.Source{File: in.File, Sheet: in.Sheet},
		TableID: in.TableID,
		err:     in.Error,
	}
	if !in.Success || len(in.Analysis) == 0 {
		if r.err == nil && !in.Success {
			r.err = core.NewStructuralError("failed result without error")
		}
		return nil
	}

	var target interface{}
	switch in.Mode {
	case ModeSummary:
		r.summary = &SummaryPayload{}
		target = r.summary
	case ModeCorrelation:
		r.correlation = &CorrelationPayload{}
		target = r.correlation
	case ModeOutliers:
		r.outliers = &OutlierPayload{}
		target = r.outliers
	case ModeTrends:
		r.trends = &TrendPayload{}
		target = r.trends
	default:
		return fmt.Errorf("%w: %q", core.ErrUnknownMode, in.Mode)
	}
	return json.Unmarshal(in.Analysis, target)
}
