package report

import (
	"fmt"
	"io"

	"gotabstat/domain/analysis"

	"github.com/jedib0t/go-pretty/v6/table"
)

func renderText(w io.Writer, results []analysis.Result) error {
	for i, r := range results {
		if i > 0 {
			_, _ = fmt.Fprintln(w)
		}
		_, _ = fmt.Fprintln(w, title(r))

		if !r.Success() {
			_, _ = fmt.Fprintf(w, "FAILED (%s): %s\n", r.Err().Kind, r.Err().Message)
			continue
		}

		switch r.Mode {
		case analysis.ModeSummary:
			p, _ := r.Summary()
			textSummary(w, p)
		case analysis.ModeCorrelation:
			p, _ := r.Correlation()
			textCorrelation(w, p)
		case analysis.ModeOutliers:
			p, _ := r.Outliers()
			textOutliers(w, p)
		case analysis.ModeTrends:
			p, _ := r.Trends()
			textTrends(w, p)
		}
	}
	return nil
}

func newTable(w io.Writer, header table.Row) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(header)
	return t
}

func textSummary(w io.Writer, p analysis.SummaryPayload) {
	_, _ = fmt.Fprintf(w, "%d rows, %d columns (%d numeric)\n", p.TotalRows, p.TotalColumns, p.NumericColumns)

	t := newTable(w, table.Row{"Column", "Type", "Missing"})
	for i, dt := range p.DataTypes {
		t.AppendRow(table.Row{dt.Column, dt.Type, p.MissingValues[i].Missing})
	}
	t.Render()

	if len(p.Statistics) == 0 {
		return
	}
	t = newTable(w, table.Row{"Column", "Count", "Mean", "Std", "Min", "25%", "50%", "75%", "Max"})
	for _, s := range p.Statistics {
		t.AppendRow(table.Row{
			s.Column, s.Count, formatNull(s.Mean), formatNull(s.Std), formatNull(s.Min),
			formatNull(s.P25), formatNull(s.P50), formatNull(s.P75), formatNull(s.Max),
		})
	}
	t.Render()
}

func textCorrelation(w io.Writer, p analysis.CorrelationPayload) {
	header := table.Row{""}
	for _, c := range p.Matrix.Columns {
		header = append(header, c)
	}
	t := newTable(w, header)
	for i, c := range p.Matrix.Columns {
		row := table.Row{c}
		for _, v := range p.Matrix.Coefficients[i] {
			row = append(row, formatNull(v))
		}
		t.AppendRow(row)
	}
	t.Render()

	if len(p.StrongCorrelations) == 0 {
		_, _ = fmt.Fprintf(w, "No correlations stronger than %s\n", formatFloat(p.Threshold))
		return
	}
	_, _ = fmt.Fprintf(w, "Strong correlations (|r| > %s)\n", formatFloat(p.Threshold))
	t = newTable(w, table.Row{"Column 1", "Column 2", "r"})
	for _, sp := range p.StrongCorrelations {
		t.AppendRow(table.Row{sp.Column1, sp.Column2, formatFloat(sp.Correlation)})
	}
	t.Render()
}

func textOutliers(w io.Writer, p analysis.OutlierPayload) {
	t := newTable(w, table.Row{"Column", "Count", "%", "Lower", "Upper", "Values"})
	for _, c := range p.Columns {
		t.AppendRow(table.Row{
			c.Column, c.Count, fmt.Sprintf("%.2f", c.Percentage),
			formatNull(c.Bounds.Lower), formatNull(c.Bounds.Upper), formatValues(c.Values),
		})
	}
	t.Render()
}

func textTrends(w io.Writer, p analysis.TrendPayload) {
	t := newTable(w, table.Row{"Column", "Trend", "Slope", "First", "Last", "Change"})
	for _, c := range p.Columns {
		t.AppendRow(table.Row{
			c.Column, c.Trend, formatNull(c.Slope),
			formatNull(c.FirstValue), formatNull(c.LastValue), formatNull(c.Change),
		})
	}
	t.Render()
}
