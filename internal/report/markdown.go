package report

import (
	"fmt"
	"strings"

	"gotabstat/domain/analysis"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// Markdown renders results as a markdown document with one section per
// result
func Markdown(results ...analysis.Result) string {
	var b strings.Builder
	for i, r := range results {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "## %s\n\n", escapeCell(title(r)))

		if !r.Success() {
			fmt.Fprintf(&b, "**Failed** (`%s`): %s\n", r.Err().Kind, escapeCell(r.Err().Message))
			continue
		}

		switch r.Mode {
		case analysis.ModeSummary:
			p, _ := r.Summary()
			mdSummary(&b, p)
		case analysis.ModeCorrelation:
			p, _ := r.Correlation()
			mdCorrelation(&b, p)
		case analysis.ModeOutliers:
			p, _ := r.Outliers()
			mdTable(&b, []string{"Column", "Count", "%", "Lower", "Upper", "Values"}, outlierRows(p))
		case analysis.ModeTrends:
			p, _ := r.Trends()
			mdTable(&b, []string{"Column", "Trend", "Slope", "First", "Last", "Change"}, trendRows(p))
		}
	}
	return b.String()
}

// HTML converts the markdown rendering into a standalone HTML page
func HTML(results ...analysis.Result) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	doc := p.Parse([]byte(Markdown(results...)))

	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.CompletePage,
		Title: "Analysis report",
	})
	return markdown.Render(doc, renderer)
}

func mdSummary(b *strings.Builder, p analysis.SummaryPayload) {
	fmt.Fprintf(b, "%d rows, %d columns (%d numeric)\n\n", p.TotalRows, p.TotalColumns, p.NumericColumns)

	rows := make([][]string, len(p.DataTypes))
	for i, dt := range p.DataTypes {
		rows[i] = []string{dt.Column, string(dt.Type), fmt.Sprint(p.MissingValues[i].Missing)}
	}
	mdTable(b, []string{"Column", "Type", "Missing"}, rows)

	if len(p.Statistics) == 0 {
		return
	}
	b.WriteString("\n")
	rows = make([][]string, len(p.Statistics))
	for i, s := range p.Statistics {
		rows[i] = []string{
			s.Column, fmt.Sprint(s.Count), formatNull(s.Mean), formatNull(s.Std), formatNull(s.Min),
			formatNull(s.P25), formatNull(s.P50), formatNull(s.P75), formatNull(s.Max),
		}
	}
	mdTable(b, []string{"Column", "Count", "Mean", "Std", "Min", "25%", "50%", "75%", "Max"}, rows)
}

func mdCorrelation(b *strings.Builder, p analysis.CorrelationPayload) {
	header := append([]string{""}, p.Matrix.Columns...)
	rows := make([][]string, len(p.Matrix.Columns))
	for i, c := range p.Matrix.Columns {
		row := []string{c}
		for _, v := range p.Matrix.Coefficients[i] {
			row = append(row, formatNull(v))
		}
		rows[i] = row
	}
	mdTable(b, header, rows)
	b.WriteString("\n")

	if len(p.StrongCorrelations) == 0 {
		fmt.Fprintf(b, "No correlations stronger than %s.\n", formatFloat(p.Threshold))
		return
	}
	fmt.Fprintf(b, "Strong correlations (|r| > %s):\n\n", formatFloat(p.Threshold))
	rows = make([][]string, len(p.StrongCorrelations))
	for i, sp := range p.StrongCorrelations {
		rows[i] = []string{sp.Column1, sp.Column2, formatFloat(sp.Correlation)}
	}
	mdTable(b, []string{"Column 1", "Column 2", "r"}, rows)
}

func outlierRows(p analysis.OutlierPayload) [][]string {
	rows := make([][]string, len(p.Columns))
	for i, c := range p.Columns {
		rows[i] = []string{
			c.Column, fmt.Sprint(c.Count), fmt.Sprintf("%.2f", c.Percentage),
			formatNull(c.Bounds.Lower), formatNull(c.Bounds.Upper), formatValues(c.Values),
		}
	}
	return rows
}

func trendRows(p analysis.TrendPayload) [][]string {
	rows := make([][]string, len(p.Columns))
	for i, c := range p.Columns {
		rows[i] = []string{
			c.Column, string(c.Trend), formatNull(c.Slope),
			formatNull(c.FirstValue), formatNull(c.LastValue), formatNull(c.Change),
		}
	}
	return rows
}

func mdTable(b *strings.Builder, header []string, rows [][]string) {
	cells := make([]string, len(header))
	for i, h := range header {
		cells[i] = escapeCell(h)
	}
	fmt.Fprintf(b, "| %s |\n", strings.Join(cells, " | "))

	seps := make([]string, len(header))
	for i := range seps {
		seps[i] = "---"
	}
	fmt.Fprintf(b, "| %s |\n", strings.Join(seps, " | "))

	for _, row := range rows {
		for i, v := range row {
			row[i] = escapeCell(v)
		}
		fmt.Fprintf(b, "| %s |\n", strings.Join(row, " | "))
	}
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
