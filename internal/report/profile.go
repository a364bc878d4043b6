package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gotabstat/app"
	"gotabstat/internal/errors"
	"gotabstat/internal/profiling"

	"github.com/jedib0t/go-pretty/v6/table"
)

// RenderProfile writes a table profile. HTML is not offered for profiles and
// falls back to markdown.
func RenderProfile(w io.Writer, format Format, p *app.TableProfile) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(p)
	case FormatText:
		_, _ = fmt.Fprintf(w, "%s: %d rows, %d columns\n", profileName(p), p.Rows, len(p.Columns))
		t := newTable(w, table.Row{"Column", "Type", "Missing", "Distinct", "Skewness", "Normality p"})
		for _, col := range p.Columns {
			skew, normal := shapeCells(col)
			t.AppendRow(table.Row{col.Name, col.Type, col.Missing, col.Distinct, skew, normal})
		}
		t.Render()
		return nil
	case FormatMarkdown, FormatHTML:
		var b strings.Builder
		fmt.Fprintf(&b, "## %s\n\n%d rows, %d columns\n\n", profileName(p), p.Rows, len(p.Columns))
		rows := make([][]string, len(p.Columns))
		for i, col := range p.Columns {
			skew, normal := shapeCells(col)
			rows[i] = []string{col.Name, string(col.Type), strconv.Itoa(col.Missing), strconv.Itoa(col.Distinct), skew, normal}
		}
		mdTable(&b, []string{"Column", "Type", "Missing", "Distinct", "Skewness", "Normality p"}, rows)
		_, err := io.WriteString(w, b.String())
		return err
	}
	return errors.InvalidInput(fmt.Sprintf("unknown format %q", format))
}

func profileName(p *app.TableProfile) string {
	if p.Sheet == "" {
		return p.File
	}
	return p.File + " [" + p.Sheet + "]"
}

func shapeCells(col profiling.ColumnProfile) (string, string) {
	if col.Shape == nil {
		return "", ""
	}
	return formatNull(col.Shape.Skewness), formatNull(col.Shape.NormalityP)
}
