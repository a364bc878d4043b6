// Package report renders analysis results for people and machines.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"gotabstat/domain/analysis"
	"gotabstat/internal/errors"
)

// Format selects the output encoding
type Format string

const (
	FormatJSON     Format = "json"
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

// ParseFormat resolves a format name. "md" and "table" are accepted aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "text", "table":
		return FormatText, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "html":
		return FormatHTML, nil
	}
	return "", errors.InvalidInput(fmt.Sprintf("unknown format %q (want json, text, markdown or html)", s))
}

// Render writes results to w. A single JSON result is written as an object,
// several as an array.
func Render(w io.Writer, format Format, results ...analysis.Result) error {
	switch format {
	case FormatJSON:
		return renderJSON(w, results)
	case FormatText:
		return renderText(w, results)
	case FormatMarkdown:
		_, err := io.WriteString(w, Markdown(results...))
		return err
	case FormatHTML:
		_, err := w.Write(HTML(results...))
		return err
	}
	return errors.InvalidInput(fmt.Sprintf("unknown format %q", format))
}

func renderJSON(w io.Writer, results []analysis.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if len(results) == 1 {
		return enc.Encode(results[0])
	}
	return enc.Encode(results)
}

func title(r analysis.Result) string {
	name := r.Source.File
	if name == "" {
		name = "table"
	}
	if r.Source.Sheet != "" {
		name += " [" + r.Source.Sheet + "]"
	}
	return fmt.Sprintf("%s analysis: %s", capitalize(r.Mode.String()), name)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func formatFloat(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "-"
	}
	return strconv.FormatFloat(v, 'g', 6, 64)
}

func formatNull(n analysis.NullFloat) string {
	if !n.Valid {
		return "-"
	}
	return formatFloat(n.Value)
}

func formatValues(values []float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = formatFloat(v)
	}
	return strings.Join(parts, ", ")
}
