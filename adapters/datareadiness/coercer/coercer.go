package coercer

import (
	"math"
	"strconv"
	"strings"

	"gotabstat/domain/table"
)

// CellHint carries what the source format already knows about a cell
type CellHint uint8

const (
	HintNone CellHint = iota
	HintNumber
	HintBoolean
	HintText
)

// TypeCoercer turns raw spreadsheet strings into typed cells with
// deterministic rules
type TypeCoercer struct {
	config CoercionConfig
	nulls  map[string]struct{}
}

// CoercionConfig defines the coercion rules
type CoercionConfig struct {
	// NullTokens are the spellings treated as missing (compared case-insensitively
	// after trimming). The empty string is always missing.
	NullTokens []string `json:"null_tokens"`
	// Lenient accepts currency symbols, percent signs, thousands separators and
	// parenthesised negatives as numbers.
	Lenient bool `json:"lenient"`
}

// DefaultNullTokens mirrors the spellings pandas reads as NaN
func DefaultNullTokens() []string {
	return []string{
		"#N/A", "#N/A N/A", "#NA", "-1.#IND", "-1.#QNAN", "-NaN", "-nan",
		"1.#IND", "1.#QNAN", "<NA>", "N/A", "NA", "NULL", "NaN", "None", "n/a", "nan", "null",
	}
}

// DefaultCoercionConfig returns strict coercion with the standard null tokens
func DefaultCoercionConfig() CoercionConfig {
	return CoercionConfig{
		NullTokens: DefaultNullTokens(),
	}
}

// NewTypeCoercer creates a coercer with the given config
func NewTypeCoercer(config CoercionConfig) *TypeCoercer {
	nulls := make(map[string]struct{}, len(config.NullTokens))
	for _, tok := range config.NullTokens {
		nulls[strings.ToLower(strings.TrimSpace(tok))] = struct{}{}
	}
	return &TypeCoercer{config: config, nulls: nulls}
}

// CoerceCell converts a raw cell string into a typed cell
func (c *TypeCoercer) CoerceCell(raw string, hint CellHint) table.Cell {
	s := strings.TrimSpace(raw)
	if c.IsNull(s) {
		return table.Missing()
	}

	switch hint {
	case HintBoolean:
		// workbooks store booleans as 1/0
		switch s {
		case "1":
			return table.Bool(true)
		case "0":
			return table.Bool(false)
		}
		if b, ok := parseBoolean(s); ok {
			return table.Bool(b)
		}
	case HintText:
		return table.Text(s)
	}

	if v, ok := c.parseNumeric(s); ok {
		return table.Number(v)
	}
	if b, ok := parseBoolean(s); ok {
		return table.Bool(b)
	}
	return table.Text(s)
}

// CoerceValue converts a decoded JSON value into a typed cell. Strings go
// through the same rules as spreadsheet text.
func (c *TypeCoercer) CoerceValue(v interface{}) table.Cell {
	switch val := v.(type) {
	case nil:
		return table.Missing()
	case bool:
		return table.Bool(val)
	case float64:
		return table.Number(val)
	case int:
		return table.Number(float64(val))
	case int64:
		return table.Number(float64(val))
	case interface{ Float64() (float64, error) }:
		if f, err := val.Float64(); err == nil {
			return table.Number(f)
		}
		return table.Missing()
	case string:
		return c.CoerceCell(val, HintNone)
	}
	return table.Missing()
}

// IsNull reports whether a trimmed string is a null token
func (c *TypeCoercer) IsNull(s string) bool {
	if s == "" {
		return true
	}
	_, ok := c.nulls[strings.ToLower(s)]
	return ok
}

// parseNumeric parses a finite float. NaN and infinity spellings are never
// numbers here.
func (c *TypeCoercer) parseNumeric(s string) (float64, bool) {
	if c.config.Lenient {
		s = normalizeLenientNumber(s)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// normalizeLenientNumber strips presentation noise: (123) -> -123, currency
// symbols, percent signs and thousands separators.
func normalizeLenientNumber(s string) string {
	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		s = strings.TrimSuffix(strings.TrimPrefix(s, "("), ")")
		negative = true
	}

	for _, symbol := range []string{"$", "€", "£", "¥", "USD", "EUR", "GBP", "JPY", "%"} {
		s = strings.ReplaceAll(s, symbol, "")
	}
	s = strings.TrimSpace(s)

	hasComma := strings.Contains(s, ",")
	hasPeriod := strings.Contains(s, ".")
	if hasComma && hasPeriod && strings.LastIndex(s, ",") > strings.LastIndex(s, ".") {
		// 1.234,56
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	} else {
		s = strings.ReplaceAll(s, ",", "")
	}
	s = strings.ReplaceAll(s, " ", "")

	if negative {
		s = "-" + s
	}
	return s
}

// parseBoolean accepts only true/false spellings so numeric 0/1 columns stay
// numeric
func parseBoolean(s string) (bool, bool) {
	switch strings.ToLower(s) {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	return false, false
}
