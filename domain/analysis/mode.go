package analysis

import (
	"fmt"
	"strings"

	"gotabstat/domain/core"
)

// Mode selects one of the four analyses
type Mode string

const (
	ModeSummary     Mode = "summary"
	ModeCorrelation Mode = "correlation"
	ModeOutliers    Mode = "outliers"
	ModeTrends      Mode = "trends"
)

// AllModes lists every mode in canonical order
func AllModes() []Mode {
	return []Mode{ModeSummary, ModeCorrelation, ModeOutliers, ModeTrends}
}

// ParseMode resolves a user-supplied mode name
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", fmt.Errorf("%w: %q (want one of summary, correlation, outliers, trends)", core.ErrUnknownMode, s)
	}
	return m, nil
}

// Valid reports whether m is one of the known modes
func (m Mode) Valid() bool {
	switch m {
	case ModeSummary, ModeCorrelation, ModeOutliers, ModeTrends:
		return true
	}
	return false
}

func (m Mode) String() string { return string(m) }
