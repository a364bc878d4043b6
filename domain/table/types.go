package table

import (
	"math"
	"strconv"
)

// CellKind defines the storage kind of a single cell
type CellKind uint8

const (
	KindMissing CellKind = iota
	KindNumber
	KindText
	KindBoolean
)

func (k CellKind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	case KindBoolean:
		return "boolean"
	}
	return "missing"
}

// Cell is an immutable typed value. The zero Cell is missing.
type Cell struct {
	kind CellKind
	num  float64
	text string
	flag bool
}

// Missing creates a missing cell
func Missing() Cell {
	return Cell{}
}

// Number creates a numeric cell. NaN is treated as missing.
func Number(v float64) Cell {
	if math.IsNaN(v) {
		return Cell{}
	}
	return Cell{kind: KindNumber, num: v}
}

// Text creates a text cell
func Text(s string) Cell {
	return Cell{kind: KindText, text: s}
}

// Bool creates a boolean cell
func Bool(b bool) Cell {
	return Cell{kind: KindBoolean, flag: b}
}

// Kind returns the storage kind
func (c Cell) Kind() CellKind { return c.kind }

// IsMissing reports whether the cell holds the null sentinel
func (c Cell) IsMissing() bool { return c.kind == KindMissing }

// Float returns the numeric value and whether the cell is a number
func (c Cell) Float() (float64, bool) {
	return c.num, c.kind == KindNumber
}

// String returns the display representation of the cell
func (c Cell) String() string {
	switch c.kind {
	case KindNumber:
		return strconv.FormatFloat(c.num, 'g', -1, 64)
	case KindText:
		return c.text
	case KindBoolean:
		return strconv.FormatBool(c.flag)
	}
	return ""
}

// ColumnType is the declared semantic type of a column, decided once at
// construction.
type ColumnType string

const (
	TypeNumeric ColumnType = "numeric"
	TypeText    ColumnType = "text"
	TypeBoolean ColumnType = "boolean"
	// TypeMissing marks a column whose every cell is missing.
	TypeMissing ColumnType = "missing"
)

// IsNumeric reports whether columns of this type take part in numeric
// analyses. A missing-only column is vacuously numeric.
func (t ColumnType) IsNumeric() bool {
	return t == TypeNumeric || t == TypeMissing
}

// Source records where a table was loaded from. It is metadata only.
type Source struct {
	File  string `json:"file,omitempty"`
	Sheet string `json:"sheet,omitempty"`
}

// classify decides the column type from its cells
func classify(cells []Cell) (ColumnType, int) {
	missing := 0
	seen := [4]bool{}
	for _, c := range cells {
		if c.kind == KindMissing {
			missing++
			continue
		}
		seen[c.kind] = true
	}

	switch {
	case missing == len(cells):
		return TypeMissing, missing
	case seen[KindText]:
		return TypeText, missing
	case seen[KindNumber] && seen[KindBoolean]:
		// Mixed numbers and booleans are an object column, not numeric.
		return TypeText, missing
	case seen[KindBoolean]:
		return TypeBoolean, missing
	}
	return TypeNumeric, missing
}
