package table

import (
	"math"

	"gotabstat/domain/core"
)

// Column is a named, typed, immutable sequence of cells
type Column struct {
	name    string
	cells   []Cell
	ctype   ColumnType
	missing int
	// floats mirrors cells for numeric columns, NaN where missing
	floats []float64
}

// NewColumn copies cells into a new classified column
func NewColumn(name string, cells []Cell) Column {
	own := make([]Cell, len(cells))
	copy(own, cells)

	ctype, missing := classify(own)
	col := Column{name: name, cells: own, ctype: ctype, missing: missing}

	if ctype.IsNumeric() {
		col.floats = make([]float64, len(own))
		for i, c := range own {
			if v, ok := c.Float(); ok {
				col.floats[i] = v
			} else {
				col.floats[i] = math.NaN()
			}
		}
	}
	return col
}

// NewNumericColumn is a convenience for building numeric columns in code.
// NaN entries become missing cells.
func NewNumericColumn(name string, values ...float64) Column {
	cells := make([]Cell, len(values))
	for i, v := range values {
		cells[i] = Number(v)
	}
	return NewColumn(name, cells)
}

// Name returns the column name
func (c Column) Name() string { return c.name }

// Type returns the declared column type
func (c Column) Type() ColumnType { return c.ctype }

// IsNumeric reports whether the column takes part in numeric analyses
func (c Column) IsNumeric() bool { return c.ctype.IsNumeric() }

// Len returns the number of rows
func (c Column) Len() int { return len(c.cells) }

// MissingCount returns the number of missing cells
func (c Column) MissingCount() int { return c.missing }

// Cell returns the cell at row i
func (c Column) Cell(i int) Cell { return c.cells[i] }

// Cells returns a copy of the cells
func (c Column) Cells() []Cell {
	out := make([]Cell, len(c.cells))
	copy(out, c.cells)
	return out
}

// FloatAt returns the numeric value at row i, false when missing or non-numeric
func (c Column) FloatAt(i int) (float64, bool) {
	if c.floats == nil {
		return 0, false
	}
	v := c.floats[i]
	return v, !math.IsNaN(v)
}

// Values returns the non-missing numeric values in row order. It returns nil
// for non-numeric columns.
func (c Column) Values() []float64 {
	if c.floats == nil {
		return nil
	}
	out := make([]float64, 0, len(c.floats)-c.missing)
	for _, v := range c.floats {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

// Table is an immutable rectangular dataset with ordered, uniquely named columns
type Table struct {
	source  Source
	columns []Column
	index   map[string]int
	rows    int
	id      core.TableID
}

// New builds a table from columns. It fails with a structural error when the
// columns are ragged or their names are empty or duplicated.
func New(source Source, columns ...Column) (*Table, error) {
	t := &Table{
		source:  source,
		columns: make([]Column, len(columns)),
		index:   make(map[string]int, len(columns)),
	}
	copy(t.columns, columns)

	for i, col := range t.columns {
		if col.name == "" {
			return nil, core.WrapStructural(core.ErrEmptyColumnName, "column %d", i)
		}
		if _, dup := t.index[col.name]; dup {
			return nil, core.WrapStructural(core.ErrDuplicateColumn, "column %q", col.name)
		}
		if i == 0 {
			t.rows = col.Len()
		} else if col.Len() != t.rows {
			return nil, core.WrapStructural(core.ErrRaggedColumns, "column %q has %d rows, expected %d",
				col.name, col.Len(), t.rows)
		}
		t.index[col.name] = i
	}

	t.id = core.NewTableID(t.fingerprint())
	return t, nil
}

// FromRows builds a table from a header and row-major cells. Every row must
// have exactly len(headers) cells.
func FromRows(source Source, headers []string, rows [][]Cell) (*Table, error) {
	cols := make([][]Cell, len(headers))
	for i := range cols {
		cols[i] = make([]Cell, len(rows))
	}
	for r, row := range rows {
		if len(row) != len(headers) {
			return nil, core.WrapStructural(core.ErrRaggedColumns, "row %d has %d cells, expected %d",
				r, len(row), len(headers))
		}
		for c, cell := range row {
			cols[c][r] = cell
		}
	}

	columns := make([]Column, len(headers))
	for i, h := range headers {
		columns[i] = NewColumn(h, cols[i])
	}
	return New(source, columns...)
}

// Source returns the load metadata
func (t *Table) Source() Source { return t.source }

// WithSource returns the same table relabelled with src. Columns are shared;
// both tables are immutable.
func (t *Table) WithSource(src Source) *Table {
	out := *t
	out.source = src
	return &out
}

// ID returns the content-derived table identifier
func (t *Table) ID() core.TableID { return t.id }

// RowCount returns the number of rows
func (t *Table) RowCount() int { return t.rows }

// ColumnCount returns the number of columns
func (t *Table) ColumnCount() int { return len(t.columns) }

// Columns returns the columns in declared order
func (t *Table) Columns() []Column {
	out := make([]Column, len(t.columns))
	copy(out, t.columns)
	return out
}

// Column returns a column by name
func (t *Table) Column(name string) (Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return Column{}, false
	}
	return t.columns[i], true
}

// ColumnNames returns the column names in declared order
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.name
	}
	return names
}

// NumericColumns returns the numeric columns in declared order
func (t *Table) NumericColumns() []Column {
	var out []Column
	for _, c := range t.columns {
		if c.IsNumeric() {
			out = append(out, c)
		}
	}
	return out
}

func (t *Table) fingerprint() core.Hash {
	f := core.NewFingerprinter()
	f.Uint(uint64(len(t.columns)))
	f.Uint(uint64(t.rows))
	for _, col := range t.columns {
		f.String(col.name)
		for _, c := range col.cells {
			f.Tag(byte(c.kind))
			switch c.kind {
			case KindNumber:
				f.Float(c.num)
			case KindText:
				f.String(c.text)
			case KindBoolean:
				if c.flag {
					f.Tag(1)
				} else {
					f.Tag(0)
				}
			}
		}
	}
	return f.Sum()
}
