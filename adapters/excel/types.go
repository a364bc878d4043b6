package excel

import "github.com/xuri/excelize/v2"

// rawGrid is a sheet as read from disk: row-major strings plus, for
// workbooks, the stored cell type of each value
type rawGrid struct {
	sheet string
	rows  [][]string
	// cellType is nil for CSV input. Coordinates are 1-based.
	cellType func(col, row int) excelize.CellType
	// origin of rows[0][0] in sheet coordinates (1-based)
	col0, row0 int
}

func (g *rawGrid) width() int {
	w := 0
	for _, row := range g.rows {
		if len(row) > w {
			w = len(row)
		}
	}
	return w
}

// typeAt returns the stored type of the cell at grid position (r, c)
func (g *rawGrid) typeAt(r, c int) excelize.CellType {
	if g.cellType == nil {
		return excelize.CellTypeUnset
	}
	return g.cellType(g.col0+c, g.row0+r)
}
