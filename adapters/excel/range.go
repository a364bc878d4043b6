package excel

import (
	"fmt"
	"strings"

	"gotabstat/internal/errors"

	"github.com/xuri/excelize/v2"
)

// cellRange is an inclusive, 1-based rectangle
type cellRange struct {
	firstCol, firstRow int
	lastCol, lastRow   int
}

// parseRange parses A1 references such as "A1:C10", "$B$2:$D$9" or a single
// cell. Corners may be given in any order.
func parseRange(ref string) (cellRange, error) {
	ref = strings.ReplaceAll(strings.TrimSpace(ref), "$", "")
	if ref == "" {
		return cellRange{}, errors.InvalidInput("empty range")
	}

	parts := strings.Split(ref, ":")
	if len(parts) > 2 {
		return cellRange{}, errors.InvalidInput(fmt.Sprintf("invalid range %q", ref))
	}
	if len(parts) == 1 {
		parts = append(parts, parts[0])
	}

	c1, r1, err := excelize.CellNameToCoordinates(parts[0])
	if err != nil {
		return cellRange{}, errors.WithCode(errors.CodeInvalidInput, fmt.Errorf("invalid range %q: %w", ref, err))
	}
	c2, r2, err := excelize.CellNameToCoordinates(parts[1])
	if err != nil {
		return cellRange{}, errors.WithCode(errors.CodeInvalidInput, fmt.Errorf("invalid range %q: %w", ref, err))
	}

	return cellRange{
		firstCol: min(c1, c2), firstRow: min(r1, r2),
		lastCol: max(c1, c2), lastRow: max(r1, r2),
	}, nil
}

// crop restricts the grid to the range. Cells the sheet never stored are
// padded later, so the result may be narrower than the range.
func (cr cellRange) crop(g *rawGrid) *rawGrid {
	out := &rawGrid{
		sheet:    g.sheet,
		cellType: g.cellType,
		col0:     g.col0 + cr.firstCol - 1,
		row0:     g.row0 + cr.firstRow - 1,
	}

	for r := cr.firstRow - 1; r < cr.lastRow && r < len(g.rows); r++ {
		src := g.rows[r]
		var row []string
		if cr.firstCol-1 < len(src) {
			row = src[cr.firstCol-1 : min(cr.lastCol, len(src))]
		}
		out.rows = append(out.rows, row)
	}

	// a range wider than any stored row still yields its full header width
	if len(out.rows) > 0 {
		width := cr.lastCol - cr.firstCol + 1
		if len(out.rows[0]) < width {
			header := make([]string, width)
			copy(header, out.rows[0])
			out.rows[0] = header
		}
	}
	return out
}
