// Package testkit writes spreadsheet fixtures for loader, service and API
// tests.
package testkit

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// Sheet is one worksheet of a fixture workbook. Cells are written with their
// Go type: strings as shared strings, bools as boolean cells, numbers as
// numbers. Nil cells are left empty.
type Sheet struct {
	Name string
	Rows [][]interface{}
}

// WriteWorkbook saves sheets (in order) to dir/name and returns the path
func WriteWorkbook(tb testing.TB, dir, name string, sheets ...Sheet) string {
	tb.Helper()
	require.NotEmpty(tb, sheets, "workbook needs at least one sheet")

	f := excelize.NewFile()
	defer f.Close()

	for i, sheet := range sheets {
		if i == 0 {
			require.NoError(tb, f.SetSheetName("Sheet1", sheet.Name))
		} else {
			_, err := f.NewSheet(sheet.Name)
			require.NoError(tb, err)
		}
		for r, row := range sheet.Rows {
			for c, v := range row {
				if v == nil {
					continue
				}
				ref, err := excelize.CoordinatesToCellName(c+1, r+1)
				require.NoError(tb, err)
				require.NoError(tb, f.SetCellValue(sheet.Name, ref, v))
			}
		}
	}

	path := filepath.Join(dir, name)
	require.NoError(tb, f.SaveAs(path))
	return path
}

// WriteCSV saves rows to dir/name and returns the path
func WriteCSV(tb testing.TB, dir, name string, rows [][]string) string {
	tb.Helper()

	path := filepath.Join(dir, name)
	file, err := os.Create(path)
	require.NoError(tb, err)
	defer file.Close()

	w := csv.NewWriter(file)
	require.NoError(tb, w.WriteAll(rows))
	return path
}

// SalesSheet is a small sheet that exercises every analysis: units and
// revenue move together, revenue trends up, one huge order is an outlier,
// and region is text.
func SalesSheet() Sheet {
	return Sheet{
		Name: "Sales",
		Rows: [][]interface{}{
			{"month", "units", "revenue", "returns", "region", "promo"},
			{1, 10, 100.0, 3, "north", false},
			{2, 12, 121.0, 2, "south", false},
			{3, 11, 108.5, 4, "north", true},
			{4, 14, 143.0, nil, "east", false},
			{5, 15, 150.0, 3, "west", true},
			{6, 13, 131.0, 2, "south", false},
			{7, 16, 163.0, 3, "north", false},
			{8, 90, 905.0, 2, "east", true},
		},
	}
}
