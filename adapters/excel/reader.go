package excel

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gotabstat/adapters/datareadiness/coercer"
	"gotabstat/domain/table"
	"gotabstat/internal"
	"gotabstat/internal/errors"
	"gotabstat/ports"

	"github.com/xuri/excelize/v2"
)

const checkEvery = 1024

// DataReader loads Excel workbooks and CSV files into tables
type DataReader struct {
	coercer *coercer.TypeCoercer
	logger  *internal.Logger
}

var _ ports.TableLoader = (*DataReader)(nil)

// NewDataReader creates a reader that coerces cells with c
func NewDataReader(c *coercer.TypeCoercer, logger *internal.Logger) *DataReader {
	if c == nil {
		c = coercer.NewTypeCoercer(coercer.DefaultCoercionConfig())
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &DataReader{coercer: c, logger: logger.WithComponent("DataReader")}
}

// Load reads one sheet (or CSV file) into a table. The first row of the
// sheet or range is the header.
func (r *DataReader) Load(ctx context.Context, req ports.LoadRequest) (*table.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := checkFile(req.File); err != nil {
		return nil, err
	}

	var (
		grid *rawGrid
		err  error
	)
	switch fileType(req.File) {
	case "csv":
		grid, err = r.readCSV(req.File)
	case "xlsx":
		grid, err = r.readWorkbook(req.File, req.Sheet)
	default:
		return nil, errors.InvalidInput(fmt.Sprintf("unsupported file type: %s", filepath.Ext(req.File)))
	}
	if err != nil {
		return nil, err
	}

	if req.Range != "" {
		cr, err := parseRange(req.Range)
		if err != nil {
			return nil, err
		}
		grid = cr.crop(grid)
	}

	t, err := r.buildTable(ctx, req.File, grid)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to build table from %s", req.File)
	}

	r.logger.Info("%s loaded (%d columns, %d rows)", displayName(req.File, grid.sheet), t.ColumnCount(), t.RowCount())
	return t, nil
}

// Sheets lists the sheet names of a workbook in workbook order
func (r *DataReader) Sheets(ctx context.Context, file string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := checkFile(file); err != nil {
		return nil, err
	}
	if fileType(file) != "xlsx" {
		return nil, errors.InvalidInput(fmt.Sprintf("%s has no sheets", filepath.Base(file)))
	}

	f, err := excelize.OpenFile(file)
	if err != nil {
		return nil, errors.LoadFailed(file, err)
	}
	defer f.Close()

	return f.GetSheetList(), nil
}

// readWorkbook reads raw cell values so number formats never leak into
// parsing. Stored cell types become coercion hints.
func (r *DataReader) readWorkbook(path, sheet string) (*rawGrid, error) {
	startTime := time.Now()
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.LoadFailed(path, err)
	}
	defer f.Close()
	r.logger.Debug("Excel file opened in %.2fms", float64(time.Since(startTime).Nanoseconds())/1e6)

	name, err := resolveSheet(f, sheet)
	if err != nil {
		return nil, err
	}

	readStart := time.Now()
	rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, errors.LoadFailed(fmt.Sprintf("sheet %q", name), err)
	}
	r.logger.Debug("%s read in %.2fms (%d rows)", name, float64(time.Since(readStart).Nanoseconds())/1e6, len(rows))

	types := make(map[[2]int]excelize.CellType)
	for ri, row := range rows {
		for ci, v := range row {
			if v == "" {
				continue
			}
			ref, err := excelize.CoordinatesToCellName(ci+1, ri+1)
			if err != nil {
				continue
			}
			ct, err := f.GetCellType(name, ref)
			if err != nil {
				r.logger.Warn("cell type of %s!%s unavailable: %v", name, ref, err)
				continue
			}
			types[[2]int{ci + 1, ri + 1}] = ct
		}
	}

	return &rawGrid{
		sheet: name,
		rows:  rows,
		cellType: func(col, row int) excelize.CellType {
			return types[[2]int{col, row}]
		},
		col0: 1,
		row0: 1,
	}, nil
}

// readCSV reads a CSV file. Rows may have differing lengths.
func (r *DataReader) readCSV(path string) (*rawGrid, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.LoadFailed(path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	readStart := time.Now()
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.LoadFailed(path, err)
	}
	r.logger.Debug("CSV file read in %.2fms (%d rows)", float64(time.Since(readStart).Nanoseconds())/1e6, len(rows))

	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], "\ufeff")
	}
	return &rawGrid{rows: rows, col0: 1, row0: 1}, nil
}

// buildTable turns the grid into typed columns. Short rows are padded with
// missing cells.
func (r *DataReader) buildTable(ctx context.Context, file string, g *rawGrid) (*table.Table, error) {
	source := table.Source{File: file, Sheet: g.sheet}
	if len(g.rows) == 0 {
		return table.New(source)
	}

	width := g.width()
	headers := normalizeHeaders(g.rows[0], width)

	data := make([][]table.Cell, 0, len(g.rows)-1)
	for ri := 1; ri < len(g.rows); ri++ {
		if ri%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		raw := g.rows[ri]
		cells := make([]table.Cell, width)
		for ci := range cells {
			if ci >= len(raw) {
				cells[ci] = table.Missing()
				continue
			}
			cells[ci] = r.coerce(raw[ci], g.typeAt(ri, ci))
		}
		data = append(data, cells)
	}

	return table.FromRows(source, headers, data)
}

func (r *DataReader) coerce(raw string, ct excelize.CellType) table.Cell {
	switch ct {
	case excelize.CellTypeError:
		return table.Missing()
	case excelize.CellTypeBool:
		return r.coercer.CoerceCell(raw, coercer.HintBoolean)
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString:
		return r.coercer.CoerceCell(raw, coercer.HintText)
	case excelize.CellTypeNumber:
		return r.coercer.CoerceCell(raw, coercer.HintNumber)
	}
	return r.coercer.CoerceCell(raw, coercer.HintNone)
}

// normalizeHeaders names blank headers "Unnamed: <i>" and suffixes repeats
// with ".1", ".2", ... the way pandas deduplicates column names.
func normalizeHeaders(raw []string, width int) []string {
	names := make([]string, width)
	for i := range names {
		if i < len(raw) {
			names[i] = strings.TrimSpace(raw[i])
		}
		if names[i] == "" {
			names[i] = "Unnamed: " + strconv.Itoa(i)
		}
	}

	counts := make(map[string]int, width)
	out := make([]string, width)
	for i, n := range names {
		cur := counts[n]
		for cur > 0 {
			counts[n] = cur + 1
			n = n + "." + strconv.Itoa(cur)
			cur = counts[n]
		}
		out[i] = n
		counts[n] = cur + 1
	}
	return out
}

func resolveSheet(f *excelize.File, sheet string) (string, error) {
	if sheet == "" {
		list := f.GetSheetList()
		if len(list) == 0 {
			return "", errors.InvalidInput("workbook has no sheets")
		}
		return list[0], nil
	}
	idx, err := f.GetSheetIndex(sheet)
	if err != nil || idx < 0 {
		return "", errors.NotFound(fmt.Sprintf("sheet %q", sheet))
	}
	return f.GetSheetName(idx), nil
}

func checkFile(path string) error {
	if path == "" {
		return errors.InvalidInput("file path is required")
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return errors.NotFound(fmt.Sprintf("file %s", path))
	}
	if err != nil {
		return errors.LoadFailed(path, err)
	}
	if info.IsDir() {
		return errors.InvalidInput(fmt.Sprintf("%s is a directory", path))
	}
	return nil
}

func fileType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return "csv"
	case ".xlsx", ".xlsm", ".xltx", ".xltm":
		return "xlsx"
	}
	return ""
}

func displayName(file, sheet string) string {
	if sheet == "" {
		return filepath.Base(file)
	}
	return filepath.Base(file) + "!" + sheet
}
