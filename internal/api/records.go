package api

import (
	"fmt"

	"gotabstat/domain/table"
	"gotabstat/internal/errors"

	"github.com/tidwall/gjson"
)

// recordsTable builds a table from an array of JSON objects. Headers follow
// the order in which keys first appear; a key absent from a record is a
// missing cell. A single object is treated as a one-row table.
func (s *Server) recordsTable(data gjson.Result, source table.Source) (*table.Table, error) {
	var records []gjson.Result
	switch {
	case data.IsArray():
		records = data.Array()
	case data.IsObject():
		records = []gjson.Result{data}
	default:
		return nil, errors.InvalidInput("records must be an array of objects")
	}

	var headers []string
	index := make(map[string]int)
	rows := make([]map[string]table.Cell, len(records))

	for i, rec := range records {
		if !rec.IsObject() {
			return nil, errors.InvalidInput(fmt.Sprintf("record %d is not an object", i))
		}
		row := make(map[string]table.Cell)
		rec.ForEach(func(key, value gjson.Result) bool {
			name := key.String()
			if _, ok := index[name]; !ok {
				index[name] = len(headers)
				headers = append(headers, name)
			}
			row[name] = s.recordCell(value)
			return true
		})
		rows[i] = row
	}

	cells := make([][]table.Cell, len(rows))
	for i, row := range rows {
		cells[i] = make([]table.Cell, len(headers))
		for name, cell := range row {
			cells[i][index[name]] = cell
		}
	}

	t, err := table.FromRows(source, headers, cells)
	if err != nil {
		return nil, errors.Wrap(err, "malformed table")
	}
	return t, nil
}

func (s *Server) recordCell(v gjson.Result) table.Cell {
	switch v.Type {
	case gjson.Null:
		return table.Missing()
	case gjson.True:
		return table.Bool(true)
	case gjson.False:
		return table.Bool(false)
	case gjson.Number:
		return table.Number(v.Float())
	case gjson.String:
		return s.coercer.CoerceValue(v.String())
	}
	// nested objects and arrays are kept as their raw text
	return table.Text(v.Raw)
}
