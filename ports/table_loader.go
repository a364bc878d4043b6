package ports

import (
	"context"

	"gotabstat/domain/table"
)

// LoadRequest identifies a rectangular block of a spreadsheet or CSV file
type LoadRequest struct {
	File string `json:"file"`
	// Sheet defaults to the first sheet of the workbook. Ignored for CSV.
	Sheet string `json:"sheet,omitempty"`
	// Range is an optional A1 reference such as "A1:C10". Its first row is
	// the header.
	Range string `json:"range,omitempty"`
}

// TableLoader turns files into fully validated tables. Implementations
// never return a partially built table.
type TableLoader interface {
	Load(ctx context.Context, req LoadRequest) (*table.Table, error)
	Sheets(ctx context.Context, file string) ([]string, error)
}
