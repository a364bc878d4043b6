package main

import (
	"fmt"
	"strings"

	"gotabstat/app"
	"gotabstat/domain/analysis"
	"gotabstat/internal/errors"
	"gotabstat/internal/report"
	"gotabstat/ports"

	"github.com/spf13/cobra"
)

// sourceFlags are the table-selection flags shared by analyze and inspect
type sourceFlags struct {
	file   string
	sheet  string
	cells  string
	format string
}

func (f *sourceFlags) register(cmd *cobra.Command, defaultFormat string) {
	cmd.Flags().StringVarP(&f.file, "file", "f", "", "spreadsheet to read (.xlsx, .xlsm or .csv; defaults to EXCEL_FILE)")
	cmd.Flags().StringVarP(&f.sheet, "sheet", "s", "", "sheet name (defaults to EXCEL_SHEET, then the first sheet)")
	cmd.Flags().StringVarP(&f.cells, "range", "r", "", "cell range such as A1:D20; its first row is the header")
	cmd.Flags().StringVarP(&f.format, "format", "o", defaultFormat, "output format: json, text, markdown or html")
}

// request resolves flags against configured defaults
func (f *sourceFlags) request(a *cliApp) (ports.LoadRequest, error) {
	req := ports.LoadRequest{File: f.file, Sheet: f.sheet, Range: f.cells}
	if req.File == "" {
		req.File = a.config().Data.ExcelFile
	}
	if req.Sheet == "" {
		req.Sheet = a.config().Data.Sheet
	}
	if req.File == "" {
		return req, errors.InvalidInput("no input file: pass --file or set EXCEL_FILE")
	}
	return req, nil
}

func newAnalyzeCmd(a *cliApp) *cobra.Command {
	var flags sourceFlags
	var mode string

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run an analysis over a spreadsheet table",
		Long: `Run summary, correlation, outlier or trend analysis over one sheet.

Example: tabstat analyze --file sales.xlsx --analysis correlation --format text`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := report.ParseFormat(flags.format)
			if err != nil {
				return err
			}
			req, err := flags.request(a)
			if err != nil {
				return err
			}

			svc := a.container.Service
			var results []analysis.Result
			if strings.EqualFold(strings.TrimSpace(mode), "all") {
				results, err = svc.AnalyzeAll(cmd.Context(), req)
			} else {
				var m analysis.Mode
				m, err = analysis.ParseMode(mode)
				if err != nil {
					return errors.Wrap(err, "invalid --analysis")
				}
				var r analysis.Result
				r, err = svc.Analyze(cmd.Context(), app.AnalyzeRequest{LoadRequest: req, Mode: m})
				results = []analysis.Result{r}
			}
			if err != nil {
				return err
			}

			if err := report.Render(cmd.OutOrStdout(), format, results...); err != nil {
				return err
			}
			for _, r := range results {
				if !r.Success() {
					return errAnalysisFailed
				}
			}
			return nil
		},
	}

	flags.register(cmd, "json")
	cmd.Flags().StringVarP(&mode, "analysis", "a", "summary", "summary, correlation, outliers, trends or all")
	return cmd
}

func newSheetsCmd(a *cliApp) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "sheets",
		Short: "List the sheets of a workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				file = a.config().Data.ExcelFile
			}
			if file == "" {
				return errors.InvalidInput("no input file: pass --file or set EXCEL_FILE")
			}

			sheets, err := a.container.Service.Sheets(cmd.Context(), file)
			if err != nil {
				return err
			}
			for _, name := range sheets {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "workbook to read (defaults to EXCEL_FILE)")
	return cmd
}

func newInspectCmd(a *cliApp) *cobra.Command {
	var flags sourceFlags

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Show row count, column types and missing counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := report.ParseFormat(flags.format)
			if err != nil {
				return err
			}
			req, err := flags.request(a)
			if err != nil {
				return err
			}

			profile, err := a.container.Service.Inspect(cmd.Context(), req)
			if err != nil {
				return err
			}
			return report.RenderProfile(cmd.OutOrStdout(), format, profile)
		},
	}

	flags.register(cmd, "text")
	return cmd
}
