package api

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"gotabstat/app"
	"gotabstat/domain/analysis"
	"gotabstat/domain/table"
	"gotabstat/internal/errors"
	"gotabstat/internal/report"
	"gotabstat/ports"

	"github.com/gin-gonic/gin"
	"github.com/tidwall/gjson"
)

// tableRequest is a table posted as JSON, either column-major ("columns")
// or row-major ("headers" + "rows"). Arrays of objects go through
// recordsTable instead.
type tableRequest struct {
	Name    string          `json:"name"`
	Sheet   string          `json:"sheet"`
	Columns []columnRequest `json:"columns"`
	Headers []string        `json:"headers"`
	Rows    [][]interface{} `json:"rows"`
}

type columnRequest struct {
	Name   string        `json:"name"`
	Values []interface{} `json:"values"`
}

var uploadExtensions = map[string]bool{".xlsx": true, ".xlsm": true, ".csv": true}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleAnalyze(c *gin.Context) {
	mode, err := analysis.ParseMode(c.Param("mode"))
	if err != nil {
		s.writeError(c, errors.Wrap(err, "invalid analysis mode"))
		return
	}
	format, err := report.ParseFormat(c.Query("format"))
	if err != nil {
		s.writeError(c, err)
		return
	}

	release, err := s.acquire(c.Request.Context(), 1)
	if err != nil {
		s.writeError(c, errors.WithCode(errors.CodeUnavailable, err))
		return
	}
	defer release()

	t, err := s.readTable(c)
	if err != nil {
		s.writeError(c, err)
		return
	}

	result, err := s.service.AnalyzeTable(t, mode)
	if err != nil {
		s.writeError(c, err)
		return
	}
	s.writeResults(c, format, result)
}

func (s *Server) handleAnalyzeAll(c *gin.Context) {
	format, err := report.ParseFormat(c.Query("format"))
	if err != nil {
		s.writeError(c, err)
		return
	}

	release, err := s.acquire(c.Request.Context(), int64(len(analysis.AllModes())))
	if err != nil {
		s.writeError(c, errors.WithCode(errors.CodeUnavailable, err))
		return
	}
	defer release()

	t, err := s.readTable(c)
	if err != nil {
		s.writeError(c, err)
		return
	}

	results, err := s.service.AnalyzeTableAll(c.Request.Context(), t)
	if err != nil {
		s.writeError(c, err)
		return
	}
	s.writeResults(c, format, results...)
}

func (s *Server) handleInspect(c *gin.Context) {
	release, err := s.acquire(c.Request.Context(), 1)
	if err != nil {
		s.writeError(c, errors.WithCode(errors.CodeUnavailable, err))
		return
	}
	defer release()

	t, err := s.readTable(c)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, app.ProfileTable(t))
}

func (s *Server) handleSheets(c *gin.Context) {
	s.limitBody(c)
	path, header, cleanup, err := s.saveUpload(c)
	if err != nil {
		s.writeError(c, err)
		return
	}
	defer cleanup()

	sheets, err := s.service.Sheets(c.Request.Context(), path)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"file": header.Filename, "sheets": sheets})
}

// readTable builds the request's table from a multipart upload or a JSON
// body. The table is fully validated before any analysis runs.
func (s *Server) readTable(c *gin.Context) (*table.Table, error) {
	s.limitBody(c)

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		path, header, cleanup, err := s.saveUpload(c)
		if err != nil {
			return nil, err
		}
		defer cleanup()

		t, err := s.service.LoadTable(c.Request.Context(), ports.LoadRequest{
			File:  path,
			Sheet: c.PostForm("sheet"),
			Range: c.PostForm("range"),
		})
		if err != nil {
			return nil, err
		}
		return t.WithSource(table.Source{File: header.Filename, Sheet: t.Source().Sheet}), nil
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return nil, bodyError(err, "invalid JSON table")
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, errors.InvalidInput("invalid JSON table: empty body")
	}
	if !gjson.ValidBytes(body) {
		return nil, errors.InvalidInput("invalid JSON table: malformed JSON")
	}

	// ?path= selects an array of records anywhere in the document
	if path := c.Query("path"); path != "" {
		data := gjson.GetBytes(body, path)
		if !data.Exists() {
			return nil, errors.InvalidInput(fmt.Sprintf("path %q not found in body", path))
		}
		return s.recordsTable(data, table.Source{File: c.Query("name"), Sheet: c.Query("sheet")})
	}
	if records := gjson.GetBytes(body, "records"); records.Exists() {
		source := table.Source{
			File:  gjson.GetBytes(body, "name").String(),
			Sheet: gjson.GetBytes(body, "sheet").String(),
		}
		return s.recordsTable(records, source)
	}

	var req tableRequest
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		return nil, bodyError(err, "invalid JSON table")
	}
	return s.buildTable(req)
}

func (s *Server) buildTable(req tableRequest) (*table.Table, error) {
	source := table.Source{File: req.Name, Sheet: req.Sheet}

	if len(req.Headers) > 0 {
		rows := make([][]table.Cell, len(req.Rows))
		for i, raw := range req.Rows {
			rows[i] = make([]table.Cell, len(raw))
			for j, v := range raw {
				rows[i][j] = s.coercer.CoerceValue(v)
			}
		}
		t, err := table.FromRows(source, req.Headers, rows)
		if err != nil {
			return nil, errors.Wrap(err, "malformed table")
		}
		return t, nil
	}

	columns := make([]table.Column, len(req.Columns))
	for i, col := range req.Columns {
		cells := make([]table.Cell, len(col.Values))
		for j, v := range col.Values {
			cells[j] = s.coercer.CoerceValue(v)
		}
		columns[i] = table.NewColumn(col.Name, cells)
	}
	t, err := table.New(source, columns...)
	if err != nil {
		return nil, errors.Wrap(err, "malformed table")
	}
	return t, nil
}

// saveUpload writes the "file" form field to a temporary file carrying the
// upload's extension
func (s *Server) saveUpload(c *gin.Context) (string, *multipart.FileHeader, func(), error) {
	header, err := c.FormFile("file")
	if err != nil {
		return "", nil, nil, bodyError(err, "a spreadsheet must be uploaded in the \"file\" field")
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !uploadExtensions[ext] {
		return "", nil, nil, errors.InvalidInput(fmt.Sprintf("only .xlsx, .xlsm and .csv files are accepted, got %q", header.Filename))
	}

	tmp, err := os.CreateTemp("", "tabstat-*"+ext)
	if err != nil {
		return "", nil, nil, errors.WithCode(errors.CodeInternalError, err)
	}
	path := tmp.Name()
	tmp.Close()
	cleanup := func() { os.Remove(path) }

	if err := c.SaveUploadedFile(header, path); err != nil {
		cleanup()
		return "", nil, nil, errors.LoadFailed(header.Filename, err)
	}
	s.logger.Debug("saved upload %s (%d bytes)", header.Filename, header.Size)
	return path, header, cleanup, nil
}

func (s *Server) limitBody(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxUpload)
}

func (s *Server) writeResults(c *gin.Context, format report.Format, results ...analysis.Result) {
	if format == report.FormatJSON {
		if len(results) == 1 {
			c.JSON(http.StatusOK, results[0])
		} else {
			c.JSON(http.StatusOK, results)
		}
		return
	}

	var buf bytes.Buffer
	if err := report.Render(&buf, format, results...); err != nil {
		s.writeError(c, err)
		return
	}
	c.Data(http.StatusOK, contentType(format), buf.Bytes())
}

func (s *Server) writeError(c *gin.Context, err error) {
	code := errors.GetCode(err)
	status := statusFor(code)
	var tooLarge *http.MaxBytesError
	if stderrors.As(err, &tooLarge) {
		status = http.StatusRequestEntityTooLarge
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}

	c.AbortWithStatusJSON(status, gin.H{
		"success":    false,
		"request_id": c.GetString(requestIDKey),
		"error": gin.H{
			"code":    code,
			"message": err.Error(),
		},
	})
}

func statusFor(code string) int {
	switch code {
	case errors.CodeInvalidInput, errors.CodeStructuralError, errors.CodeInsufficientData:
		return http.StatusBadRequest
	case errors.CodeNotFound:
		return http.StatusNotFound
	case errors.CodeLoadFailed:
		return http.StatusUnprocessableEntity
	case errors.CodeUnavailable:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func contentType(format report.Format) string {
	switch format {
	case report.FormatMarkdown:
		return "text/markdown; charset=utf-8"
	case report.FormatHTML:
		return "text/html; charset=utf-8"
	}
	return "text/plain; charset=utf-8"
}

func bodyError(err error, message string) error {
	if stderrors.Is(err, io.EOF) {
		return errors.InvalidInput(message + ": empty body")
	}
	var tooLarge *http.MaxBytesError
	if stderrors.As(err, &tooLarge) {
		return errors.WithCode(errors.CodeInvalidInput, err)
	}
	return errors.Wrap(errors.InvalidInput(err.Error()), message)
}
