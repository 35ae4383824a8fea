package parser

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Column names of the time tracker's detailed report.
const (
	ColumnTask   = "Entrada de tempo"
	ColumnLabels = "Etiquetas"
)

var (
	ErrMissingColumn = errors.New("missing required column")
	ErrEmptyTable    = errors.New("table has no header row")

	dateColumnPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// Row is one data row: task text, label text and the duration cell of each
// date column.
type Row struct {
	Task   string
	Labels string
	Cells  map[string]string
}

// Table is a report with its date columns in header order.
type Table struct {
	Dates []string
	Rows  []Row
}

// ReadCSV parses the CSV report.
func ReadCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return buildTable(records)
}

// ReadXLSX parses the first sheet of an XLSX report.
func ReadXLSX(r io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyTable
	}
	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return buildTable(records)
}

// readTable picks the reader by file extension.
func readTable(f File) (*Table, error) {
	switch f.Ext() {
	case ".xlsx", ".xlsm":
		return ReadXLSX(bytes.NewReader(f.Data))
	default:
		return ReadCSV(bytes.NewReader(f.Data))
	}
}

func buildTable(records [][]string) (*Table, error) {
	if len(records) == 0 {
		return nil, ErrEmptyTable
	}

	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	taskCol, labelCol := -1, -1
	t := &Table{}
	dateCols := map[int]string{}
	for i, h := range header {
		switch {
		case h == ColumnTask:
			taskCol = i
		case h == ColumnLabels:
			labelCol = i
		case dateColumnPattern.MatchString(h):
			t.Dates = append(t.Dates, h)
			dateCols[i] = h
		}
	}
	if taskCol < 0 {
		return nil, fmt.Errorf("%w: %q", ErrMissingColumn, ColumnTask)
	}
	if labelCol < 0 {
		return nil, fmt.Errorf("%w: %q", ErrMissingColumn, ColumnLabels)
	}

	cell := func(rec []string, i int) string {
		if i < len(rec) {
			return strings.TrimSpace(rec[i])
		}
		return ""
	}

	for _, rec := range records[1:] {
		if isBlank(rec) {
			continue
		}
		row := Row{
			Task:   cell(rec, taskCol),
			Labels: cell(rec, labelCol),
			Cells:  make(map[string]string, len(dateCols)),
		}
		for i, date := range dateCols {
			row.Cells[date] = cell(rec, i)
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

func isBlank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
