package sheet

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// RawSheet is the uniform tabular shape every ingest path produces: one
// header row plus ordered data rows of untyped string cells. It only lives
// for the duration of a single pipeline run.
type RawSheet struct {
	Name   string
	Header []string
	Rows   [][]string
}

// Cell returns the cell at the given row and column, or "" when the row is
// ragged and the column does not exist.
func (s RawSheet) Cell(row, col int) string {
	if row < 0 || row >= len(s.Rows) {
		return ""
	}
	r := s.Rows[row]
	if col < 0 || col >= len(r) {
		return ""
	}
	return r[col]
}

// Row returns a copy of the given data row, or nil when out of range.
func (s RawSheet) Row(row int) []string {
	if row < 0 || row >= len(s.Rows) {
		return nil
	}
	out := make([]string, len(s.Rows[row]))
	copy(out, s.Rows[row])
	return out
}

// FromExcel reads the first worksheet of an xlsx stream into a RawSheet.
// The first row containing any non-blank cell becomes the header; everything
// after it is data.
func FromExcel(r io.Reader) (RawSheet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return RawSheet{}, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return RawSheet{}, fmt.Errorf("workbook contains no worksheets")
	}
	name := sheets[0]

	rows, err := f.GetRows(name)
	if err != nil {
		return RawSheet{}, fmt.Errorf("failed to read worksheet %q: %w", name, err)
	}

	headerIdx := -1
	for i, row := range rows {
		if !rowIsBlank(row) {
			headerIdx = i
			break
		}
	}
	if headerIdx == -1 {
		return RawSheet{}, fmt.Errorf("worksheet %q is empty", name)
	}

	out := RawSheet{Name: name, Header: rows[headerIdx]}
	for _, row := range rows[headerIdx+1:] {
		if rowIsBlank(row) {
			continue
		}
		out.Rows = append(out.Rows, row)
	}
	return out, nil
}

func rowIsBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
