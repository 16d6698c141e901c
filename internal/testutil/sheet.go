package testutil

import (
	"fmt"
	"strings"

	"sheetfeed/internal/core"
)

// FakeSheetReader serves in-memory grids as workbooks, keyed by path.
type FakeSheetReader struct {
	workbooks map[string]*FakeWorkbook

	// OpenErr, when set, fails every Open call.
	OpenErr error
}

func NewFakeSheetReader() *FakeSheetReader {
	return &FakeSheetReader{workbooks: make(map[string]*FakeWorkbook)}
}

// AddSheet registers a sheet for a path, creating the workbook on first use.
func (r *FakeSheetReader) AddSheet(path, sheetName string, grid [][]string) *FakeSheet {
	wb, ok := r.workbooks[path]
	if !ok {
		wb = &FakeWorkbook{sheets: make(map[string]*FakeSheet)}
		r.workbooks[path] = wb
	}
	s := &FakeSheet{grid: grid, RowHeights: make(map[int]float64), Styles: make(map[string]*core.CellStyle)}
	wb.sheets[sheetName] = s
	return s
}

func (r *FakeSheetReader) Open(path string) (core.Workbook, error) {
	if r.OpenErr != nil {
		return nil, r.OpenErr
	}
	wb, ok := r.workbooks[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrNotFound, path)
	}
	return wb, nil
}

type FakeWorkbook struct {
	sheets map[string]*FakeSheet
}

func (w *FakeWorkbook) Sheet(name string) (core.Sheet, error) {
	s, ok := w.sheets[name]
	if !ok {
		return nil, fmt.Errorf("%w: sheet %q", core.ErrNotFound, name)
	}
	return s, nil
}

func (w *FakeWorkbook) Close() error { return nil }

// FakeSheet is a grid-backed sheet. Cells are addressed 1-based like the
// real reader; RowHeights and Styles can be populated per test.
type FakeSheet struct {
	grid       [][]string
	RowHeights map[int]float64
	Styles     map[string]*core.CellStyle // key "row:col"
}

func (s *FakeSheet) Cell(row, col int) string {
	if row < 1 || row > len(s.grid) {
		return ""
	}
	r := s.grid[row-1]
	if col < 1 || col > len(r) {
		return ""
	}
	return strings.TrimSpace(r[col-1])
}

func (s *FakeSheet) CellFormat(row, col int) *core.CellStyle {
	return s.Styles[fmt.Sprintf("%d:%d", row, col)]
}

// SetStyle attaches a style to one cell.
func (s *FakeSheet) SetStyle(row, col int, style *core.CellStyle) {
	s.Styles[fmt.Sprintf("%d:%d", row, col)] = style
}

func (s *FakeSheet) MaxRow() int { return len(s.grid) }

func (s *FakeSheet) RowHeight(row int) float64 { return s.RowHeights[row] }
