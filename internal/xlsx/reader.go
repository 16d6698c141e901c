// Package xlsx adapts the excelize library to the sheet reader and row
// writer contracts. Everything format-specific about .xlsx files lives here.
package xlsx

import (
	"fmt"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"

	"sheetfeed/internal/core"
)

// Reader implements core.SheetReader on excelize.
type Reader struct{}

func NewReader() *Reader { return &Reader{} }

func (r *Reader) Open(path string) (core.Workbook, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s", core.ErrNotFound, path)
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", core.ErrParse, path, err)
	}
	return &workbook{f: f}, nil
}

type workbook struct {
	f *excelize.File
}

func (w *workbook) Sheet(name string) (core.Sheet, error) {
	idx, err := w.f.GetSheetIndex(name)
	if err != nil || idx < 0 {
		return nil, fmt.Errorf("%w: sheet %q", core.ErrNotFound, name)
	}

	// One bulk read; Cell() then never touches the zip again.
	rows, err := w.f.GetRows(name)
	if err != nil {
		return nil, fmt.Errorf("%w: reading sheet %q: %v", core.ErrParse, name, err)
	}

	return &sheet{f: w.f, name: name, rows: rows}, nil
}

func (w *workbook) Close() error {
	return w.f.Close()
}

type sheet struct {
	f    *excelize.File
	name string
	rows [][]string
}

func (s *sheet) Cell(row, col int) string {
	if row < 1 || row > len(s.rows) {
		return ""
	}
	r := s.rows[row-1]
	if col < 1 || col > len(r) {
		return ""
	}
	return strings.TrimSpace(r[col-1])
}

func (s *sheet) MaxRow() int {
	return len(s.rows)
}

func (s *sheet) RowHeight(row int) float64 {
	h, err := s.f.GetRowHeight(s.name, row)
	if err != nil {
		return 0
	}
	return h
}

func (s *sheet) CellFormat(row, col int) *core.CellStyle {
	cellName, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return nil
	}
	styleID, err := s.f.GetCellStyle(s.name, cellName)
	if err != nil || styleID == 0 {
		return nil
	}
	style, err := s.f.GetStyle(styleID)
	if err != nil || style == nil {
		return nil
	}

	cs := &core.CellStyle{}
	if style.Font != nil {
		cs.FontName = style.Font.Family
		cs.FontSize = style.Font.Size
		cs.FontColor = normalizeColor(style.Font.Color)
		cs.Bold = style.Font.Bold
		cs.Italic = style.Font.Italic
	}
	if style.Fill.Type == "pattern" && style.Fill.Pattern != 0 && len(style.Fill.Color) > 0 {
		cs.Background = normalizeColor(style.Fill.Color[0])
	}
	if style.CustomNumFmt != nil {
		cs.NumberFormat = *style.CustomNumFmt
	}
	return cs
}

// normalizeColor turns excelize ARGB hex values into #RRGGBB form.
func normalizeColor(c string) string {
	c = strings.TrimPrefix(c, "#")
	if len(c) == 8 {
		c = c[2:]
	}
	if c == "" {
		return ""
	}
	return "#" + strings.ToUpper(c)
}
