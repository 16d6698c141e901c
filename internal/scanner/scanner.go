// Package scanner derives a full structural schema from a spreadsheet:
// where the headers sit, what they say, where data ends, and what the rows
// look like, so appended rows can imitate the existing ones.
package scanner

import (
	"fmt"

	"sheetfeed/internal/core"
)

// Format defaults used when the underlying reader exposes no value.
const (
	defaultFontName    = "Calibri"
	defaultFontSize    = 11.0
	defaultFontColor   = "#000000"
	defaultBorderStyle = "thin"
	defaultBorderColor = "#000000"
	defaultAlignment   = "left"
)

// Scanner implements core.Scanner on top of a SheetReader and a Filesystem.
type Scanner struct {
	reader core.SheetReader
	fs     core.Filesystem
	logger core.Logger
}

func New(reader core.SheetReader, fs core.Filesystem, logger core.Logger) *Scanner {
	return &Scanner{reader: reader, fs: fs, logger: logger}
}

// Scan reads the sheet and derives the complete schema. The scan is
// read-only and deterministic: scanning an unchanged file twice yields the
// same result. Fails with core.ErrEmptySheet when no header cells exist
// within the scan bounds.
func (s *Scanner) Scan(path, sheetName string) (*core.Schema, error) {
	wb, err := s.reader.Open(path)
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	sheet, err := wb.Sheet(sheetName)
	if err != nil {
		return nil, err
	}

	cell := sheet.Cell

	headerRow := detectHeaderRow(cell)
	rawHeaders := extractHeaders(cell, headerRow)
	if len(rawHeaders) == 0 {
		return nil, fmt.Errorf("%w: %s!%s", core.ErrEmptySheet, path, sheetName)
	}

	lastDataRow := findLastDataRow(cell, headerRow)
	firstDataRow := headerRow + 1

	// The row right below the header is the formatting template; when the
	// sheet has data that row actually exists, otherwise its column formats
	// are read from whatever styling the empty row carries.
	templateRow := firstDataRow

	columns := s.analyzeColumns(sheet, rawHeaders, templateRow)
	alternating := detectAlternating(columns)
	if alternating {
		for i := range columns {
			if columns[i].BackgroundColorAlt == columns[i].BackgroundColor {
				columns[i].BackgroundColorAlt = ""
			}
		}
	} else {
		for i := range columns {
			columns[i].BackgroundColorAlt = ""
		}
	}

	headers := make([]core.Header, len(rawHeaders))
	for i, h := range rawHeaders {
		headers[i] = core.Header{ColumnIndex: h.index, ColumnLetter: h.letter, Text: h.text}
	}

	info, err := s.fs.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat after scan: %w", err)
	}

	schema := &core.Schema{
		HeaderRow:    headerRow,
		FirstDataRow: firstDataRow,
		LastDataRow:  lastDataRow,
		NextFreeRow:  lastDataRow + 1,
		TotalRows:    sheet.MaxRow(),
		TotalColumns: len(headers),
		Headers:      headers,
		Columns:      columns,
		RowTemplate: core.RowTemplate{
			TemplateRowIndex:     templateRow,
			RowHeight:            sheet.RowHeight(templateRow),
			UseAlternatingColors: alternating,
		},
		FileSize:  info.Size,
		FileMtime: info.Mtime,
	}

	s.logger.Debug("scan complete",
		"path", path,
		"sheet", sheetName,
		"headerRow", headerRow,
		"lastDataRow", lastDataRow,
		"columns", len(headers))
	return schema, nil
}

// analyzeColumns reads the template row's format and a sample value for each
// header column. The alternate background comes from the row below the
// template row; detectAlternating decides afterwards whether it counts.
func (s *Scanner) analyzeColumns(sheet core.Sheet, headers []headerCell, templateRow int) []core.ColumnFormat {
	columns := make([]core.ColumnFormat, 0, len(headers))
	for _, h := range headers {
		col := h.index + 1

		cf := core.ColumnFormat{
			ColumnIndex:  h.index,
			ColumnLetter: h.letter,
			HeaderText:   h.text,
			FontName:     defaultFontName,
			FontSize:     defaultFontSize,
			FontColor:    defaultFontColor,
			BorderStyle:  defaultBorderStyle,
			BorderColor:  defaultBorderColor,
			Alignment:    defaultAlignment,
			DataType:     DetectDataType(sheet.Cell(templateRow, col)),
		}

		if style := sheet.CellFormat(templateRow, col); style != nil {
			if style.FontName != "" {
				cf.FontName = style.FontName
			}
			if style.FontSize > 0 {
				cf.FontSize = style.FontSize
			}
			if style.FontColor != "" {
				cf.FontColor = style.FontColor
			}
			cf.FontBold = style.Bold
			cf.FontItalic = style.Italic
			cf.BackgroundColor = style.Background
			cf.NumberFormat = style.NumberFormat
		}
		if style := sheet.CellFormat(templateRow+1, col); style != nil {
			cf.BackgroundColorAlt = style.Background
		}

		columns = append(columns, cf)
	}
	return columns
}

// detectAlternating reports whether any column shows two distinct non-empty
// backgrounds between the template row and the row below it.
func detectAlternating(columns []core.ColumnFormat) bool {
	for _, c := range columns {
		if c.BackgroundColor != "" && c.BackgroundColorAlt != "" &&
			c.BackgroundColor != c.BackgroundColorAlt {
			return true
		}
	}
	return false
}
