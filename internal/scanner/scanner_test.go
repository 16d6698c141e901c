package scanner_test

import (
	"errors"
	"testing"

	"sheetfeed/internal/core"
	"sheetfeed/internal/scanner"
	"sheetfeed/internal/testutil"
)

const (
	testPath  = "/books/invoices.xlsx"
	testSheet = "Sheet1"
)

func newScanner(t *testing.T, grid [][]string) (*scanner.Scanner, *testutil.FakeSheet) {
	t.Helper()
	reader := testutil.NewFakeSheetReader()
	sheet := reader.AddSheet(testPath, testSheet, grid)
	fs := testutil.NewStubFilesystem()
	fs.SetFile(testPath, 2048, 1700000000)
	return scanner.New(reader, fs, core.NewNopLogger()), sheet
}

func TestScan(t *testing.T) {
	t.Run("header on first row", func(t *testing.T) {
		sc, _ := newScanner(t, [][]string{
			{"Тип", "Број на фактура", "Датум", "Вкупно"},
			{"Фактура", "INV-1", "2025-01-15", "100.00"},
			{"Фактура", "INV-2", "2025-01-16", "250.00"},
		})

		schema, err := sc.Scan(testPath, testSheet)
		if err != nil {
			t.Fatalf("scan: %v", err)
		}

		if schema.HeaderRow != 1 {
			t.Errorf("header row = %d, want 1", schema.HeaderRow)
		}
		if schema.FirstDataRow != 2 {
			t.Errorf("first data row = %d, want 2", schema.FirstDataRow)
		}
		if schema.LastDataRow != 3 {
			t.Errorf("last data row = %d, want 3", schema.LastDataRow)
		}
		if schema.NextFreeRow != 4 {
			t.Errorf("next free row = %d, want 4", schema.NextFreeRow)
		}
		if len(schema.Headers) != 4 {
			t.Fatalf("headers = %d, want 4", len(schema.Headers))
		}
		if schema.Headers[1].ColumnLetter != "B" || schema.Headers[1].Text != "Број на фактура" {
			t.Errorf("header B = %+v", schema.Headers[1])
		}
		if schema.FileMtime != 1700000000 {
			t.Errorf("mtime = %d, want stat value", schema.FileMtime)
		}
		if schema.FileSize != 2048 {
			t.Errorf("size = %d, want stat value", schema.FileSize)
		}
	})

	t.Run("header below a title block", func(t *testing.T) {
		sc, _ := newScanner(t, [][]string{
			{"Влезни фактури 2025"},
			{},
			{"Тип", "Број", "Датум на издавање", "Износ без ДДВ"},
			{"Фактура", "INV-1", "15/01/2025", "100"},
		})

		schema, err := sc.Scan(testPath, testSheet)
		if err != nil {
			t.Fatalf("scan: %v", err)
		}
		if schema.HeaderRow != 3 {
			t.Errorf("header row = %d, want 3", schema.HeaderRow)
		}
		if schema.FirstDataRow != 4 {
			t.Errorf("first data row = %d, want 4", schema.FirstDataRow)
		}
	})

	t.Run("unrecognized labels default to row one", func(t *testing.T) {
		sc, _ := newScanner(t, [][]string{
			{"Alpha", "Beta", "Gamma"},
			{"x", "y", "z"},
		})

		schema, err := sc.Scan(testPath, testSheet)
		if err != nil {
			t.Fatalf("scan: %v", err)
		}
		if schema.HeaderRow != 1 {
			t.Errorf("header row = %d, want fallback 1", schema.HeaderRow)
		}
	})

	t.Run("headerless sheet fails", func(t *testing.T) {
		sc, _ := newScanner(t, [][]string{})

		_, err := sc.Scan(testPath, testSheet)
		if !errors.Is(err, core.ErrEmptySheet) {
			t.Errorf("err = %v, want ErrEmptySheet", err)
		}
	})

	t.Run("header only sheet has no data rows", func(t *testing.T) {
		sc, _ := newScanner(t, [][]string{
			{"Тип", "Број", "Датум", "Вкупно"},
		})

		schema, err := sc.Scan(testPath, testSheet)
		if err != nil {
			t.Fatalf("scan: %v", err)
		}
		if schema.LastDataRow != 1 {
			t.Errorf("last data row = %d, want header row", schema.LastDataRow)
		}
		if schema.NextFreeRow != 2 {
			t.Errorf("next free row = %d, want 2", schema.NextFreeRow)
		}
	})

	t.Run("data with gaps scans past short blank runs", func(t *testing.T) {
		grid := [][]string{
			{"Тип", "Број", "Датум", "Вкупно"},
			{"Фактура", "INV-1", "2025-01-15", "100"},
			{},
			{},
			{"Фактура", "INV-2", "2025-02-20", "200"},
		}
		sc, _ := newScanner(t, grid)

		schema, err := sc.Scan(testPath, testSheet)
		if err != nil {
			t.Fatalf("scan: %v", err)
		}
		if schema.LastDataRow != 5 {
			t.Errorf("last data row = %d, want 5", schema.LastDataRow)
		}
	})

	t.Run("scan is deterministic", func(t *testing.T) {
		sc, _ := newScanner(t, [][]string{
			{"Тип", "Број", "Датум", "Вкупно"},
			{"Фактура", "INV-1", "2025-01-15", "100"},
		})

		a, err := sc.Scan(testPath, testSheet)
		if err != nil {
			t.Fatalf("first scan: %v", err)
		}
		b, err := sc.Scan(testPath, testSheet)
		if err != nil {
			t.Fatalf("second scan: %v", err)
		}

		if a.HeaderRow != b.HeaderRow || a.LastDataRow != b.LastDataRow ||
			a.NextFreeRow != b.NextFreeRow || len(a.Headers) != len(b.Headers) {
			t.Errorf("scans differ: %+v vs %+v", a, b)
		}
	})

	t.Run("missing sheet", func(t *testing.T) {
		sc, _ := newScanner(t, [][]string{{"Тип", "Број", "Датум"}})

		_, err := sc.Scan(testPath, "NoSuchSheet")
		if !errors.Is(err, core.ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		sc, _ := newScanner(t, [][]string{{"Тип", "Број", "Датум"}})

		_, err := sc.Scan("/nowhere.xlsx", testSheet)
		if !errors.Is(err, core.ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})
}

func TestScanColumnFormats(t *testing.T) {
	t.Run("template row styles are captured", func(t *testing.T) {
		sc, sheet := newScanner(t, [][]string{
			{"Тип", "Број", "Вкупно"},
			{"Фактура", "INV-1", "100.50"},
		})
		sheet.RowHeights[2] = 21.5
		sheet.SetStyle(2, 1, &core.CellStyle{
			FontName:   "Arial",
			FontSize:   10,
			FontColor:  "#333333",
			Bold:       true,
			Background: "#EFEFEF",
		})

		schema, err := sc.Scan(testPath, testSheet)
		if err != nil {
			t.Fatalf("scan: %v", err)
		}

		c := schema.Columns[0]
		if c.FontName != "Arial" || c.FontSize != 10 || !c.FontBold {
			t.Errorf("font = %+v", c)
		}
		if c.BackgroundColor != "#EFEFEF" {
			t.Errorf("background = %q", c.BackgroundColor)
		}
		if schema.RowTemplate.RowHeight != 21.5 {
			t.Errorf("row height = %v, want 21.5", schema.RowTemplate.RowHeight)
		}
		if schema.RowTemplate.TemplateRowIndex != 2 {
			t.Errorf("template row = %d, want 2", schema.RowTemplate.TemplateRowIndex)
		}
	})

	t.Run("unstyled cells fall back to defaults", func(t *testing.T) {
		sc, _ := newScanner(t, [][]string{
			{"Тип", "Број"},
			{"Фактура", "INV-1"},
		})

		schema, err := sc.Scan(testPath, testSheet)
		if err != nil {
			t.Fatalf("scan: %v", err)
		}

		c := schema.Columns[0]
		if c.FontName != "Calibri" || c.FontSize != 11 {
			t.Errorf("defaults = %+v", c)
		}
		if c.BorderStyle != "thin" || c.Alignment != "left" {
			t.Errorf("border/alignment defaults = %+v", c)
		}
	})

	t.Run("data types are inferred from the template row", func(t *testing.T) {
		sc, _ := newScanner(t, [][]string{
			{"Тип", "Датум", "Вкупно"},
			{"Фактура", "15/01/2025", "1250.50"},
		})

		schema, err := sc.Scan(testPath, testSheet)
		if err != nil {
			t.Fatalf("scan: %v", err)
		}

		if got := schema.Columns[0].DataType; got != "text" {
			t.Errorf("column A type = %q, want text", got)
		}
		if got := schema.Columns[1].DataType; got != "date" {
			t.Errorf("column B type = %q, want date", got)
		}
		if got := schema.Columns[2].DataType; got != "number" {
			t.Errorf("column C type = %q, want number", got)
		}
	})

	t.Run("alternating backgrounds detected", func(t *testing.T) {
		sc, sheet := newScanner(t, [][]string{
			{"Тип", "Број", "Вкупно"},
			{"Фактура", "INV-1", "100"},
			{"Фактура", "INV-2", "200"},
		})
		sheet.SetStyle(2, 1, &core.CellStyle{Background: "#FFFFFF"})
		sheet.SetStyle(3, 1, &core.CellStyle{Background: "#F2F2F2"})

		schema, err := sc.Scan(testPath, testSheet)
		if err != nil {
			t.Fatalf("scan: %v", err)
		}

		if !schema.RowTemplate.UseAlternatingColors {
			t.Error("want alternating colors detected")
		}
		if schema.Columns[0].BackgroundColorAlt != "#F2F2F2" {
			t.Errorf("alt background = %q, want #F2F2F2", schema.Columns[0].BackgroundColorAlt)
		}
	})

	t.Run("uniform backgrounds do not alternate", func(t *testing.T) {
		sc, sheet := newScanner(t, [][]string{
			{"Тип", "Број", "Вкупно"},
			{"Фактура", "INV-1", "100"},
			{"Фактура", "INV-2", "200"},
		})
		sheet.SetStyle(2, 1, &core.CellStyle{Background: "#FFFFFF"})
		sheet.SetStyle(3, 1, &core.CellStyle{Background: "#FFFFFF"})

		schema, err := sc.Scan(testPath, testSheet)
		if err != nil {
			t.Fatalf("scan: %v", err)
		}

		if schema.RowTemplate.UseAlternatingColors {
			t.Error("uniform backgrounds should not alternate")
		}
		if schema.Columns[0].BackgroundColorAlt != "" {
			t.Errorf("alt background = %q, want empty", schema.Columns[0].BackgroundColorAlt)
		}
	})
}
