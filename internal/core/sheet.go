package core

// SheetReader opens spreadsheets for read-only cell inspection during
// structural scanning. Implementations must not mutate the file.
type SheetReader interface {
	// Open opens a workbook. Fails with ErrNotFound when the path does not
	// exist and ErrParse when the file is not a readable workbook.
	Open(path string) (Workbook, error)
}

// Workbook is an open spreadsheet file.
type Workbook interface {
	// Sheet returns a sheet by name, or ErrNotFound.
	Sheet(name string) (Sheet, error)

	// Close releases the workbook.
	Close() error
}

// Sheet exposes cell values and format metadata. Rows and columns are
// 1-based. Reads outside the used range return empty values, not errors.
type Sheet interface {
	// Cell returns the trimmed text of a cell, "" when empty or absent.
	Cell(row, col int) string

	// CellFormat returns the visual format of a cell, or nil when the cell
	// carries no format of its own.
	CellFormat(row, col int) *CellStyle

	// MaxRow returns the last row of the sheet's used range.
	MaxRow() int

	// RowHeight returns the height of a row (the sheet default when unset).
	RowHeight(row int) float64
}

// CellStyle is the subset of cell formatting the format reader exposes.
// Borders and alignment are not available and default downstream.
type CellStyle struct {
	FontName     string
	FontSize     float64
	FontColor    string
	Bold         bool
	Italic       bool
	Background   string
	NumberFormat string
}

// RowWriter physically mutates the spreadsheet: it writes one formatted row
// at a given row number and persists the file. The write must be flushed to
// disk before AppendAt returns — the allocator advances the row pointer only
// after that. Implementations map locked/permission failures to
// ErrWriteFailed and run any post-write sanitation before returning.
type RowWriter interface {
	AppendAt(path, sheet string, rowNumber int, values []CellValue, rowHeight float64) error
}

// Scanner derives a full schema from a spreadsheet. Pure function of file
// bytes; row bookkeeping in the result reflects the file at scan time.
type Scanner interface {
	Scan(path, sheet string) (*Schema, error)
}
