package core

import "time"

// Schema is the scanned structural snapshot of one spreadsheet, attached to
// exactly one profile. It is immutable after a scan except for the row
// bookkeeping: NextFreeRow and LastDataRow advance by one after each
// successful append, without touching headers, columns or the template.
//
// All row indices are 1-based. NextFreeRow == LastDataRow+1 holds after every
// successful append.
type Schema struct {
	HeaderRow    int
	FirstDataRow int
	LastDataRow  int
	NextFreeRow  int

	TotalRows    int
	TotalColumns int

	Headers     []Header
	Columns     []ColumnFormat
	RowTemplate RowTemplate

	// Filesystem signature of the spreadsheet at scan time. The schema is
	// trusted only while the live file's mtime still matches FileMtime.
	FileSize  int64
	FileMtime int64

	ScannedAt time.Time
}

// Header is one cell of the detected header row.
// ColumnIndex is 0-based; ColumnLetter is its base-26 form (0→A, 26→AA).
type Header struct {
	ColumnIndex  int    `json:"columnIndex"`
	ColumnLetter string `json:"columnLetter"`
	Text         string `json:"text"`
}

// ColumnFormat captures the visual format of one column, copied from the
// template row during scanning. Border and alignment carry fixed defaults
// because the format reader does not expose them.
type ColumnFormat struct {
	ColumnIndex  int
	ColumnLetter string
	HeaderText   string

	FontName   string
	FontSize   float64
	FontColor  string
	FontBold   bool
	FontItalic bool

	BackgroundColor    string
	BackgroundColorAlt string // empty unless the sheet alternates row colors

	BorderStyle string
	BorderColor string
	Alignment   string

	DataType     string // "text", "number" or "date"
	NumberFormat string
	ColumnWidth  float64
}

// RowTemplate describes the visual pattern appended rows should imitate.
type RowTemplate struct {
	TemplateRowIndex     int
	RowHeight            float64
	UseAlternatingColors bool
}

// Clone returns a deep copy of the schema. The mirror hands out clones so a
// caller mutating row bookkeeping never races another reader.
func (s *Schema) Clone() *Schema {
	if s == nil {
		return nil
	}
	c := *s
	c.Headers = append([]Header(nil), s.Headers...)
	c.Columns = append([]ColumnFormat(nil), s.Columns...)
	return &c
}

// Profile is a named binding of a spreadsheet path, a sheet name and a
// field-to-column mapping. The mapping keys are column letters and the
// values are logical field keys; letter lookup is case-insensitive.
type Profile struct {
	ID            int64
	Name          string
	ExcelPath     string
	SheetName     string
	ColumnMapping map[string]string

	FileSize      int64
	FileMtime     int64
	LastScannedAt time.Time
}

// ChangeRecord is one append-only change-log entry written every time a
// profile's row pointer advances. It exists for auditing, not recovery.
type ChangeRecord struct {
	ID             int64
	ProfileID      int64
	ChangedAt      time.Time
	Reason         string
	OldNextFreeRow int
	NewNextFreeRow int
}

// Record is the field map produced by the extraction pipeline for one
// document: logical field key → extracted value.
type Record map[string]string

// CellValue is one (column letter, value) pair handed to the row writer.
type CellValue struct {
	Column string
	Value  string
}
