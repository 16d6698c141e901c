package testutil

import (
	"sync"

	"sheetfeed/internal/core"
)

// WrittenRow records one AppendAt call.
type WrittenRow struct {
	Path      string
	Sheet     string
	RowNumber int
	Values    []core.CellValue
	RowHeight float64
}

// RecordingWriter implements core.RowWriter and records every call.
// Err, when set, fails the call without recording it.
type RecordingWriter struct {
	mu   sync.Mutex
	rows []WrittenRow

	Err error
}

func NewRecordingWriter() *RecordingWriter {
	return &RecordingWriter{}
}

func (w *RecordingWriter) AppendAt(path, sheet string, rowNumber int, values []core.CellValue, rowHeight float64) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.Err != nil {
		return w.Err
	}
	w.rows = append(w.rows, WrittenRow{
		Path:      path,
		Sheet:     sheet,
		RowNumber: rowNumber,
		Values:    append([]core.CellValue(nil), values...),
		RowHeight: rowHeight,
	})
	return nil
}

// Rows returns a copy of everything written so far.
func (w *RecordingWriter) Rows() []WrittenRow {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]WrittenRow(nil), w.rows...)
}
