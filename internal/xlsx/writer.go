package xlsx

import (
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"

	"sheetfeed/internal/core"
)

// Writer implements core.RowWriter on excelize. Each append opens the file,
// writes one row, saves, then strips embedded drawings that some producers
// leave corrupt.
type Writer struct {
	logger core.Logger
}

func NewWriter(logger core.Logger) *Writer {
	return &Writer{logger: logger}
}

// AppendAt writes the values at rowNumber, copying each cell's style from
// the row above so the new row visually continues the table. The file is
// saved before returning; the caller advances its row pointer only after
// that.
func (w *Writer) AppendAt(path, sheetName string, rowNumber int, values []core.CellValue, rowHeight float64) error {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	if idx, err := f.GetSheetIndex(sheetName); err != nil || idx < 0 {
		return fmt.Errorf("sheet %q not found in %s", sheetName, path)
	}

	for _, v := range values {
		cell := v.Column + strconv.Itoa(rowNumber)
		if err := f.SetCellStr(sheetName, cell, SanitizeCellValue(v.Value)); err != nil {
			return fmt.Errorf("setting %s: %w", cell, err)
		}

		if rowNumber > 1 {
			above := v.Column + strconv.Itoa(rowNumber-1)
			if styleID, err := f.GetCellStyle(sheetName, above); err == nil && styleID != 0 {
				if err := f.SetCellStyle(sheetName, cell, cell, styleID); err != nil {
					return fmt.Errorf("styling %s: %w", cell, err)
				}
			}
		}
	}

	if rowHeight > 0 {
		if err := f.SetRowHeight(sheetName, rowNumber, rowHeight); err != nil {
			return fmt.Errorf("setting row height: %w", err)
		}
	}

	if err := f.Save(); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}

	// Post-write sanitation. The row is already durable; a failed strip is
	// not a failed append.
	if err := StripDrawings(path); err != nil {
		w.logger.Warn("drawing strip failed", "path", path, "err", err)
	}

	return nil
}
