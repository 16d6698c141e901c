package scanner

import (
	"strconv"
	"strings"
)

// Scan bounds. The scanner never reads past these, so a pathological file
// cannot make a scan unbounded.
const (
	headerSearchRows = 20
	headerSearchCols = 20

	headerMaxCols          = 50
	headerBlankStop        = 3
	headerKeywordThreshold = 3

	dataSearchMaxRows = 10000
	dataSearchCols    = 20
	dataBlankRowStop  = 100
)

// headerKeywords are the header-cell fragments the detector counts, covering
// the Macedonian and English labels invoice templates actually use. Matching
// is lowercase substring.
var headerKeywords = []string{
	"број", "number",
	"датум", "date",
	"продавач", "seller",
	"купувач", "buyer",
	"вкупно", "total",
	"износ", "amount",
	"тип", "type",
	"опис", "description",
	"ддв", "vat", "tax",
}

// cellAt reads a single trimmed cell value, 1-based.
type cellAt func(row, col int) string

// detectHeaderRow finds the first row within the search window whose cells
// match at least headerKeywordThreshold keywords. Falls back to row 1 so a
// sheet with unrecognized labels still scans.
func detectHeaderRow(cell cellAt) int {
	for row := 1; row <= headerSearchRows; row++ {
		hits := 0
		for col := 1; col <= headerSearchCols; col++ {
			v := strings.ToLower(cell(row, col))
			if v == "" {
				continue
			}
			for _, kw := range headerKeywords {
				if strings.Contains(v, kw) {
					hits++
					break
				}
			}
		}
		if hits >= headerKeywordThreshold {
			return row
		}
	}
	return 1
}

// extractHeaders walks the header row left to right and collects non-blank
// cells, stopping after headerBlankStop consecutive blanks. Gaps shorter
// than the stop run are skipped, not recorded.
func extractHeaders(cell cellAt, headerRow int) []headerCell {
	var headers []headerCell
	blanks := 0
	for col := 1; col <= headerMaxCols; col++ {
		v := cell(headerRow, col)
		if v == "" {
			blanks++
			if blanks >= headerBlankStop {
				break
			}
			continue
		}
		blanks = 0
		headers = append(headers, headerCell{
			index:  col - 1,
			letter: ColumnLetter(col - 1),
			text:   v,
		})
	}
	return headers
}

type headerCell struct {
	index  int
	letter string
	text   string
}

// findLastDataRow scans downward from the header row for the last row with
// any non-blank cell in the first dataSearchCols columns. A run of
// dataBlankRowStop blank rows ends the scan early. Returns headerRow when
// no data exists at all.
func findLastDataRow(cell cellAt, headerRow int) int {
	last := headerRow
	blankRun := 0
	for row := headerRow + 1; row <= dataSearchMaxRows; row++ {
		empty := true
		for col := 1; col <= dataSearchCols; col++ {
			if cell(row, col) != "" {
				empty = false
				break
			}
		}
		if empty {
			blankRun++
			if blankRun >= dataBlankRowStop {
				break
			}
			continue
		}
		blankRun = 0
		last = row
	}
	return last
}

// ColumnLetter converts a 0-based column index to its spreadsheet letter
// form: 0→A, 25→Z, 26→AA, 701→ZZ.
func ColumnLetter(index int) string {
	letter := ""
	n := index
	for {
		letter = string(rune('A'+n%26)) + letter
		n = n/26 - 1
		if n < 0 {
			break
		}
	}
	return letter
}

// DetectDataType classifies a sample cell value. A value that parses as a
// float is a number; otherwise a value with a / or - separator and at least
// four digits is treated as a date; everything else is text.
func DetectDataType(sample string) string {
	s := strings.TrimSpace(sample)
	if s == "" {
		return "text"
	}
	if _, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64); err == nil {
		return "number"
	}
	if strings.ContainsAny(s, "/-") && digitCount(s) >= 4 {
		return "date"
	}
	return "text"
}

func digitCount(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}
