package scanner

import "testing"

func TestColumnLetter(t *testing.T) {
	cases := []struct {
		index int
		want  string
	}{
		{0, "A"},
		{1, "B"},
		{25, "Z"},
		{26, "AA"},
		{27, "AB"},
		{51, "AZ"},
		{52, "BA"},
		{701, "ZZ"},
		{702, "AAA"},
	}

	for _, c := range cases {
		if got := ColumnLetter(c.index); got != c.want {
			t.Errorf("ColumnLetter(%d) = %q, want %q", c.index, got, c.want)
		}
	}
}

func TestDetectDataType(t *testing.T) {
	cases := []struct {
		sample string
		want   string
	}{
		{"1250.50", "number"},
		{"1250,50", "number"},
		{"-3", "number"},
		{"0", "number"},
		{"15/01/2025", "date"},
		{"2025-01-15", "date"},
		{"INV-1", "text"}, // too few digits for a date
		{"Фактура", "text"},
		{"", "text"},
		{"  ", "text"},
		{"a/b", "text"},
	}

	for _, c := range cases {
		if got := DetectDataType(c.sample); got != c.want {
			t.Errorf("DetectDataType(%q) = %q, want %q", c.sample, got, c.want)
		}
	}
}

func TestExtractHeadersStopsAfterBlankRun(t *testing.T) {
	grid := map[[2]int]string{
		{1, 1}: "Тип",
		{1, 2}: "Број",
		// cols 3 and 4 blank: a short gap, scan continues
		{1, 5}: "Вкупно",
		// cols 6-8 blank: stop run
		{1, 9}: "Unreachable",
	}
	cell := func(row, col int) string { return grid[[2]int{row, col}] }

	headers := extractHeaders(cell, 1)
	if len(headers) != 3 {
		t.Fatalf("headers = %d, want 3", len(headers))
	}
	if headers[2].letter != "E" || headers[2].text != "Вкупно" {
		t.Errorf("last header = %+v, want E/Вкупно", headers[2])
	}
}

func TestFindLastDataRowStopsAfterBlankRun(t *testing.T) {
	cell := func(row, col int) string {
		if col != 1 {
			return ""
		}
		switch {
		case row == 2 || row == 3:
			return "data"
		case row == 500:
			// Past the blank-run cutoff; never reached.
			return "orphan"
		default:
			return ""
		}
	}

	if got := findLastDataRow(cell, 1); got != 3 {
		t.Errorf("last data row = %d, want 3", got)
	}
}
