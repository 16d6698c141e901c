package xlsx

import "strings"

// SanitizeCellValue drops the control characters XML forbids in cell text.
// Tabs and newlines survive; everything else below 0x20, and DEL, is
// removed. XML entity escaping is the library's job, not ours.
func SanitizeCellValue(s string) string {
	if !needsSanitize(s) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if isForbidden(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func needsSanitize(s string) bool {
	for _, r := range s {
		if isForbidden(r) {
			return true
		}
	}
	return false
}

func isForbidden(r rune) bool {
	if r == '\t' || r == '\n' || r == '\r' {
		return false
	}
	return r < 0x20 || r == 0x7F
}
