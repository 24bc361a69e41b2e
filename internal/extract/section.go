package extract

import (
	"path/filepath"
	"strconv"
	"strings"
)

// SectionNumber derives a section number from every decimal digit in the
// file stem, concatenated: "dep12.docx" and "section_012_a.docx" are both
// 12. A stem without digits has no section.
func SectionNumber(path string) (int, bool) {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))

	var digits strings.Builder
	for _, r := range stem {
		if d, ok := digitValue(r); ok {
			digits.WriteByte(byte('0' + d))
		}
	}
	if digits.Len() == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(digits.String())
	if err != nil {
		return 0, false
	}
	return n, true
}

func digitValue(r rune) (int, bool) {
	switch {
	case r >= '0' && r <= '9':
		return int(r - '0'), true
	case r >= '٠' && r <= '٩':
		return int(r - '٠'), true
	case r >= '۰' && r <= '۹':
		return int(r - '۰'), true
	}
	return 0, false
}
