package utils

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// CleanModelText normalizes free-form model output for storage: NFC
// normalization, zero-width and control character removal, and trimming.
// Line breaks are preserved since extracted text keeps its layout.
func CleanModelText(s string) string {
	if s == "" {
		return s
	}
	s = norm.NFC.String(s)
	s = removeZeroWidth(s)
	s = removeControlChars(s)
	return strings.TrimSpace(s)
}

func removeZeroWidth(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '\u200b', '\u200c', '\u200d', '\ufeff':
			return -1
		}
		return r
	}, s)
}

func removeControlChars(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' || r == '\r' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}
