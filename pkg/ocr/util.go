package ocr

import (
	"strings"
	"unicode/utf8"
)

// Snippet returns a single-line shortened version of text for logging.
// The cut never splits a multi-byte rune.
func Snippet(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "…"
}
