package tui

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Clean strips control characters (ANSI escapes, NUL, BEL) from agent-supplied
// text before it reaches the terminal. Invalid UTF-8 is replaced.
func Clean(s string) string {
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "�")
	}

	// Fast path: if no control chars, return as is.
	if strings.IndexFunc(s, unicode.IsControl) < 0 {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if !unicode.IsControl(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
