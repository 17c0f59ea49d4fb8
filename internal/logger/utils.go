package logger

import "unicode/utf8"

// truncateString shortens s to at most maxLength bytes, appending "...truncated"
// when there is room for it. The cut never splits a UTF-8 sequence.
func truncateString(s string, maxLength int) string {
	if len(s) <= maxLength {
		return s
	}

	const marker = "...truncated"
	cut, suffix := maxLength-len(marker), marker
	if cut <= 0 {
		cut, suffix = maxLength, ""
	}
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + suffix
}
