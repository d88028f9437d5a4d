package internal

import "unicode/utf8"

// TextPrefix returns at most n runes of text, followed by "..." when text was cut.
// Used when logging user content.
func TextPrefix(text string, n int) string {
	if utf8.RuneCountInString(text) <= n {
		return text
	}
	runes := []rune(text)
	return string(runes[:n]) + "..."
}

// TruncateBytes cuts text to at most maxBytes bytes without splitting a UTF-8 sequence.
func TruncateBytes(text string, maxBytes int) string {
	if len(text) <= maxBytes {
		return text
	}
	cut := maxBytes
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}
