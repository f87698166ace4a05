package repl

import "unicode/utf8"

// isWordBoundary reports whether r ends a completable name. Names are
// letters, digits and underscores.
func isWordBoundary(r rune) bool {
	switch r {
	case '.', ' ', '\t', '$', '@',
		'(', ')', '[', ']', '{', '}',
		'+', '-', '*', '/', '%', '^', '!',
		'<', '>', '=', '&', '|', ',', '?', ':', ';', '"', '\'':
		return true
	}
	return false
}

// wordBounds returns the word around cursor and its byte offsets in input.
func wordBounds(input string, cursor int) (word string, start, end int) {
	cursor = min(max(cursor, 0), len(input))
	start = cursor
	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if isWordBoundary(r) {
			break
		}
		start -= size
	}
	end = cursor
	for end < len(input) {
		r, size := utf8.DecodeRuneInString(input[end:])
		if isWordBoundary(r) {
			break
		}
		end += size
	}
	return input[start:end], start, end
}
