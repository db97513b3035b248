package textnorm

import "strings"

// Clean collapses all whitespace runs (including newlines) into single spaces.
func Clean(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// FirstWords returns the first n whitespace-separated words of text.
func FirstWords(text string, n int) string {
	words := strings.Fields(text)
	if len(words) > n {
		words = words[:n]
	}
	return strings.Join(words, " ")
}
