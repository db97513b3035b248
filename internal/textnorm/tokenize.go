// Package textnorm tokenizes and cleans product text for comparison.
package textnorm

import (
	"sort"
	"strings"
	"unicode"
)

// stopwords are generic marketing and technical words that say nothing about
// which product a title describes.
var stopwords = map[string]struct{}{
	"with": {}, "for": {}, "and": {}, "the": {},
	"inch": {}, "cm": {}, "gb": {},
	"green": {}, "black": {}, "white": {}, "blue": {},
	"phone": {}, "smartphone": {}, "series": {}, "model": {}, "new": {},
}

// TokenSet is an unordered set of normalized tokens.
type TokenSet map[string]struct{}

// Tokenize lowercases text and splits it into alphanumeric runs, dropping
// single-character tokens and stopwords.
func Tokenize(text string) TokenSet {
	set := make(TokenSet)
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	for _, w := range words {
		if len([]rune(w)) <= 1 {
			continue
		}
		if _, stop := stopwords[w]; stop {
			continue
		}
		set[w] = struct{}{}
	}
	return set
}

// IsStopword reports whether the lowercased token is filtered by Tokenize.
func IsStopword(token string) bool {
	_, ok := stopwords[strings.ToLower(token)]
	return ok
}

// Has reports whether token is in the set.
func (s TokenSet) Has(token string) bool {
	_, ok := s[token]
	return ok
}

// IntersectCount returns |s ∩ other|.
func (s TokenSet) IntersectCount(other TokenSet) int {
	small, large := s, other
	if len(small) > len(large) {
		small, large = large, small
	}
	n := 0
	for t := range small {
		if large.Has(t) {
			n++
		}
	}
	return n
}

// Equal reports whether both sets hold the same tokens.
func (s TokenSet) Equal(other TokenSet) bool {
	return len(s) == len(other) && s.IntersectCount(other) == len(s)
}

// Sorted returns the tokens in lexical order.
func (s TokenSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for t := range s {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// TitleSimilarity is the fraction of the base title's tokens that also appear
// in the candidate title. It is 0 when either side tokenizes to nothing.
func TitleSimilarity(base, candidate string) float64 {
	baseTokens := Tokenize(base)
	candTokens := Tokenize(candidate)
	if len(baseTokens) == 0 || len(candTokens) == 0 {
		return 0
	}
	return float64(baseTokens.IntersectCount(candTokens)) / float64(len(baseTokens))
}
