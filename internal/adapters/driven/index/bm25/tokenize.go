package bm25

import (
	"strings"
	"unicode"
)

// Tokenize lower-cases text and splits it on every rune that is not a
// letter or a digit.
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// queryTerms tokenizes a query and drops repeated terms, keeping first-seen order.
func queryTerms(query string) []string {
	tokens := Tokenize(query)
	seen := make(map[string]struct{}, len(tokens))
	terms := tokens[:0]
	for _, t := range tokens {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		terms = append(terms, t)
	}
	return terms
}
