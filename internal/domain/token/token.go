// Package token splits free text into normalized word tokens.
//
// The same function tokenizes catalog fields at train time and user queries at
// search time; matching relies on both paths producing identical output.
package token

import (
	"strings"
	"unicode"
)

// Tokenize lowercases text and splits it on every rune that is not a letter,
// digit, or underscore. Order is preserved; empty input yields an empty slice.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), isSeparator)
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if f != "" {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// Set builds a membership set from tokens.
func Set(tokens []string) map[string]struct{} {
	s := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		s[t] = struct{}{}
	}
	return s
}

func isSeparator(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
}
