// Package query implements the tag filter language used to select index
// entries: space-separated AND terms, "|" for OR, parentheses for grouping.
package query

import (
	"strings"
	"unicode"
)

// Tokenize splits s on whitespace outside double quotes. Quote characters
// are kept in the token so the parser can tell quoted literals apart.
func Tokenize(s string) []string {
	var (
		tokens  []string
		cur     strings.Builder
		started bool
		quoted  bool
	)
	for _, r := range s {
		switch {
		case r == '"':
			quoted = !quoted
			cur.WriteRune(r)
			started = true
		case unicode.IsSpace(r) && !quoted:
			if started {
				tokens = append(tokens, cur.String())
				cur.Reset()
				started = false
			}
		default:
			cur.WriteRune(r)
			started = true
		}
	}
	if started {
		tokens = append(tokens, cur.String())
	}
	return tokens
}

// isQuoted reports whether tok is wrapped in double quotes.
func isQuoted(tok string) bool {
	return len(tok) >= 2 && tok[0] == '"' && tok[len(tok)-1] == '"'
}

func unquote(tok string) string {
	if isQuoted(tok) {
		return tok[1 : len(tok)-1]
	}
	return tok
}
