// Package textutil holds the whitespace tokenizer shared by the resolver and
// the context builder.
package textutil

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

type Token struct {
	Start int
	End   int
	Text  string
	// Norm is lower case with surrounding punctuation removed.
	Norm string
}

// Tokenize splits on whitespace and keeps byte offsets into s.
func Tokenize(s string) []Token {
	var tokens []Token
	start := -1
	for i, r := range s {
		if unicode.IsSpace(r) {
			if start >= 0 {
				tokens = append(tokens, newToken(s, start, i))
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		tokens = append(tokens, newToken(s, start, len(s)))
	}
	return tokens
}

func newToken(s string, start, end int) Token {
	text := s[start:end]
	return Token{Start: start, End: end, Text: text, Norm: Normalize(text)}
}

// Normalize lower-cases w and trims punctuation and a trailing possessive.
func Normalize(w string) string {
	w = strings.TrimFunc(w, func(r rune) bool { return unicode.IsPunct(r) || unicode.IsSymbol(r) })
	w = strings.ToLower(w)
	for _, suffix := range []string{"'s", "’s"} {
		if strings.HasSuffix(w, suffix) && len(w) > len(suffix) {
			w = strings.TrimSuffix(w, suffix)
		}
	}
	return w
}

// Overlapping returns the index range [first, last] of tokens touching [start, end).
// ok is false when no token overlaps.
func Overlapping(tokens []Token, start, end int) (first, last int, ok bool) {
	first, last = -1, -1
	for i, t := range tokens {
		if t.Start < end && start < t.End {
			if first < 0 {
				first = i
			}
			last = i
		}
	}
	return first, last, first >= 0
}

// IsWordChar reports whether the rune at byte offset i in s is a letter or digit.
func IsWordChar(s string, i int) bool {
	if i < 0 || i >= len(s) {
		return false
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// IsWordCharBefore reports whether the rune ending at byte offset i is a letter or digit.
func IsWordCharBefore(s string, i int) bool {
	if i <= 0 || i > len(s) {
		return false
	}
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
