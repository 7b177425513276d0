package search

import (
	"strings"
	"unicode"
)

// DefaultExcerptLength is the default maximum excerpt length in characters.
const DefaultExcerptLength = 200

const ellipsis = "..."

// BuildExcerpt extracts a bounded-length, context-centered window around the
// first case-insensitive occurrence of the query inside text. If the window
// does not start or end at a text boundary it is marked with an ellipsis on
// that side. When the query does not occur verbatim, the leading maxLen
// characters are returned, with a trailing ellipsis if truncated.
//
// It is a pure function of (text, query, maxLen): no state, no randomness.
// Lengths and positions are measured in runes so multi-byte text is never
// split inside a character.
func BuildExcerpt(text, query string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = DefaultExcerptLength
	}
	if text == "" {
		return ""
	}

	// Folding is done rune-by-rune: full case mapping can change rune
	// counts (U+0130, U+212A) and would shift the window against text.
	runes := []rune(text)
	match := foldRunes(strings.TrimSpace(query))
	pos := -1
	if len(match) > 0 {
		pos = runeIndex(foldRunes(text), match)
	}

	if pos < 0 {
		if len(runes) <= maxLen {
			return text
		}
		return string(runes[:maxLen]) + ellipsis
	}

	center := pos + len(match)/2
	start := center - maxLen/2
	if start < 0 {
		start = 0
	}
	end := start + maxLen
	if end > len(runes) {
		end = len(runes)
		start = end - maxLen
		if start < 0 {
			start = 0
		}
	}

	excerpt := string(runes[start:end])
	if start > 0 {
		excerpt = ellipsis + excerpt
	}
	if end < len(runes) {
		excerpt = excerpt + ellipsis
	}
	return excerpt
}

// foldRunes lowercases s one rune at a time, preserving rune count.
func foldRunes(s string) []rune {
	runes := []rune(s)
	for i, r := range runes {
		runes[i] = unicode.ToLower(r)
	}
	return runes
}

// runeIndex returns the rune offset of the first occurrence of needle
// in haystack, or -1 when absent.
func runeIndex(haystack, needle []rune) int {
	if len(needle) == 0 || len(needle) > len(haystack) {
		return -1
	}
	for i := 0; i+len(needle) <= len(haystack); i++ {
		j := 0
		for j < len(needle) && haystack[i+j] == needle[j] {
			j++
		}
		if j == len(needle) {
			return i
		}
	}
	return -1
}
