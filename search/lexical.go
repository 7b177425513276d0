package search

import (
	"math"
	"strings"
)

// Scoring weights for the lexical path. The exact-phrase bonus dominates so
// verbatim query hits always outrank scattered token matches; the bigram
// bonus sits between a phrase hit and single-token occurrence counts.
const (
	phraseBonus = 10.0
	bigramBonus = 2.0
	minTokenLen = 3
)

// LexicalScore computes a deterministic, non-negative relevance score for a
// chunk's text against a query, without embeddings.
//
// Components:
//   - exact-phrase match of the full query (case-insensitive): fixed bonus
//   - each query token of length >= minTokenLen matched as a whole word:
//     its occurrence count
//   - adjacent query-token bigrams found verbatim: fixed bonus per occurrence
//
// The raw sum is normalized by the square root of the chunk's word count to
// avoid bias toward longer chunks. A score of exactly 0 means "no evidence
// of relevance"; callers must exclude such chunks from results. Scores are
// comparable across chunks for the same query only.
func LexicalScore(query, text string) float32 {
	textTokens := tokenize(text)
	if len(textTokens) == 0 {
		return 0
	}

	queryPhrase := strings.ToLower(strings.TrimSpace(query))
	if queryPhrase == "" {
		return 0
	}
	textLower := strings.ToLower(text)

	var raw float64
	if strings.Contains(textLower, queryPhrase) {
		raw += phraseBonus
	}

	counts := make(map[string]int, len(textTokens))
	for _, token := range textTokens {
		counts[token]++
	}

	queryTokens := tokenize(query)
	for _, token := range queryTokens {
		if len(token) < minTokenLen {
			continue
		}
		raw += float64(counts[token])
	}

	for i := 0; i+1 < len(queryTokens); i++ {
		bigram := queryTokens[i] + " " + queryTokens[i+1]
		raw += bigramBonus * float64(strings.Count(textLower, bigram))
	}

	if raw == 0 {
		return 0
	}
	return float32(raw / math.Sqrt(float64(len(textTokens))))
}

// tokenize splits text into words, lowercases, and trims punctuation.
func tokenize(text string) []string {
	words := strings.Fields(text)
	tokens := make([]string, 0, len(words))
	for _, word := range words {
		cleaned := strings.ToLower(strings.Trim(word, ".,!?;:'\"-()[]{}"))
		if cleaned != "" {
			tokens = append(tokens, cleaned)
		}
	}
	return tokens
}
