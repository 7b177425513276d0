// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package chunker splits extracted document text into overlapping,
// sentence-aware segments sized by word count.
package chunker

import "strings"

const (
	// DefaultTargetWords is the default chunk size in words.
	DefaultTargetWords = 200
	// DefaultOverlapWords is the default overlap between consecutive chunks.
	DefaultOverlapWords = 40
)

// Chunker splits text into word-budgeted chunks with overlap between
// consecutive chunks. Cuts prefer sentence boundaries within a bounded
// lookback window, then whitespace word boundaries; never mid-word.
type Chunker struct {
	targetWords  int
	overlapWords int
}

// New creates a Chunker. Non-positive targetWords falls back to
// DefaultTargetWords; overlap is clamped to be smaller than the target.
func New(targetWords, overlapWords int) *Chunker {
	if targetWords <= 0 {
		targetWords = DefaultTargetWords
	}
	if overlapWords < 0 {
		overlapWords = 0
	}
	if overlapWords >= targetWords {
		overlapWords = targetWords - 1
	}
	return &Chunker{
		targetWords:  targetWords,
		overlapWords: overlapWords,
	}
}

// TargetWords returns the configured chunk size in words.
func (c *Chunker) TargetWords() int { return c.targetWords }

// OverlapWords returns the configured overlap in words.
func (c *Chunker) OverlapWords() int { return c.overlapWords }

// Normalize collapses all whitespace runs (including line endings) to single
// spaces and trims the result. Chunking always operates on normalized text.
func Normalize(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// Chunk splits text into an ordered sequence of non-empty chunk texts.
// Input shorter than the target size yields exactly one chunk equal to the
// normalized input. Empty or whitespace-only input yields a nil slice;
// callers must treat zero chunks as "nothing to index".
func (c *Chunker) Chunk(text string) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	if len(words) <= c.targetWords {
		return []string{strings.Join(words, " ")}
	}

	// Bounded lookback for sentence cuts so a pathological run of
	// terminator-free text still produces full-size chunks.
	lookback := c.targetWords / 3

	var chunks []string
	start := 0
	for start < len(words) {
		end := start + c.targetWords
		if end >= len(words) {
			end = len(words)
		} else if cut, ok := sentenceCut(words, start, end, lookback); ok {
			end = cut
		}

		chunks = append(chunks, strings.Join(words[start:end], " "))
		if end == len(words) {
			break
		}

		next := end - c.overlapWords
		if next <= start {
			// A sentence cut shrank the chunk below the overlap; step
			// forward anyway so chunking always terminates.
			next = start + 1
		}
		start = next
	}
	return chunks
}

// sentenceCut scans backwards from end within the lookback window for a word
// that terminates a sentence, returning the cut position just after it.
func sentenceCut(words []string, start, end, lookback int) (int, bool) {
	lo := end - lookback
	if lo <= start {
		lo = start + 1
	}
	for i := end; i >= lo; i-- {
		if endsSentence(words[i-1]) {
			return i, true
		}
	}
	return 0, false
}

// endsSentence reports whether a word ends with a sentence terminator,
// allowing trailing closing quotes or brackets after the terminator.
func endsSentence(word string) bool {
	word = strings.TrimRight(word, `"')]`)
	if word == "" {
		return false
	}
	switch word[len(word)-1] {
	case '.', '!', '?':
		return true
	}
	return false
}
