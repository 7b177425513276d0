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


// Package index provides the in-memory cosine similarity index over chunk
// embedding vectors.
package index

import (
	"log/slog"
	"math"
	"sort"
	"sync"

	"github.com/poiesic/docsearch/core"
)

// DefaultMinSimilarity filters out near-zero matches before ranking.
const DefaultMinSimilarity = 0.1

type entry struct {
	id     core.ID
	vector []float32
	norm   float32
}

// Index holds chunk vectors in memory and computes nearest matches to a
// query vector by cosine similarity.
//
// Entries keep their first-insertion position, which makes tie-breaks on
// equal scores deterministic: earlier-inserted chunks rank first. Upserting
// an existing chunk replaces its vector in place (last write wins) without
// changing its position. All methods are safe for concurrent use.
type Index struct {
	mu        sync.RWMutex
	threshold float32
	entries   []entry
	position  map[core.ID]int
	logger    *slog.Logger
}

// Option configures an Index.
type Option func(*Index) error

// WithThreshold sets the minimum similarity a match must reach to be
// returned. Default is DefaultMinSimilarity.
func WithThreshold(threshold float32) Option {
	return func(idx *Index) error {
		if threshold < -1 || threshold > 1 {
			return ErrInvalidThreshold
		}
		idx.threshold = threshold
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(idx *Index) error {
		if logger == nil {
			logger = slog.Default()
		}
		idx.logger = logger
		return nil
	}
}

// New creates an empty similarity index.
func New(opts ...Option) (*Index, error) {
	idx := &Index{
		threshold: DefaultMinSimilarity,
		position:  make(map[core.ID]int),
		logger:    slog.Default().With("component", "similarity-index"),
	}
	for _, opt := range opts {
		if err := opt(idx); err != nil {
			return nil, err
		}
	}
	return idx, nil
}

// Upsert stores the vector for a chunk. The vector is copied, so callers may
// reuse the slice. Empty vectors are ignored: a chunk without an embedding
// never participates in similarity queries.
func (idx *Index) Upsert(id core.ID, vector []float32) {
	if len(vector) == 0 {
		return
	}

	v := make([]float32, len(vector))
	copy(v, vector)
	e := entry{id: id, vector: v, norm: norm(v)}

	idx.mu.Lock()
	defer idx.mu.Unlock()
	if pos, ok := idx.position[id]; ok {
		idx.entries[pos] = e
		return
	}
	idx.position[id] = len(idx.entries)
	idx.entries = append(idx.entries, e)
}

// Remove drops the vectors for the given chunk IDs. Unknown IDs are ignored.
func (idx *Index) Remove(ids ...core.ID) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	drop := make(map[core.ID]bool, len(ids))
	for _, id := range ids {
		if _, ok := idx.position[id]; ok {
			drop[id] = true
		}
	}
	if len(drop) == 0 {
		return
	}

	kept := idx.entries[:0]
	for _, e := range idx.entries {
		if !drop[e.id] {
			kept = append(kept, e)
		}
	}
	idx.entries = kept
	idx.position = make(map[core.ID]int, len(kept))
	for i, e := range kept {
		idx.position[e.id] = i
	}
}

// Len returns the number of indexed chunks.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.entries)
}

// Query returns the top-k chunks by descending cosine similarity to the
// query vector, filtered by the minimum-similarity threshold. Ties are
// broken by chunk insertion order, earlier first. Chunks whose stored
// vector has a different dimensionality are treated as non-matches, not
// errors. k <= 0 means no limit.
func (idx *Index) Query(vector []float32, k int) []core.SimilarityMatch {
	qnorm := norm(vector)
	if qnorm == 0 {
		return nil
	}

	idx.mu.RLock()
	var matches []core.SimilarityMatch
	for _, e := range idx.entries {
		if len(e.vector) != len(vector) {
			idx.logger.Debug("dimension mismatch, skipping chunk",
				"chunkId", e.id, "stored", len(e.vector), "query", len(vector))
			continue
		}
		score := cosineWithNorms(vector, e.vector, qnorm, e.norm)
		if score >= idx.threshold {
			matches = append(matches, core.SimilarityMatch{ChunkId: e.id, Score: score})
		}
	}
	idx.mu.RUnlock()

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if k > 0 && len(matches) > k {
		matches = matches[:k]
	}
	return matches
}

// Cosine computes the cosine similarity dot(a,b) / (||a|| * ||b||).
// It is defined as 0 when either vector is all-zero or when the
// dimensionalities differ, so a degenerate vector is a non-match rather
// than an error. The result is always finite and within [-1, 1].
func Cosine(a, b []float32) float32 {
	if len(a) != len(b) {
		return 0
	}
	return cosineWithNorms(a, b, norm(a), norm(b))
}

func cosineWithNorms(a, b []float32, normA, normB float32) float32 {
	if normA == 0 || normB == 0 {
		return 0
	}
	var dot float32
	for i := range a {
		dot += a[i] * b[i]
	}
	score := dot / (normA * normB)
	// Accumulated float error can push the ratio slightly outside [-1, 1].
	if score > 1 {
		score = 1
	}
	if score < -1 {
		score = -1
	}
	if math.IsNaN(float64(score)) {
		return 0
	}
	return score
}

func norm(v []float32) float32 {
	var sum float32
	for _, x := range v {
		sum += x * x
	}
	return float32(math.Sqrt(float64(sum)))
}
