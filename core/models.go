package core

//go:generate go run ../cmd/musgen

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// Document IDs are derived from content hashing; chunk IDs come from a
// database sequence so that ascending ID order matches insertion order.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Document represents a single uploaded document with its extracted text.
// Documents are immutable once stored; deletion cascades to their chunks.
type Document struct {
	Id         ID
	Filename   string
	Contents   string
	CreatedAt  time.Time // When the document was uploaded
	InsertedAt time.Time // When the record was inserted into the database
}

// Chunk is a bounded, overlapping segment of a document's text.
// It is the unit of indexing and retrieval. The Vector field is populated
// asynchronously by the embedding processor; an empty Vector means the chunk
// has not been embedded (or embedding failed) and is distinguishable from a
// stored all-zero vector by its length.
type Chunk struct {
	Id         ID
	DocumentId ID
	Ordinal    int // 0-based position within the document, contiguous
	Contents   string
	Vector     []float32
	InsertedAt time.Time
	UpdatedAt  time.Time
}

// SearchMode identifies which scoring path produced a search result.
// Semantic and lexical scores live on incompatible scales and are never
// merged into a single ranked list.
type SearchMode int

const (
	// ModeSemantic marks results ranked by cosine similarity of embeddings.
	ModeSemantic SearchMode = iota + 1
	// ModeLexical marks results ranked by the deterministic lexical scorer.
	ModeLexical
)

// SimilarityMatch represents a chunk match from vector similarity search.
type SimilarityMatch struct {
	ChunkId ID
	Score   float32
}

// SearchResult represents a ranked search result with its excerpt and
// source attribution.
type SearchResult struct {
	Chunk    *Chunk
	Score    float32
	Mode     SearchMode
	Excerpt  string
	Filename string
}
