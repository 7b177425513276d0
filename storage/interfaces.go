package storage

import (
	"context"

	"github.com/poiesic/docsearch/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	// The context passed to fn may contain transaction state.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// DocumentRepository provides operations for managing documents.
// Documents are immutable once stored; there is no update operation.
type DocumentRepository interface {
	Repository
	// AddDocument adds a document to storage.
	// For a document with ID=0, derives a content-based ID from the
	// filename and contents, so re-adding an identical document overwrites
	// rather than duplicates. Sets InsertedAt.
	// Returns the document with ID and timestamp populated.
	AddDocument(ctx context.Context, document *core.Document) (*core.Document, error)

	// GetDocument retrieves a single document by ID.
	// Returns ErrNotFound if the document doesn't exist.
	GetDocument(ctx context.Context, id core.ID) (*core.Document, error)

	// GetDocuments retrieves multiple documents by their IDs.
	// Returns only the documents that exist (no error for missing documents).
	GetDocuments(ctx context.Context, ids ...core.ID) ([]*core.Document, error)

	// ListDocuments retrieves all stored documents, ordered by ID.
	ListDocuments(ctx context.Context) ([]*core.Document, error)

	// DeleteDocument removes a document and all of its chunks.
	// Returns ErrNotFound if the document doesn't exist, and the IDs of the
	// removed chunks so callers can evict them from the similarity index.
	DeleteDocument(ctx context.Context, id core.ID) ([]core.ID, error)
}

// ChunkRepository provides operations for managing chunks and their
// embedding vectors.
type ChunkRepository interface {
	Repository
	// AddChunks adds one or more chunks to storage.
	// Generates new IDs from a sequence, so ascending chunk ID order is
	// insertion order. Sets InsertedAt/UpdatedAt timestamps.
	// Returns the chunks with generated IDs and timestamps populated.
	AddChunks(ctx context.Context, chunks ...*core.Chunk) ([]*core.Chunk, error)

	// GetChunk retrieves a single chunk by ID.
	// Returns ErrNotFound if the chunk doesn't exist.
	GetChunk(ctx context.Context, id core.ID) (*core.Chunk, error)

	// GetChunks retrieves multiple chunks by their IDs.
	// Returns only the chunks that exist (no error for missing chunks).
	GetChunks(ctx context.Context, ids ...core.ID) ([]*core.Chunk, error)

	// ListChunks retrieves all stored chunks with their optional vectors,
	// ordered by ascending ID (insertion order).
	ListChunks(ctx context.Context) ([]*core.Chunk, error)

	// GetChunksByDocument retrieves a document's chunks in ordinal order.
	GetChunksByDocument(ctx context.Context, documentId core.ID) ([]*core.Chunk, error)

	// PutVector stores the embedding vector for a chunk, replacing any
	// previously stored vector, and updates the UpdatedAt timestamp.
	// Returns ErrNotFound if the chunk doesn't exist.
	PutVector(ctx context.Context, id core.ID, vector []float32) error

	// GetVector retrieves a chunk's stored vector. An absent vector is
	// returned as nil, which is distinct from a stored zero vector.
	// Returns ErrNotFound if the chunk doesn't exist.
	GetVector(ctx context.Context, id core.ID) ([]float32, error)

	// DeleteChunksByDocument removes all chunks belonging to a document and
	// returns their IDs. Deleting a document with no chunks is not an error.
	DeleteChunksByDocument(ctx context.Context, documentId core.ID) ([]core.ID, error)
}
