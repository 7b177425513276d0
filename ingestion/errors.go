package ingestion

import "errors"

var (
	// ErrDocumentRepositoryRequired is returned when a document repository is not provided.
	ErrDocumentRepositoryRequired = errors.New("document repository required")

	// ErrChunkRepositoryRequired is returned when a chunk repository is not provided.
	ErrChunkRepositoryRequired = errors.New("chunk repository required")

	// ErrIndexRequired is returned when an embedding provider is configured
	// without a similarity index to receive the vectors.
	ErrIndexRequired = errors.New("similarity index required")

	// ErrEmbeddingsDisabled is returned when an embedding operation is
	// requested but no provider was configured.
	ErrEmbeddingsDisabled = errors.New("embeddings disabled: no provider configured")

	// ErrInvalidMaxAttempts is returned when maxAttempts is <= 0
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")
)
