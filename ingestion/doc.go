// Package ingestion provides pipeline orchestration for processing documents.
//
// The Pipeline type manages the ingestion workflow for documents, including:
//   - Splitting text into sentence-aware chunks
//   - Adding documents and chunks to storage
//   - Generating embeddings asynchronously and indexing them
//
// Embedding is performed concurrently using a worker pool. Errors during
// async processing are logged but do not fail the ingestion operation, so
// a failed embedding leaves the chunk searchable through the lexical path.
package ingestion
