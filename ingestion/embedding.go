package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/poiesic/docsearch/ai"
	"github.com/poiesic/docsearch/core"
	"github.com/poiesic/docsearch/index"
	"github.com/poiesic/docsearch/storage"
)

const (
	defaultEmbedTimeout = 30 * time.Second
	defaultMaxAttempts  = 3
	defaultRetryDelay   = 500 * time.Millisecond
)

// embeddingProcessor generates vectors for chunks and publishes them to the
// similarity index. A chunk whose embedding fails stays vectorless and is
// still reachable through lexical search.
type embeddingProcessor struct {
	chunkRepository storage.ChunkRepository
	idx             *index.Index
	embedder        ai.Embedder
	embedTimeout    time.Duration
	maxAttempts     int
	retryDelay      time.Duration
	logger          *slog.Logger
}

// newEmbeddingProcessor creates a new embedding processor.
func newEmbeddingProcessor(chunkRepository storage.ChunkRepository, idx *index.Index, embedder ai.Embedder, embedTimeout time.Duration, logger *slog.Logger) (*embeddingProcessor, error) {
	if chunkRepository == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if idx == nil {
		return nil, ErrIndexRequired
	}
	if embedder == nil {
		return nil, fmt.Errorf("embedder required")
	}
	if embedTimeout <= 0 {
		embedTimeout = defaultEmbedTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &embeddingProcessor{
		chunkRepository: chunkRepository,
		idx:             idx,
		embedder:        embedder,
		embedTimeout:    embedTimeout,
		maxAttempts:     defaultMaxAttempts,
		retryDelay:      defaultRetryDelay,
		logger:          logger.With("processor", "embeddings"),
	}, nil
}

// embedOne embeds a single text and publishes the vector for the chunk.
func (ep *embeddingProcessor) embedOne(ctx context.Context, chunkId core.ID, text string) error {
	var vector []float32
	err := RetryWithBackoff(ctx, func() error {
		embedCtx, cancel := context.WithTimeout(ctx, ep.embedTimeout)
		defer cancel()

		var embedErr error
		vector, embedErr = ep.embedder.EmbedText(embedCtx, text)
		return embedErr
	}, ep.maxAttempts, ep.retryDelay)
	if err != nil {
		ep.logger.Error("error generating embedding", "chunkId", chunkId, "err", err)
		return err
	}

	if err := ep.chunkRepository.PutVector(ctx, chunkId, vector); err != nil {
		return err
	}
	ep.idx.Upsert(chunkId, vector)
	return nil
}

// process generates embeddings for the specified chunks.
func (ep *embeddingProcessor) process(ctx context.Context, ids ...core.ID) error {
	ep.logger.Info("processing chunks for embeddings", "chunks", len(ids))

	slices.Sort(ids)

	chunks, err := ep.chunkRepository.GetChunks(ctx, ids...)
	if err != nil {
		ep.logger.Error("error retrieving chunks", "err", err)
		return err
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Contents
	}

	ep.logger.Debug("generating embeddings for chunks", "chunks", len(texts))

	var embeddings [][]float32
	err = RetryWithBackoff(ctx, func() error {
		embedCtx, cancel := context.WithTimeout(ctx, ep.embedTimeout)
		defer cancel()

		var embedErr error
		embeddings, embedErr = ep.embedder.EmbedTexts(embedCtx, texts)
		return embedErr
	}, ep.maxAttempts, ep.retryDelay)
	if err != nil {
		ep.logger.Error("error generating embeddings", "err", err)
		return err
	}

	if len(embeddings) != len(chunks) {
		return fmt.Errorf("embedding result mismatch. expected %d, received %d", len(chunks), len(embeddings))
	}

	for i, chunk := range chunks {
		if err := ep.chunkRepository.PutVector(ctx, chunk.Id, embeddings[i]); err != nil {
			ep.logger.Error("error storing vector", "chunkId", chunk.Id, "err", err)
			continue
		}
		ep.idx.Upsert(chunk.Id, embeddings[i])
	}

	return nil
}
