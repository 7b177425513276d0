package ingestion

import (
	"context"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/docsearch/ai"
	"github.com/poiesic/docsearch/chunker"
	"github.com/poiesic/docsearch/core"
	"github.com/poiesic/docsearch/index"
	"github.com/poiesic/docsearch/storage"
)

// Pipeline orchestrates the ingestion and processing of documents.
// It splits incoming text into chunks, persists them, and generates
// embeddings concurrently on a worker pool.
type Pipeline struct {
	documentRepository storage.DocumentRepository
	chunkRepository    storage.ChunkRepository
	idx                *index.Index
	textChunker        *chunker.Chunker
	embeddingPool      *ants.Pool
	embeddingProc      *embeddingProcessor
	embedTimeout       time.Duration
	inflight           sync.WaitGroup
	logger             *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent processing.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		if p.embeddingPool != nil {
			p.embeddingPool.Release()
		}

		embeddingPool, err := ants.NewPool(size)
		if err != nil {
			return err
		}

		p.embeddingPool = embeddingPool
		return nil
	}
}

// WithChunking sets the target and overlap word counts used when
// splitting documents. Defaults match the chunker package defaults.
func WithChunking(targetWords, overlapWords int) Option {
	return func(p *Pipeline) error {
		p.textChunker = chunker.New(targetWords, overlapWords)
		return nil
	}
}

// WithEmbedTimeout sets the per-request timeout for embedding calls.
func WithEmbedTimeout(timeout time.Duration) Option {
	return func(p *Pipeline) error {
		if timeout > 0 {
			p.embedTimeout = timeout
		}
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
//
// A nil provider disables embedding generation: documents are chunked
// and stored, and remain searchable through the lexical path only. When
// a provider is supplied, idx must be non-nil so generated vectors have
// somewhere to land.
func NewPipeline(
	documentRepository storage.DocumentRepository,
	chunkRepository storage.ChunkRepository,
	provider ai.Provider,
	idx *index.Index,
	opts ...Option,
) (*Pipeline, error) {
	if documentRepository == nil {
		return nil, ErrDocumentRepositoryRequired
	}
	if chunkRepository == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if provider != nil && idx == nil {
		return nil, ErrIndexRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	embeddingPool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		documentRepository: documentRepository,
		chunkRepository:    chunkRepository,
		idx:                idx,
		textChunker:        chunker.New(chunker.DefaultTargetWords, chunker.DefaultOverlapWords),
		embeddingPool:      embeddingPool,
		embedTimeout:       defaultEmbedTimeout,
		logger:             slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	// Create the processor after options are applied (so it gets final config)
	if provider != nil {
		embeddingProc, err := newEmbeddingProcessor(chunkRepository, idx, provider.Embedder(), p.embedTimeout, p.logger)
		if err != nil {
			p.Release()
			return nil, err
		}
		p.embeddingProc = embeddingProc
	}

	return p, nil
}

// IngestOptions holds optional parameters for ingestion.
type IngestOptions struct {
	CreatedAt time.Time // Optional creation time (uses current time if zero)
}

// Ingest splits the contents into chunks, stores the document and its
// chunks, and schedules embedding generation asynchronously. Errors
// during async processing are logged but do not fail the ingestion.
//
// Contents that chunk to nothing (empty or whitespace-only text) are
// dropped without error and no document is stored.
func (p *Pipeline) Ingest(ctx context.Context, filename, contents string, opts *IngestOptions) (*core.Document, error) {
	if opts == nil {
		opts = &IngestOptions{}
	}

	pieces := p.textChunker.Chunk(contents)
	if len(pieces) == 0 {
		p.logger.Debug("skipping document with no chunkable text", "filename", filename)
		return nil, nil
	}

	createdAt := opts.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	document, err := p.documentRepository.AddDocument(ctx, &core.Document{
		Filename:  filename,
		Contents:  contents,
		CreatedAt: createdAt,
	})
	if err != nil {
		return nil, err
	}

	// Content-based document IDs make re-ingesting the same file an
	// overwrite, so any earlier generation of chunks is replaced rather
	// than appended to.
	stale, err := p.chunkRepository.DeleteChunksByDocument(ctx, document.Id)
	if err != nil {
		return nil, err
	}
	if p.idx != nil {
		p.idx.Remove(stale...)
	}

	chunks := make([]*core.Chunk, len(pieces))
	for i, piece := range pieces {
		chunks[i] = &core.Chunk{
			DocumentId: document.Id,
			Ordinal:    i,
			Contents:   piece,
		}
	}

	added, err := p.chunkRepository.AddChunks(ctx, chunks...)
	if err != nil {
		// A document without chunks is unreachable through search;
		// remove it rather than leave it stranded.
		if _, delErr := p.documentRepository.DeleteDocument(ctx, document.Id); delErr != nil {
			p.logger.Error("error removing document after chunk store failure", "err", delErr, "documentId", document.Id)
		}
		return nil, err
	}

	if p.embeddingProc == nil || len(added) == 0 {
		return document, nil
	}

	ids := make([]core.ID, len(added))
	for i, chunk := range added {
		ids[i] = chunk.Id
	}

	p.inflight.Add(1)
	submitErr := p.embeddingPool.Submit(func() {
		defer p.inflight.Done()
		if err := p.embeddingProc.process(context.Background(), ids...); err != nil {
			p.logger.Error("error processing embeddings", "err", err)
		}
	})
	if submitErr != nil {
		p.inflight.Done()
		p.logger.Error("error submitting embedding job", "err", submitErr)
	}

	return document, nil
}

// EmbedAndIndex embeds a single chunk's text synchronously and stores the
// resulting vector in both the chunk repository and the similarity index.
// Unlike the async path taken by Ingest, the error is returned to the
// caller, making this suitable for re-embedding individual chunks.
func (p *Pipeline) EmbedAndIndex(ctx context.Context, chunkId core.ID, text string) error {
	if p.embeddingProc == nil {
		return ErrEmbeddingsDisabled
	}
	return p.embeddingProc.embedOne(ctx, chunkId, text)
}

// Flush blocks until all scheduled embedding jobs have completed.
func (p *Pipeline) Flush() {
	p.inflight.Wait()
}

// Release waits for in-flight work and releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	p.inflight.Wait()
	if p.embeddingPool != nil {
		p.embeddingPool.Release()
	}
}
