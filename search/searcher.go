package search

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/poiesic/docsearch/ai"
	"github.com/poiesic/docsearch/core"
	"github.com/poiesic/docsearch/index"
	"github.com/poiesic/docsearch/storage"
)

const (
	// DefaultLimit caps the result list when the caller passes no limit.
	DefaultLimit = 10

	// MinQueryLength is the minimum number of non-whitespace characters a
	// query must contain. Shorter queries yield empty results, not errors.
	MinQueryLength = 2
)

// Searcher answers natural-language queries over stored chunks composed of a
// semantic path (embedding + similarity index) and a deterministic lexical
// fallback. A single query is served by exactly one of the two paths end to
// end; the two score scales are never mixed in one ranked list.
type Searcher struct {
	documentRepository storage.DocumentRepository
	chunkRepository    storage.ChunkRepository
	idx                *index.Index
	embedder           ai.Embedder // nil when no provider is configured
	embedTimeout       time.Duration
	excerptLength      int
	logger             *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithExcerptLength sets the maximum excerpt length in characters.
// Default is DefaultExcerptLength.
func WithExcerptLength(length int) Option {
	return func(s *Searcher) error {
		if length <= 0 {
			length = DefaultExcerptLength
		}
		s.excerptLength = length
		return nil
	}
}

// WithEmbedTimeout bounds the query embedding call.
// Default is 30s; a timed-out embedding triggers the lexical fallback.
func WithEmbedTimeout(timeout time.Duration) Option {
	return func(s *Searcher) error {
		if timeout > 0 {
			s.embedTimeout = timeout
		}
		return nil
	}
}

// NewSearcher creates a new searcher. The provider may be nil, in which case
// every query is served by the lexical path; that decision is taken once
// here, not per query.
func NewSearcher(
	documentRepository storage.DocumentRepository,
	chunkRepository storage.ChunkRepository,
	idx *index.Index,
	provider ai.Provider,
	opts ...Option,
) (*Searcher, error) {
	if documentRepository == nil {
		return nil, ErrDocumentRepositoryRequired
	}
	if chunkRepository == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if idx == nil {
		return nil, ErrIndexRequired
	}

	s := &Searcher{
		documentRepository: documentRepository,
		chunkRepository:    chunkRepository,
		idx:                idx,
		embedTimeout:       30 * time.Second,
		excerptLength:      DefaultExcerptLength,
		logger:             slog.Default(),
	}
	if provider != nil {
		s.embedder = provider.Embedder()
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Search returns up to limit results for the query, ranked by relevance.
// A limit <= 0 falls back to DefaultLimit.
func (s *Searcher) Search(ctx context.Context, query string, limit int) ([]*core.SearchResult, error) {
	return s.SearchWithMonitor(ctx, query, limit, nil)
}

// SearchWithMonitor searches with monitoring. The monitor receives callbacks
// at each stage of the search process.
func (s *Searcher) SearchWithMonitor(ctx context.Context, query string, limit int, monitor SearchMonitor) ([]*core.SearchResult, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	monitor.Start(query)

	trimmed := strings.TrimSpace(query)
	if nonWhitespaceLen(trimmed) < MinQueryLength {
		results := []*core.SearchResult{}
		monitor.Finish(results)
		return results, nil
	}

	if limit <= 0 {
		limit = DefaultLimit
	}

	if s.embedder == nil {
		return s.lexicalSearch(ctx, trimmed, limit, "no embedding provider configured", monitor)
	}

	embedCtx, cancel := context.WithTimeout(ctx, s.embedTimeout)
	vector, err := s.embedder.EmbedText(embedCtx, trimmed)
	cancel()
	if err != nil {
		// A failed or timed-out embedding degrades to the lexical path;
		// it is never surfaced as a user-facing failure.
		s.logger.Warn("query embedding failed, falling back to lexical search", "err", err)
		return s.lexicalSearch(ctx, trimmed, limit, "query embedding failed", monitor)
	}
	monitor.AfterQueryEmbedding(vector)

	matches := s.idx.Query(vector, limit)
	monitor.AfterSemanticSearch(matches)
	if len(matches) == 0 {
		return s.lexicalSearch(ctx, trimmed, limit, "no semantic matches above threshold", monitor)
	}

	results, err := s.buildSemanticResults(ctx, trimmed, matches, monitor)
	if err != nil {
		return nil, err
	}
	monitor.Finish(results)
	return results, nil
}

// buildSemanticResults resolves similarity matches into full results with
// excerpts and source attribution.
func (s *Searcher) buildSemanticResults(ctx context.Context, query string, matches []core.SimilarityMatch, monitor SearchMonitor) ([]*core.SearchResult, error) {
	results := make([]*core.SearchResult, 0, len(matches))
	filenames := make(map[core.ID]string)

	for _, match := range matches {
		chunk, err := s.chunkRepository.GetChunk(ctx, match.ChunkId)
		if err != nil {
			// The index may briefly hold a chunk deleted from storage.
			s.logger.Warn("indexed chunk missing from storage", "chunkId", match.ChunkId, "err", err)
			continue
		}

		monitor.SemanticHit(chunk)
		results = append(results, &core.SearchResult{
			Chunk:    chunk,
			Score:    match.Score,
			Mode:     core.ModeSemantic,
			Excerpt:  BuildExcerpt(chunk.Contents, query, s.excerptLength),
			Filename: s.filename(ctx, chunk.DocumentId, filenames),
		})
	}

	return results, nil
}

// lexicalSearch scans all stored chunks with the deterministic lexical
// scorer. Chunks scoring exactly 0 are excluded; ties are broken by chunk
// insertion order.
func (s *Searcher) lexicalSearch(ctx context.Context, query string, limit int, reason string, monitor SearchMonitor) ([]*core.SearchResult, error) {
	monitor.LexicalFallback(reason)

	chunks, err := s.chunkRepository.ListChunks(ctx)
	if err != nil {
		s.logger.Error("error listing chunks for lexical search", "err", err)
		return nil, err
	}

	type scored struct {
		chunk *core.Chunk
		score float32
	}
	candidates := make([]scored, 0, len(chunks))
	for _, chunk := range chunks {
		score := LexicalScore(query, chunk.Contents)
		if score == 0 {
			continue
		}
		candidates = append(candidates, scored{chunk: chunk, score: score})
	}

	// ListChunks returns insertion order, so a stable sort keeps that
	// order on equal scores.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	results := make([]*core.SearchResult, 0, len(candidates))
	filenames := make(map[core.ID]string)
	for _, c := range candidates {
		monitor.LexicalHit(c.chunk)
		results = append(results, &core.SearchResult{
			Chunk:    c.chunk,
			Score:    c.score,
			Mode:     core.ModeLexical,
			Excerpt:  BuildExcerpt(c.chunk.Contents, query, s.excerptLength),
			Filename: s.filename(ctx, c.chunk.DocumentId, filenames),
		})
	}

	monitor.Finish(results)
	return results, nil
}

// filename resolves a document's filename, caching lookups for the duration
// of one query. A missing document yields an empty attribution, not an error.
func (s *Searcher) filename(ctx context.Context, documentId core.ID, cache map[core.ID]string) string {
	if name, ok := cache[documentId]; ok {
		return name
	}
	document, err := s.documentRepository.GetDocument(ctx, documentId)
	if err != nil {
		s.logger.Warn("error resolving document for attribution", "documentId", documentId, "err", err)
		cache[documentId] = ""
		return ""
	}
	cache[documentId] = document.Filename
	return document.Filename
}

func nonWhitespaceLen(s string) int {
	n := 0
	for _, r := range s {
		if !unicode.IsSpace(r) {
			n++
		}
	}
	return n
}
