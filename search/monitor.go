package search

import "github.com/poiesic/docsearch/core"

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track which path served a query and the
// intermediate results along the way.
type SearchMonitor interface {
	Start(query string)
	AfterQueryEmbedding(vector []float32)
	AfterSemanticSearch(matches []core.SimilarityMatch)
	LexicalFallback(reason string)
	SemanticHit(chunk *core.Chunk)
	LexicalHit(chunk *core.Chunk)
	Finish(results []*core.SearchResult)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                                 {}
func (n *noopMonitor) AfterQueryEmbedding(_ []float32)                {}
func (n *noopMonitor) AfterSemanticSearch(_ []core.SimilarityMatch)   {}
func (n *noopMonitor) LexicalFallback(_ string)                       {}
func (n *noopMonitor) SemanticHit(_ *core.Chunk)                      {}
func (n *noopMonitor) LexicalHit(_ *core.Chunk)                       {}
func (n *noopMonitor) Finish(_ []*core.SearchResult)                  {}
