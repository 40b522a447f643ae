package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/shopdesk/internal/core/domain"
	"github.com/custodia-labs/shopdesk/internal/core/ports/driven"
	"github.com/custodia-labs/shopdesk/internal/textmatch"
)

// Ensure ChunkIndex implements the interface.
var _ driven.ChunkIndex = (*ChunkIndex)(nil)

// ChunkIndex is an in-memory implementation of driven.ChunkIndex.
// Similarity is lexical, scaled to 0-1.
type ChunkIndex struct {
	mu     sync.RWMutex
	chunks []domain.IndexedChunk

	// searches counts SimilaritySearch calls.
	searches int
}

// NewChunkIndex creates a new in-memory chunk index.
func NewChunkIndex() *ChunkIndex {
	return &ChunkIndex{}
}

// AddChunks appends chunks.
func (s *ChunkIndex) AddChunks(_ context.Context, chunks []domain.IndexedChunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks = append(s.chunks, chunks...)
	return nil
}

// SimilaritySearch ranks stored chunks by token-set similarity to query.
func (s *ChunkIndex) SimilaritySearch(_ context.Context, query string, k int) ([]domain.ScoredChunk, error) {
	s.mu.Lock()
	s.searches++
	chunks := make([]domain.IndexedChunk, len(s.chunks))
	copy(chunks, s.chunks)
	s.mu.Unlock()

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	ranked := textmatch.Rank(query, texts, k)
	results := make([]domain.ScoredChunk, 0, len(ranked))
	for _, r := range ranked {
		results = append(results, domain.ScoredChunk{Chunk: chunks[r.Index], Score: r.Score / 100})
	}
	return results, nil
}

// ListAll returns every chunk in insertion order.
func (s *ChunkIndex) ListAll(_ context.Context) ([]domain.IndexedChunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.IndexedChunk, len(s.chunks))
	copy(out, s.chunks)
	return out, nil
}

// Searches returns how many similarity searches have run.
func (s *ChunkIndex) Searches() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.searches
}

// Close is a no-op.
func (s *ChunkIndex) Close() error {
	return nil
}
