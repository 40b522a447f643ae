package driven

import (
	"context"

	"github.com/custodia-labs/shopdesk/internal/core/domain"
)

// ChunkIndex stores chunks and answers similarity queries over them.
// Chunk metadata must round-trip exactly.
type ChunkIndex interface {
	// AddChunks stores chunks. Callers guarantee hashes are not already present.
	AddChunks(ctx context.Context, chunks []domain.IndexedChunk) error

	// SimilaritySearch returns up to k chunks most similar to query,
	// best first.
	SimilaritySearch(ctx context.Context, query string, k int) ([]domain.ScoredChunk, error)

	// ListAll returns every stored chunk.
	ListAll(ctx context.Context) ([]domain.IndexedChunk, error)

	// Close releases resources.
	Close() error
}
