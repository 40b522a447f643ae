package driven

import (
	"context"

	"github.com/custodia-labs/shopdesk/internal/core/domain"
)

// PostProcessor turns an index record into chunks.
// PostProcessors are chained in a pipeline (chunking, then hashing).
type PostProcessor interface {
	// Name returns the processor name for logging and configuration.
	Name() string

	// Process takes a record and the chunks produced so far.
	// A chunk-creating processor receives nil and returns new chunks;
	// a chunk-modifying processor receives and returns chunks.
	Process(ctx context.Context, record domain.IndexRecord, chunks []domain.IndexedChunk) ([]domain.IndexedChunk, error)
}

// PostProcessorPipeline chains multiple PostProcessors.
type PostProcessorPipeline interface {
	// Process runs the record through all processors in order.
	Process(ctx context.Context, record domain.IndexRecord) ([]domain.IndexedChunk, error)
}
