package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/custodia-labs/shopdesk/internal/core/domain"
	"github.com/custodia-labs/shopdesk/internal/core/ports/driven"
	"github.com/custodia-labs/shopdesk/internal/logger"
)

// IndexSynchronizer submits only records whose version is not yet indexed.
// Identity is the record hash: a changed record is indexed again in full,
// and nothing is updated or deleted by URL.
type IndexSynchronizer struct {
	index    driven.ChunkIndex
	pipeline driven.PostProcessorPipeline
}

// NewIndexSynchronizer creates a synchronizer writing to index.
func NewIndexSynchronizer(index driven.ChunkIndex, pipeline driven.PostProcessorPipeline) *IndexSynchronizer {
	return &IndexSynchronizer{index: index, pipeline: pipeline}
}

// Sync chunks every record and adds all chunks of the records whose hash
// is absent from the index. The full hash set is read once, before any write.
// Counts are in chunks.
func (s *IndexSynchronizer) Sync(ctx context.Context, records []domain.IndexRecord) (domain.SyncResult, error) {
	var result domain.SyncResult
	if s.index == nil {
		return result, domain.ErrVectorIndexUnavailable
	}

	existing, err := s.index.ListAll(ctx)
	if err != nil {
		return result, fmt.Errorf("list indexed chunks: %w", err)
	}
	seen := make(map[string]struct{}, len(existing))
	for _, c := range existing {
		seen[recordKey(c)] = struct{}{}
	}
	logger.Debug("Index holds %d record versions", len(seen))

	var pending []domain.IndexedChunk
	for _, record := range records {
		chunks, err := s.pipeline.Process(ctx, record)
		if err != nil {
			logger.Warn("index sync: skipping record %s: %v", record.Metadata.URL, err)
			continue
		}
		key := record.Hash()
		if _, ok := seen[key]; ok {
			result.Skipped += len(chunks)
			continue
		}
		seen[key] = struct{}{}
		for _, chunk := range chunks {
			if chunk.ContentHash == "" {
				chunk.ContentHash = domain.ContentHash(chunk.Text)
			}
			chunk.Metadata.RecordHash = key
			chunk.ID = uuid.NewString()
			pending = append(pending, chunk)
		}
	}

	if len(pending) == 0 {
		logger.Info("Index up to date (%d chunks skipped)", result.Skipped)
		return result, nil
	}
	if err := s.index.AddChunks(ctx, pending); err != nil {
		return result, fmt.Errorf("add chunks: %w", err)
	}
	result.Added = len(pending)
	logger.Info("Indexed %d new chunks, skipped %d", result.Added, result.Skipped)
	return result, nil
}

// recordKey is the record version a stored chunk belongs to. Chunks
// written without a record hash count as their own record.
func recordKey(c domain.IndexedChunk) string {
	if c.Metadata.RecordHash != "" {
		return c.Metadata.RecordHash
	}
	return c.ContentHash
}
