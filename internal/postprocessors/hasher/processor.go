// Package hasher stamps content hashes onto chunks.
package hasher

import (
	"context"

	"github.com/custodia-labs/shopdesk/internal/core/domain"
)

// Processor sets each chunk's ContentHash from its text and records the
// hash of the source record in the metadata. A record that produced no
// chunks upstream becomes a single chunk.
type Processor struct{}

// New creates a hasher processor.
func New() *Processor {
	return &Processor{}
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "hasher"
}

// Process stamps hashes on chunks.
func (p *Processor) Process(_ context.Context, record domain.IndexRecord, chunks []domain.IndexedChunk) ([]domain.IndexedChunk, error) {
	if chunks == nil {
		if record.Text == "" {
			return nil, nil
		}
		chunks = []domain.IndexedChunk{{Text: record.Text, Metadata: record.Metadata}}
	}

	recordHash := record.Hash()
	for i := range chunks {
		chunks[i].ContentHash = domain.ContentHash(chunks[i].Text)
		chunks[i].Metadata.RecordHash = recordHash
	}
	return chunks, nil
}
