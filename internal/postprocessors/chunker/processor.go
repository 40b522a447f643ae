// Package chunker provides a fixed-size text chunking processor.
package chunker

import (
	"context"

	"github.com/google/uuid"

	"github.com/custodia-labs/shopdesk/internal/core/domain"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 200

// Processor splits record text into overlapping fixed-size windows.
// Sizes count runes, so multi-byte text is never split mid-character.
type Processor struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	// Ensure overlap doesn't exceed chunk size
	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// Process splits the record text into chunks carrying the record metadata.
// Input chunks are ignored; this processor creates new chunks.
func (p *Processor) Process(_ context.Context, record domain.IndexRecord, _ []domain.IndexedChunk) ([]domain.IndexedChunk, error) {
	if record.Text == "" {
		return nil, nil
	}

	runes := []rune(record.Text)
	total := len(runes)
	step := p.chunkSize - p.overlap

	chunks := make([]domain.IndexedChunk, 0, total/step+1)

	for start, position := 0, 0; start < total; start, position = start+step, position+1 {
		end := min(start+p.chunkSize, total)

		meta := record.Metadata
		meta.Position = position

		chunks = append(chunks, domain.IndexedChunk{
			ID:       uuid.New().String(),
			Text:     string(runes[start:end]),
			Metadata: meta,
		})

		if end == total {
			break
		}
	}

	return chunks, nil
}
