package postprocessors

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/shopdesk/internal/core/domain"
)

type failingProcessor struct{}

func (failingProcessor) Name() string { return "broken" }
func (failingProcessor) Process(context.Context, domain.IndexRecord, []domain.IndexedChunk) ([]domain.IndexedChunk, error) {
	return nil, errors.New("boom")
}

func productRecord(text string) domain.IndexRecord {
	return domain.IndexRecord{
		Text: text,
		Metadata: domain.ChunkMetadata{
			Type: domain.ChunkTypeProduct,
			Name: "Marine Gear Oil 80W-90",
			URL:  "https://silvestreph.com/product-page/mgo",
		},
	}
}

func TestPipeline_EmptyRecord(t *testing.T) {
	p := NewPipeline()
	_, err := p.Process(context.Background(), domain.IndexRecord{})
	assert.Error(t, err)
}

func TestPipeline_ProcessorError(t *testing.T) {
	p := NewPipeline(failingProcessor{})
	_, err := p.Process(context.Background(), productRecord("text"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "processor broken")
}

func TestPipeline_ChunkThenHash(t *testing.T) {
	p, err := DefaultPipeline(domain.DefaultPipelineConfig())
	require.NoError(t, err)

	rec := productRecord(strings.Repeat("a", 1500))
	chunks, err := p.Process(context.Background(), rec)
	require.NoError(t, err)
	require.Len(t, chunks, 2)

	for i, c := range chunks {
		assert.Equal(t, i, c.Metadata.Position)
		assert.Equal(t, domain.ContentHash(c.Text), c.ContentHash)
		assert.Equal(t, rec.Hash(), c.Metadata.RecordHash)
		assert.Equal(t, "Marine Gear Oil 80W-90", c.Metadata.Name)
		assert.NotEmpty(t, c.ID)
	}
}

func TestPipeline_ShortRecordHashEqualsRecordHash(t *testing.T) {
	p, err := DefaultPipeline(domain.DefaultPipelineConfig())
	require.NoError(t, err)

	rec := productRecord("Marine Gear Oil 80W-90\n\nHeavy duty.")
	chunks, err := p.Process(context.Background(), rec)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, rec.Hash(), chunks[0].ContentHash)
}
