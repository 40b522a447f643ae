package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/shopdesk/internal/core/domain"
)

func TestChunkIndex_SearchAndList(t *testing.T) {
	ctx := context.Background()
	idx := NewChunkIndex()

	require.NoError(t, idx.AddChunks(ctx, []domain.IndexedChunk{
		{ID: "1", Text: "Marine Gear Oil 80W-90", Metadata: domain.ChunkMetadata{Type: domain.ChunkTypeProduct}},
		{ID: "2", Text: "CONTACT\ncall us", Metadata: domain.ChunkMetadata{Type: domain.ChunkTypeGeneral}},
	}))

	results, err := idx.SimilaritySearch(ctx, "marine gear oil", 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "1", results[0].Chunk.ID)
	assert.InDelta(t, 1.0, results[0].Score, 0.001)
	assert.Equal(t, 1, idx.Searches())

	all, err := idx.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestCatalogStore_ReplaceAll(t *testing.T) {
	ctx := context.Background()
	s := NewCatalogStore()

	n, err := s.ReplaceAll(ctx, []domain.CatalogItem{
		{URL: "u2", Name: "Brake Fluid", Category: "Fluids"},
		{URL: "u1", Name: "Axle Grease", Category: "Greases"},
		{URL: "u3", Name: "ATF", Category: "Fluids"},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	items, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"ATF", "Brake Fluid", "Axle Grease"},
		[]string{items[0].Name, items[1].Name, items[2].Name})

	_, err = s.ReplaceAll(ctx, []domain.CatalogItem{{URL: "u9", Name: "Coolant"}})
	require.NoError(t, err)
	items, _ = s.List(ctx)
	assert.Len(t, items, 1)
}

func TestSchedulerStore_HistoryAndPrune(t *testing.T) {
	ctx := context.Background()
	s := NewSchedulerStore()
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		require.NoError(t, s.RecordResult(ctx, &domain.TaskResult{
			TaskID:         domain.TaskIDCatalogRefresh,
			StartedAt:      start.Add(time.Duration(i) * time.Hour),
			ItemsProcessed: i,
		}))
	}

	history, err := s.GetTaskHistory(ctx, domain.TaskIDCatalogRefresh, 2)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, 4, history[0].ItemsProcessed)

	require.NoError(t, s.PruneHistory(ctx, 3))
	history, _ = s.GetTaskHistory(ctx, domain.TaskIDCatalogRefresh, 0)
	assert.Len(t, history, 3)
	assert.Equal(t, 2, history[2].ItemsProcessed)

	task, err := s.GetTask(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, task)
}
