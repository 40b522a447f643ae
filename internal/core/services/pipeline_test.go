package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/shopdesk/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/shopdesk/internal/core/domain"
	"github.com/custodia-labs/shopdesk/internal/core/ports/driven"
	"github.com/custodia-labs/shopdesk/internal/postprocessors"
)

// TestPipeline_RefreshThenAsk runs a refresh into the in-memory stores and
// answers from what it indexed.
func TestPipeline_RefreshThenAsk(t *testing.T) {
	ctx := context.Background()
	profile := testProfile()
	settings := domain.DefaultAppSettings()

	site := newFakeSite()
	site.add(profile.SeedURL(), gearOilURL, greaseURL, "https://shop.test/about")
	site.add(gearOilURL)
	site.add(greaseURL)
	site.add("https://shop.test/about")

	ext := newFakeExtractor()
	ext.products[gearOilURL] = driven.ProductFields{Title: "Marine Gear Oil 80W-90", Price: "₱1,250.00"}
	ext.products[greaseURL] = driven.ProductFields{Title: "Lithium Grease", Price: "₱300.00"}
	ext.texts["https://shop.test/about"] = "Test Oil Co has supplied lubricants since 1970."

	pipeline, err := postprocessors.DefaultPipeline(domain.DefaultPipelineConfig())
	require.NoError(t, err)

	catalog := memory.NewCatalogStore()
	index := memory.NewChunkIndex()
	runs := memory.NewSchedulerStore()

	refresh := NewRefreshService(
		NewCrawler(site, profile, linkSettings(1)),
		NewScraper(site, ext, profile, 2),
		catalog,
		NewIndexSynchronizer(index, pipeline),
		runs,
	)
	llm := &stubLLM{responses: []string{"Here is what I found."}}
	assistant := NewAssistantService(
		index,
		catalog,
		NewProductResolver(index, ResolverConfigFrom(settings)),
		NewAnswerAssembler(llm, profile.Company, testAssemblerConfig()),
		NewSessionStore(settings.Answer.HistoryMessages),
		profile,
		settings,
	)
	refresh.OnComplete(assistant.Invalidate)

	products, err := assistant.ListProducts(ctx)
	require.NoError(t, err)
	assert.Empty(t, products)

	report, err := refresh.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, report.RowsInserted)
	assert.Equal(t, 3, report.ChunksAdded)

	items, err := catalog.List(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 2)

	chunks, err := index.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, chunks, 3)

	// The refresh hook dropped the cached empty listing.
	products, err = assistant.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 2)

	answer, err := assistant.Ask(ctx, "c1", "what products do you have")
	require.NoError(t, err)
	assert.Equal(t, domain.AnswerPathListing, answer.Path)
	assert.Contains(t, answer.Text, "- Lithium Grease (₱300.00)")
	assert.Zero(t, llm.calls())

	history, err := refresh.History(ctx, 5)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.True(t, history[0].Success)
	assert.Equal(t, 3, history[0].ChunksAdded)
}
