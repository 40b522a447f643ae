package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/shopdesk/internal/core/domain"
	"github.com/custodia-labs/shopdesk/internal/core/ports/driven"
	"github.com/custodia-labs/shopdesk/internal/postprocessors"
)

const greaseURL = "https://shop.test/product-page/lithium-grease"

type refreshFixture struct {
	svc     *RefreshService
	site    *fakeSite
	catalog *stubCatalog
	index   *stubIndex
	runs    *mockSchedulerStore
}

func newRefreshFixture(t *testing.T) *refreshFixture {
	t.Helper()
	profile := testProfile()

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

	index := &stubIndex{}
	catalog := &stubCatalog{}
	runs := newMockSchedulerStore()
	svc := NewRefreshService(
		NewCrawler(site, profile, linkSettings(1)),
		NewScraper(site, ext, profile, 2),
		catalog,
		NewIndexSynchronizer(index, pipeline),
		runs,
	)
	return &refreshFixture{svc: svc, site: site, catalog: catalog, index: index, runs: runs}
}

func TestRefresh_FullRunThenNoOp(t *testing.T) {
	f := newRefreshFixture(t)
	completed := 0
	f.svc.OnComplete(func() { completed++ })

	report, err := f.svc.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, report.URLsFound)
	assert.Equal(t, 2, report.RecordsScraped)
	assert.Equal(t, 2, report.RowsInserted)
	assert.Equal(t, 1, report.GeneralPages)
	assert.Equal(t, 3, report.ChunksAdded)
	assert.Zero(t, report.ScrapeFailures, "missing info pages are skips, not failures")
	assert.Len(t, f.catalog.items, 2)

	second, err := f.svc.Refresh(context.Background())
	require.NoError(t, err)
	assert.Zero(t, second.ChunksAdded)
	assert.Len(t, f.index.chunks, 3)
	assert.Equal(t, 2, completed)

	history, err := f.svc.History(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.True(t, history[0].Success)
	assert.Equal(t, domain.TaskIDCatalogRefresh, history[0].TaskID)
	assert.Equal(t, 3, history[0].ItemsProcessed)
	assert.Equal(t, 3, history[1].ChunksAdded)
}

func TestRefresh_RejectsConcurrentRun(t *testing.T) {
	f := newRefreshFixture(t)

	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	f.site.onFetch = func(string) {
		once.Do(func() {
			close(started)
			<-release
		})
	}

	done := make(chan error, 1)
	go func() {
		_, err := f.svc.Refresh(context.Background())
		done <- err
	}()

	<-started
	_, err := f.svc.Refresh(context.Background())
	assert.ErrorIs(t, err, domain.ErrRefreshInProgress)

	close(release)
	require.NoError(t, <-done)
}

func TestRefresh_CancelledWritesNothing(t *testing.T) {
	f := newRefreshFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := f.svc.Refresh(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	require.NotNil(t, report)
	assert.True(t, report.CrawlAborted)
	assert.Zero(t, f.catalog.replaces)
	assert.Empty(t, f.index.chunks)

	history, err := f.svc.History(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.False(t, history[0].Success)
	assert.NotEmpty(t, history[0].Error)
}

func TestRefresh_NoProductsKeepsCatalog(t *testing.T) {
	f := newRefreshFixture(t)
	f.site.add(testProfile().SeedURL(), "https://shop.test/about")
	f.catalog.items = []domain.CatalogItem{
		domain.NewCatalogItem(gearOilURL, "Gear Oils", "Marine Gear Oil 80W-90", "", "₱1,250.00"),
	}

	report, err := f.svc.Refresh(context.Background())
	require.NoError(t, err)
	assert.Zero(t, f.catalog.replaces)
	assert.Len(t, f.catalog.items, 1)
	assert.Equal(t, 1, report.ChunksAdded)
}

func TestRefresh_HistoryWithoutStore(t *testing.T) {
	svc := NewRefreshService(nil, nil, nil, nil, nil)
	history, err := svc.History(context.Background(), 5)
	require.NoError(t, err)
	assert.Nil(t, history)
}
