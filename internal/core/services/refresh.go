package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/shopdesk/internal/core/domain"
	"github.com/custodia-labs/shopdesk/internal/core/ports/driven"
	"github.com/custodia-labs/shopdesk/internal/core/ports/driving"
	"github.com/custodia-labs/shopdesk/internal/logger"
)

// Ensure RefreshService implements the interface.
var _ driving.RefreshService = (*RefreshService)(nil)

// historyRetention is how many runs are kept in the run store.
const historyRetention = 100

// RefreshService runs crawl, scrape, catalog replace and index sync.
// Only one refresh runs at a time.
type RefreshService struct {
	crawler *Crawler
	scraper *Scraper
	catalog driven.CatalogStore
	syncer  *IndexSynchronizer
	runs    driven.SchedulerStore

	mu         sync.Mutex
	onComplete func()
}

// NewRefreshService creates a refresh service. runs may be nil, in which
// case history is not recorded.
func NewRefreshService(
	crawler *Crawler,
	scraper *Scraper,
	catalog driven.CatalogStore,
	syncer *IndexSynchronizer,
	runs driven.SchedulerStore,
) *RefreshService {
	return &RefreshService{
		crawler: crawler,
		scraper: scraper,
		catalog: catalog,
		syncer:  syncer,
		runs:    runs,
	}
}

// OnComplete registers fn to run after every successful refresh.
func (s *RefreshService) OnComplete(fn func()) {
	s.onComplete = fn
}

// Refresh runs one full refresh and records it in the run history.
func (s *RefreshService) Refresh(ctx context.Context) (*domain.RefreshReport, error) {
	if !s.mu.TryLock() {
		return nil, domain.ErrRefreshInProgress
	}
	defer s.mu.Unlock()

	report := &domain.RefreshReport{StartedAt: time.Now()}
	err := s.run(ctx, report)
	report.Duration = time.Since(report.StartedAt)
	s.record(ctx, report, err)

	if err != nil {
		logger.Error("refresh failed: %v", err)
		return report, err
	}
	logger.Info("Refresh done in %s: %d urls, %d products, %d chunks added",
		report.Duration.Round(time.Millisecond), report.URLsFound, report.RowsInserted, report.ChunksAdded)
	if s.onComplete != nil {
		s.onComplete()
	}
	return report, nil
}

func (s *RefreshService) run(ctx context.Context, report *domain.RefreshReport) error {
	crawl, err := s.crawler.Crawl(ctx)
	if err != nil {
		return fmt.Errorf("crawl: %w", err)
	}
	report.URLsFound = len(crawl.Links)
	report.CrawlAborted = crawl.Aborted

	logger.Section("Scrape")
	items, failures := s.scraper.ScrapeProducts(ctx, crawl.Links)
	pages, pageFailures := s.scraper.ScrapeInfoPages(ctx)
	report.RecordsScraped = len(items)
	report.GeneralPages = len(pages)
	report.ScrapeFailures = countFailures(failures) + countFailures(pageFailures)

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("refresh cancelled before writing: %w", err)
	}

	if len(items) == 0 {
		logger.Warn("refresh: no products scraped, keeping the existing catalog")
	} else {
		rows, err := s.catalog.ReplaceAll(ctx, items)
		if err != nil {
			return fmt.Errorf("replace catalog: %w", err)
		}
		report.RowsInserted = rows
	}

	logger.Section("Index Sync")
	records := make([]domain.IndexRecord, 0, len(items)+len(pages))
	for _, item := range items {
		records = append(records, item.Record())
	}
	for _, page := range pages {
		records = append(records, page.Record())
	}
	result, err := s.syncer.Sync(ctx, records)
	if err != nil {
		return fmt.Errorf("sync index: %w", err)
	}
	report.ChunksAdded = result.Added
	report.ChunksSkipped = result.Skipped
	return nil
}

// countFailures counts fetch and parse failures; skips are deliberate.
func countFailures(errs []*domain.ScrapeError) int {
	n := 0
	for _, e := range errs {
		if !errors.Is(e, domain.ErrPageSkipped) {
			n++
		}
	}
	return n
}

func (s *RefreshService) record(ctx context.Context, report *domain.RefreshReport, runErr error) {
	if s.runs == nil {
		return
	}
	result := &domain.TaskResult{
		TaskID:         domain.TaskIDCatalogRefresh,
		StartedAt:      report.StartedAt,
		EndedAt:        report.StartedAt.Add(report.Duration),
		Success:        runErr == nil,
		ItemsProcessed: report.ItemsProcessed(),
		ChunksAdded:    report.ChunksAdded,
	}
	if runErr != nil {
		result.Error = runErr.Error()
	}

	// The run context may already be cancelled; history still gets written.
	recordCtx := context.WithoutCancel(ctx)
	if err := s.runs.RecordResult(recordCtx, result); err != nil {
		logger.Warn("refresh: record run: %v", err)
	}
	if err := s.runs.PruneHistory(recordCtx, historyRetention); err != nil {
		logger.Warn("refresh: prune history: %v", err)
	}
}

// History returns recent refresh runs, newest first.
func (s *RefreshService) History(ctx context.Context, limit int) ([]domain.TaskResult, error) {
	if s.runs == nil {
		return nil, nil
	}
	history, err := s.runs.GetTaskHistory(ctx, domain.TaskIDCatalogRefresh, limit)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	return history, nil
}
