package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/shopdesk/internal/core/domain"
	"github.com/custodia-labs/shopdesk/internal/core/ports/driven"
	"github.com/custodia-labs/shopdesk/internal/logger"
)

// Scraper turns fetched pages into catalog items and informational pages.
// Every failure is returned as a *domain.ScrapeError.
type Scraper struct {
	client    driven.SiteClient
	extractor driven.PageExtractor
	profile   domain.SiteProfile
	workers   int
}

// NewScraper creates a scraper. workers bounds ScrapeProducts concurrency.
func NewScraper(
	client driven.SiteClient,
	extractor driven.PageExtractor,
	profile domain.SiteProfile,
	workers int,
) *Scraper {
	if workers <= 0 {
		workers = 1
	}
	return &Scraper{client: client, extractor: extractor, profile: profile, workers: workers}
}

// ScrapeProduct extracts one product page.
func (s *Scraper) ScrapeProduct(ctx context.Context, url, category string) (*domain.CatalogItem, error) {
	page, err := s.client.Fetch(ctx, url)
	if err != nil {
		return nil, domain.NewFetchError(url, err)
	}
	if page.StatusCode < 200 || page.StatusCode > 299 {
		return nil, domain.NewFetchError(url, fmt.Errorf("status %d", page.StatusCode))
	}

	fields, err := s.extractor.ExtractProduct(page, s.profile.Selectors)
	if err != nil {
		return nil, domain.NewParseError(url, err)
	}

	item := domain.NewCatalogItem(domain.NormalizeURL(url), category, fields.Title, fields.Description, fields.Price)
	return &item, nil
}

// ScrapeGeneralPage extracts the readable text of an informational page.
// Missing pages and pages that look like product listings are skipped.
func (s *Scraper) ScrapeGeneralPage(ctx context.Context, url, label string) (*domain.InformationalPage, error) {
	page, err := s.client.Fetch(ctx, url)
	if err != nil {
		return nil, domain.NewFetchError(url, err)
	}
	if page.IsNotFound() {
		return nil, domain.NewSkipError(url, "not found")
	}
	if page.StatusCode < 200 || page.StatusCode > 299 {
		return nil, domain.NewFetchError(url, fmt.Errorf("status %d", page.StatusCode))
	}

	text, err := s.extractor.ExtractGeneral(page)
	if err != nil {
		return nil, domain.NewParseError(url, err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, domain.NewParseError(url, errors.New("no readable text"))
	}
	if looksLikeListing(text) {
		return nil, domain.NewSkipError(url, "looks like a product listing")
	}

	return &domain.InformationalPage{
		Label:    label,
		URL:      url,
		BodyText: text,
		PageType: domain.PageTypeGeneral,
	}, nil
}

func looksLikeListing(text string) bool {
	lower := strings.ToLower(text)
	return strings.Contains(lower, "cart") && strings.Contains(lower, "price")
}

// ScrapeProducts scrapes links on a bounded worker pool.
// Items keep the order of links; failures are returned alongside.
func (s *Scraper) ScrapeProducts(
	ctx context.Context, links []domain.ProductLink,
) ([]domain.CatalogItem, []*domain.ScrapeError) {
	results := make([]*domain.CatalogItem, len(links))

	var (
		mu       sync.Mutex
		failures []*domain.ScrapeError
	)
	g := new(errgroup.Group)
	g.SetLimit(s.workers)
	for i, link := range links {
		g.Go(func() error {
			item, err := s.ScrapeProduct(ctx, link.URL, link.Category)
			if err != nil {
				var scrapeErr *domain.ScrapeError
				if !errors.As(err, &scrapeErr) {
					scrapeErr = domain.NewParseError(link.URL, err)
				}
				logger.Warn("scrape failed for %s: %v", link.URL, scrapeErr.Err)
				mu.Lock()
				failures = append(failures, scrapeErr)
				mu.Unlock()
				return nil
			}
			results[i] = item
			return nil
		})
	}
	_ = g.Wait()

	items := make([]domain.CatalogItem, 0, len(links))
	for _, item := range results {
		if item != nil {
			items = append(items, *item)
		}
	}
	return items, failures
}

// ScrapeInfoPages scrapes every informational page in the profile.
// Skipped pages are logged at debug level, other failures at warn.
func (s *Scraper) ScrapeInfoPages(ctx context.Context) ([]domain.InformationalPage, []*domain.ScrapeError) {
	var (
		pages    []domain.InformationalPage
		failures []*domain.ScrapeError
	)
	for _, info := range s.profile.InfoPages {
		if ctx.Err() != nil {
			break
		}
		url := s.profile.ResolveURL(info.Path)
		page, err := s.ScrapeGeneralPage(ctx, url, info.Label)
		if err != nil {
			var scrapeErr *domain.ScrapeError
			if !errors.As(err, &scrapeErr) {
				scrapeErr = domain.NewParseError(url, err)
			}
			if scrapeErr.Kind == domain.ScrapeErrorSkipped {
				logger.Debug("Skipped %s: %v", url, scrapeErr.Err)
			} else {
				logger.Warn("scrape failed for %s: %v", url, scrapeErr.Err)
			}
			failures = append(failures, scrapeErr)
			continue
		}
		pages = append(pages, *page)
	}
	return pages, failures
}
