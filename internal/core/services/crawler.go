package services

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/shopdesk/internal/core/domain"
	"github.com/custodia-labs/shopdesk/internal/core/ports/driven"
	"github.com/custodia-labs/shopdesk/internal/logger"
)

// Crawler discovers product-detail pages on the shop site.
type Crawler struct {
	client  driven.SiteClient
	profile domain.SiteProfile
	cfg     domain.CrawlSettings
}

// NewCrawler creates a crawler for profile.
func NewCrawler(client driven.SiteClient, profile domain.SiteProfile, cfg domain.CrawlSettings) *Crawler {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.Strategy == "" {
		cfg.Strategy = domain.CrawlStrategyLinks
	}
	return &Crawler{client: client, profile: profile, cfg: cfg}
}

// frontier holds the state shared between fetch workers.
type frontier struct {
	mu       sync.Mutex
	visited  map[string]struct{}
	emitted  map[string]struct{}
	links    []domain.ProductLink
	fetched  int
	failures int
}

func newFrontier() *frontier {
	return &frontier{
		visited: make(map[string]struct{}),
		emitted: make(map[string]struct{}),
	}
}

// visit marks u visited and reports whether it was new.
func (f *frontier) visit(u string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.visited[u]; ok {
		return false
	}
	f.visited[u] = struct{}{}
	return true
}

// emit records a product link unless its URL was already seen.
func (f *frontier) emit(u, category string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.emitted[u]; ok {
		return false
	}
	f.emitted[u] = struct{}{}
	f.links = append(f.links, domain.ProductLink{URL: u, Category: category})
	return true
}

func (f *frontier) record(failed bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetched++
	if failed {
		f.failures++
	}
}

func (f *frontier) result(aborted bool) *domain.CrawlResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	links := make([]domain.ProductLink, len(f.links))
	copy(links, f.links)
	return &domain.CrawlResult{
		Links:    links,
		Visited:  f.fetched,
		Failures: f.failures,
		Aborted:  aborted,
	}
}

// Crawl runs the configured discovery strategy.
// A cancelled context yields the partial result with Aborted set.
func (c *Crawler) Crawl(ctx context.Context) (*domain.CrawlResult, error) {
	logger.Section("Crawl")
	logger.Debug("Strategy: %s, seed: %s", c.cfg.Strategy, c.profile.SeedURL())

	switch c.cfg.Strategy {
	case domain.CrawlStrategyLinks:
		return c.crawlLinks(ctx), nil
	case domain.CrawlStrategyCategories:
		return c.crawlCategories(ctx), nil
	default:
		return nil, fmt.Errorf("%w: unknown crawl strategy %q", domain.ErrConfig, c.cfg.Strategy)
	}
}

// crawlLinks walks same-host links breadth first, one level at a time.
func (c *Crawler) crawlLinks(ctx context.Context) *domain.CrawlResult {
	seed := domain.NormalizeURL(c.profile.SeedURL())
	f := newFrontier()
	f.visit(seed)

	level := []string{seed}
	for depth := 0; len(level) > 0; depth++ {
		if ctx.Err() != nil {
			break
		}
		followLinks := depth < c.cfg.MaxDepth

		var (
			mu   sync.Mutex
			next []string
		)
		g := new(errgroup.Group)
		g.SetLimit(c.cfg.Workers)
		for _, u := range level {
			g.Go(func() error {
				if ctx.Err() != nil {
					return nil
				}
				page, err := c.fetch(ctx, u)
				f.record(err != nil)
				if err != nil {
					logger.Warn("crawl: %v", err)
					return nil
				}
				found := c.scanLinks(f, seed, page.Links, followLinks)
				mu.Lock()
				next = append(next, found...)
				mu.Unlock()
				return nil
			})
		}
		_ = g.Wait()

		logger.Debug("Depth %d: %d pages, %d queued", depth, len(level), len(next))
		level = next
	}

	result := f.result(ctx.Err() != nil)
	logger.Info("Crawl found %d product links (%d pages, %d failures)",
		len(result.Links), result.Visited, result.Failures)
	return result
}

// scanLinks emits product links and returns unvisited pages to follow.
func (c *Crawler) scanLinks(f *frontier, seed string, links []string, follow bool) []string {
	var next []string
	for _, raw := range links {
		u := domain.NormalizeURL(raw)
		if !domain.SameHost(seed, u) {
			continue
		}
		if c.profile.IsProductURL(u) {
			f.emit(u, domain.UncategorizedCategory)
			continue
		}
		if follow && f.visit(u) {
			next = append(next, u)
		}
	}
	return next
}

// crawlCategories paginates every category until a page yields no
// product links or MaxPages is reached. Categories run concurrently but
// are merged in configured order so the first-seen category is stable.
func (c *Crawler) crawlCategories(ctx context.Context) *domain.CrawlResult {
	seed := domain.NormalizeURL(c.profile.SeedURL())
	f := newFrontier()

	perCategory := make([][]string, len(c.profile.Categories))
	g := new(errgroup.Group)
	g.SetLimit(c.cfg.Workers)
	for i, cat := range c.profile.Categories {
		g.Go(func() error {
			perCategory[i] = c.paginate(ctx, f, seed, cat)
			return nil
		})
	}
	_ = g.Wait()

	for i, cat := range c.profile.Categories {
		for _, u := range perCategory[i] {
			f.emit(u, cat.Name)
		}
	}

	result := f.result(ctx.Err() != nil)
	logger.Info("Crawl found %d product links across %d categories",
		len(result.Links), len(c.profile.Categories))
	return result
}

func (c *Crawler) paginate(ctx context.Context, f *frontier, seed string, cat domain.Category) []string {
	maxPages := c.cfg.MaxPages
	if maxPages <= 0 {
		maxPages = 1
	}

	seen := make(map[string]struct{})
	var found []string
	for page := 1; page <= maxPages; page++ {
		if ctx.Err() != nil {
			return found
		}
		u := c.profile.CategoryPageURL(cat.Slug, page)
		p, err := c.fetch(ctx, u)
		f.record(err != nil)
		if err != nil {
			logger.Warn("crawl: category %s: %v", cat.Slug, err)
			return found
		}

		fresh := 0
		for _, raw := range p.Links {
			link := domain.NormalizeURL(raw)
			if !domain.SameHost(seed, link) || !c.profile.IsProductURL(link) {
				continue
			}
			if _, ok := seen[link]; ok {
				continue
			}
			seen[link] = struct{}{}
			found = append(found, link)
			fresh++
		}
		if fresh == 0 {
			logger.Debug("Category %s exhausted at page %d", cat.Slug, page)
			return found
		}
	}
	logger.Warn("crawl: category %s hit the %d page cap", cat.Slug, maxPages)
	return found
}

func (c *Crawler) fetch(ctx context.Context, u string) (*domain.Page, error) {
	page, err := c.client.Fetch(ctx, u)
	if err != nil {
		return nil, domain.NewFetchError(u, err)
	}
	if page.StatusCode < 200 || page.StatusCode > 299 {
		return nil, domain.NewFetchError(u, fmt.Errorf("status %d", page.StatusCode))
	}
	return page, nil
}
