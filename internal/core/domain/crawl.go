package domain

import "time"

// CrawlStrategy selects how product links are discovered.
type CrawlStrategy string

// Crawl strategies.
const (
	// CrawlStrategyLinks follows same-host links breadth first.
	CrawlStrategyLinks CrawlStrategy = "links"

	// CrawlStrategyCategories paginates each configured category.
	CrawlStrategyCategories CrawlStrategy = "categories"
)

// IsValid returns true if the strategy is recognised.
func (s CrawlStrategy) IsValid() bool {
	return s == CrawlStrategyLinks || s == CrawlStrategyCategories
}

// String returns the string representation.
func (s CrawlStrategy) String() string {
	return string(s)
}

// ProductLink is a discovered product page paired with its category.
type ProductLink struct {
	URL      string `json:"url"`
	Category string `json:"category"`
}

// CrawlResult is the outcome of one crawl.
type CrawlResult struct {
	// Links are the discovered product pages in first-seen order.
	Links []ProductLink

	// Visited counts pages fetched or attempted.
	Visited int

	// Failures counts pages that could not be fetched or parsed.
	Failures int

	// Aborted is set when the context was cancelled mid-crawl.
	Aborted bool
}

// Page is a fetched document.
type Page struct {
	// URL is the requested URL.
	URL string

	// FinalURL is the URL after redirects.
	FinalURL string

	// StatusCode is the HTTP status.
	StatusCode int

	// ContentType is the response media type.
	ContentType string

	// HTML is the body decoded to UTF-8.
	HTML []byte

	// Links are absolute hrefs found in the document, fragments removed.
	Links []string

	// FetchedAt is when the response was received.
	FetchedAt time.Time
}

// IsNotFound reports whether the page returned 404 or 410.
func (p *Page) IsNotFound() bool {
	return p.StatusCode == 404 || p.StatusCode == 410
}
