// Package web implements driven.SiteClient over HTTP.
package web

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/temoto/robotstxt"
	"golang.org/x/net/html/charset"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/shopdesk/internal/core/domain"
	"github.com/custodia-labs/shopdesk/internal/core/ports/driven"
	"github.com/custodia-labs/shopdesk/internal/logger"
)

// Ensure Client implements the interface.
var _ driven.SiteClient = (*Client)(nil)

const (
	// maxBodyBytes caps how much of a response is read.
	maxBodyBytes = 8 << 20

	// maxRetryAfter caps how long a 429 response may stall a fetch.
	maxRetryAfter = 30 * time.Second

	// headerRetryAfter is the retry-after header (seconds).
	headerRetryAfter = "Retry-After"
)

// Config configures the HTTP site client.
type Config struct {
	UserAgent         string
	Timeout           time.Duration
	RequestsPerSecond float64
	RespectRobots     bool

	// Retries is how many times a 429 response is retried.
	Retries int
}

// ConfigFrom builds a client config from application settings.
func ConfigFrom(site domain.SiteSettings, crawl domain.CrawlSettings) Config {
	return Config{
		UserAgent:         site.UserAgent,
		Timeout:           crawl.Timeout,
		RequestsPerSecond: crawl.RequestsPerSecond,
		RespectRobots:     crawl.RespectRobots,
		Retries:           2,
	}
}

// Client fetches pages politely: one shared token bucket across all
// workers, robots.txt checks per host and Retry-After back-off.
type Client struct {
	http    *http.Client
	cfg     Config
	limiter *rate.Limiter

	mu     sync.Mutex
	robots map[string]*robotstxt.Group
}

// NewClient creates a site client.
func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	return &Client{
		http:    &http.Client{Timeout: cfg.Timeout},
		cfg:     cfg,
		limiter: rate.NewLimiter(limit, 1),
		robots:  make(map[string]*robotstxt.Group),
	}
}

// Fetch retrieves rawURL. Non-2xx responses come back as a Page carrying
// the status code; transport failures and robots.txt refusals are errors.
func (c *Client) Fetch(ctx context.Context, rawURL string) (*domain.Page, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("%w: bad url %q", domain.ErrInvalidInput, rawURL)
	}

	if c.cfg.RespectRobots && !c.allowed(ctx, u) {
		return nil, fmt.Errorf("%s: %w", rawURL, domain.ErrDisallowed)
	}

	for attempt := 0; ; attempt++ {
		page, retryAfter, err := c.do(ctx, rawURL)
		if err != nil {
			return nil, err
		}
		if page.StatusCode != http.StatusTooManyRequests || attempt >= c.cfg.Retries {
			return page, nil
		}

		logger.Debug("429 from %s, retrying in %s", rawURL, retryAfter)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryAfter):
		}
	}
}

func (c *Client) do(ctx context.Context, rawURL string) (*domain.Page, time.Duration, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	page := &domain.Page{
		URL:         rawURL,
		FinalURL:    resp.Request.URL.String(),
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		FetchedAt:   time.Now(),
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return page, retryDelay(resp.Header.Get(headerRetryAfter)), nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return page, 0, nil
	}

	utf8Reader, err := charset.NewReader(resp.Body, page.ContentType)
	if err != nil {
		utf8Reader = resp.Body
	}
	body, err := io.ReadAll(io.LimitReader(utf8Reader, maxBodyBytes))
	if err != nil {
		return nil, 0, fmt.Errorf("read body: %w", err)
	}
	page.HTML = body
	page.Links = extractLinks(body, resp.Request.URL)
	return page, 0, nil
}

// retryDelay parses a Retry-After value in seconds, defaulting to one second.
func retryDelay(header string) time.Duration {
	seconds, err := strconv.Atoi(strings.TrimSpace(header))
	if err != nil || seconds < 0 {
		return time.Second
	}
	return min(time.Duration(seconds)*time.Second, maxRetryAfter)
}

// allowed checks u against the host's robots.txt, loading it once.
// An unreachable or unparsable robots.txt allows everything.
func (c *Client) allowed(ctx context.Context, u *url.URL) bool {
	host := u.Scheme + "://" + u.Host

	c.mu.Lock()
	group, ok := c.robots[host]
	c.mu.Unlock()

	if !ok {
		group = c.loadRobots(ctx, host)
		c.mu.Lock()
		c.robots[host] = group
		c.mu.Unlock()
	}
	if group == nil {
		return true
	}

	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}
	return group.Test(path)
}

func (c *Client) loadRobots(ctx context.Context, host string) *robotstxt.Group {
	robotsURL := host + "/robots.txt"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		logger.Debug("robots.txt %s: %v", robotsURL, err)
		return nil
	}
	defer resp.Body.Close()

	data, err := robotstxt.FromResponse(resp)
	if err != nil {
		logger.Debug("robots.txt %s: %v", robotsURL, err)
		return nil
	}
	return data.FindGroup(c.cfg.UserAgent)
}

// extractLinks returns absolute hrefs with fragments removed, in document
// order and without duplicates. Query strings are kept for pagination.
func extractLinks(body []byte, base *url.URL) []string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil
	}

	seen := make(map[string]bool)
	var links []string
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href := strings.TrimSpace(s.AttrOr("href", ""))
		if href == "" || strings.HasPrefix(href, "#") {
			return
		}
		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		abs := base.ResolveReference(ref)
		if abs.Scheme != "http" && abs.Scheme != "https" {
			return
		}
		abs.Fragment = ""
		link := abs.String()
		if !seen[link] {
			seen[link] = true
			links = append(links, link)
		}
	})
	return links
}
