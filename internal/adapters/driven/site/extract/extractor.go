// Package extract implements driven.PageExtractor with CSS selectors and a
// readability pass for informational pages.
package extract

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"golang.org/x/net/html"

	"github.com/custodia-labs/shopdesk/internal/core/domain"
	"github.com/custodia-labs/shopdesk/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.PageExtractor = (*Extractor)(nil)

// skippedTags never contribute readable text.
var skippedTags = map[string]bool{
	"script": true, "style": true, "noscript": true, "template": true, "svg": true,
}

// Extractor pulls records out of fetched HTML.
type Extractor struct{}

// New creates an extractor.
func New() *Extractor {
	return &Extractor{}
}

// ExtractProduct reads the first match of each selector. Missing fields
// are returned empty.
func (e *Extractor) ExtractProduct(page *domain.Page, sel domain.Selectors) (driven.ProductFields, error) {
	doc, err := parse(page)
	if err != nil {
		return driven.ProductFields{}, err
	}
	return driven.ProductFields{
		Title:       strings.Join(textLines(first(doc, sel.Title)), " "),
		Description: strings.Join(textLines(first(doc, sel.Description)), "\n"),
		Price:       strings.Join(textLines(first(doc, sel.Price)), ""),
	}, nil
}

// ExtractGeneral returns the page's readable text, one text block per line.
// A <main> element is used as is; otherwise readability isolates the
// article and the whole body is the last resort.
func (e *Extractor) ExtractGeneral(page *domain.Page) (string, error) {
	doc, err := parse(page)
	if err != nil {
		return "", err
	}

	if main := doc.Find("main").First(); main.Length() > 0 {
		if text := strings.Join(textLines(main), "\n"); text != "" {
			return text, nil
		}
	}

	if text := readableText(page); text != "" {
		return text, nil
	}

	return strings.Join(textLines(doc.Find("body").First()), "\n"), nil
}

func parse(page *domain.Page) (*goquery.Document, error) {
	if page == nil {
		return nil, fmt.Errorf("%w: nil page", domain.ErrInvalidInput)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page.HTML))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return doc, nil
}

func first(doc *goquery.Document, selector string) *goquery.Selection {
	if strings.TrimSpace(selector) == "" {
		return &goquery.Selection{}
	}
	return doc.Find(selector).First()
}

func readableText(page *domain.Page) string {
	pageURL, err := url.Parse(page.FinalURL)
	if err != nil || page.FinalURL == "" {
		pageURL, _ = url.Parse(page.URL)
	}
	article, err := readability.FromReader(bytes.NewReader(page.HTML), pageURL)
	if err != nil {
		return ""
	}
	var lines []string
	for _, line := range strings.Split(article.TextContent, "\n") {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

// textLines returns the trimmed, non-empty text nodes under s in
// document order.
func textLines(s *goquery.Selection) []string {
	var lines []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			if text := strings.Join(strings.Fields(n.Data), " "); text != "" {
				lines = append(lines, text)
			}
			return
		case html.ElementNode:
			if skippedTags[n.Data] {
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range s.Nodes {
		walk(n)
	}
	return lines
}
