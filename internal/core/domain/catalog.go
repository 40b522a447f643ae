package domain

import (
	"fmt"
	"strings"
)

// Placeholder values used when a product page lacks a field.
const (
	PlaceholderTitle       = "Untitled Product"
	PlaceholderDescription = "No description available."
	PlaceholderPrice       = "Contact us for pricing"

	// DefaultAvailability is the fixed availability literal for every product.
	DefaultAvailability = "Available in Pails and Drums"

	// UncategorizedCategory is assigned by link-following discovery.
	UncategorizedCategory = "Uncategorized"
)

// CatalogItem is a scraped product record.
// Items are immutable; a later crawl supersedes them wholesale.
type CatalogItem struct {
	// URL is the normalized product page URL and the catalog key.
	URL string `json:"url"`

	// Name is the product title.
	Name string `json:"name"`

	// Category is the display category, or UncategorizedCategory.
	Category string `json:"category"`

	// Price is free text, possibly PlaceholderPrice.
	Price string `json:"price"`

	// Description is the joined description paragraphs.
	Description string `json:"description"`

	// Availability is always DefaultAvailability.
	Availability string `json:"availability"`

	// ContentHash is the digest of RenderedText.
	ContentHash string `json:"content_hash"`
}

// NewCatalogItem builds an item, substituting placeholders for empty fields
// and stamping the content hash.
func NewCatalogItem(url, category, name, description, price string) CatalogItem {
	name = strings.TrimSpace(name)
	if name == "" {
		name = PlaceholderTitle
	}
	description = strings.TrimSpace(description)
	if description == "" {
		description = PlaceholderDescription
	}
	price = strings.TrimSpace(price)
	if price == "" {
		price = PlaceholderPrice
	}
	if category == "" {
		category = UncategorizedCategory
	}

	item := CatalogItem{
		URL:          url,
		Name:         name,
		Category:     category,
		Price:        price,
		Description:  description,
		Availability: DefaultAvailability,
	}
	item.ContentHash = ContentHash(item.RenderedText())
	return item
}

// RenderedText returns the canonical text block the hash is computed over.
func (c CatalogItem) RenderedText() string {
	return fmt.Sprintf("%s\n\n%s\n\nPrice: %s\nAvailability: %s\nURL: %s",
		c.Name, c.Description, c.Price, c.Availability, c.URL)
}

// Summary returns the listing view of the item.
func (c CatalogItem) Summary() ProductSummary {
	return ProductSummary{Name: c.Name, Category: c.Category, Price: c.Price, URL: c.URL}
}

// Record converts the item into an index record.
func (c CatalogItem) Record() IndexRecord {
	return IndexRecord{
		Text: c.RenderedText(),
		Metadata: ChunkMetadata{
			Type:     ChunkTypeProduct,
			Name:     c.Name,
			Category: c.Category,
			Price:    c.Price,
			URL:      c.URL,
		},
	}
}

// PageTypeGeneral is the page type of every informational page.
const PageTypeGeneral = "general"

// InformationalPage is a scraped company page such as about or contact.
type InformationalPage struct {
	Label    string `json:"label"`
	URL      string `json:"url"`
	BodyText string `json:"body_text"`
	PageType string `json:"page_type"`
}

// RenderedText returns the indexed text block for the page.
func (p InformationalPage) RenderedText() string {
	return fmt.Sprintf("%s\n%s\nURL: %s", strings.ToUpper(p.Label), p.BodyText, p.URL)
}

// Record converts the page into an index record.
func (p InformationalPage) Record() IndexRecord {
	return IndexRecord{
		Text: p.RenderedText(),
		Metadata: ChunkMetadata{
			Type:  ChunkTypeGeneral,
			Label: p.Label,
			URL:   p.URL,
		},
	}
}

// IndexRecord is a rendered record awaiting chunking and hashing.
type IndexRecord struct {
	Text     string
	Metadata ChunkMetadata
}

// Hash returns the content hash of the rendered record.
func (r IndexRecord) Hash() string {
	return ContentHash(r.Text)
}
