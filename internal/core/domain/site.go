package domain

import (
	"net/url"
	"strconv"
	"strings"
)

// Selectors are the CSS selectors used to pull product fields.
type Selectors struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Price       string `yaml:"price"`
}

// Category is a crawlable product category.
type Category struct {
	Slug string `yaml:"slug"`
	Name string `yaml:"name"`
}

// InfoPage is an informational page scraped on every refresh.
// Keywords also drive the "You may also visit" link.
type InfoPage struct {
	Label    string   `yaml:"label"`
	Path     string   `yaml:"path"`
	Keywords []string `yaml:"keywords,omitempty"`
}

// LabelRule maps query keywords to a general-page label.
type LabelRule struct {
	Label    string   `yaml:"label"`
	Keywords []string `yaml:"keywords,omitempty"`
}

// SiteProfile describes the target shop: where to crawl, how to extract
// and the keyword tables the classifier uses.
type SiteProfile struct {
	Company             string      `yaml:"company"`
	BaseURL             string      `yaml:"base_url"`
	ShopPath            string      `yaml:"shop_path"`
	ProductPathPattern  string      `yaml:"product_path_pattern"`
	CategoryURLTemplate string      `yaml:"category_url_template"`
	Categories          []Category  `yaml:"categories,omitempty"`
	Selectors           Selectors   `yaml:"selectors"`
	InfoPages           []InfoPage  `yaml:"info_pages,omitempty"`
	LabelRules          []LabelRule `yaml:"label_rules,omitempty"`
	ProductKeywords     []string    `yaml:"product_keywords,omitempty"`
	FollowUpMarkers     []string    `yaml:"followup_markers,omitempty"`
	ListingPhrases      []string    `yaml:"listing_phrases,omitempty"`
}

// SeedURL returns the crawl entry point.
func (p SiteProfile) SeedURL() string {
	return p.ResolveURL(p.ShopPath)
}

// ResolveURL resolves path against BaseURL.
func (p SiteProfile) ResolveURL(path string) string {
	base, err := url.Parse(p.BaseURL)
	if err != nil {
		return strings.TrimRight(p.BaseURL, "/") + path
	}
	ref, err := url.Parse(path)
	if err != nil {
		return strings.TrimRight(p.BaseURL, "/") + path
	}
	return base.ResolveReference(ref).String()
}

// CategoryPageURL expands the category template for one page.
// The template understands {category} and {page}.
func (p SiteProfile) CategoryPageURL(slug string, page int) string {
	r := strings.NewReplacer(
		"{category}", url.PathEscape(slug),
		"{page}", strconv.Itoa(page),
	)
	return p.ResolveURL(r.Replace(p.CategoryURLTemplate))
}

// IsProductURL reports whether u looks like a product-detail page.
func (p SiteProfile) IsProductURL(u string) bool {
	return p.ProductPathPattern != "" && strings.Contains(u, p.ProductPathPattern)
}

// InfoPageFor returns the informational page registered under label.
func (p SiteProfile) InfoPageFor(label string) (InfoPage, bool) {
	for _, page := range p.InfoPages {
		if page.Label == label {
			return page, true
		}
	}
	return InfoPage{}, false
}

// DefaultSiteProfile returns the profile for the Silvestre shop.
func DefaultSiteProfile() SiteProfile {
	return SiteProfile{
		Company:             "Silvestre Oil Company",
		BaseURL:             "https://www.silvestreph.com",
		ShopPath:            "/shop",
		ProductPathPattern:  "/product-page/",
		CategoryURLTemplate: "/shop?category={category}&page={page}",
		Selectors: Selectors{
			Title:       "h1",
			Description: "div.elementor-widget-theme-post-content",
			Price:       `span[data-hook="formatted-primary-price"]`,
		},
		InfoPages: []InfoPage{
			{Label: "about", Path: "/about", Keywords: []string{"about", "company", "who are you"}},
			{Label: "contact", Path: "/contact", Keywords: []string{"contact", "phone", "email", "reach"}},
			{Label: "faq", Path: "/help-center", Keywords: []string{"faq", "help", "question"}},
			{Label: "partners", Path: "/partners", Keywords: []string{"partner", "distributor", "dealer"}},
			{Label: "ship", Path: "/shipping-and-returns", Keywords: []string{"ship", "deliver", "return", "refund"}},
			{Label: "track", Path: "/tracking-page", Keywords: []string{"track", "order status"}},
		},
		LabelRules: []LabelRule{
			{Label: "contact", Keywords: []string{"contact", "phone", "email", "call", "reach"}},
			{Label: "ship", Keywords: []string{"shipping", "ship", "delivery", "deliver", "return", "refund"}},
			{Label: "warranty", Keywords: []string{"warranty", "guarantee"}},
			{Label: "track", Keywords: []string{"tracking", "track", "order status"}},
			{Label: "blog", Keywords: []string{"blog", "article", "news"}},
			{Label: "partners", Keywords: []string{"partner", "distributor", "dealer"}},
			{Label: "home", Keywords: []string{"home", "homepage", "website"}},
			{Label: "faq", Keywords: []string{"faq", "help center", "frequently asked"}},
			{Label: "privacy", Keywords: []string{"privacy", "personal data"}},
			{Label: "terms", Keywords: []string{"terms", "conditions", "policy"}},
		},
		ProductKeywords: []string{
			"oil", "lubricant", "grease", "tire", "engine",
			"transmission", "coolant", "fluid", "gear", "hydraulic",
		},
		FollowUpMarkers: []string{
			"how much", "price", "cost", "is it available", "available",
			"does it", "what size", "size", "packaging", "pail", "drum",
			"can i", "do you offer", "does this product",
		},
		ListingPhrases: []string{
			"show me your products", "what products do you have",
			"what products do you sell", "list your products",
			"list all products", "show all products", "your product list",
			"what do you sell", "product catalog",
		},
	}
}
