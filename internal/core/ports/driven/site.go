package driven

import (
	"context"

	"github.com/custodia-labs/shopdesk/internal/core/domain"
)

// SiteClient fetches pages from the shop.
// Implementations own politeness: rate limiting, robots.txt and timeouts.
type SiteClient interface {
	// Fetch retrieves url. A non-2xx response is returned as a Page with
	// its status code, not as an error; transport failures are errors.
	Fetch(ctx context.Context, url string) (*domain.Page, error)
}

// PageExtractor turns fetched pages into records.
type PageExtractor interface {
	// ExtractProduct reads product fields using selectors.
	// Missing fields come back empty so the caller can apply placeholders.
	ExtractProduct(page *domain.Page, selectors domain.Selectors) (ProductFields, error)

	// ExtractGeneral returns the cleaned readable text of an informational page.
	ExtractGeneral(page *domain.Page) (string, error)
}

// ProductFields are the raw values pulled from a product page.
type ProductFields struct {
	Title       string
	Description string
	Price       string
}
