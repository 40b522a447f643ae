package driven

import (
	"context"

	"github.com/custodia-labs/shopdesk/internal/core/domain"
)

// CatalogStore persists the scraped product rows.
type CatalogStore interface {
	// ReplaceAll drops the current catalog and stores items in its place.
	// It returns the number of rows written.
	ReplaceAll(ctx context.Context, items []domain.CatalogItem) (int, error)

	// List returns every stored item ordered by category then name.
	List(ctx context.Context) ([]domain.CatalogItem, error)

	// Close releases resources.
	Close() error
}
