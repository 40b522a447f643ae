package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/shopdesk/internal/core/domain"
	"github.com/custodia-labs/shopdesk/internal/core/ports/driven"
)

// Ensure CatalogStore implements the interface.
var _ driven.CatalogStore = (*CatalogStore)(nil)

// CatalogStore is an in-memory implementation of driven.CatalogStore.
type CatalogStore struct {
	mu    sync.RWMutex
	items []domain.CatalogItem
}

// NewCatalogStore creates a new in-memory catalog store.
func NewCatalogStore() *CatalogStore {
	return &CatalogStore{}
}

// ReplaceAll discards the current catalog and stores items.
func (s *CatalogStore) ReplaceAll(_ context.Context, items []domain.CatalogItem) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make([]domain.CatalogItem, len(items))
	copy(s.items, items)
	return len(items), nil
}

// List returns items ordered by category then name.
func (s *CatalogStore) List(_ context.Context) ([]domain.CatalogItem, error) {
	s.mu.RLock()
	out := make([]domain.CatalogItem, len(s.items))
	copy(out, s.items)
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// Close is a no-op.
func (s *CatalogStore) Close() error {
	return nil
}
