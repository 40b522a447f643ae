package sqlite

import (
	"context"
	"fmt"

	"github.com/custodia-labs/shopdesk/internal/core/domain"
	"github.com/custodia-labs/shopdesk/internal/core/ports/driven"
)

// catalogStore implements driven.CatalogStore over the products table.
type catalogStore struct {
	store *Store
}

var _ driven.CatalogStore = (*catalogStore)(nil)

// ReplaceAll swaps the whole catalog in one transaction, so readers see
// either the old rows or the new ones.
func (s *catalogStore) ReplaceAll(ctx context.Context, items []domain.CatalogItem) (int, error) {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning catalog replace: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM products"); err != nil {
		return 0, fmt.Errorf("clearing products: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO products (url, name, category, price, description, availability, content_hash)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing product insert: %w", err)
	}
	defer stmt.Close()

	for _, item := range items {
		if _, err := stmt.ExecContext(ctx, item.URL, item.Name, item.Category, item.Price,
			item.Description, item.Availability, item.ContentHash); err != nil {
			return 0, fmt.Errorf("inserting product %s: %w", item.URL, err)
		}
	}

	var count int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM products").Scan(&count); err != nil {
		return 0, fmt.Errorf("counting products: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing catalog replace: %w", err)
	}
	return count, nil
}

// List returns every product ordered by category then name.
func (s *catalogStore) List(ctx context.Context) ([]domain.CatalogItem, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT url, name, category, price, description, availability, content_hash
		FROM products
		ORDER BY category, name
	`)
	if err != nil {
		return nil, fmt.Errorf("querying products: %w", err)
	}
	defer rows.Close()

	var items []domain.CatalogItem //nolint:prealloc // size unknown from query
	for rows.Next() {
		var item domain.CatalogItem
		if err := rows.Scan(&item.URL, &item.Name, &item.Category, &item.Price,
			&item.Description, &item.Availability, &item.ContentHash); err != nil {
			return nil, fmt.Errorf("scanning product: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating products: %w", err)
	}
	return items, nil
}

// Close is a no-op; the owning Store closes the database.
func (s *catalogStore) Close() error {
	return nil
}
