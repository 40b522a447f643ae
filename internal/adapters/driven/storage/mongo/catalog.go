// Package mongo provides a MongoDB-backed driven.CatalogStore.
package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/custodia-labs/shopdesk/internal/core/domain"
	"github.com/custodia-labs/shopdesk/internal/core/ports/driven"
)

// Ensure CatalogStore implements the interface.
var _ driven.CatalogStore = (*CatalogStore)(nil)

// CollectionName is the collection holding product rows.
const CollectionName = "products"

const (
	connectTimeout = 10 * time.Second
	opTimeout      = 30 * time.Second
)

// product is the stored document shape.
type product struct {
	URL          string `bson:"url"`
	Name         string `bson:"name"`
	Category     string `bson:"category"`
	Price        string `bson:"price"`
	Description  string `bson:"description"`
	Availability string `bson:"availability"`
	ContentHash  string `bson:"content_hash"`
}

// CatalogStore keeps the catalog in one collection, keyed by URL.
type CatalogStore struct {
	client   *mongo.Client
	products *mongo.Collection
}

// NewCatalogStore connects to uri, pings the server and ensures the
// URL index on database.products.
func NewCatalogStore(ctx context.Context, uri, database string) (*CatalogStore, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connecting to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("pinging mongo: %w", err)
	}

	s := newCatalogStore(client, client.Database(database).Collection(CollectionName))
	_, err = s.products.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "url", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "category", Value: 1}, {Key: "name", Value: 1}}},
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("creating product indexes: %w", err)
	}
	return s, nil
}

func newCatalogStore(client *mongo.Client, products *mongo.Collection) *CatalogStore {
	return &CatalogStore{client: client, products: products}
}

// ReplaceAll deletes every product and inserts items. Duplicate URLs keep
// the first occurrence. The swap is not atomic on standalone servers.
func (s *CatalogStore) ReplaceAll(ctx context.Context, items []domain.CatalogItem) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if _, err := s.products.DeleteMany(ctx, bson.D{}); err != nil {
		return 0, fmt.Errorf("clearing products: %w", err)
	}

	seen := make(map[string]bool, len(items))
	docs := make([]any, 0, len(items))
	for _, item := range items {
		if seen[item.URL] {
			continue
		}
		seen[item.URL] = true
		docs = append(docs, product{
			URL:          item.URL,
			Name:         item.Name,
			Category:     item.Category,
			Price:        item.Price,
			Description:  item.Description,
			Availability: item.Availability,
			ContentHash:  item.ContentHash,
		})
	}
	if len(docs) == 0 {
		return 0, nil
	}

	res, err := s.products.InsertMany(ctx, docs)
	if err != nil {
		return 0, fmt.Errorf("inserting products: %w", err)
	}
	return len(res.InsertedIDs), nil
}

// List returns every product ordered by category then name.
func (s *CatalogStore) List(ctx context.Context) ([]domain.CatalogItem, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "category", Value: 1}, {Key: "name", Value: 1}})
	cursor, err := s.products.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("querying products: %w", err)
	}
	defer cursor.Close(ctx)

	var items []domain.CatalogItem
	for cursor.Next(ctx) {
		var p product
		if err := cursor.Decode(&p); err != nil {
			return nil, fmt.Errorf("decoding product: %w", err)
		}
		items = append(items, domain.CatalogItem(p))
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("iterating products: %w", err)
	}
	return items, nil
}

// Close disconnects the client.
func (s *CatalogStore) Close() error {
	if s.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	return s.client.Disconnect(ctx)
}
