package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/shopdesk/internal/core/domain"
)

func TestExtractCategory(t *testing.T) {
	tests := []struct {
		name     string
		uri      string
		expected string
	}{
		{
			name:     "valid category URI",
			uri:      "shopdesk://catalog/Furniture",
			expected: "Furniture",
		},
		{
			name:     "escaped category",
			uri:      "shopdesk://catalog/Home%20Office",
			expected: "Home Office",
		},
		{
			name:     "invalid prefix",
			uri:      "file://catalog/Furniture",
			expected: "",
		},
		{
			name:     "nested path",
			uri:      "shopdesk://catalog/a/b",
			expected: "",
		},
		{
			name:     "catalog root",
			uri:      "shopdesk://catalog",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractCategory(tt.uri))
		})
	}
}

// Helper to create a ReadResourceRequest with the given URI.
func makeReadResourceRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

func TestServer_handleCatalogResource(t *testing.T) {
	ctx := context.Background()

	t.Run("empty catalog returns empty list", func(t *testing.T) {
		server := newTestServer(t, &Ports{Assistant: &mockAssistantService{}})

		result, err := server.handleCatalogResource(ctx, makeReadResourceRequest(catalogURI))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "[]", result.Contents[0].Text)
	})

	t.Run("returns products as JSON", func(t *testing.T) {
		server := newTestServer(t, &Ports{Assistant: &mockAssistantService{products: sampleProducts()}})

		result, err := server.handleCatalogResource(ctx, makeReadResourceRequest(catalogURI))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "application/json", result.Contents[0].MIMEType)

		var products []domain.ProductSummary
		require.NoError(t, json.Unmarshal([]byte(result.Contents[0].Text), &products))
		assert.Equal(t, sampleProducts(), products)
	})

	t.Run("wraps listing errors", func(t *testing.T) {
		server := newTestServer(t, &Ports{Assistant: &mockAssistantService{err: errors.New("db closed")}})

		_, err := server.handleCatalogResource(ctx, makeReadResourceRequest(catalogURI))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "listing products")
	})
}

func TestServer_handleCategoryResource(t *testing.T) {
	ctx := context.Background()
	server := newTestServer(t, &Ports{Assistant: &mockAssistantService{products: sampleProducts()}})

	t.Run("returns one category", func(t *testing.T) {
		result, err := server.handleCategoryResource(ctx, makeReadResourceRequest(catalogURI+"/furniture"))

		require.NoError(t, err)
		var products []domain.ProductSummary
		require.NoError(t, json.Unmarshal([]byte(result.Contents[0].Text), &products))
		assert.Len(t, products, 2)
	})

	t.Run("unknown category is not found", func(t *testing.T) {
		_, err := server.handleCategoryResource(ctx, makeReadResourceRequest(catalogURI+"/garden"))
		assert.Error(t, err)
	})

	t.Run("malformed URI is not found", func(t *testing.T) {
		_, err := server.handleCategoryResource(ctx, makeReadResourceRequest("other://catalog/x"))
		assert.Error(t, err)
	})
}
