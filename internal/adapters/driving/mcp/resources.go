package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for shopdesk resources.
	uriScheme = "shopdesk://"

	catalogURI = uriScheme + "catalog"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         catalogURI,
		Name:        "catalog",
		Description: "All indexed products ordered by category then name",
		MIMEType:    "application/json",
	}, s.handleCatalogResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: catalogURI + "/{category}",
		Name:        "catalog-category",
		Description: "Indexed products in a single category",
		MIMEType:    "application/json",
	}, s.handleCategoryResource)
}

// handleCatalogResource returns every indexed product.
func (s *Server) handleCatalogResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	return s.catalogContents(ctx, req.Params.URI, "")
}

// handleCategoryResource returns the products of one category.
func (s *Server) handleCategoryResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	category := extractCategory(req.Params.URI)
	if category == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	return s.catalogContents(ctx, req.Params.URI, category)
}

func (s *Server) catalogContents(ctx context.Context, uri, category string) (*mcp.ReadResourceResult, error) {
	products, err := s.ports.Assistant.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}

	products = filterCategory(products, category)
	if len(products) == 0 && category != "" {
		return nil, mcp.ResourceNotFoundError(uri)
	}

	text := "[]"
	if len(products) > 0 {
		data, err := json.MarshalIndent(products, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshalling products: %w", err)
		}
		text = string(data)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     text,
		}},
	}, nil
}

// extractCategory extracts the category from a URI like shopdesk://catalog/{category}.
func extractCategory(uri string) string {
	const prefix = catalogURI + "/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	category, err := url.PathUnescape(strings.TrimPrefix(uri, prefix))
	if err != nil || strings.Contains(category, "/") {
		return ""
	}
	return category
}
