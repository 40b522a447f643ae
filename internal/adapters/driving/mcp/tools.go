package mcp

import (
	"context"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/shopdesk/internal/core/domain"
)

// defaultConversation is used when a client does not name a conversation.
const defaultConversation = "mcp"

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question       string `json:"question" jsonschema:"the customer question to answer"`
	ConversationID string `json:"conversation_id,omitempty" jsonschema:"conversation to continue (default mcp)"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer  string                 `json:"answer"`
	Path    string                 `json:"path"`
	Product *domain.ProductSummary `json:"product,omitempty"`
}

// ListProductsInput is the input schema for the list_products tool.
type ListProductsInput struct {
	Category string `json:"category,omitempty" jsonschema:"only list products in this category"`
}

// ListProductsOutput is the output schema for the list_products tool.
type ListProductsOutput struct {
	Products []domain.ProductSummary `json:"products"`
	Count    int                     `json:"count"`
}

// RefreshInput is the input schema for the refresh tool.
type RefreshInput struct{}

// RefreshOutput is the output schema for the refresh tool.
type RefreshOutput struct {
	URLsFound      int    `json:"urls_found"`
	RecordsScraped int    `json:"records_scraped"`
	ScrapeFailures int    `json:"scrape_failures"`
	RowsInserted   int    `json:"rows_inserted"`
	GeneralPages   int    `json:"general_pages"`
	ChunksAdded    int    `json:"chunks_added"`
	ChunksSkipped  int    `json:"chunks_skipped"`
	CrawlAborted   bool   `json:"crawl_aborted"`
	Duration       string `json:"duration"`
}

// ResetInput is the input schema for the reset_conversation tool.
type ResetInput struct {
	ConversationID string `json:"conversation_id,omitempty" jsonschema:"conversation to clear (default mcp)"`
}

// ResetOutput is the output schema for the reset_conversation tool.
type ResetOutput struct {
	ConversationID string `json:"conversation_id"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a customer question about the shop's products or company pages",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_products",
		Description: "List indexed products with category, price and URL",
	}, s.handleListProducts)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "refresh",
		Description: "Crawl the shop site and rebuild the catalog and chunk index",
	}, s.handleRefresh)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "reset_conversation",
		Description: "Forget the follow-up state and history of a conversation",
	}, s.handleReset)
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	answer, err := s.ports.Assistant.Ask(ctx, conversationOrDefault(input.ConversationID), input.Question)
	if err != nil {
		return nil, AskOutput{}, err
	}

	return nil, AskOutput{
		Answer:  answer.Text,
		Path:    string(answer.Path),
		Product: answer.Product,
	}, nil
}

// handleListProducts handles the list_products tool invocation.
func (s *Server) handleListProducts(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListProductsInput,
) (*mcp.CallToolResult, ListProductsOutput, error) {
	products, err := s.ports.Assistant.ListProducts(ctx)
	if err != nil {
		return nil, ListProductsOutput{}, err
	}

	products = filterCategory(products, input.Category)
	if products == nil {
		products = []domain.ProductSummary{}
	}

	return nil, ListProductsOutput{Products: products, Count: len(products)}, nil
}

// handleRefresh handles the refresh tool invocation.
func (s *Server) handleRefresh(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ RefreshInput,
) (*mcp.CallToolResult, RefreshOutput, error) {
	if s.ports.Refresh == nil {
		return nil, RefreshOutput{}, ErrRefreshUnavailable
	}

	report, err := s.ports.Refresh.Refresh(ctx)
	if err != nil {
		return nil, RefreshOutput{}, err
	}

	return nil, RefreshOutput{
		URLsFound:      report.URLsFound,
		RecordsScraped: report.RecordsScraped,
		ScrapeFailures: report.ScrapeFailures,
		RowsInserted:   report.RowsInserted,
		GeneralPages:   report.GeneralPages,
		ChunksAdded:    report.ChunksAdded,
		ChunksSkipped:  report.ChunksSkipped,
		CrawlAborted:   report.CrawlAborted,
		Duration:       report.Duration.String(),
	}, nil
}

// handleReset handles the reset_conversation tool invocation.
func (s *Server) handleReset(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input ResetInput,
) (*mcp.CallToolResult, ResetOutput, error) {
	id := conversationOrDefault(input.ConversationID)
	s.ports.Assistant.Reset(id)
	return nil, ResetOutput{ConversationID: id}, nil
}

func conversationOrDefault(id string) string {
	if id = strings.TrimSpace(id); id != "" {
		return id
	}
	return defaultConversation
}

// filterCategory keeps products whose category matches, ignoring case.
// An empty category keeps everything.
func filterCategory(products []domain.ProductSummary, category string) []domain.ProductSummary {
	category = strings.TrimSpace(category)
	if category == "" {
		return products
	}
	var out []domain.ProductSummary
	for _, p := range products {
		if strings.EqualFold(p.Category, category) {
			out = append(out, p)
		}
	}
	return out
}
