package mcp

import (
	"context"

	"github.com/custodia-labs/shopdesk/internal/core/domain"
)

// mockAssistantService is a mock implementation of driving.AssistantService.
type mockAssistantService struct {
	answer   *domain.Answer
	products []domain.ProductSummary
	err      error

	lastConversation string
	lastQuestion     string
	resets           []string
}

func (m *mockAssistantService) Ask(_ context.Context, conversationID, query string) (*domain.Answer, error) {
	m.lastConversation = conversationID
	m.lastQuestion = query
	return m.answer, m.err
}

func (m *mockAssistantService) Reset(conversationID string) {
	m.resets = append(m.resets, conversationID)
}

func (m *mockAssistantService) ListProducts(_ context.Context) ([]domain.ProductSummary, error) {
	return m.products, m.err
}

// mockRefreshService is a mock implementation of driving.RefreshService.
type mockRefreshService struct {
	report *domain.RefreshReport
	err    error
	calls  int
}

func (m *mockRefreshService) Refresh(_ context.Context) (*domain.RefreshReport, error) {
	m.calls++
	return m.report, m.err
}

func (m *mockRefreshService) History(_ context.Context, _ int) ([]domain.TaskResult, error) {
	return nil, m.err
}

func sampleProducts() []domain.ProductSummary {
	return []domain.ProductSummary{
		{Name: "Oak Desk", Category: "Furniture", Price: "$250", URL: "https://shop.test/product/oak-desk"},
		{Name: "Pine Shelf", Category: "Furniture", Price: "$90", URL: "https://shop.test/product/pine-shelf"},
		{Name: "Desk Lamp", Category: "Lighting", Price: "$40", URL: "https://shop.test/product/desk-lamp"},
	}
}
