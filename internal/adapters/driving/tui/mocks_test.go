package tui

import (
	"context"
	"sync"

	"github.com/custodia-labs/shopdesk/internal/core/domain"
	"github.com/custodia-labs/shopdesk/internal/core/ports/driving"
)

// mockAssistantService implements driving.AssistantService for testing.
type mockAssistantService struct {
	mu       sync.Mutex
	asked    []string
	products []domain.ProductSummary
}

var _ driving.AssistantService = (*mockAssistantService)(nil)

func (m *mockAssistantService) Ask(_ context.Context, _, query string) (*domain.Answer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.asked = append(m.asked, query)
	return &domain.Answer{Text: "Answer to: " + query, Path: domain.AnswerPathProduct}, nil
}

func (m *mockAssistantService) Reset(string) {}

func (m *mockAssistantService) ListProducts(context.Context) ([]domain.ProductSummary, error) {
	return m.products, nil
}

func (m *mockAssistantService) questions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.asked...)
}

// mockRefreshService implements driving.RefreshService for testing.
type mockRefreshService struct{}

var _ driving.RefreshService = (*mockRefreshService)(nil)

func (m *mockRefreshService) Refresh(context.Context) (*domain.RefreshReport, error) {
	return &domain.RefreshReport{RecordsScraped: 3}, nil
}

func (m *mockRefreshService) History(context.Context, int) ([]domain.TaskResult, error) {
	return nil, nil
}

func sampleProducts() []domain.ProductSummary {
	return []domain.ProductSummary{
		{Name: "Desk Lamp", Category: "Lighting", Price: "$25.00", URL: "https://shop.test/p/lamp"},
		{Name: "Oak Chair", Category: "Seating", Price: "$120.00", URL: "https://shop.test/p/chair"},
	}
}
