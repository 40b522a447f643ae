package products

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/shopdesk/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/shopdesk/internal/core/domain"
)

type mockAssistant struct {
	products []domain.ProductSummary
	err      error
}

func (m *mockAssistant) Ask(context.Context, string, string) (*domain.Answer, error) {
	return nil, nil
}

func (m *mockAssistant) Reset(string) {}

func (m *mockAssistant) ListProducts(context.Context) ([]domain.ProductSummary, error) {
	return m.products, m.err
}

func sampleProducts() []domain.ProductSummary {
	return []domain.ProductSummary{
		{Name: "Desk Lamp", Category: "Lighting", Price: "$25.00", URL: "https://shop.test/p/lamp"},
		{Name: "Oak Chair", Category: "Seating", Price: "$120.00", URL: "https://shop.test/p/chair"},
	}
}

func loadedView(t *testing.T, assistant *mockAssistant) *View {
	t.Helper()
	v := NewView(nil, nil, assistant)
	v.SetDimensions(80, 24)
	cmd := v.Init()
	require.NotNil(t, cmd)
	assert.True(t, v.Loading())
	v.Update(cmd())
	return v
}

func TestView_LoadsProducts(t *testing.T) {
	v := loadedView(t, &mockAssistant{products: sampleProducts()})

	assert.False(t, v.Loading())
	assert.NoError(t, v.Err())
	assert.Equal(t, 2, v.Count())

	view := v.View()
	assert.Contains(t, view, "Products (2)")
	assert.Contains(t, view, "[Seating]")
}

func TestView_LoadError(t *testing.T) {
	v := loadedView(t, &mockAssistant{err: errors.New("index offline")})

	assert.EqualError(t, v.Err(), "index offline")
	assert.Contains(t, v.View(), "Error: index offline")
}

func TestView_LoadingPlaceholder(t *testing.T) {
	v := NewView(nil, nil, &mockAssistant{})
	v.SetDimensions(80, 24)
	v.Init()

	assert.Contains(t, v.View(), "Loading products...")
}

func TestView_SelectChoosesProduct(t *testing.T) {
	v := loadedView(t, &mockAssistant{products: sampleProducts()})

	v.Update(tea.KeyMsg{Type: tea.KeyDown})
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})

	require.NotNil(t, cmd)
	chosen, ok := cmd().(messages.ProductChosen)
	require.True(t, ok)
	assert.Equal(t, "Oak Chair", chosen.Product.Name)
}

func TestView_SelectOnEmptyList(t *testing.T) {
	v := loadedView(t, &mockAssistant{})

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
	assert.Contains(t, v.View(), "No products indexed")
}

func TestView_VimNavigation(t *testing.T) {
	v := loadedView(t, &mockAssistant{products: sampleProducts()})

	v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}})
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})

	chosen := cmd().(messages.ProductChosen)
	assert.Equal(t, "Desk Lamp", chosen.Product.Name)
}

func TestView_BackReturnsToChat(t *testing.T) {
	for _, k := range []tea.KeyType{tea.KeyEsc, tea.KeyTab} {
		v := loadedView(t, &mockAssistant{})

		_, cmd := v.Update(tea.KeyMsg{Type: k})

		require.NotNil(t, cmd)
		assert.Equal(t, messages.ViewChanged{View: messages.ViewChat}, cmd())
	}
}

func TestView_NotReadyBeforeSizing(t *testing.T) {
	v := NewView(nil, nil, &mockAssistant{})

	assert.False(t, v.Ready())
	assert.Equal(t, "Initialising...", v.View())
}
