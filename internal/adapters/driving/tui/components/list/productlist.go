// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/shopdesk/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/shopdesk/internal/core/domain"
)

// ProductList displays indexed products in a navigable list grouped by
// category. Products are expected ordered by category.
type ProductList struct {
	products []domain.ProductSummary
	selected int
	styles   *styles.Styles
	width    int
	height   int
}

// NewProductList creates a new product list component.
func NewProductList(s *styles.Styles) *ProductList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &ProductList{
		styles: s,
		width:  80,
		height: 10,
	}
}

// View renders the visible window of the list.
func (l *ProductList) View() string {
	if len(l.products) == 0 {
		return l.styles.Muted.Render("No products indexed. Press ctrl+r in the chat to refresh.")
	}

	lines := make([]string, 0, l.height)
	lines = append(lines, l.styles.Subtitle.Render(fmt.Sprintf("Products (%d)", len(l.products))), "")

	start, end := l.window()
	category := ""
	if start > 0 {
		category = l.products[start-1].Category
	}
	for i := start; i < end; i++ {
		p := l.products[i]
		if p.Category != category {
			category = p.Category
			lines = append(lines, l.styles.Title.Render(categoryLabel(category)))
		}
		lines = append(lines, l.renderProduct(i, p))
	}

	return strings.Join(lines, "\n")
}

// window returns the half-open range of rows that fit, keeping the
// selection visible. Category headers share the space, so each row is
// counted twice in the worst case.
func (l *ProductList) window() (int, int) {
	visible := max((l.height-2)/2, 1)

	start := 0
	if l.selected >= visible {
		start = l.selected - visible + 1
	}
	return start, min(start+visible, len(l.products))
}

func (l *ProductList) renderProduct(index int, p domain.ProductSummary) string {
	indicator := "  "
	if index == l.selected {
		indicator = "> "
	}

	name := truncate(p.Name, max(l.width-24, 10))
	if index == l.selected {
		return l.styles.Selected.Render(fmt.Sprintf("%s%s  %s", indicator, name, p.Price))
	}
	return l.styles.Normal.Render(indicator+name+"  ") + l.styles.Muted.Render(p.Price)
}

func categoryLabel(category string) string {
	if category == "" {
		return "[uncategorized]"
	}
	return "[" + category + "]"
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-3]) + "..."
}

// SetProducts replaces the listed products and resets the selection.
func (l *ProductList) SetProducts(products []domain.ProductSummary) {
	l.products = products
	l.selected = 0
}

// Products returns the listed products.
func (l *ProductList) Products() []domain.ProductSummary {
	return l.products
}

// Selected returns the index of the selected product.
func (l *ProductList) Selected() int {
	return l.selected
}

// SelectedProduct returns the highlighted product, or nil if the list is empty.
func (l *ProductList) SelectedProduct() *domain.ProductSummary {
	if l.selected < 0 || l.selected >= len(l.products) {
		return nil
	}
	return &l.products[l.selected]
}

// MoveUp moves selection up.
func (l *ProductList) MoveUp() {
	if l.selected > 0 {
		l.selected--
	}
}

// MoveDown moves selection down.
func (l *ProductList) MoveDown() {
	if l.selected < len(l.products)-1 {
		l.selected++
	}
}

// SetDimensions sets the component dimensions.
func (l *ProductList) SetDimensions(width, height int) {
	l.width = width
	l.height = height
}

// Count returns the number of products.
func (l *ProductList) Count() int {
	return len(l.products)
}
