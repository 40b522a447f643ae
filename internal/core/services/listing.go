package services

import (
	"fmt"
	"sort"
	"strings"

	"github.com/custodia-labs/shopdesk/internal/core/domain"
)

// ListingPerCategory is how many products each category shows in a listing.
const ListingPerCategory = 5

// GroupByCategory groups products by category in name order, keeping at
// most perCategory of each. perCategory <= 0 keeps all.
func GroupByCategory(products []domain.ProductSummary, perCategory int) (map[string][]domain.ProductSummary, []string) {
	groups := make(map[string][]domain.ProductSummary)
	for _, p := range products {
		cat := p.Category
		if cat == "" {
			cat = domain.UncategorizedCategory
		}
		groups[cat] = append(groups[cat], p)
	}

	categories := make([]string, 0, len(groups))
	for cat, items := range groups {
		sort.SliceStable(items, func(i, j int) bool { return items[i].Name < items[j].Name })
		if perCategory > 0 && len(items) > perCategory {
			groups[cat] = items[:perCategory]
		}
		categories = append(categories, cat)
	}
	sort.Strings(categories)
	return groups, categories
}

// RenderListing renders a categorized bullet list of products.
func RenderListing(company string, products []domain.ProductSummary) string {
	if len(products) == 0 {
		return "Our product list is not available right now. Please try again later."
	}

	groups, categories := GroupByCategory(products, ListingPerCategory)

	var b strings.Builder
	if company != "" {
		fmt.Fprintf(&b, "Here are some of the products from %s:\n", company)
	} else {
		b.WriteString("Here are some of our products:\n")
	}
	for _, cat := range categories {
		fmt.Fprintf(&b, "\n%s\n", cat)
		for _, p := range groups[cat] {
			fmt.Fprintf(&b, "- %s (%s)\n", p.Name, p.Price)
		}
	}
	b.WriteString("\nAsk me about any of them for details.")
	return b.String()
}
