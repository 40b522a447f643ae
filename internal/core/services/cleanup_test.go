package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/shopdesk/internal/core/domain"
)

func TestStripSalutation(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"best regards", "Our gear oil suits marine use.\n\nBest regards,\nSilvestre Team", "Our gear oil suits marine use."},
		{"case insensitive", "Yes, we deliver.\nbest Regards, the team", "Yes, we deliver."},
		{"sincerely", "Thanks for asking.\nSincerely,\nSupport", "Thanks for asking."},
		{"same line", "Thanks! Best regards, Team", "Thanks!"},
		{"mid paragraph", "It ships in 20L pails. Kind regards, Silvestre Team\nCall us anytime.", "It ships in 20L pails."},
		{"thank you and", "We stock it in Manila.\nThank you and best regards!", "We stock it in Manila."},
		{"in regards to", "In regards to pricing, see the list.", "In regards to pricing, see the list."},
		{"untouched", "Regardless of size, it ships in drums.", "Regardless of size, it ships in drums."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripSalutation(tt.in))
		})
	}
}

func TestRemoveUnknownPriceClaims(t *testing.T) {
	in := "Marine Gear Oil is ideal for outboard gearboxes. Unfortunately, the price is not listed on our website. " +
		"It comes in pails and drums. We don't have pricing information for this product!"

	out := RemoveUnknownPriceClaims(in)
	assert.Contains(t, out, "ideal for outboard gearboxes.")
	assert.Contains(t, out, "It comes in pails and drums.")
	assert.NotContains(t, out, "not listed")
	assert.NotContains(t, out, "pricing information")
}

func TestCleanProductAnswer(t *testing.T) {
	summary := domain.ProductSummary{
		Name:     "Marine Gear Oil 80W-90",
		Category: "Gear Oils",
		Price:    "₱1,250.00",
		URL:      gearOilURL,
	}
	raw := "Marine Gear Oil 80W-90 protects gears. The price is not available.\n\nBest regards,\nTeam"

	out := CleanProductAnswer(raw, summary)
	assert.Equal(t, "Marine Gear Oil 80W-90 protects gears.\n\n"+
		"Price: ₱1,250.00\nCategory: Gear Oils\nURL: "+gearOilURL, out)
}

func TestCleanProductAnswer_PlaceholderPriceKeepsClaims(t *testing.T) {
	summary := domain.ProductSummary{Name: "X", Category: "Y", Price: domain.PlaceholderPrice, URL: "u"}
	out := CleanProductAnswer("The price is not listed online.", summary)
	assert.Contains(t, out, "The price is not listed online.")
	assert.Contains(t, out, "Price: "+domain.PlaceholderPrice)
}

func TestCleanGeneralAnswer(t *testing.T) {
	out := CleanGeneralAnswer("We ship nationwide.\nBest Regards, Team", "https://shop.test/shipping-and-returns")
	assert.Equal(t, "We ship nationwide.\n\nYou may also visit: https://shop.test/shipping-and-returns", out)

	assert.Equal(t, "Hello.", CleanGeneralAnswer("Hello.", ""))
}
