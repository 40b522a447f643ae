package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewCatalogItem_Placeholders(t *testing.T) {
	item := NewCatalogItem("https://silvestreph.com/product-page/x", "", "  ", "", "")

	assert.Equal(t, PlaceholderTitle, item.Name)
	assert.Equal(t, PlaceholderDescription, item.Description)
	assert.Equal(t, PlaceholderPrice, item.Price)
	assert.Equal(t, DefaultAvailability, item.Availability)
	assert.Equal(t, UncategorizedCategory, item.Category)
	assert.False(t, item.Summary().HasKnownPrice())
}

func TestCatalogItem_RenderedText(t *testing.T) {
	item := NewCatalogItem("https://silvestreph.com/product-page/mgo", "Gear Oils",
		"Marine Gear Oil 80W-90", "Heavy duty.", "₱1,250.00")

	expected := "Marine Gear Oil 80W-90\n\nHeavy duty.\n\nPrice: ₱1,250.00\n" +
		"Availability: Available in Pails and Drums\nURL: https://silvestreph.com/product-page/mgo"
	assert.Equal(t, expected, item.RenderedText())
	assert.True(t, item.Summary().HasKnownPrice())
}

func TestCatalogItem_HashStability(t *testing.T) {
	a := NewCatalogItem("https://silvestreph.com/product-page/mgo", "Gear Oils",
		"Marine Gear Oil 80W-90", "Heavy duty.", "₱1,250.00")
	b := NewCatalogItem("https://silvestreph.com/product-page/mgo", "Gear Oils",
		"Marine Gear Oil 80W-90", "Heavy duty.", "₱1,250.00")

	assert.Equal(t, a.ContentHash, b.ContentHash)
	assert.Len(t, a.ContentHash, 32)
	assert.Equal(t, ContentHash(a.RenderedText()), a.ContentHash)

	changed := NewCatalogItem("https://silvestreph.com/product-page/mgo", "Gear Oils",
		"Marine Gear Oil 80W-90", "Heavy duty.", "₱1,300.00")
	assert.NotEqual(t, a.ContentHash, changed.ContentHash)
}

func TestContentHash_KnownValue(t *testing.T) {
	assert.Equal(t, "d41d8cd98f00b204e9800998ecf8427e", ContentHash(""))
	assert.Equal(t, "5d41402abc4b2a76b9719d911017c592", ContentHash("hello"))
}

func TestCatalogItem_Record(t *testing.T) {
	item := NewCatalogItem("https://silvestreph.com/product-page/mgo", "Gear Oils",
		"Marine Gear Oil 80W-90", "Heavy duty.", "₱1,250.00")

	rec := item.Record()
	assert.Equal(t, item.RenderedText(), rec.Text)
	assert.Equal(t, ChunkTypeProduct, rec.Metadata.Type)
	assert.Equal(t, "Marine Gear Oil 80W-90", rec.Metadata.Name)
	assert.Equal(t, "Gear Oils", rec.Metadata.Category)
	assert.Equal(t, "₱1,250.00", rec.Metadata.Price)
	assert.Equal(t, item.URL, rec.Metadata.URL)
	assert.Equal(t, item.ContentHash, rec.Hash())
}

func TestInformationalPage_Record(t *testing.T) {
	page := InformationalPage{
		Label:    "contact",
		URL:      "https://silvestreph.com/contact",
		BodyText: "Call us at 555-0100",
		PageType: PageTypeGeneral,
	}

	rec := page.Record()
	assert.Equal(t, "CONTACT\nCall us at 555-0100\nURL: https://silvestreph.com/contact", rec.Text)
	assert.Equal(t, ChunkTypeGeneral, rec.Metadata.Type)
	assert.Equal(t, "contact", rec.Metadata.Label)
	assert.Empty(t, rec.Metadata.Name)
}
