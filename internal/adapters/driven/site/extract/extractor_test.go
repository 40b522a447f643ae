package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/shopdesk/internal/core/domain"
)

const productHTML = `<html><body>
<h1> Marine Gear Oil
  80W-90 </h1>
<div class="elementor-widget-theme-post-content">
  <p>Extreme pressure gear oil.</p>
  <p>For outboard gearboxes.</p>
  <script>track()</script>
</div>
<span data-hook="formatted-primary-price">₱1,250.00</span>
</body></html>`

func page(body string) *domain.Page {
	return &domain.Page{URL: "https://shop.test/x", FinalURL: "https://shop.test/x", StatusCode: 200, HTML: []byte(body)}
}

func TestExtractProduct(t *testing.T) {
	fields, err := New().ExtractProduct(page(productHTML), domain.DefaultSiteProfile().Selectors)
	require.NoError(t, err)
	assert.Equal(t, "Marine Gear Oil 80W-90", fields.Title)
	assert.Equal(t, "Extreme pressure gear oil.\nFor outboard gearboxes.", fields.Description)
	assert.Equal(t, "₱1,250.00", fields.Price)
}

func TestExtractProduct_MissingFields(t *testing.T) {
	fields, err := New().ExtractProduct(page(`<html><body><h1>Grease</h1></body></html>`), domain.DefaultSiteProfile().Selectors)
	require.NoError(t, err)
	assert.Equal(t, "Grease", fields.Title)
	assert.Empty(t, fields.Description)
	assert.Empty(t, fields.Price)
}

func TestExtractGeneral_PrefersMain(t *testing.T) {
	text, err := New().ExtractGeneral(page(`<html><body>
		<nav>Home Shop Cart</nav>
		<main><h2>About us</h2><p>Family owned since 1970.</p><style>p{}</style></main>
		<footer>Copyright</footer>
	</body></html>`))
	require.NoError(t, err)
	assert.Equal(t, "About us\nFamily owned since 1970.", text)
}

func TestExtractGeneral_NoMain(t *testing.T) {
	text, err := New().ExtractGeneral(page(`<html><body><div><p>Call us on 555-0100.</p></div></body></html>`))
	require.NoError(t, err)
	assert.Contains(t, text, "Call us on 555-0100.")
}

func TestExtractGeneral_Empty(t *testing.T) {
	text, err := New().ExtractGeneral(page(`<html><body></body></html>`))
	require.NoError(t, err)
	assert.Empty(t, text)
}
