package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/shopdesk/internal/core/domain"
)

type assistantFixture struct {
	svc     *AssistantService
	index   *stubIndex
	catalog *stubCatalog
	llm    *stubLLM
	gear   domain.IndexedChunk
	grease domain.IndexedChunk
}

func newAssistantFixture(responses ...string) *assistantFixture {
	index, gear, grease := catalogIndex()
	index.chunks = append(index.chunks,
		generalChunk("contact", "https://shop.test/contact", "Telephone 555-0100. Office hours Monday to Friday."),
		generalChunk("ship", "https://shop.test/shipping-and-returns", "We ship within five days nationwide."),
	)
	if len(responses) == 0 {
		responses = []string{"Here is what I found."}
	}
	llm := &stubLLM{responses: responses}
	catalog := &stubCatalog{items: []domain.CatalogItem{
		domain.NewCatalogItem(gearOilURL, "Gear Oils", "Marine Gear Oil 80W-90", "", "₱1,250.00"),
		domain.NewCatalogItem(greaseURL, "Greases", "Lithium Grease", "", "₱300.00"),
	}}

	settings := domain.DefaultAppSettings()
	profile := testProfile()
	svc := NewAssistantService(
		index,
		catalog,
		NewProductResolver(index, ResolverConfigFrom(settings)),
		NewAnswerAssembler(llm, profile.Company, testAssemblerConfig()),
		NewSessionStore(settings.Answer.HistoryMessages),
		profile,
		settings,
	)
	return &assistantFixture{svc: svc, index: index, catalog: catalog, llm: llm, gear: gear, grease: grease}
}

func (f *assistantFixture) ask(t *testing.T, conv, query string) *domain.Answer {
	t.Helper()
	answer, err := f.svc.Ask(context.Background(), conv, query)
	require.NoError(t, err)
	return answer
}

func TestAssistant_ScenarioA_PriceTailFromData(t *testing.T) {
	f := newAssistantFixture("It is a premium marine gear oil. The price is not listed on our site.")
	f.index.results = []domain.ScoredChunk{{Chunk: f.gear, Score: 0.9}, {Chunk: f.grease, Score: 0.4}}

	answer := f.ask(t, "c1", "what's the price of Marine Gear Oil 80W-90?")

	assert.Equal(t, domain.AnswerPathProduct, answer.Path)
	assert.Contains(t, answer.Text, "Price: ₱1,250.00")
	assert.Contains(t, answer.Text, "URL: "+gearOilURL)
	assert.NotContains(t, answer.Text, "not listed")
	assert.Equal(t, 1, f.llm.calls())
}

func TestAssistant_ScenarioB_FollowUpReusesProduct(t *testing.T) {
	f := newAssistantFixture("Marine Gear Oil is for outboard gearboxes.", "Yes, it comes in drums.")
	f.index.results = []domain.ScoredChunk{{Chunk: f.gear, Score: 0.8}}

	first := f.ask(t, "c1", "tell me about Marine Gear Oil")
	require.Equal(t, domain.AnswerPathProduct, first.Path)
	require.NotNil(t, first.Product)
	assert.Equal(t, "Marine Gear Oil 80W-90", first.Product.Name)
	searches := f.index.searches

	second := f.ask(t, "c1", "is it available in drums?")
	assert.Equal(t, domain.AnswerPathFollowUp, second.Path)
	assert.Equal(t, domain.ProductIntent(), second.Intent)
	require.NotNil(t, second.Product)
	assert.Equal(t, "Marine Gear Oil 80W-90", second.Product.Name)
	assert.True(t, strings.HasPrefix(second.Text, "Yes, it comes in drums."))
	assert.Equal(t, searches, f.index.searches, "follow-up must not search the index")

	// the follow-up prompt carries the first turn as history
	assert.Contains(t, f.llm.lastPrompt(), "User: tell me about Marine Gear Oil")
}

func TestAssistant_ScenarioC_RelevanceFloor(t *testing.T) {
	f := newAssistantFixture()
	f.index.results = []domain.ScoredChunk{{Chunk: f.index.chunks[2], Score: 0.2}}

	answer := f.ask(t, "c1", "what is your favourite colour")

	assert.Equal(t, domain.NoInformationAnswer, answer.Text)
	assert.Equal(t, domain.AnswerPathNoInfo, answer.Path)
	assert.Zero(t, f.llm.calls())
}

func TestAssistant_GeneralAnswerWithVisitLink(t *testing.T) {
	f := newAssistantFixture("We ship within five days.")
	f.index.results = []domain.ScoredChunk{{Chunk: f.index.chunks[3], Score: 0.9}}

	answer := f.ask(t, "c1", "do you ship within five days")

	assert.Equal(t, domain.AnswerPathGeneral, answer.Path)
	assert.Equal(t, domain.GeneralPageIntent("ship"), answer.Intent)
	assert.True(t, strings.HasSuffix(answer.Text, "You may also visit: https://shop.test/shipping-and-returns"))
}

func TestAssistant_IntentResetRequiresProduct(t *testing.T) {
	f := newAssistantFixture()
	f.index.results = []domain.ScoredChunk{{Chunk: f.grease, Score: 0.9}}

	require.Equal(t, domain.AnswerPathProduct, f.ask(t, "c1", "Lithium Grease").Path)
	f.ask(t, "c1", "what is your shipping policy")

	answer := f.ask(t, "c1", "how much is it?")
	assert.Equal(t, domain.NeedProductAnswer, answer.Text)
	assert.Equal(t, domain.AnswerPathNeedProduct, answer.Path)
}

func TestAssistant_FollowUpWindowOverflow(t *testing.T) {
	f := newAssistantFixture()
	f.index.results = []domain.ScoredChunk{{Chunk: f.grease, Score: 0.9}}

	require.Equal(t, domain.AnswerPathProduct, f.ask(t, "c1", "Lithium Grease").Path)
	for i := 0; i < domain.MaxFollowUps; i++ {
		assert.Equal(t, domain.AnswerPathFollowUp, f.ask(t, "c1", "how much?").Path, "follow-up %d", i+1)
	}

	// the fourth follow-up overflows the window and drops the product
	searches := f.index.searches
	overflow := f.ask(t, "c1", "how much?")
	assert.Equal(t, domain.AnswerPathNeedProduct, overflow.Path)
	assert.Equal(t, domain.NeedProductAnswer, overflow.Text)
	assert.Equal(t, searches, f.index.searches, "no retrieval once the window closes")
	assert.Equal(t, domain.AnswerPathNeedProduct, f.ask(t, "c1", "how much?").Path)

	// naming the product again starts a fresh window
	assert.Equal(t, domain.AnswerPathProduct, f.ask(t, "c1", "Lithium Grease").Path)
	assert.Equal(t, domain.AnswerPathFollowUp, f.ask(t, "c1", "how much?").Path)
}

func TestAssistant_OverflowWithProductNameStillResolves(t *testing.T) {
	f := newAssistantFixture()
	f.index.results = []domain.ScoredChunk{{Chunk: f.grease, Score: 0.9}}

	require.Equal(t, domain.AnswerPathProduct, f.ask(t, "c1", "Lithium Grease").Path)
	for i := 0; i < domain.MaxFollowUps; i++ {
		f.ask(t, "c1", "how much?")
	}

	answer := f.ask(t, "c1", "how much is Lithium Grease?")
	assert.Equal(t, domain.AnswerPathProduct, answer.Path)
	require.NotNil(t, answer.Product)
	assert.Equal(t, "Lithium Grease", answer.Product.Name)
}

func TestAssistant_ProductNotFound(t *testing.T) {
	f := newAssistantFixture()
	f.index.results = []domain.ScoredChunk{{Chunk: f.gear, Score: 0.3}}

	answer := f.ask(t, "c1", "do you sell tire sealant")
	assert.Equal(t, domain.ProductNotFoundAnswer, answer.Text)
	assert.Zero(t, f.llm.calls())
}

func TestAssistant_ListingSkipsGeneration(t *testing.T) {
	f := newAssistantFixture()

	answer := f.ask(t, "c1", "Show me your products")

	assert.Equal(t, domain.AnswerPathListing, answer.Path)
	assert.Contains(t, answer.Text, "- Lithium Grease (₱300.00)")
	assert.Contains(t, answer.Text, "- Marine Gear Oil 80W-90 (₱1,250.00)")
	assert.Zero(t, f.llm.calls())
	assert.Zero(t, f.index.searches)
}

func TestAssistant_ResetAndIsolation(t *testing.T) {
	f := newAssistantFixture()
	f.index.results = []domain.ScoredChunk{{Chunk: f.grease, Score: 0.9}}

	f.ask(t, "a", "Lithium Grease")
	assert.Equal(t, domain.AnswerPathNeedProduct, f.ask(t, "b", "how much?").Path)

	f.svc.Reset("a")
	assert.Equal(t, domain.AnswerPathNeedProduct, f.ask(t, "a", "how much?").Path)
}

func TestAssistant_EmptyQuestion(t *testing.T) {
	f := newAssistantFixture()
	_, err := f.svc.Ask(context.Background(), "c1", "   ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAssistant_ListProductsCached(t *testing.T) {
	f := newAssistantFixture()

	products, err := f.svc.ListProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "Marine Gear Oil 80W-90", products[0].Name)

	_, err = f.svc.ListProducts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, f.catalog.lists)

	f.svc.Invalidate()
	_, err = f.svc.ListProducts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, f.catalog.lists)
}

func TestAssistant_ListingFollowsCatalogNotIndex(t *testing.T) {
	f := newAssistantFixture()

	// the index still holds both products, the last refresh found one
	_, err := f.catalog.ReplaceAll(context.Background(), []domain.CatalogItem{
		domain.NewCatalogItem(greaseURL, "Greases", "Lithium Grease", "", "₱320.00"),
	})
	require.NoError(t, err)
	f.svc.Invalidate()

	answer := f.ask(t, "c1", "Show me your products")
	assert.Contains(t, answer.Text, "- Lithium Grease (₱320.00)")
	assert.NotContains(t, answer.Text, "Marine Gear Oil")
	assert.Zero(t, f.index.lists)
}

func TestAssistant_ListProductsError(t *testing.T) {
	f := newAssistantFixture()
	f.catalog.listErr = errors.New("catalog offline")

	_, err := f.svc.ListProducts(context.Background())
	assert.Error(t, err)
}
