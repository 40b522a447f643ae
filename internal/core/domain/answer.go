package domain

// AnswerPath records which branch of the router produced an answer.
type AnswerPath string

// Answer paths.
const (
	AnswerPathListing     AnswerPath = "listing"
	AnswerPathProduct     AnswerPath = "product"
	AnswerPathFollowUp    AnswerPath = "followup"
	AnswerPathGeneral     AnswerPath = "general"
	AnswerPathNotFound    AnswerPath = "not_found"
	AnswerPathNoInfo      AnswerPath = "no_info"
	AnswerPathNeedProduct AnswerPath = "need_product"
	AnswerPathFallback    AnswerPath = "fallback"
)

// Fixed user-facing responses.
const (
	FallbackAnswer        = "I'm sorry, I'm having trouble generating a response right now. Please try again shortly."
	ProductNotFoundAnswer = "I'm sorry, I couldn't find any matching product from our website."
	NoInformationAnswer   = "I'm sorry, I couldn't find information about that on our website."
	NeedProductAnswer     = "Please mention a specific product so I can help you with its price or availability."
)

// Answer is the result of one conversational turn.
type Answer struct {
	Text   string     `json:"text"`
	Intent Intent     `json:"-"`
	Path   AnswerPath `json:"path"`

	// Product is the product the answer is about, if any.
	Product *ProductSummary `json:"product,omitempty"`
}

// ProductSummary is the listing view of an indexed product.
type ProductSummary struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Price    string `json:"price"`
	URL      string `json:"url"`
}

// HasKnownPrice reports whether the price is a concrete value.
func (p ProductSummary) HasKnownPrice() bool {
	return p.Price != "" && p.Price != PlaceholderPrice
}

// SummaryOf builds a ProductSummary from product chunk metadata.
func SummaryOf(c IndexedChunk) ProductSummary {
	return ProductSummary{
		Name:     c.Metadata.Name,
		Category: c.Metadata.Category,
		Price:    c.Metadata.Price,
		URL:      c.Metadata.URL,
	}
}
