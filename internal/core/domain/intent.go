package domain

// IntentKind enumerates the closed set of query intents.
type IntentKind int

// Intent kinds. The zero value means no turn has happened yet.
const (
	IntentNone IntentKind = iota
	IntentGeneral
	IntentProduct
	IntentGeneralPage
)

// String returns the kind name.
func (k IntentKind) String() string {
	switch k {
	case IntentGeneral:
		return "general"
	case IntentProduct:
		return "product"
	case IntentGeneralPage:
		return "general_page"
	default:
		return "none"
	}
}

// Intent is a tagged variant. Label is set only for IntentGeneralPage.
type Intent struct {
	Kind  IntentKind
	Label string
}

// ProductIntent returns the product intent.
func ProductIntent() Intent { return Intent{Kind: IntentProduct} }

// GeneralIntent returns the general intent.
func GeneralIntent() Intent { return Intent{Kind: IntentGeneral} }

// GeneralPageIntent returns a general-page intent for label.
func GeneralPageIntent(label string) Intent {
	return Intent{Kind: IntentGeneralPage, Label: label}
}

// IsProduct reports whether the intent is Product.
func (i Intent) IsProduct() bool { return i.Kind == IntentProduct }

// String renders the intent for logs.
func (i Intent) String() string {
	if i.Kind == IntentGeneralPage {
		return i.Kind.String() + "(" + i.Label + ")"
	}
	return i.Kind.String()
}
