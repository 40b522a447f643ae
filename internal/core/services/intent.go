package services

import (
	"strings"

	"github.com/custodia-labs/shopdesk/internal/core/domain"
)

// IntentClassifier maps a query to an Intent using the site profile's
// keyword tables. Matching is case-insensitive substring matching.
type IntentClassifier struct {
	profile domain.SiteProfile
}

// NewIntentClassifier creates a classifier for profile.
func NewIntentClassifier(profile domain.SiteProfile) *IntentClassifier {
	return &IntentClassifier{profile: profile}
}

// Classify applies the rules in order: product name, "about" prefix,
// product keyword, page label keyword, then General.
func (c *IntentClassifier) Classify(query string, productNames []string) domain.Intent {
	q := strings.ToLower(strings.TrimSpace(query))

	if containsAnyName(q, productNames) {
		return domain.ProductIntent()
	}

	if rest, ok := strings.CutPrefix(q, "about"); ok {
		if containsAnyName(rest, productNames) {
			return domain.ProductIntent()
		}
		return domain.GeneralPageIntent("about")
	}

	if containsAny(q, c.profile.ProductKeywords) {
		return domain.ProductIntent()
	}

	for _, rule := range c.profile.LabelRules {
		if containsAny(q, rule.Keywords) {
			return domain.GeneralPageIntent(rule.Label)
		}
	}

	return domain.GeneralIntent()
}

// IsFollowUp reports whether the query uses follow-up phrasing such as
// price or packaging questions.
func (c *IntentClassifier) IsFollowUp(query string) bool {
	return containsAny(strings.ToLower(query), c.profile.FollowUpMarkers)
}

// IsListingRequest reports whether the query asks for the product list.
func (c *IntentClassifier) IsListingRequest(query string) bool {
	return containsAny(strings.ToLower(query), c.profile.ListingPhrases)
}

// InfoPageFor returns the informational page whose label or keywords
// appear in the query.
func (c *IntentClassifier) InfoPageFor(query string) (domain.InfoPage, bool) {
	q := strings.ToLower(query)
	for _, page := range c.profile.InfoPages {
		if strings.Contains(q, strings.ToLower(page.Label)) || containsAny(q, page.Keywords) {
			return page, true
		}
	}
	return domain.InfoPage{}, false
}

func containsAny(q string, needles []string) bool {
	for _, n := range needles {
		if n != "" && strings.Contains(q, strings.ToLower(n)) {
			return true
		}
	}
	return false
}

func containsAnyName(q string, names []string) bool {
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		if name != "" && strings.Contains(q, name) {
			return true
		}
	}
	return false
}
