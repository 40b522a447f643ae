package services

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/custodia-labs/shopdesk/internal/core/domain"
)

// salutationPattern matches a sign-off and everything after it. Qualified
// forms such as "Best regards" match anywhere; a bare "Regards" or
// "Sincerely" only at the start of a line.
var salutationPattern = regexp.MustCompile(
	`(?is)((thank you and )?(best|kind|warm) regards\b|(^|\n)[ \t]*(regards|sincerely)\b[,!.]?).*$`,
)

// unknownPricePatterns match sentences claiming the price is not known.
var unknownPricePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bprice\b[^.!?\n]*\b(not|isn't|is not|un)\s*(available|listed|specified|provided|known|mentioned|disclosed)`),
	regexp.MustCompile(`(?i)\b(do not|don't|does not|doesn't)\s+(have|include|list|show|provide|mention)\b[^.!?\n]*\bpric(e|ing)\b`),
	regexp.MustCompile(`(?i)\bpric(e|ing)\b[^.!?\n]*\bunknown\b`),
	regexp.MustCompile(`(?i)\bcontact us for pricing\b`),
	regexp.MustCompile(`(?i)\bno\s+pric(e|ing)\b`),
}

// sentencePattern splits text into sentences, keeping terminators.
var sentencePattern = regexp.MustCompile(`[^.!?\n]+[.!?]*|\n`)

// StripSalutation removes a trailing "Best regards," style sign-off.
func StripSalutation(text string) string {
	return strings.TrimSpace(salutationPattern.ReplaceAllString(text, ""))
}

// RemoveUnknownPriceClaims drops sentences asserting the price is unknown.
func RemoveUnknownPriceClaims(text string) string {
	var b strings.Builder
	for _, sentence := range sentencePattern.FindAllString(text, -1) {
		if claimsUnknownPrice(sentence) {
			continue
		}
		b.WriteString(sentence)
	}
	return collapseBlankLines(b.String())
}

func claimsUnknownPrice(sentence string) bool {
	for _, p := range unknownPricePatterns {
		if p.MatchString(sentence) {
			return true
		}
	}
	return false
}

func collapseBlankLines(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

// FactTail renders the authoritative product fields appended to answers.
func FactTail(p domain.ProductSummary) string {
	return fmt.Sprintf("Price: %s\nCategory: %s\nURL: %s", p.Price, p.Category, p.URL)
}

// CleanProductAnswer post-processes a generated product answer: the
// sign-off is stripped, unknown-price claims are removed when the price is
// concrete and the fact tail is appended.
func CleanProductAnswer(raw string, p domain.ProductSummary) string {
	text := StripSalutation(raw)
	if p.HasKnownPrice() {
		text = RemoveUnknownPriceClaims(text)
	}
	if text == "" {
		return FactTail(p)
	}
	return text + "\n\n" + FactTail(p)
}

// CleanGeneralAnswer post-processes a generated general answer and appends
// a link when visitURL is set.
func CleanGeneralAnswer(raw, visitURL string) string {
	text := StripSalutation(raw)
	if visitURL != "" {
		text += "\n\nYou may also visit: " + visitURL
	}
	return text
}
