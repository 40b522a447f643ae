// Package textmatch scores lexical similarity between short strings on a
// 0 to 100 scale using the fuzzywuzzy ratios, so thresholds such as 80 or
// 88 keep their usual meaning.
package textmatch

import (
	"sort"
	"strings"
	"unicode"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"
)

// Normalize lowercases s, turns every non-alphanumeric rune into a space
// and collapses runs of whitespace.
func Normalize(s string) string {
	mapped := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, s)
	return strings.Join(strings.Fields(mapped), " ")
}

// Ratio returns the edit similarity of a and b. Identical strings,
// including two empty ones, score 100.
func Ratio(a, b string) float64 {
	if a == b {
		return 100
	}
	return float64(fuzzy.Ratio(a, b))
}

// TokenSetRatio compares the token sets of a and b after Normalize.
// Word order and duplicated words are ignored, and a string whose tokens
// are all contained in the other scores 100.
func TokenSetRatio(a, b string) float64 {
	na, nb := Normalize(a), Normalize(b)
	if na == "" || nb == "" {
		return 0
	}
	return float64(fuzzy.TokenSetRatio(na, nb))
}

// Scored is a candidate position paired with its score.
type Scored struct {
	Index int
	Score float64
}

// Rank scores every text against query with TokenSetRatio and returns the
// k best, highest first. Ties keep input order. k <= 0 returns all.
func Rank(query string, texts []string, k int) []Scored {
	scored := make([]Scored, len(texts))
	for i, t := range texts {
		scored[i] = Scored{Index: i, Score: TokenSetRatio(query, t)}
	}
	sort.SliceStable(scored, func(a, b int) bool {
		return scored[a].Score > scored[b].Score
	})
	if k > 0 && len(scored) > k {
		scored = scored[:k]
	}
	return scored
}
