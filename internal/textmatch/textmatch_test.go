package textmatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "marine gear oil 80w 90", Normalize("Marine Gear-Oil (80W-90)!"))
	assert.Equal(t, "", Normalize("  ?! "))
}

func TestRatio(t *testing.T) {
	assert.InDelta(t, 100, Ratio("oil", "oil"), 0.001)
	assert.InDelta(t, 0, Ratio("abc", "xyz"), 0.001)
	// "abcd" vs "abce": 3 matching runes of 8
	assert.InDelta(t, 75, Ratio("abcd", "abce"), 0.001)
	assert.InDelta(t, 100, Ratio("", ""), 0.001)
}

func TestTokenSetRatio_Subset(t *testing.T) {
	score := TokenSetRatio("what's the price of Marine Gear Oil 80W-90?", "Marine Gear Oil 80W-90")
	assert.InDelta(t, 100, score, 0.001)
}

func TestTokenSetRatio_PartialOverlap(t *testing.T) {
	// intersection "gear marine oil" (15) against "gear marine oil 80w 90" (22)
	score := TokenSetRatio("tell me about Marine Gear Oil", "Marine Gear Oil 80W-90")
	assert.InDelta(t, 100*30.0/37.0, score, 1)
	assert.Less(t, score, 88.0)
	assert.GreaterOrEqual(t, score, 80.0)
}

func TestTokenSetRatio_OrderInsensitive(t *testing.T) {
	assert.InDelta(t,
		TokenSetRatio("gear oil marine", "hydraulic fluid"),
		TokenSetRatio("marine oil gear", "fluid hydraulic"),
		0.001)
}

func TestTokenSetRatio_Empty(t *testing.T) {
	assert.InDelta(t, 0, TokenSetRatio("", "Marine Gear Oil"), 0.001)
	assert.InDelta(t, 0, TokenSetRatio("!!", "??"), 0.001)
}

func TestTokenSetRatio_Unrelated(t *testing.T) {
	score := TokenSetRatio("do you ship to cebu", "Brake Fluid DOT 4")
	assert.Less(t, score, 50.0)
}

func TestTokenSetRatio_Monotonic(t *testing.T) {
	name := "Marine Gear Oil 80W-90"
	weak := TokenSetRatio("tell me marine", name)
	stronger := TokenSetRatio("tell me marine gear", name)
	strongest := TokenSetRatio("tell me marine gear oil", name)

	assert.Less(t, weak, stronger)
	assert.Less(t, stronger, strongest)
}

func TestRank(t *testing.T) {
	texts := []string{
		"CONTACT\nCall us at 555-0100",
		"SHIP\nWe ship nationwide within 5 days",
		"ABOUT\nFamily owned since 1970",
	}

	ranked := Rank("how long does shipping take, do you ship", texts, 2)
	assert.Len(t, ranked, 2)
	assert.Equal(t, 1, ranked[0].Index)
	assert.GreaterOrEqual(t, ranked[0].Score, ranked[1].Score)

	assert.Len(t, Rank("x", texts, 0), 3)
}
