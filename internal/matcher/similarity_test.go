package matcher_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"stockingest/internal/domain"
	"stockingest/internal/matcher"
)

func TestScore_ExactIsCaseInsensitive(t *testing.T) {
	inputs := []string{"Coca Cola 500ml", "agua", "GATORADE Azul", "pelota de tenis x3", "ñandú"}
	for _, in := range inputs {
		assert.Equal(t, 1.0, matcher.Confidence(in, in), in)
		assert.Equal(t, 1.0, matcher.Confidence(in, strings.ToUpper(in)), in)
		assert.Equal(t, domain.MatchExact, matcher.Score(strings.ToLower(in), in).Type, in)
	}
}

func TestScore_TrimsSurroundingWhitespace(t *testing.T) {
	assert.Equal(t, 1.0, matcher.Confidence("  Agua  ", "agua"))
}

func TestScore_NoOverlapIsZero(t *testing.T) {
	tests := []struct {
		a, b string
	}{
		{"abc", "xyz"},
		{"gatorade", "pelota"},
		{"red bull lata", "pan dulce"},
	}
	for _, tt := range tests {
		m := matcher.Score(tt.a, tt.b)
		assert.Equal(t, 0.0, m.Confidence, "%s vs %s", tt.a, tt.b)
		assert.Equal(t, domain.MatchNone, m.Type)
	}
}

func TestScore_Substring(t *testing.T) {
	m := matcher.Score("agua", "Agua Mineral")

	assert.Equal(t, domain.MatchSubstring, m.Type)
	assert.InDelta(t, 4.0/12.0*0.8, m.Confidence, 1e-9)
}

func TestScore_SubstringEitherDirection(t *testing.T) {
	assert.Equal(t, matcher.Confidence("agua mineral", "agua"), matcher.Confidence("agua", "agua mineral"))
}

func TestScore_SubstringCountsRunes(t *testing.T) {
	// "ñandú" is 5 runes but 7 bytes.
	m := matcher.Score("ñandú", "ñandú xl")
	assert.InDelta(t, 5.0/8.0*0.8, m.Confidence, 1e-9)
}

func TestScore_TokenOverlap(t *testing.T) {
	m := matcher.Score("COCA COLA 500 ML", "Coca Cola 500ml")

	assert.Equal(t, domain.MatchToken, m.Type)
	// coca, cola, 500 (in 500ml), ml (in 500ml): 4 of max(4,3)
	assert.InDelta(t, 0.6, m.Confidence, 1e-9)
}

func TestScore_TokenOverlapPartial(t *testing.T) {
	m := matcher.Score("pelotas tenis wilson", "tubo pelota penn")

	// "pelota" is contained in "pelotas"; the other two tokens miss.
	assert.Equal(t, domain.MatchToken, m.Type)
	assert.InDelta(t, 1.0/3.0*0.6, m.Confidence, 1e-9)
}

func TestScore_EmptyAgainstText(t *testing.T) {
	assert.Equal(t, 0.0, matcher.Confidence("", "agua"))
	assert.Equal(t, 1.0, matcher.Confidence("", ""))
}

func TestBest_HighestWinsAndTiesKeepFirst(t *testing.T) {
	names := []string{"Agua Tonica", "Agua", "Agua"}
	idx, m, ok := matcher.Best("agua", names, func(s string) []string { return []string{s} }, 0.3)

	assert.True(t, ok)
	assert.Equal(t, 1, idx)
	assert.Equal(t, 1.0, m.Confidence)
}

func TestBest_BelowThreshold(t *testing.T) {
	names := []string{"Agua Mineral Sin Gas 2L"}
	idx, m, ok := matcher.Best("agua", names, func(s string) []string { return []string{s} }, 0.3)

	assert.False(t, ok)
	assert.Equal(t, -1, idx)
	assert.Equal(t, matcher.NoMatch, m)
}

func TestBest_EmptyCandidates(t *testing.T) {
	_, _, ok := matcher.Best("agua", []string{}, func(s string) []string { return []string{s} }, 0)
	assert.False(t, ok)
}
