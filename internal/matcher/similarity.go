// Package matcher scores free-text invoice fields against catalog entries and
// resolves the best product or supplier for them.
package matcher

import (
	"strings"
	"unicode/utf8"

	"stockingest/internal/domain"
)

const (
	// ProductThreshold is the minimum confidence for an automatic product association.
	ProductThreshold = 0.3
	// SupplierThreshold is the minimum confidence for a supplier matched by name.
	SupplierThreshold = 0.5

	substringWeight = 0.8
	tokenWeight     = 0.6
)

// Match is the outcome of comparing two strings.
type Match struct {
	Confidence float64          `json:"confidence"`
	Type       domain.MatchType `json:"match_type"`
}

// NoMatch is returned when nothing cleared the acceptance threshold.
var NoMatch = Match{Confidence: 0, Type: domain.MatchNone}

// Confidence returns a score in [0,1] for how well a and b describe the same thing.
func Confidence(a, b string) float64 {
	return Score(a, b).Confidence
}

// Score compares a and b case-insensitively. The first qualifying rule wins:
// exact equality, substring containment, then token overlap.
func Score(a, b string) Match {
	a = normalize(a)
	b = normalize(b)

	if a == b {
		return Match{Confidence: 1, Type: domain.MatchExact}
	}

	if strings.Contains(a, b) || strings.Contains(b, a) {
		la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
		shorter, longer := la, lb
		if shorter > longer {
			shorter, longer = longer, shorter
		}
		if shorter == 0 {
			return NoMatch
		}
		return Match{
			Confidence: float64(shorter) / float64(longer) * substringWeight,
			Type:       domain.MatchSubstring,
		}
	}

	tokensA := strings.Fields(a)
	tokensB := strings.Fields(b)
	if len(tokensA) == 0 || len(tokensB) == 0 {
		return NoMatch
	}

	matching := 0
	for _, ta := range tokensA {
		for _, tb := range tokensB {
			if strings.Contains(tb, ta) || strings.Contains(ta, tb) {
				matching++
				break
			}
		}
	}
	if matching == 0 {
		return NoMatch
	}

	denom := len(tokensA)
	if len(tokensB) > denom {
		denom = len(tokensB)
	}
	return Match{
		Confidence: float64(matching) / float64(denom) * tokenWeight,
		Type:       domain.MatchToken,
	}
}

// Best scores query against every candidate and returns the index of the
// highest-scoring one. Each candidate may expose several names; the best of
// them counts. Ties keep the earlier candidate. ok is false when no candidate
// reaches threshold.
func Best[T any](query string, candidates []T, names func(T) []string, threshold float64) (idx int, m Match, ok bool) {
	idx = -1
	m = NoMatch
	for i, c := range candidates {
		for _, name := range names(c) {
			if name == "" {
				continue
			}
			s := Score(query, name)
			if s.Confidence > m.Confidence {
				idx, m = i, s
			}
		}
	}
	if idx < 0 || m.Confidence < threshold {
		return -1, NoMatch, false
	}
	return idx, m, true
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
