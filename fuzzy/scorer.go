package fuzzy

import "unicode"

// Scorer ranks a confirmed subsequence match. query is the folded
// query, original keeps the text's case for boundary detection,
// folded is the text after case folding, positions the matched rune
// indices in the text.
type Scorer interface {
	Score(query, original, folded []rune, positions []int) int
}

// Weights is a Scorer built from additive bonuses and penalties.
type Weights struct {
	// Base is the starting score for any match.
	Base int

	// Consecutive is added per adjacent match pair.
	Consecutive int

	// WordBoundary is added per match at a word boundary.
	WordBoundary int

	// FirstChar is added when the first match sits at position 0.
	FirstChar int

	// ExactPrefix is added when the text starts with the query.
	ExactPrefix int

	// Gap is subtracted per unmatched character between matches.
	Gap int

	// Leading is subtracted per character before the first match.
	Leading int

	// ShortText is added as (ShortText - text length) for texts
	// shorter than it.
	ShortText int
}

// DefaultScorer returns weights tuned for completion candidates.
func DefaultScorer() Weights {
	return Weights{
		Base:         100,
		Consecutive:  20,
		WordBoundary: 15,
		FirstChar:    25,
		ExactPrefix:  50,
		Gap:          2,
		Leading:      1,
		ShortText:    20,
	}
}

// PrefixScorer returns weights tuned for snippet trigger prefixes,
// where candidates are short and starting characters dominate.
func PrefixScorer() Weights {
	return Weights{
		Base:         100,
		Consecutive:  30,
		WordBoundary: 10,
		FirstChar:    40,
		ExactPrefix:  80,
		Gap:          5,
		Leading:      3,
		ShortText:    12,
	}
}

// Score implements Scorer.
func (w Weights) Score(query, original, folded []rune, positions []int) int {
	if len(positions) == 0 {
		return 0
	}
	score := w.Base

	for i := 1; i < len(positions); i++ {
		if positions[i] == positions[i-1]+1 {
			score += w.Consecutive
		}
	}
	for _, p := range positions {
		if boundaryAt(original, p) {
			score += w.WordBoundary
		}
	}
	if positions[0] == 0 {
		score += w.FirstChar
	} else {
		score -= positions[0] * w.Leading
	}
	if gap := positions[len(positions)-1] - positions[0] - len(positions) + 1; gap > 0 {
		score -= gap * w.Gap
	}
	if len(folded) < w.ShortText {
		score += w.ShortText - len(folded)
	}
	if hasPrefix(folded, query) {
		score += w.ExactPrefix
	}

	// Any confirmed match outranks a rejection.
	if score < 1 {
		score = 1
	}
	return score
}

// boundaryAt reports whether position p starts a word: start of text,
// after space or punctuation, or a camelCase hump.
func boundaryAt(runes []rune, p int) bool {
	if p == 0 {
		return true
	}
	if p >= len(runes) {
		return false
	}
	prev := runes[p-1]
	if unicode.IsSpace(prev) || unicode.IsPunct(prev) {
		return true
	}
	return unicode.IsLower(prev) && unicode.IsUpper(runes[p])
}

func hasPrefix(text, prefix []rune) bool {
	if len(text) < len(prefix) {
		return false
	}
	for i, r := range prefix {
		if text[i] != r {
			return false
		}
	}
	return true
}
