package fuzzy

import (
	"sort"
	"strings"
)

// Item is one searchable candidate.
type Item struct {
	// Text is the string matched against.
	Text string

	// Data carries arbitrary caller data through to the result.
	Data any
}

// Result is a scored match.
type Result struct {
	// Item is the matched candidate.
	Item Item

	// Score ranks the match; higher is better.
	Score int

	// Positions holds the rune indices of the matched characters.
	Positions []int
}

// Options configures a Matcher.
type Options struct {
	// CaseSensitive disables the default case folding.
	CaseSensitive bool

	// MinScore drops matches scoring at or below it.
	MinScore int
}

// Matcher performs subsequence matching with configurable scoring.
type Matcher struct {
	scorer Scorer
	opts   Options
}

// NewMatcher returns a matcher using the given scorer. A nil scorer
// selects DefaultScorer.
func NewMatcher(scorer Scorer, opts Options) *Matcher {
	if scorer == nil {
		scorer = DefaultScorer()
	}
	return &Matcher{scorer: scorer, opts: opts}
}

// Match returns the items whose text contains query as a subsequence,
// sorted by score descending with ties broken by text. limit <= 0
// returns everything. An empty query matches every item in input
// order with zero score.
func (m *Matcher) Match(query string, items []Item, limit int) []Result {
	query = strings.TrimSpace(query)
	if !m.opts.CaseSensitive {
		query = strings.ToLower(query)
	}
	if query == "" {
		return clip(allItems(items), limit)
	}

	qr := []rune(query)
	results := make([]Result, 0, len(items))
	for _, item := range items {
		score, positions := m.score(qr, item.Text)
		if positions == nil || score <= m.opts.MinScore {
			continue
		}
		results = append(results, Result{Item: item, Score: score, Positions: positions})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Item.Text < results[j].Item.Text
	})
	return clip(results, limit)
}

// MatchStrings is Match over bare strings.
func (m *Matcher) MatchStrings(query string, texts []string, limit int) []Result {
	items := make([]Item, len(texts))
	for i, t := range texts {
		items[i] = Item{Text: t}
	}
	return m.Match(query, items, limit)
}

// score runs the greedy left-to-right subsequence scan and hands the
// match to the scorer. positions is nil when text does not contain
// the query.
func (m *Matcher) score(query []rune, text string) (int, []int) {
	if text == "" {
		return 0, nil
	}
	original := []rune(text)
	folded := original
	if !m.opts.CaseSensitive {
		folded = []rune(strings.ToLower(text))
	}

	positions := make([]int, 0, len(query))
	qi := 0
	for i := 0; i < len(folded) && qi < len(query); i++ {
		if folded[i] == query[qi] {
			positions = append(positions, i)
			qi++
		}
	}
	if qi != len(query) {
		return 0, nil
	}
	return m.scorer.Score(query, original, folded, positions), positions
}

func allItems(items []Item) []Result {
	results := make([]Result, len(items))
	for i, item := range items {
		results[i] = Result{Item: item}
	}
	return results
}

func clip(results []Result, limit int) []Result {
	if limit > 0 && limit < len(results) {
		return results[:limit]
	}
	return results
}
