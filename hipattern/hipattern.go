// Package hipattern highlights regex patterns in text lines.
//
// A Highlighter holds named patterns with priorities and produces
// non-overlapping spans per line, higher priority winning where
// matches overlap. Typical uses are flagging TODO-style markers and
// inline color literals in any buffer without a language grammar.
package hipattern

import (
	"fmt"
	"regexp"
	"sort"
)

// Pattern is one named highlight rule.
type Pattern struct {
	// Name is the highlight group reported on matching spans.
	Name string

	// Regexp selects the text to highlight.
	Regexp *regexp.Regexp

	// Priority resolves overlaps; the higher value wins.
	Priority int
}

// Span is a highlighted region of a line, byte offsets, end
// exclusive.
type Span struct {
	Start    int
	End      int
	Name     string
	Priority int
}

// Highlighter applies a fixed set of patterns to lines.
type Highlighter struct {
	patterns []Pattern
}

// New returns a highlighter over the given patterns.
func New(patterns ...Pattern) (*Highlighter, error) {
	h := &Highlighter{}
	for _, p := range patterns {
		if err := h.Add(p); err != nil {
			return nil, err
		}
	}
	return h, nil
}

// Add appends one pattern.
func (h *Highlighter) Add(p Pattern) error {
	if p.Name == "" {
		return fmt.Errorf("pattern has no name")
	}
	if p.Regexp == nil {
		return fmt.Errorf("pattern %q has no regexp", p.Name)
	}
	h.patterns = append(h.patterns, p)
	return nil
}

// HighlightLine returns the spans for one line, sorted by start, with
// overlaps already resolved. Between patterns the higher priority
// wins; on equal priority the earlier registered pattern wins.
func (h *Highlighter) HighlightLine(line string) []Span {
	var candidates []candidate
	for order, p := range h.patterns {
		for _, m := range p.Regexp.FindAllStringIndex(line, -1) {
			if m[0] == m[1] {
				continue
			}
			candidates = append(candidates, candidate{
				span:  Span{Start: m[0], End: m[1], Name: p.Name, Priority: p.Priority},
				order: order,
			})
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.span.Priority != b.span.Priority {
			return a.span.Priority > b.span.Priority
		}
		if a.order != b.order {
			return a.order < b.order
		}
		if a.span.Start != b.span.Start {
			return a.span.Start < b.span.Start
		}
		return a.span.End-a.span.Start > b.span.End-b.span.Start
	})

	var spans []Span
	for _, c := range candidates {
		if overlapsAny(spans, c.span) {
			continue
		}
		spans = append(spans, c.span)
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].Start < spans[j].Start })
	return spans
}

// HighlightLines maps HighlightLine over a buffer; the slice index is
// the line number.
func (h *Highlighter) HighlightLines(lines []string) [][]Span {
	out := make([][]Span, len(lines))
	for i, line := range lines {
		out[i] = h.HighlightLine(line)
	}
	return out
}

type candidate struct {
	span  Span
	order int
}

func overlapsAny(spans []Span, s Span) bool {
	for _, t := range spans {
		if s.Start < t.End && t.Start < s.End {
			return true
		}
	}
	return false
}

var (
	markerRe   = regexp.MustCompile(`\b(TODO|FIXME|HACK|NOTE)\b`)
	hexColorRe = regexp.MustCompile(`#[0-9a-fA-F]{6}\b`)
)

// Markers returns the stock pattern for task markers in comments.
func Markers(priority int) Pattern {
	return Pattern{Name: "marker", Regexp: markerRe, Priority: priority}
}

// HexColor returns the stock pattern for #rrggbb color literals.
func HexColor(priority int) Pattern {
	return Pattern{Name: "hex_color", Regexp: hexColorRe, Priority: priority}
}
