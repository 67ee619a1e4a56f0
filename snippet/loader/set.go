package loader

import (
	"sort"
	"strings"
)

// Set indexes snippets by prefix. Adding a snippet with an existing
// prefix replaces the previous one, so sources added later win.
type Set struct {
	byPrefix map[string]Snippet
}

// NewSet returns a Set holding the given snippets, added in order.
func NewSet(snippets ...Snippet) *Set {
	s := &Set{byPrefix: make(map[string]Snippet)}
	s.Add(snippets...)
	return s
}

// Add inserts snippets, replacing earlier entries with the same
// prefix.
func (s *Set) Add(snippets ...Snippet) {
	for _, sn := range snippets {
		s.byPrefix[sn.Prefix] = sn
	}
}

// Len returns the number of distinct prefixes.
func (s *Set) Len() int { return len(s.byPrefix) }

// Lookup returns the snippet registered for an exact prefix.
func (s *Set) Lookup(prefix string) (Snippet, bool) {
	sn, ok := s.byPrefix[prefix]
	return sn, ok
}

// Complete returns every snippet whose prefix starts with the given
// partial prefix, sorted by prefix.
func (s *Set) Complete(partial string) []Snippet {
	var out []Snippet
	for prefix, sn := range s.byPrefix {
		if strings.HasPrefix(prefix, partial) {
			out = append(out, sn)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Prefix < out[j].Prefix })
	return out
}

// All returns every snippet sorted by prefix.
func (s *Set) All() []Snippet {
	return s.Complete("")
}

// MatchAt returns the snippet whose prefix ends at col in line, along
// with the matched length, preferring the longest prefix. The prefix
// must be preceded by start of line or a non-word character.
func (s *Set) MatchAt(line string, col int) (Snippet, int, bool) {
	if col > len(line) {
		col = len(line)
	}
	text := line[:col]
	var best Snippet
	bestLen := -1
	for prefix, sn := range s.byPrefix {
		if !strings.HasSuffix(text, prefix) {
			continue
		}
		at := len(text) - len(prefix)
		if at > 0 && isWordByte(text[at-1]) {
			continue
		}
		if len(prefix) > bestLen {
			best, bestLen = sn, len(prefix)
		}
	}
	if bestLen < 0 {
		return Snippet{}, 0, false
	}
	return best, bestLen, true
}

func isWordByte(b byte) bool {
	return b == '_' ||
		(b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}
