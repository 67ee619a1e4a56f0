package session

import (
	"strings"

	"github.com/dshills/textkit/snippet"
	"github.com/dshills/textkit/snippet/indent"
)

// renderedSpan maps a live interactive node to the region its text
// occupies right after rendering.
type renderedSpan struct {
	tabstop  *snippet.Tabstop  // exactly one of tabstop/variable is set
	variable *snippet.Variable
	r        Range
}

// renderer lays a normalized tree out as document lines starting at a
// given position. Every continuation line inherits the indent prefix
// of the insertion point; multi-line variable values are reflowed
// through the indent engine first.
type renderer struct {
	prefix string
	opts   indent.Options

	lines []string
	cur   Pos
	spans []renderedSpan
}

// render lays out tree for insertion at "at". The first returned line
// continues the insertion line; Host.Replace joins it with the
// surrounding text.
func render(tree snippet.NodeList, at Pos, prefix string, opts indent.Options) ([]string, []renderedSpan, Pos) {
	r := &renderer{
		prefix: prefix,
		opts:   opts,
		lines:  []string{""},
		cur:    at,
	}
	r.walk(tree)
	return r.lines, r.spans, r.cur
}

func (r *renderer) walk(list snippet.NodeList) {
	for _, n := range list {
		switch n := n.(type) {
		case *snippet.Text:
			r.writeBody(n.Content)
		case *snippet.Tabstop:
			i := len(r.spans)
			r.spans = append(r.spans, renderedSpan{tabstop: n, r: Range{Start: r.cur}})
			r.walk(n.Placeholder)
			r.spans[i].r.End = r.cur
		case *snippet.Variable:
			i := len(r.spans)
			r.spans = append(r.spans, renderedSpan{variable: n, r: Range{Start: r.cur}})
			if n.Resolved {
				r.writeValue(indent.Reflow(n.Value, r.prefix, r.opts))
			} else {
				r.walk(n.Placeholder)
			}
			r.spans[i].r.End = r.cur
		}
	}
}

// writeBody writes literal body text; every newline starts a fresh
// line carrying the indent prefix.
func (r *renderer) writeBody(s string) {
	r.write(s, r.prefix)
}

// writeValue writes pre-reflowed text whose continuation lines already
// carry their indentation.
func (r *renderer) writeValue(s string) {
	r.write(s, "")
}

func (r *renderer) write(s, newLinePrefix string) {
	for i, seg := range strings.Split(s, "\n") {
		if i > 0 {
			r.lines = append(r.lines, newLinePrefix)
			r.cur = Pos{Line: r.cur.Line + 1, Col: len(newLinePrefix)}
		}
		r.lines[len(r.lines)-1] += seg
		r.cur.Col += len(seg)
	}
}
